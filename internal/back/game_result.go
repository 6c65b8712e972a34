package back

type GameResult int

const ( // this is stored in DB, don't change values
	GameResultLoss GameResult = -1
	GameResultDraw GameResult = 0
	GameResultWin  GameResult = 1
)

func (r GameResult) IsValid() bool {
	switch r {
	case GameResultWin, GameResultDraw, GameResultLoss:
		return true
	default:
		return false
	}
}

// opposite returns the result as seen from the other side of the board.
func (r GameResult) opposite() GameResult {
	return -r
}

func (r GameResult) String() string {
	switch r {
	case GameResultWin:
		return "win"
	case GameResultDraw:
		return "draw"
	case GameResultLoss:
		return "loss"
	default:
		return "invalid"
	}
}
