package back

import (
	"fmt"
	"math"
)

const (
	// DefaultRating is the rating given to a player on their first game in a
	// variant, and to AI models that have no configured rating.
	DefaultRating = 1200

	// FloorRating is the lowest rating a player can ever reach, losses that
	// would drop below it are clamped.
	FloorRating = 100
)

// expectedScore is the standard ELO win probability of a player rated a
// against a player rated b.
func expectedScore(a, b int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(b-a)/400.0))
}

func actualScore(result GameResult) float64 {
	switch result {
	case GameResultWin:
		return 1.0
	case GameResultDraw:
		return 0.5
	case GameResultLoss:
		return 0.0
	default:
		// Results are validated before any computation, ending up here is a
		// bug, not bad input.
		panic(fmt.Errorf("unreachable: invalid game result %d", result))
	}
}

// kFactor returns how much a single game can move a rating, players with
// fewer games on record move faster.
func kFactor(gamesPlayed int) int {
	switch {
	case gamesPlayed < 30: // provisional
		return 40
	case gamesPlayed < 100: // settling
		return 24
	default: // established
		return 16
	}
}

// calculateNewRating returns the post-game rating and the applied change.
// gamesPlayed must be the count _before_ the game being settled.
// When FloorRating clamps the new rating, the returned change is re-derived
// from the clamped value and differs from the raw ELO delta.
func calculateNewRating(current, opponent int, result GameResult, gamesPlayed int) (newRating, change int) {
	k := float64(kFactor(gamesPlayed))
	delta := int(math.Round(k * (actualScore(result) - expectedScore(current, opponent))))

	newRating = current + delta
	if newRating < FloorRating {
		newRating = FloorRating
	}

	return newRating, newRating - current
}
