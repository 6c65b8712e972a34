package back

import (
	"time"
	"varchess/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// RatingHistory is the append-only audit trail of rating changes, one row per
// (player, game). The unique key on (PlayerID, PlayHistoryID) is what makes
// settling a given game at-most-once: PlayHistoryID comes from the match
// record written by the game-lifecycle subsystem and is stable across retries.
type RatingHistory struct {
	PlayerID      util.UUIDAsBlob
	PlayHistoryID util.UUIDAsBlob
	VariantID     util.UUIDAsBlob
	CreatedAt     util.TimeAsTimestamp

	OldRating      int
	NewRating      int
	RatingChange   int
	OpponentRating int
	GameResult     GameResult
}

func (h *RatingHistory) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("RatingHistory").SetMap(h.sqlMap()).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return util.SQLError(err)
	}

	return nil
}

func (h *RatingHistory) sqlMap() squirrel.Eq {
	return squirrel.Eq{
		"PlayerID":       h.PlayerID,
		"PlayHistoryID":  h.PlayHistoryID,
		"VariantID":      h.VariantID,
		"CreatedAt":      h.CreatedAt,
		"OldRating":      h.OldRating,
		"NewRating":      h.NewRating,
		"RatingChange":   h.RatingChange,
		"OpponentRating": h.OpponentRating,
		"GameResult":     h.GameResult,
	}
}

// insertRatingHistoryPlaceholder reserves the (player, game) audit slot
// without computing anything, losing the insert race to a concurrent or
// earlier settlement is silent and expected.
func insertRatingHistoryPlaceholder(
	tx *sqlx.Tx,
	playerID, playHistoryID, variantID util.UUIDAsBlob,
	result GameResult,
) error {
	placeholder := RatingHistory{
		PlayerID:      playerID,
		PlayHistoryID: playHistoryID,
		VariantID:     variantID,
		CreatedAt:     util.TimeAsTimestamp(time.Now()),
		GameResult:    result,
	}

	query, args, err := squirrel.Insert("RatingHistory").
		SetMap(placeholder.sqlMap()).
		Suffix("ON CONFLICT (PlayerID, PlayHistoryID) DO NOTHING").
		ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return util.SQLError(err)
	}

	return nil
}

// isPlaceholder reports whether the row still holds the reservation
// sentinels. A settled row can never look like this: OldRating and NewRating
// are always >= FloorRating once real values are written.
func (h RatingHistory) isPlaceholder() bool {
	return h.OldRating == 0 && h.NewRating == 0 && h.OpponentRating == 0
}

// finalize overwrites the placeholder sentinels with the computed values,
// after which the row is immutable.
func (h *RatingHistory) finalize(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("RatingHistory").SetMap(squirrel.Eq{
		"OldRating":      h.OldRating,
		"NewRating":      h.NewRating,
		"RatingChange":   h.RatingChange,
		"OpponentRating": h.OpponentRating,
	}).Where(squirrel.Eq{
		"RatingHistory.PlayerID":      h.PlayerID,
		"RatingHistory.PlayHistoryID": h.PlayHistoryID,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return util.SQLError(err)
	}

	return nil
}

func getRatingHistoryByKey(tx *sqlx.Tx, playerID, playHistoryID util.UUIDAsBlob) (RatingHistory, error) {
	var ret RatingHistory
	query := `SELECT * FROM RatingHistory WHERE PlayerID = ? AND PlayHistoryID = ? LIMIT 1`
	if err := tx.Get(&ret, query, playerID, playHistoryID); err != nil {
		return RatingHistory{}, err
	}

	return ret, nil
}

func getRatingHistoryForPlayer(
	tx *sqlx.Tx,
	playerID util.UUIDAsBlob,
	variantID util.NullUUIDAsBlob,
) ([]RatingHistory, error) {
	var ret []RatingHistory

	if variantID.Valid {
		query := `SELECT * FROM RatingHistory WHERE PlayerID = ? AND VariantID = ?
			ORDER BY CreatedAt ASC, rowid ASC`
		if err := tx.Select(&ret, query, playerID, variantID); err != nil {
			return nil, err
		}

		return ret, nil
	}

	query := `SELECT * FROM RatingHistory WHERE PlayerID = ?
		ORDER BY CreatedAt ASC, rowid ASC`
	if err := tx.Select(&ret, query, playerID); err != nil {
		return nil, err
	}

	return ret, nil
}
