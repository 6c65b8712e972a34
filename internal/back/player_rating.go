package back

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
	"varchess/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// PlayerRating is the current skill estimate of one player in one variant.
// Invariants: GamesPlayed == Wins+Losses+Draws, Rating >= FloorRating, and
// PeakRating >= Rating; all of them are maintained by applyRatingUpdate being
// the only thing that ever touches the counters.
type PlayerRating struct {
	PlayerID  util.UUIDAsBlob
	VariantID util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	UpdatedAt util.TimeAsTimestamp

	Rating      int
	GamesPlayed int
	Wins        int
	Losses      int
	Draws       int
	PeakRating  int
}

func NewPlayerRating(playerID, variantID util.UUIDAsBlob) PlayerRating {
	now := util.TimeAsTimestamp(time.Now())

	return PlayerRating{
		PlayerID:  playerID,
		VariantID: variantID,
		CreatedAt: now,
		UpdatedAt: now,

		Rating:     DefaultRating,
		PeakRating: DefaultRating,
	}
}

func (r *PlayerRating) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("PlayerRating").SetMap(squirrel.Eq{
		"PlayerID":    r.PlayerID,
		"VariantID":   r.VariantID,
		"CreatedAt":   r.CreatedAt,
		"UpdatedAt":   r.UpdatedAt,
		"Rating":      r.Rating,
		"GamesPlayed": r.GamesPlayed,
		"Wins":        r.Wins,
		"Losses":      r.Losses,
		"Draws":       r.Draws,
		"PeakRating":  r.PeakRating,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return util.SQLError(err)
	}

	return nil
}

func getPlayerRating(tx *sqlx.Tx, playerID, variantID util.UUIDAsBlob) (PlayerRating, error) {
	var ret PlayerRating
	query := `SELECT * FROM PlayerRating WHERE PlayerID = ? AND VariantID = ? LIMIT 1`
	if err := tx.Get(&ret, query, playerID, variantID); err != nil {
		return PlayerRating{}, err
	}

	return ret, nil
}

// getOrCreatePlayerRating returns the rating row for the given player and
// variant, creating it with default values on their first ever game.
// Two concurrent first games race on the insert, losing that race is not an
// error: the winner's row is read back and returned.
func getOrCreatePlayerRating(tx *sqlx.Tx, playerID, variantID util.UUIDAsBlob) (PlayerRating, error) {
	ret, err := getPlayerRating(tx, playerID, variantID)
	if err == nil {
		return ret, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return PlayerRating{}, err
	}

	ret = NewPlayerRating(playerID, variantID)
	if err := ret.insert(tx); err != nil {
		if errors.Is(err, util.ErrConflict) {
			return getPlayerRating(tx, playerID, variantID)
		}

		return PlayerRating{}, err
	}

	return ret, nil
}

// applyRatingUpdate records one game outcome on a rating row.
// The counters and the peak are computed by the database in a single
// statement, reading the row first and writing values back would lose updates
// when two games of the same player settle concurrently.
func applyRatingUpdate(
	tx *sqlx.Tx,
	playerID, variantID util.UUIDAsBlob,
	newRating int,
	result GameResult,
) error {
	query := `
	UPDATE PlayerRating SET
		Rating = ?,
		PeakRating = MAX(PeakRating, ?),
		GamesPlayed = GamesPlayed + 1,
		Wins = Wins + (CASE WHEN ? = 1 THEN 1 ELSE 0 END),
		Losses = Losses + (CASE WHEN ? = -1 THEN 1 ELSE 0 END),
		Draws = Draws + (CASE WHEN ? = 0 THEN 1 ELSE 0 END),
		UpdatedAt = ?
	WHERE PlayerID = ? AND VariantID = ?`

	res, err := tx.Exec(
		query,
		newRating, newRating,
		result, result, result,
		util.TimeAsTimestamp(time.Now()),
		playerID, variantID,
	)
	if err != nil {
		return util.SQLError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected != 1 {
		return fmt.Errorf("expected to update 1 rating row, updated %d", affected)
	}

	return nil
}

func getPlayerRatingsForPlayer(tx *sqlx.Tx, playerID util.UUIDAsBlob) ([]PlayerRating, error) {
	var ret []PlayerRating
	if err := tx.Select(
		&ret,
		`SELECT * FROM PlayerRating WHERE PlayerID = ? ORDER BY Rating DESC`,
		playerID,
	); err != nil {
		return nil, err
	}

	return ret, nil
}
