package back

import (
	"errors"
	"fmt"
	"log"
	"time"
	"varchess/internal/util"

	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// ErrDuplicateSettlement is returned by SettleSinglePlayer when the given
// play has already been settled, see the contract on that method.
var ErrDuplicateSettlement = errors.New("this game has already been settled")

// An Opponent is the other side of a single-player game: either another
// human or an AI model, never both.
type Opponent struct {
	PlayerID util.NullUUIDAsBlob
	ModelID  null.String
}

func HumanOpponent(playerID util.UUIDAsBlob) Opponent {
	return Opponent{PlayerID: util.NewNullUUIDAsBlob(playerID)}
}

func AIOpponent(modelID string) Opponent {
	return Opponent{ModelID: null.StringFrom(modelID)}
}

func (o Opponent) validate() error {
	if o.PlayerID.Valid == o.ModelID.Valid {
		return util.ErrPublic("an opponent must be either a player or an AI model")
	}

	return nil
}

func (o Opponent) rating(tx *sqlx.Tx, variantID util.UUIDAsBlob) (int, error) {
	if o.ModelID.Valid {
		return getAiOpponentRating(tx, o.ModelID.String, variantID)
	}

	rating, err := getOrCreatePlayerRating(tx, o.PlayerID.UUID, variantID)
	if err != nil {
		return 0, err
	}

	return rating.Rating, nil
}

// SettleSinglePlayer converts one finished game against an AI model (or a
// human whose own rating is settled elsewhere) into a rating update and its
// audit row, atomically.
//
// This call is NOT idempotent: a second call with the same playHistoryID
// returns ErrDuplicateSettlement and the caller must not retry a call that
// may already have committed. Games whose settlement must be retryable go
// through SettlePvP.
func (b *Back) SettleSinglePlayer(
	playerID, variantID, playHistoryID util.UUIDAsBlob,
	result GameResult,
	opponent Opponent,
) (history RatingHistory, _ error) {
	if !result.IsValid() {
		return RatingHistory{}, util.ErrPublic(fmt.Sprintf("invalid game result %d", result))
	}
	if err := opponent.validate(); err != nil {
		return RatingHistory{}, err
	}
	if opponent.PlayerID.Valid && opponent.PlayerID.UUID == playerID {
		return RatingHistory{}, util.ErrPublic("a player cannot play against themselves")
	}

	return history, b.transaction(func(tx *sqlx.Tx) error {
		opponentRating, err := opponent.rating(tx, variantID)
		if err != nil {
			return fmt.Errorf("unable to resolve opponent rating: %w", err)
		}

		rating, err := getOrCreatePlayerRating(tx, playerID, variantID)
		if err != nil {
			return fmt.Errorf("unable to fetch player rating: %w", err)
		}

		// The K-factor must reflect the experience _before_ this game.
		newRating, change := calculateNewRating(
			rating.Rating, opponentRating, result, rating.GamesPlayed,
		)

		if err := applyRatingUpdate(tx, playerID, variantID, newRating, result); err != nil {
			return fmt.Errorf("unable to apply rating update: %w", err)
		}

		history = RatingHistory{
			PlayerID:      playerID,
			PlayHistoryID: playHistoryID,
			VariantID:     variantID,
			CreatedAt:     util.TimeAsTimestamp(time.Now()),

			OldRating:      rating.Rating,
			NewRating:      newRating,
			RatingChange:   change,
			OpponentRating: opponentRating,
			GameResult:     result,
		}

		if err := history.insert(tx); err != nil {
			if errors.Is(err, util.ErrConflict) {
				return ErrDuplicateSettlement
			}

			return fmt.Errorf("unable to insert rating history: %w", err)
		}

		return nil
	})
}

// SettlePvP converts one finished player-vs-player game into two rating
// updates and their audit rows, atomically. player1Result is the outcome as
// seen by player1, player2 gets the opposite.
//
// SettlePvP is idempotent and race-safe for a given playHistoryID: both rows
// of the audit trail are reserved with placeholder values first, and only the
// caller that owns both reservations runs the rating math. Every other
// concurrent or later call observes the already settled rows and returns
// them unchanged.
func (b *Back) SettlePvP(
	player1ID, player2ID, variantID, playHistoryID util.UUIDAsBlob,
	player1Result GameResult,
) (history1, history2 RatingHistory, _ error) {
	if player1ID == player2ID {
		return RatingHistory{}, RatingHistory{}, util.ErrPublic("a player cannot play against themselves")
	}
	if !player1Result.IsValid() {
		return RatingHistory{}, RatingHistory{}, util.ErrPublic(fmt.Sprintf("invalid game result %d", player1Result))
	}

	player2Result := player1Result.opposite()

	return history1, history2, b.transaction(func(tx *sqlx.Tx) (err error) {
		if err := insertRatingHistoryPlaceholder(tx, player1ID, playHistoryID, variantID, player1Result); err != nil {
			return fmt.Errorf("unable to reserve history slot: %w", err)
		}
		if err := insertRatingHistoryPlaceholder(tx, player2ID, playHistoryID, variantID, player2Result); err != nil {
			return fmt.Errorf("unable to reserve history slot: %w", err)
		}

		history1, err = getRatingHistoryByKey(tx, player1ID, playHistoryID)
		if err != nil {
			return err
		}
		history2, err = getRatingHistoryByKey(tx, player2ID, playHistoryID)
		if err != nil {
			return err
		}

		switch {
		case !history1.isPlaceholder() && !history2.isPlaceholder():
			// Retried or concurrent duplicate call, the math already ran.
			log.Printf("debug: play %s already settled, returning recorded history", playHistoryID)
			return nil
		case history1.isPlaceholder() && history2.isPlaceholder():
			return b.settlePvPReservations(tx, &history1, &history2, variantID)
		default:
			// One row settled without the other should be impossible, both
			// are written in the same transaction.
			return fmt.Errorf(
				"inconsistent rating history state for play %s (players %s, %s)",
				playHistoryID, player1ID, player2ID,
			)
		}
	})
}

// settlePvPReservations runs the rating math for both sides of a game and
// turns their placeholder rows into the final audit records.
func (b *Back) settlePvPReservations(
	tx *sqlx.Tx,
	history1, history2 *RatingHistory,
	variantID util.UUIDAsBlob,
) error {
	rating1, err := getOrCreatePlayerRating(tx, history1.PlayerID, variantID)
	if err != nil {
		return fmt.Errorf("unable to fetch player rating: %w", err)
	}
	rating2, err := getOrCreatePlayerRating(tx, history2.PlayerID, variantID)
	if err != nil {
		return fmt.Errorf("unable to fetch player rating: %w", err)
	}

	// Both sides are computed from the pre-update state of the other.
	newRating1, change1 := calculateNewRating(
		rating1.Rating, rating2.Rating, history1.GameResult, rating1.GamesPlayed,
	)
	newRating2, change2 := calculateNewRating(
		rating2.Rating, rating1.Rating, history2.GameResult, rating2.GamesPlayed,
	)

	if err := applyRatingUpdate(tx, rating1.PlayerID, variantID, newRating1, history1.GameResult); err != nil {
		return fmt.Errorf("unable to apply rating update: %w", err)
	}
	if err := applyRatingUpdate(tx, rating2.PlayerID, variantID, newRating2, history2.GameResult); err != nil {
		return fmt.Errorf("unable to apply rating update: %w", err)
	}

	history1.OldRating, history1.NewRating = rating1.Rating, newRating1
	history1.RatingChange, history1.OpponentRating = change1, rating2.Rating

	history2.OldRating, history2.NewRating = rating2.Rating, newRating2
	history2.RatingChange, history2.OpponentRating = change2, rating1.Rating

	if err := history1.finalize(tx); err != nil {
		return fmt.Errorf("unable to finalize rating history: %w", err)
	}
	if err := history2.finalize(tx); err != nil {
		return fmt.Errorf("unable to finalize rating history: %w", err)
	}

	return nil
}
