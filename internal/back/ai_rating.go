package back

import (
	"database/sql"
	"errors"
	"time"
	"varchess/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// AiOpponentRating is the configured strength of one AI model in one variant,
// used as the opponent rating input when settling a human-vs-AI game.
// These rows are configuration: the rating engine only ever reads them.
type AiOpponentRating struct {
	ModelID   string
	VariantID util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	Rating    int
}

// aiModelDefaultRatings covers models that ship without a per-variant
// configuration row, anything else falls back to DefaultRating.
var aiModelDefaultRatings = map[string]int{ // nolint:gochecknoglobals
	"gpt-4o":        1500,
	"gpt-4o-mini":   1250,
	"claude-sonnet": 1500,
	"gemini-flash":  1300,
}

func NewAiOpponentRating(modelID string, variantID util.UUIDAsBlob, rating int) AiOpponentRating {
	return AiOpponentRating{
		ModelID:   modelID,
		VariantID: variantID,
		CreatedAt: util.TimeAsTimestamp(time.Now()),
		Rating:    rating,
	}
}

func (r *AiOpponentRating) Insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("AiOpponentRating").SetMap(squirrel.Eq{
		"ModelID":   r.ModelID,
		"VariantID": r.VariantID,
		"CreatedAt": r.CreatedAt,
		"Rating":    r.Rating,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return util.SQLError(err)
	}

	return nil
}

// getAiOpponentRating resolves the strength of an AI opponent with a two
// level fallback: configured row, then static per-model default, then
// DefaultRating.
func getAiOpponentRating(tx *sqlx.Tx, modelID string, variantID util.UUIDAsBlob) (int, error) {
	var ret AiOpponentRating
	query := `SELECT * FROM AiOpponentRating WHERE ModelID = ? AND VariantID = ? LIMIT 1`
	err := tx.Get(&ret, query, modelID, variantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if rating, ok := aiModelDefaultRatings[modelID]; ok {
				return rating, nil
			}

			return DefaultRating, nil
		}

		return 0, err
	}

	return ret.Rating, nil
}
