package back

import (
	"varchess/internal/util"

	"github.com/jmoiron/sqlx"
)

// PlayerRatingWithTier is a PlayerRating annotated with its display tier, the
// shape the UI layer consumes.
type PlayerRatingWithTier struct {
	PlayerRating
	VariantShortCode string
	Tier             RankTier `db:"-"`
}

// GetPlayerRatings returns every per-variant rating of a player, best rated
// first. Reads run in their own transaction and may trail a settlement that
// commits concurrently, which is fine for display purposes.
func (b *Back) GetPlayerRatings(playerID util.UUIDAsBlob) (ret []PlayerRatingWithTier, _ error) {
	return ret, b.transaction(func(tx *sqlx.Tx) error {
		if err := tx.Select(
			&ret,
			`SELECT PlayerRating.*, Variant.ShortCode AS VariantShortCode
			FROM PlayerRating
			INNER JOIN Variant ON Variant.ID = PlayerRating.VariantID
			WHERE PlayerRating.PlayerID = ?
			ORDER BY PlayerRating.Rating DESC`,
			playerID,
		); err != nil {
			return err
		}

		for k := range ret {
			ret[k].Tier = getRankTier(ret[k].Rating)
		}

		return nil
	})
}

// GetRatingHistory returns the chronological audit trail of a player,
// optionally restricted to one variant by its short code (empty means all).
func (b *Back) GetRatingHistory(playerID util.UUIDAsBlob, variantShortCode string) (ret []RatingHistory, _ error) {
	return ret, b.transaction(func(tx *sqlx.Tx) error {
		var variantID util.NullUUIDAsBlob
		if variantShortCode != "" {
			variant, err := getVariantByShortCode(tx, variantShortCode)
			if err != nil {
				return err
			}
			variantID = util.NewNullUUIDAsBlob(variant.ID)
		}

		var err error
		ret, err = getRatingHistoryForPlayer(tx, playerID, variantID)
		return err
	})
}

func (b *Back) GetVariants() (ret []Variant, _ error) {
	return ret, b.transaction(func(tx *sqlx.Tx) (err error) {
		ret, err = getVariants(tx)
		return err
	})
}

func (b *Back) GetPlayer(id util.UUIDAsBlob) (player Player, _ error) {
	return player, b.transaction(func(tx *sqlx.Tx) (err error) {
		player, err = getPlayerByID(tx, id)
		return err
	})
}
