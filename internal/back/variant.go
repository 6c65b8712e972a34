package back

import (
	"time"
	"varchess/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// A Variant is one of the playable games (chess, shogi, …), every rating is
// scoped to a single Variant.
type Variant struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	Name      string
	ShortCode string
}

func NewVariant(name string, shortCode string) Variant {
	return Variant{
		ID:        util.NewUUIDAsBlob(),
		CreatedAt: util.TimeAsTimestamp(time.Now()),
		Name:      name,
		ShortCode: shortCode,
	}
}

func (v *Variant) Insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Variant").SetMap(squirrel.Eq{
		"ID":        v.ID,
		"CreatedAt": v.CreatedAt,
		"Name":      v.Name,
		"ShortCode": v.ShortCode,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return util.SQLError(err)
	}

	return nil
}

func getVariantByShortCode(tx *sqlx.Tx, shortCode string) (Variant, error) {
	var ret Variant
	query := `SELECT * FROM Variant WHERE Variant.ShortCode = ? LIMIT 1`
	if err := tx.Get(&ret, query, shortCode); err != nil {
		return Variant{}, err
	}

	return ret, nil
}

func getVariants(tx *sqlx.Tx) ([]Variant, error) {
	var ret []Variant
	if err := tx.Select(&ret, `SELECT * FROM Variant ORDER BY Variant.Name ASC`); err != nil {
		return nil, err
	}

	return ret, nil
}
