package back

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Back holds the rating engine and its database, it is the only writer of
// PlayerRating and RatingHistory rows.
// There is no in-process locking: correctness under concurrent settlements
// relies on transactions, unique constraints, and single-statement arithmetic
// updates.
type Back struct {
	db *sqlx.DB
}

func New(sqlDriver string, sqlDSN string) (*Back, error) {
	// A broken tier table must never make it into a running process.
	if err := validateRankTiers(RankTiers); err != nil {
		return nil, fmt.Errorf("invalid rank tier table: %w", err)
	}

	// Why even bother converting names? A single greppable string across all
	// your source code is better than any odd conversion scheme you could ever
	// come up with.
	// HACK: This is global but putting this in init() makes test ugly.
	// As only the Back relies on the DB, this seems like an okay-ish place.
	sqlx.NameMapper = func(v string) string { return v }

	db, err := sqlx.Connect(sqlDriver, sqlDSN)
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer at a time, funnel every transaction
	// through one connection rather than let concurrent settlements trip on
	// SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	return &Back{
		db: db,
	}, nil
}

type transactionCallback func(*sqlx.Tx) error

func (b *Back) transaction(cb transactionCallback) error {
	tx, err := b.db.Beginx()
	if err != nil {
		return err
	}

	if err := cb(tx); err != nil {
		if err2 := tx.Rollback(); err2 != nil {
			return fmt.Errorf("rollback error: %s\noriginal error: %s", err2, err)
		}

		return err
	}

	return tx.Commit()
}
