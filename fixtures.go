package main

import (
	"context"
	"varchess/internal/back"
	"varchess/internal/config"
	"varchess/internal/util"

	"github.com/jmoiron/sqlx"
)

func loadFixtures() error {
	conf, err := config.NewFromUserConfigDir()
	if err != nil {
		return err
	}

	db, err := sqlx.Connect("sqlite3", conf.DatabasePath)
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(1)

	variants := []back.Variant{
		back.NewVariant("Chess", "chess"),
		back.NewVariant("Shogi", "shogi"),
		back.NewVariant("Xiangqi", "xiangqi"),
		back.NewVariant("Jungle", "jungle"),
	}

	players := []back.Player{
		back.NewPlayer("alice"),
		back.NewPlayer("bob"),
	}

	return util.Transaction(context.Background(), db, func(tx *sqlx.Tx) error {
		for _, v := range variants {
			if err := v.Insert(tx); err != nil {
				return err
			}

			// The flagship model gets a per-variant configured strength, the
			// others rely on their static defaults.
			rating := back.NewAiOpponentRating("gpt-4o", v.ID, 1550)
			if err := rating.Insert(tx); err != nil {
				return err
			}
		}

		for _, p := range players {
			if err := p.Insert(tx); err != nil {
				return err
			}
		}

		return nil
	})
}
