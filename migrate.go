package main

import (
	"log"
	"varchess/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func migrateDatabase() error {
	conf, err := config.NewFromUserConfigDir()
	if err != nil {
		return err
	}

	migrator, err := migrate.New(
		"file://resources/migrations",
		"sqlite3://"+conf.DatabasePath,
	)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Print("info: database is already up to date")
			return nil
		}

		return err
	}

	log.Print("info: database migrated")

	return nil
}
