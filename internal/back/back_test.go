package back // nolint:testpackage

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

func createFixturedTestBack(t *testing.T) *Back {
	t.Helper()

	f, err := ioutil.TempFile("", "*.db")
	if err != nil {
		t.Fatal(err)
	}
	path := f.Name()
	f.Close()
	t.Cleanup(func() {
		os.Remove(path)
	})

	migrator, err := migrate.New(
		"file://../../resources/migrations",
		"sqlite3://"+path,
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := migrator.Up(); err != nil {
		t.Fatal(err)
	}
	migrator.Close()

	back, err := New("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}

	if err := back.transaction(fixtures); err != nil {
		t.Fatal(err)
	}

	return back
}

func fixtures(tx *sqlx.Tx) error {
	variants := []Variant{
		NewVariant("Chess", "chess"),
		NewVariant("Shogi", "shogi"),
		NewVariant("Xiangqi", "xiangqi"),
		NewVariant("Jungle", "jungle"),
	}
	playerNames := []string{
		"Anand", "Botvinnik", "Carlsen", "Ding", "Euwe", "Fischer",
	}

	for _, v := range variants {
		if err := v.Insert(tx); err != nil {
			return err
		}
	}

	for _, name := range playerNames {
		player := NewPlayer(name)
		if err := player.Insert(tx); err != nil {
			return err
		}
	}

	chess, err := getVariantByShortCode(tx, "chess")
	if err != nil {
		return err
	}

	configured := NewAiOpponentRating("gpt-4o", chess.ID, 1550)

	return configured.Insert(tx)
}

func testPlayer(t *testing.T, back *Back, name string) (player Player) {
	t.Helper()

	if err := back.transaction(func(tx *sqlx.Tx) (err error) {
		player, err = getPlayerByName(tx, name)
		return err
	}); err != nil {
		t.Fatal(err)
	}

	return player
}

func testVariant(t *testing.T, back *Back, shortCode string) (variant Variant) {
	t.Helper()

	if err := back.transaction(func(tx *sqlx.Tx) (err error) {
		variant, err = getVariantByShortCode(tx, shortCode)
		return err
	}); err != nil {
		t.Fatal(err)
	}

	return variant
}

func testPlayerRating(t *testing.T, back *Back, player Player, variant Variant) (rating PlayerRating) {
	t.Helper()

	if err := back.transaction(func(tx *sqlx.Tx) (err error) {
		rating, err = getPlayerRating(tx, player.ID, variant.ID)
		return err
	}); err != nil {
		t.Fatal(err)
	}

	return rating
}
