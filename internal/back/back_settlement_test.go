package back // nolint:testpackage

import (
	"database/sql"
	"errors"
	"reflect"
	"sync"
	"testing"
	"varchess/internal/util"

	"github.com/jmoiron/sqlx"
)

func TestSettleSinglePlayerCreatesRatingLazily(t *testing.T) {
	back := createFixturedTestBack(t)
	anand := testPlayer(t, back, "Anand")
	chess := testVariant(t, back, "chess")

	// claude-sonnet has no configuration row, its static default is 1500.
	history, err := back.SettleSinglePlayer(
		anand.ID, chess.ID, util.NewUUIDAsBlob(),
		GameResultWin, AIOpponent("claude-sonnet"),
	)
	if err != nil {
		t.Fatal(err)
	}

	expectedNew, expectedChange := calculateNewRating(DefaultRating, 1500, GameResultWin, 0)
	if history.OldRating != DefaultRating {
		t.Errorf("OldRating = %d, expected %d", history.OldRating, DefaultRating)
	}
	if history.NewRating != expectedNew || history.RatingChange != expectedChange {
		t.Errorf("got %d (%+d), expected %d (%+d)",
			history.NewRating, history.RatingChange, expectedNew, expectedChange)
	}
	if history.OpponentRating != 1500 {
		t.Errorf("OpponentRating = %d, expected 1500", history.OpponentRating)
	}

	rating := testPlayerRating(t, back, anand, chess)
	if rating.Rating != expectedNew || rating.PeakRating != expectedNew {
		t.Errorf("rating/peak = %d/%d, expected %d/%d",
			rating.Rating, rating.PeakRating, expectedNew, expectedNew)
	}
	if rating.GamesPlayed != 1 || rating.Wins != 1 || rating.Losses != 0 || rating.Draws != 0 {
		t.Errorf("counters = %d/%d/%d/%d, expected 1/1/0/0",
			rating.GamesPlayed, rating.Wins, rating.Losses, rating.Draws)
	}
}

func TestSettleSinglePlayerUsesConfiguredAiRating(t *testing.T) {
	back := createFixturedTestBack(t)
	anand := testPlayer(t, back, "Anand")
	chess := testVariant(t, back, "chess")

	history, err := back.SettleSinglePlayer(
		anand.ID, chess.ID, util.NewUUIDAsBlob(),
		GameResultLoss, AIOpponent("gpt-4o"),
	)
	if err != nil {
		t.Fatal(err)
	}

	// The fixture row (1550) must win over the static default (1500).
	if history.OpponentRating != 1550 {
		t.Errorf("OpponentRating = %d, expected 1550", history.OpponentRating)
	}

	rating := testPlayerRating(t, back, anand, chess)
	if rating.PeakRating != DefaultRating {
		t.Errorf("PeakRating = %d, a loss must not move the peak", rating.PeakRating)
	}
	if rating.Losses != 1 {
		t.Errorf("Losses = %d, expected 1", rating.Losses)
	}
}

func TestSettleSinglePlayerUnknownModelFallsBackToDefault(t *testing.T) {
	back := createFixturedTestBack(t)
	anand := testPlayer(t, back, "Anand")
	shogi := testVariant(t, back, "shogi")

	history, err := back.SettleSinglePlayer(
		anand.ID, shogi.ID, util.NewUUIDAsBlob(),
		GameResultDraw, AIOpponent("some-experimental-model"),
	)
	if err != nil {
		t.Fatal(err)
	}

	if history.OpponentRating != DefaultRating {
		t.Errorf("OpponentRating = %d, expected %d", history.OpponentRating, DefaultRating)
	}
	if history.RatingChange != 0 {
		t.Errorf("RatingChange = %d, a draw between equals must not move anything", history.RatingChange)
	}
}

func TestSettleSinglePlayerHumanOpponent(t *testing.T) {
	back := createFixturedTestBack(t)
	anand := testPlayer(t, back, "Anand")
	carlsen := testPlayer(t, back, "Carlsen")
	chess := testVariant(t, back, "chess")

	history, err := back.SettleSinglePlayer(
		anand.ID, chess.ID, util.NewUUIDAsBlob(),
		GameResultWin, HumanOpponent(carlsen.ID),
	)
	if err != nil {
		t.Fatal(err)
	}

	if history.OpponentRating != DefaultRating {
		t.Errorf("OpponentRating = %d, expected %d", history.OpponentRating, DefaultRating)
	}

	// The opponent's row is created as a side effect but this path only ever
	// settles the acting player.
	opponentRating := testPlayerRating(t, back, carlsen, chess)
	if opponentRating.GamesPlayed != 0 || opponentRating.Rating != DefaultRating {
		t.Errorf("opponent rating was touched: %+v", opponentRating)
	}
}

func TestSettleSinglePlayerDuplicateFails(t *testing.T) {
	back := createFixturedTestBack(t)
	anand := testPlayer(t, back, "Anand")
	chess := testVariant(t, back, "chess")
	playHistoryID := util.NewUUIDAsBlob()

	if _, err := back.SettleSinglePlayer(
		anand.ID, chess.ID, playHistoryID, GameResultWin, AIOpponent("gpt-4o"),
	); err != nil {
		t.Fatal(err)
	}

	_, err := back.SettleSinglePlayer(
		anand.ID, chess.ID, playHistoryID, GameResultWin, AIOpponent("gpt-4o"),
	)
	if !errors.Is(err, ErrDuplicateSettlement) {
		t.Fatalf("expected ErrDuplicateSettlement, got %v", err)
	}

	// The failed settlement must have rolled back in full.
	rating := testPlayerRating(t, back, anand, chess)
	if rating.GamesPlayed != 1 || rating.Wins != 1 {
		t.Errorf("GamesPlayed/Wins = %d/%d, expected 1/1", rating.GamesPlayed, rating.Wins)
	}
}

func TestSettleSinglePlayerValidation(t *testing.T) {
	back := createFixturedTestBack(t)
	anand := testPlayer(t, back, "Anand")
	chess := testVariant(t, back, "chess")

	cases := []struct {
		name     string
		result   GameResult
		opponent Opponent
	}{
		{"invalid result", GameResult(7), AIOpponent("gpt-4o")},
		{"self-play", GameResultWin, HumanOpponent(anand.ID)},
		{"no opponent", GameResultWin, Opponent{}},
	}

	for _, v := range cases {
		_, err := back.SettleSinglePlayer(
			anand.ID, chess.ID, util.NewUUIDAsBlob(), v.result, v.opponent,
		)

		var public util.ErrPublic
		if !errors.As(err, &public) {
			t.Errorf("%s: expected a public validation error, got %v", v.name, err)
		}
	}

	histories, err := back.GetRatingHistory(anand.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(histories) != 0 {
		t.Errorf("rejected settlements must not write history, got %d rows", len(histories))
	}
}

func TestSettlePvP(t *testing.T) {
	back := createFixturedTestBack(t)
	anand := testPlayer(t, back, "Anand")
	carlsen := testPlayer(t, back, "Carlsen")
	shogi := testVariant(t, back, "shogi")

	history1, history2, err := back.SettlePvP(
		anand.ID, carlsen.ID, shogi.ID, util.NewUUIDAsBlob(), GameResultWin,
	)
	if err != nil {
		t.Fatal(err)
	}

	if history1.NewRating != 1220 || history1.RatingChange != 20 {
		t.Errorf("winner got %d (%+d), expected 1220 (+20)", history1.NewRating, history1.RatingChange)
	}
	if history2.NewRating != 1180 || history2.RatingChange != -20 {
		t.Errorf("loser got %d (%+d), expected 1180 (-20)", history2.NewRating, history2.RatingChange)
	}
	if history1.GameResult != GameResultWin || history2.GameResult != GameResultLoss {
		t.Errorf("results = %s/%s, expected win/loss", history1.GameResult, history2.GameResult)
	}

	winner := testPlayerRating(t, back, anand, shogi)
	loser := testPlayerRating(t, back, carlsen, shogi)
	if winner.Rating != 1220 || winner.Wins != 1 || winner.PeakRating != 1220 {
		t.Errorf("unexpected winner rating row: %+v", winner)
	}
	if loser.Rating != 1180 || loser.Losses != 1 || loser.PeakRating != DefaultRating {
		t.Errorf("unexpected loser rating row: %+v", loser)
	}
}

func TestSettlePvPDraw(t *testing.T) {
	back := createFixturedTestBack(t)
	ding := testPlayer(t, back, "Ding")
	euwe := testPlayer(t, back, "Euwe")
	xiangqi := testVariant(t, back, "xiangqi")

	history1, history2, err := back.SettlePvP(
		ding.ID, euwe.ID, xiangqi.ID, util.NewUUIDAsBlob(), GameResultDraw,
	)
	if err != nil {
		t.Fatal(err)
	}

	if history1.GameResult != GameResultDraw || history2.GameResult != GameResultDraw {
		t.Error("a draw must be a draw on both sides")
	}
	if history1.RatingChange != 0 || history2.RatingChange != 0 {
		t.Errorf("changes = %+d/%+d, expected 0/0", history1.RatingChange, history2.RatingChange)
	}

	rating := testPlayerRating(t, back, ding, xiangqi)
	if rating.Draws != 1 || rating.GamesPlayed != 1 {
		t.Errorf("Draws/GamesPlayed = %d/%d, expected 1/1", rating.Draws, rating.GamesPlayed)
	}
}

func TestSettlePvPIsIdempotent(t *testing.T) {
	back := createFixturedTestBack(t)
	anand := testPlayer(t, back, "Anand")
	carlsen := testPlayer(t, back, "Carlsen")
	chess := testVariant(t, back, "chess")
	playHistoryID := util.NewUUIDAsBlob()

	first1, first2, err := back.SettlePvP(
		anand.ID, carlsen.ID, chess.ID, playHistoryID, GameResultWin,
	)
	if err != nil {
		t.Fatal(err)
	}

	second1, second2, err := back.SettlePvP(
		anand.ID, carlsen.ID, chess.ID, playHistoryID, GameResultWin,
	)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first1, second1) || !reflect.DeepEqual(first2, second2) {
		t.Errorf("retried settlement returned different history:\n%+v\n%+v\n%+v\n%+v",
			first1, second1, first2, second2)
	}

	// The math must have run once, not twice.
	rating := testPlayerRating(t, back, anand, chess)
	if rating.GamesPlayed != 1 || rating.Rating != 1220 {
		t.Errorf("GamesPlayed/Rating = %d/%d, expected 1/1220", rating.GamesPlayed, rating.Rating)
	}
}

func TestSettlePvPRejectsSelfPlay(t *testing.T) {
	back := createFixturedTestBack(t)
	anand := testPlayer(t, back, "Anand")
	chess := testVariant(t, back, "chess")

	_, _, err := back.SettlePvP(
		anand.ID, anand.ID, chess.ID, util.NewUUIDAsBlob(), GameResultWin,
	)

	var public util.ErrPublic
	if !errors.As(err, &public) {
		t.Fatalf("expected a public validation error, got %v", err)
	}

	if err := back.transaction(func(tx *sqlx.Tx) error {
		_, err := getPlayerRating(tx, anand.ID, chess.ID)
		return err
	}); !errors.Is(err, sql.ErrNoRows) {
		t.Error("self-play must be rejected before touching storage")
	}
}

func TestSettlePvPRejectsInvalidResult(t *testing.T) {
	back := createFixturedTestBack(t)
	anand := testPlayer(t, back, "Anand")
	carlsen := testPlayer(t, back, "Carlsen")
	chess := testVariant(t, back, "chess")

	_, _, err := back.SettlePvP(
		anand.ID, carlsen.ID, chess.ID, util.NewUUIDAsBlob(), GameResult(2),
	)

	var public util.ErrPublic
	if !errors.As(err, &public) {
		t.Fatalf("expected a public validation error, got %v", err)
	}
}

func TestSettlePvPConcurrentDuplicates(t *testing.T) {
	back := createFixturedTestBack(t)
	anand := testPlayer(t, back, "Anand")
	fischer := testPlayer(t, back, "Fischer")
	jungle := testVariant(t, back, "jungle")
	playHistoryID := util.NewUUIDAsBlob()

	const callers = 8

	var wg sync.WaitGroup
	errs := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := back.SettlePvP(
				anand.ID, fischer.ID, jungle.ID, playHistoryID, GameResultWin,
			)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}

	// Exactly one caller may have run the math, whoever it was.
	rating := testPlayerRating(t, back, anand, jungle)
	if rating.GamesPlayed != 1 || rating.Rating != 1220 {
		t.Errorf("GamesPlayed/Rating = %d/%d, expected 1/1220", rating.GamesPlayed, rating.Rating)
	}

	histories, err := back.GetRatingHistory(anand.ID, "jungle")
	if err != nil {
		t.Fatal(err)
	}
	if len(histories) != 1 {
		t.Fatalf("expected a single history row, got %d", len(histories))
	}
	if histories[0].isPlaceholder() {
		t.Error("the surviving history row must be finalized")
	}
}

func TestConcurrentFirstGamesCreateOneRatingRow(t *testing.T) {
	back := createFixturedTestBack(t)
	botvinnik := testPlayer(t, back, "Botvinnik")
	chess := testVariant(t, back, "chess")

	const games = 4

	var wg sync.WaitGroup
	errs := make(chan error, games)

	for i := 0; i < games; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := back.SettleSinglePlayer(
				botvinnik.ID, chess.ID, util.NewUUIDAsBlob(),
				GameResultWin, AIOpponent("gpt-4o"),
			)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}

	rating := testPlayerRating(t, back, botvinnik, chess)
	if rating.GamesPlayed != games || rating.Wins != games {
		t.Errorf("GamesPlayed/Wins = %d/%d, expected %d/%d",
			rating.GamesPlayed, rating.Wins, games, games)
	}
	if rating.GamesPlayed != rating.Wins+rating.Losses+rating.Draws {
		t.Errorf("counter invariant broken: %+v", rating)
	}
}
