package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/passcode-go/internal/model"
	"github.com/mcoot/passcode-go/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	path    string
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.Ctx = context.Background()
	s.path = filepath.Join(s.T().TempDir(), "passcode.db")

	store, err := Open(s.Ctx, s.path)
	s.Require().NoError(err)
	s.storage = store
	s.Store = store
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

// SQLite-specific tests

func (s *StorageSuite) TestOpenRequiresPath() {
	_, err := Open(s.Ctx, "  ")
	s.Error(err)
}

func (s *StorageSuite) TestReopenKeepsDataAndSkipsAppliedMigrations() {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	game := s.CreateGame("game_a", created)
	s.Require().NoError(s.storage.Close())

	reopened, err := Open(s.Ctx, s.path)
	s.Require().NoError(err)
	s.storage = reopened

	got, err := reopened.GetGame(s.Ctx, game.ID)
	s.Require().NoError(err)
	s.Equal("Alice", got.Player1.Name)

	var applied int
	s.Require().NoError(reopened.db.GetContext(s.Ctx, &applied, `SELECT COUNT(*) FROM `+migrationTable))
	s.Equal(1, applied)
}

func (s *StorageSuite) TestRejectedGuessRollsBackGame() {
	game := s.CreateGame("game_a", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	guess := &model.Guess{
		ID: "guess_1", GameID: game.ID, GuesserID: game.Player1.ID, TargetID: "x",
		GuessedNumber: "1234", TurnNumber: 1,
	}
	s.RecordGuess(game, guess)

	// A second guess for the same turn violates the unique index
	game.TurnCount = 2
	game.CurrentTurn = game.Player1.ID
	guess.ID = "guess_2"
	s.Error(s.storage.RecordGuess(s.Ctx, game, guess))

	got, err := s.storage.GetGame(s.Ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(1, got.TurnCount)
	s.Empty(got.CurrentTurn)
	guesses, err := s.storage.GetGuessesByGame(s.Ctx, game.ID)
	s.Require().NoError(err)
	s.Len(guesses, 1)
}

func (s *StorageSuite) TestExtractUp() {
	content := "-- +migrate Up\nCREATE TABLE a (x INT);\n-- +migrate Down\nDROP TABLE a;\n"
	s.Equal("\nCREATE TABLE a (x INT);\n", extractUp(content))
	s.Equal("CREATE TABLE b (y INT);", extractUp("CREATE TABLE b (y INT);"))
}
