package factory

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/passcode-go/internal/model"
	gamesvc "github.com/mcoot/passcode-go/internal/services/game"
	redisstorage "github.com/mcoot/passcode-go/internal/storage/redis"
	"github.com/mcoot/passcode-go/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.NoError(s.app.Close())
}

// Test: Complete game flow from creation to a win
func (s *IntegrationSuite) TestCompleteGameFlow() {
	s.app.MockIDs.QueueGameIDs("game_abc")
	s.app.MockIDs.QueuePlayerIDs("player_alice", "player_bob")
	gc := s.app.GameController

	// Step 1: Alice creates a game
	game, err := gc.CreateGame(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Equal(model.GameID("game_abc"), game.ID)
	s.Equal(model.PlayerID("player_alice"), game.Player1.ID)

	// Step 2: Bob joins
	game, err = gc.JoinGame(s.ctx, game.ID, "Bob")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player_bob"), game.Player2.ID)

	// Step 3: Both lock their numbers
	_, err = gc.LockNumber(s.ctx, game.ID, "player_alice", "1234")
	s.Require().NoError(err)
	game, err = gc.LockNumber(s.ctx, game.ID, "player_bob", "5678")
	s.Require().NoError(err)
	s.Equal(model.GameStatusInProgress, game.Status)
	s.Equal(model.PlayerID("player_alice"), game.CurrentTurn)

	// Step 4: Alternate guesses until Bob cracks Alice's number
	turns := []struct {
		player    model.PlayerID
		number    string
		digits    int
		positions int
	}{
		{"player_alice", "8765", 4, 0},
		{"player_bob", "4321", 4, 0},
		{"player_alice", "5600", 2, 2},
		{"player_bob", "1234", 4, 4},
	}
	var result *gamesvc.GuessResult
	for _, turn := range turns {
		r, err := gc.ProcessGuess(s.ctx, game.ID, turn.player, turn.number)
		s.Require().NoError(err)
		s.Equal(turn.digits, r.Guess.CorrectDigits, turn.number)
		s.Equal(turn.positions, r.Guess.CorrectPositions, turn.number)
		result = r
	}

	s.True(result.IsWinner)
	s.Equal(model.PlayerID("player_bob"), result.WinnerID)

	// Step 5: Final state is visible through storage
	stored, err := s.app.Storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(model.GameStatusCompleted, stored.Status)
	s.Equal(model.PlayerID("player_bob"), stored.WinnerID)
	s.Equal(4, stored.TurnCount)

	guesses, err := gc.GetGuesses(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Len(guesses, 4)

	// Step 6: Metrics saw the whole game
	expected := `
# HELP passcode_games_completed_total Games won by a player.
# TYPE passcode_games_completed_total counter
passcode_games_completed_total 1
# HELP passcode_guesses_total Guesses processed, by outcome.
# TYPE passcode_guesses_total counter
passcode_guesses_total{outcome="miss"} 3
passcode_guesses_total{outcome="win"} 1
`
	s.NoError(promtestutil.GatherAndCompare(s.app.Metrics.Registry(), strings.NewReader(expected),
		"passcode_games_completed_total", "passcode_guesses_total"))
}

func (s *IntegrationSuite) TestDeleteRemovesEverything() {
	gc := s.app.GameController
	game, err := gc.CreateGame(s.ctx, "Alice")
	s.Require().NoError(err)
	game, err = gc.JoinGame(s.ctx, game.ID, "Bob")
	s.Require().NoError(err)

	s.Require().NoError(gc.DeleteGame(s.ctx, game.ID))

	games, err := gc.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Empty(games)
	_, err = s.app.Storage.GetPlayer(s.ctx, game.Player2.ID)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func TestNewWithStorageTypes(t *testing.T) {
	ctx := context.Background()

	t.Run("default is memory", func(t *testing.T) {
		app, err := New(ctx, Config{})
		require.NoError(t, err)
		defer app.Close()
		assert.Nil(t, app.Metrics)

		_, err = app.GameController.CreateGame(ctx, "Alice")
		assert.NoError(t, err)
	})

	t.Run("redis", func(t *testing.T) {
		mini := miniredis.RunT(t)
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = "redis://" + mini.Addr()

		app, err := New(ctx, Config{StorageType: StorageTypeRedis, RedisConfig: &redisCfg, Logger: testutil.NopLogger()})
		require.NoError(t, err)
		defer app.Close()

		game, err := app.GameController.CreateGame(ctx, "Alice")
		require.NoError(t, err)
		assert.True(t, mini.Exists("passcode:game:"+string(game.ID)))
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "passcode.db")
		app, err := New(ctx, Config{StorageType: StorageTypeSQLite, SQLitePath: path, MetricsEnabled: true})
		require.NoError(t, err)
		defer app.Close()
		assert.NotNil(t, app.Metrics)

		game, err := app.GameController.CreateGame(ctx, "Alice")
		require.NoError(t, err)
		got, err := app.GameController.GetGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.Player1.Name)
	})

	t.Run("missing settings", func(t *testing.T) {
		for _, cfg := range []Config{
			{StorageType: StorageTypeRedis},
			{StorageType: StorageTypeSQLite},
			{StorageType: StorageTypePostgres},
			{StorageType: "mongo"},
		} {
			_, err := New(ctx, cfg)
			assert.Error(t, err, cfg.StorageType)
		}
	})
}
