package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mcoot/passcode-go/internal/model"
	"github.com/mcoot/passcode-go/internal/services/scoring"
	"github.com/mcoot/passcode-go/internal/storage/memory"
	"github.com/mcoot/passcode-go/internal/testutil"
)

var errStoreUnavailable = errors.New("store unavailable")

// failingStorage wraps the memory store and, once armed, lets a number of
// writes through before failing the next one
type failingStorage struct {
	*memory.Storage

	mu    sync.Mutex
	armed bool
	skip  int
}

func (f *failingStorage) failWriteAfter(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = true
	f.skip = n
}

func (f *failingStorage) disarm() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = false
}

func (f *failingStorage) write() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.armed {
		return nil
	}
	if f.skip > 0 {
		f.skip--
		return nil
	}
	f.armed = false
	return errStoreUnavailable
}

func (f *failingStorage) CreateGame(ctx context.Context, game *model.Game) error {
	if err := f.write(); err != nil {
		return err
	}
	return f.Storage.CreateGame(ctx, game)
}

func (f *failingStorage) UpdateGame(ctx context.Context, game *model.Game) error {
	if err := f.write(); err != nil {
		return err
	}
	return f.Storage.UpdateGame(ctx, game)
}

func (f *failingStorage) RecordGuess(ctx context.Context, game *model.Game, guess *model.Guess) error {
	if err := f.write(); err != nil {
		return err
	}
	return f.Storage.RecordGuess(ctx, game, guess)
}

func (s *ControllerSuite) useFailingStorage() *failingStorage {
	store := &failingStorage{Storage: s.storage}
	s.controller = NewController(store, scoring.New(), s.clock, s.ids, s.events, testutil.NopLogger())
	return store
}

// Each operation persists in a single write, so a failure on the first or
// any later write leaves the previous state intact and a retry succeeds.

func (s *ControllerSuite) TestFailedCreateLeavesNothingBehind() {
	store := s.useFailingStorage()
	s.ids.QueueGameIDs("game_lost")
	s.ids.QueuePlayerIDs("player_lost")

	store.failWriteAfter(0)
	_, err := s.controller.CreateGame(s.ctx, "Alice")
	s.Require().ErrorIs(err, errStoreUnavailable)

	_, err = s.storage.GetGame(s.ctx, "game_lost")
	s.ErrorIs(err, model.ErrGameNotFound)
	_, err = s.storage.GetPlayer(s.ctx, "player_lost")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.Empty(s.events.types())

	game := s.createGame("Alice")
	s.NotNil(game.Player1)
}

func (s *ControllerSuite) TestFailedJoinLeavesNoOrphanPlayer() {
	store := s.useFailingStorage()

	for skip := 0; skip <= 1; skip++ {
		game := s.createGame("Alice")
		attempt := model.PlayerID(fmt.Sprintf("player_attempt_%d", skip))
		s.ids.QueuePlayerIDs(attempt)

		store.failWriteAfter(skip)
		_, err := s.controller.JoinGame(s.ctx, game.ID, "Bob")
		store.disarm()

		if skip == 0 {
			s.Require().ErrorIs(err, errStoreUnavailable)

			_, err = s.storage.GetPlayer(s.ctx, attempt)
			s.ErrorIs(err, model.ErrPlayerNotFound)
			stored, err := s.storage.GetGame(s.ctx, game.ID)
			s.Require().NoError(err)
			s.Nil(stored.Player2)

			s.joinGame(game.ID, "Bob")
		} else {
			s.Require().NoError(err)
		}

		stored, err := s.storage.GetGame(s.ctx, game.ID)
		s.Require().NoError(err)
		s.Require().NotNil(stored.Player2)
		s.Equal("Bob", stored.Player2.Name)
	}
}

func (s *ControllerSuite) TestFailedLockLeavesPlayerUnready() {
	store := s.useFailingStorage()
	game := s.createGame("Alice")
	game = s.joinGame(game.ID, "Bob")
	alice, bob := game.Player1.ID, game.Player2.ID
	_, err := s.controller.LockNumber(s.ctx, game.ID, alice, "1234")
	s.Require().NoError(err)

	store.failWriteAfter(0)
	_, err = s.controller.LockNumber(s.ctx, game.ID, bob, "5678")
	store.disarm()
	s.Require().ErrorIs(err, errStoreUnavailable)

	stored, err := s.storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.False(stored.Player2.IsReady)
	s.Empty(stored.Player2.SecretNumber)
	s.Equal(model.GameStatusWaiting, stored.Status)

	// The retry is not treated as a second lock
	started, err := s.controller.LockNumber(s.ctx, game.ID, bob, "5678")
	s.Require().NoError(err)
	s.Equal(model.GameStatusInProgress, started.Status)
	s.Equal(alice, started.CurrentTurn)
}

func (s *ControllerSuite) TestFailedGuessIsLogged() {
	store := &failingStorage{Storage: s.storage}
	logger, logs := testutil.CaptureLogger()
	s.controller = NewController(store, scoring.New(), s.clock, s.ids, s.events, logger)
	game, alice, _ := s.startGame()

	store.failWriteAfter(0)
	_, err := s.controller.ProcessGuess(s.ctx, game.ID, alice, "0000")
	s.Require().ErrorIs(err, errStoreUnavailable)

	entry := logs.Find(s.T(), "failed to record guess")
	s.Require().NotNil(entry)
	s.Equal("ERROR", entry["level"])
	s.Equal(string(game.ID), entry["game_id"])
	s.Equal(string(alice), entry["player_id"])
	s.Nil(logs.Find(s.T(), "guess processed"))
}

func (s *ControllerSuite) TestFailedGuessKeepsTurnCountInStep() {
	store := s.useFailingStorage()

	for skip := 0; skip <= 1; skip++ {
		game, alice, bob := s.startGame()

		store.failWriteAfter(skip)
		_, err := s.controller.ProcessGuess(s.ctx, game.ID, alice, "0000")
		store.disarm()

		if skip == 0 {
			s.Require().ErrorIs(err, errStoreUnavailable)

			stored, err := s.storage.GetGame(s.ctx, game.ID)
			s.Require().NoError(err)
			s.Equal(0, stored.TurnCount)
			s.Equal(alice, stored.CurrentTurn)

			s.guess(game.ID, alice, "0000")
		} else {
			s.Require().NoError(err)
		}

		stored, err := s.storage.GetGame(s.ctx, game.ID)
		s.Require().NoError(err)
		guesses, err := s.storage.GetGuessesByGame(s.ctx, game.ID)
		s.Require().NoError(err)

		s.Equal(1, stored.TurnCount)
		s.Len(guesses, stored.TurnCount)
		s.Equal(1, guesses[0].TurnNumber)
		s.Equal(bob, stored.CurrentTurn)
	}
}

func (s *ControllerSuite) TestListingDuringCreatesAlwaysSeesCreator() {
	const creates = 500

	done := make(chan struct{})
	missing := make(chan int, 1)
	go func() {
		count := 0
		defer func() { missing <- count }()
		for {
			select {
			case <-done:
				return
			default:
			}
			games, err := s.controller.ListGames(s.ctx)
			if err != nil {
				continue
			}
			for _, g := range games {
				if g.Player1 == nil {
					count++
				}
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < creates; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.controller.CreateGame(s.ctx, "Alice")
			s.NoError(err)
		}()
	}
	wg.Wait()
	close(done)

	s.Equal(0, <-missing)

	games, err := s.controller.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Len(games, creates)
}
