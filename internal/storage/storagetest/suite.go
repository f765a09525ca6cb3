// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/passcode-go/internal/model"
	"github.com/mcoot/passcode-go/internal/storage"
)

// Suite runs storage conformance tests. Backends embed it and assign Store
// in their SetupTest.
type Suite struct {
	suite.Suite
	Store storage.Storage
	Ctx   context.Context
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// CreateGame stores a waiting game with a fresh creator
func (s *Suite) CreateGame(id model.GameID, createdAt time.Time) *model.Game {
	player := &model.Player{
		ID:        model.PlayerID(fmt.Sprintf("%s_p1", id)),
		GameID:    id,
		Name:      "Alice",
		CreatedAt: createdAt,
	}
	game := &model.Game{
		ID:        id,
		Status:    model.GameStatusWaiting,
		Player1:   player,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	s.Require().NoError(s.Store.CreateGame(s.ctx(), game))
	return game
}

// JoinGame adds a second player to a stored game
func (s *Suite) JoinGame(game *model.Game) *model.Player {
	player := &model.Player{
		ID:        model.PlayerID(fmt.Sprintf("%s_p2", game.ID)),
		GameID:    game.ID,
		Name:      "Bob",
		CreatedAt: game.CreatedAt,
	}
	game.Player2 = player
	s.Require().NoError(s.Store.UpdateGame(s.ctx(), game))
	return player
}

// RecordGuess stores a guess and advances the game's turn count to match
func (s *Suite) RecordGuess(game *model.Game, guess *model.Guess) {
	game.TurnCount = guess.TurnNumber
	game.UpdatedAt = guess.CreatedAt
	s.Require().NoError(s.Store.RecordGuess(s.ctx(), game, guess))
}

func (s *Suite) ctx() context.Context {
	if s.Ctx == nil {
		return context.Background()
	}
	return s.Ctx
}

// Game tests

func (s *Suite) TestCreateAndGetGame() {
	created := s.CreateGame("game_a", baseTime)

	got, err := s.Store.GetGame(s.ctx(), "game_a")
	s.Require().NoError(err)
	s.Equal(created.ID, got.ID)
	s.Equal(model.GameStatusWaiting, got.Status)
	s.Require().NotNil(got.Player1)
	s.Equal(created.Player1.ID, got.Player1.ID)
	s.Equal("Alice", got.Player1.Name)
	s.Nil(got.Player2)
	s.Empty(got.CurrentTurn)
	s.Empty(got.WinnerID)
	s.Equal(0, got.TurnCount)
	s.True(baseTime.Equal(got.CreatedAt))
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Store.GetGame(s.ctx(), "missing")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestUpdateGamePersistsFields() {
	game := s.CreateGame("game_a", baseTime)
	s.JoinGame(game)

	game.Status = model.GameStatusCompleted
	game.WinnerID = game.Player1.ID
	game.TurnCount = 3
	game.UpdatedAt = baseTime.Add(time.Minute)
	s.Require().NoError(s.Store.UpdateGame(s.ctx(), game))

	got, err := s.Store.GetGame(s.ctx(), "game_a")
	s.Require().NoError(err)
	s.Equal(model.GameStatusCompleted, got.Status)
	s.Equal(game.Player1.ID, got.WinnerID)
	s.Equal(3, got.TurnCount)
	s.Require().NotNil(got.Player2)
	s.Equal("Bob", got.Player2.Name)
	s.True(game.UpdatedAt.Equal(got.UpdatedAt))
}

func (s *Suite) TestUpdateGameSetsCurrentTurn() {
	game := s.CreateGame("game_a", baseTime)
	s.JoinGame(game)
	game.Status = model.GameStatusInProgress
	game.CurrentTurn = game.Player1.ID
	s.Require().NoError(s.Store.UpdateGame(s.ctx(), game))

	got, err := s.Store.GetGame(s.ctx(), "game_a")
	s.Require().NoError(err)
	s.Equal(game.Player1.ID, got.CurrentTurn)
}

func (s *Suite) TestUpdateGameNotFound() {
	game := &model.Game{
		ID:      "missing",
		Status:  model.GameStatusWaiting,
		Player1: &model.Player{ID: "p1", GameID: "missing", Name: "Alice", CreatedAt: baseTime},
		Player2: &model.Player{ID: "p2", GameID: "missing", Name: "Bob", CreatedAt: baseTime},
	}
	err := s.Store.UpdateGame(s.ctx(), game)
	s.ErrorIs(err, model.ErrGameNotFound)

	// Nothing is written for a game that does not exist
	_, err = s.Store.GetPlayer(s.ctx(), "p1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.Store.GetPlayer(s.ctx(), "p2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestUpdateGameAfterDeleteWritesNothing() {
	game := s.CreateGame("game_a", baseTime)
	s.Require().NoError(s.Store.DeleteGame(s.ctx(), game.ID))

	game.Player2 = &model.Player{ID: "late", GameID: game.ID, Name: "Bob", CreatedAt: baseTime}
	s.ErrorIs(s.Store.UpdateGame(s.ctx(), game), model.ErrGameNotFound)

	_, err := s.Store.GetPlayer(s.ctx(), "late")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.Store.GetPlayer(s.ctx(), game.Player1.ID)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestDeleteGameCascades() {
	game := s.CreateGame("game_a", baseTime)
	p2 := s.JoinGame(game)
	s.RecordGuess(game, &model.Guess{
		ID: "guess_1", GameID: game.ID, GuesserID: game.Player1.ID, TargetID: p2.ID,
		GuessedNumber: "1234", TurnNumber: 1, CreatedAt: baseTime,
	})

	s.Require().NoError(s.Store.DeleteGame(s.ctx(), "game_a"))

	_, err := s.Store.GetGame(s.ctx(), "game_a")
	s.ErrorIs(err, model.ErrGameNotFound)
	_, err = s.Store.GetPlayer(s.ctx(), game.Player1.ID)
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.Store.GetPlayer(s.ctx(), p2.ID)
	s.ErrorIs(err, model.ErrPlayerNotFound)
	guesses, err := s.Store.GetGuessesByGame(s.ctx(), "game_a")
	s.Require().NoError(err)
	s.Empty(guesses)
}

func (s *Suite) TestDeleteGameLeavesOtherGames() {
	s.CreateGame("game_a", baseTime)
	s.CreateGame("game_b", baseTime.Add(time.Second))

	s.Require().NoError(s.Store.DeleteGame(s.ctx(), "game_a"))

	_, err := s.Store.GetGame(s.ctx(), "game_b")
	s.NoError(err)
}

func (s *Suite) TestDeleteGameNotFound() {
	err := s.Store.DeleteGame(s.ctx(), "missing")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestListGamesNewestFirst() {
	s.CreateGame("game_a", baseTime)
	s.CreateGame("game_c", baseTime.Add(2*time.Second))
	s.CreateGame("game_b", baseTime.Add(time.Second))

	games, err := s.Store.ListGames(s.ctx())
	s.Require().NoError(err)
	s.Require().Len(games, 3)
	s.Equal(model.GameID("game_c"), games[0].ID)
	s.Equal(model.GameID("game_b"), games[1].ID)
	s.Equal(model.GameID("game_a"), games[2].ID)
	s.NotNil(games[0].Player1)
}

func (s *Suite) TestListGamesEmpty() {
	games, err := s.Store.ListGames(s.ctx())
	s.Require().NoError(err)
	s.Empty(games)
}

func (s *Suite) TestListGamesByStatus() {
	s.CreateGame("game_a", baseTime)
	b := s.CreateGame("game_b", baseTime.Add(time.Second))
	b.Status = model.GameStatusCompleted
	s.Require().NoError(s.Store.UpdateGame(s.ctx(), b))

	waiting, err := s.Store.ListGamesByStatus(s.ctx(), model.GameStatusWaiting)
	s.Require().NoError(err)
	s.Require().Len(waiting, 1)
	s.Equal(model.GameID("game_a"), waiting[0].ID)

	completed, err := s.Store.ListGamesByStatus(s.ctx(), model.GameStatusCompleted)
	s.Require().NoError(err)
	s.Require().Len(completed, 1)
	s.Equal(model.GameID("game_b"), completed[0].ID)

	inProgress, err := s.Store.ListGamesByStatus(s.ctx(), model.GameStatusInProgress)
	s.Require().NoError(err)
	s.Empty(inProgress)
}

// Player tests

func (s *Suite) TestGetPlayer() {
	game := s.CreateGame("game_a", baseTime)

	got, err := s.Store.GetPlayer(s.ctx(), game.Player1.ID)
	s.Require().NoError(err)
	s.Equal(game.ID, got.GameID)
	s.Equal("Alice", got.Name)
	s.False(got.IsReady)
	s.Empty(got.SecretNumber)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Store.GetPlayer(s.ctx(), "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestCreateGameStoresCreator() {
	game := s.CreateGame("game_a", baseTime)

	games, err := s.Store.ListGames(s.ctx())
	s.Require().NoError(err)
	s.Require().Len(games, 1)
	s.Require().NotNil(games[0].Player1)
	s.Equal(game.Player1.ID, games[0].Player1.ID)
	s.True(baseTime.Equal(games[0].Player1.CreatedAt))
}

func (s *Suite) TestUpdateGameStoresPlayerChanges() {
	game := s.CreateGame("game_a", baseTime)
	s.JoinGame(game)

	game.Player1.SecretNumber = "0123"
	game.Player1.IsReady = true
	game.Player2.SecretNumber = "4567"
	game.Player2.IsReady = true
	game.Status = model.GameStatusInProgress
	game.CurrentTurn = game.Player1.ID
	s.Require().NoError(s.Store.UpdateGame(s.ctx(), game))

	got, err := s.Store.GetGame(s.ctx(), game.ID)
	s.Require().NoError(err)
	s.Equal(model.GameStatusInProgress, got.Status)
	s.Equal("0123", got.Player1.SecretNumber)
	s.True(got.Player1.IsReady)
	s.Equal("4567", got.Player2.SecretNumber)
	s.True(got.Player2.IsReady)

	player, err := s.Store.GetPlayer(s.ctx(), game.Player2.ID)
	s.Require().NoError(err)
	s.Equal("4567", player.SecretNumber)
	s.Equal(game.ID, player.GameID)
}

// Guess tests

func (s *Suite) TestGuessesInTurnOrder() {
	game := s.CreateGame("game_a", baseTime)
	p1 := game.Player1
	p2 := s.JoinGame(game)

	guesses := []*model.Guess{
		{ID: "guess_1", GameID: game.ID, GuesserID: p1.ID, TargetID: p2.ID, GuessedNumber: "1111", CorrectDigits: 1, CorrectPositions: 0, TurnNumber: 1, CreatedAt: baseTime},
		{ID: "guess_2", GameID: game.ID, GuesserID: p2.ID, TargetID: p1.ID, GuessedNumber: "2222", CorrectDigits: 2, CorrectPositions: 1, TurnNumber: 2, CreatedAt: baseTime.Add(time.Second)},
		{ID: "guess_3", GameID: game.ID, GuesserID: p1.ID, TargetID: p2.ID, GuessedNumber: "3333", CorrectDigits: 4, CorrectPositions: 4, TurnNumber: 3, CreatedAt: baseTime.Add(2 * time.Second)},
	}
	for _, g := range guesses {
		s.RecordGuess(game, g)
	}

	all, err := s.Store.GetGuessesByGame(s.ctx(), game.ID)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	for i, g := range all {
		s.Equal(i+1, g.TurnNumber)
	}
	s.Equal("2222", all[1].GuessedNumber)
	s.Equal(2, all[1].CorrectDigits)
	s.Equal(1, all[1].CorrectPositions)
	s.Equal(p1.ID, all[1].TargetID)

	mine, err := s.Store.GetGuessesByGameAndPlayer(s.ctx(), game.ID, p1.ID)
	s.Require().NoError(err)
	s.Require().Len(mine, 2)
	s.Equal(model.GuessID("guess_1"), mine[0].ID)
	s.Equal(model.GuessID("guess_3"), mine[1].ID)
}

func (s *Suite) TestGuessesEmpty() {
	game := s.CreateGame("game_a", baseTime)

	all, err := s.Store.GetGuessesByGame(s.ctx(), game.ID)
	s.Require().NoError(err)
	s.Empty(all)

	mine, err := s.Store.GetGuessesByGameAndPlayer(s.ctx(), game.ID, game.Player1.ID)
	s.Require().NoError(err)
	s.Empty(mine)
}

func (s *Suite) TestRecordGuessAdvancesGame() {
	game := s.CreateGame("game_a", baseTime)
	p2 := s.JoinGame(game)
	game.Status = model.GameStatusInProgress
	game.CurrentTurn = p2.ID

	s.RecordGuess(game, &model.Guess{
		ID: "guess_1", GameID: game.ID, GuesserID: game.Player1.ID, TargetID: p2.ID,
		GuessedNumber: "1234", TurnNumber: 1, CreatedAt: baseTime.Add(time.Second),
	})

	got, err := s.Store.GetGame(s.ctx(), game.ID)
	s.Require().NoError(err)
	s.Equal(1, got.TurnCount)
	s.Equal(p2.ID, got.CurrentTurn)
	s.True(baseTime.Add(time.Second).Equal(got.UpdatedAt))

	guesses, err := s.Store.GetGuessesByGame(s.ctx(), game.ID)
	s.Require().NoError(err)
	s.Len(guesses, got.TurnCount)
}

func (s *Suite) TestRecordGuessNotFound() {
	game := &model.Game{ID: "missing", Status: model.GameStatusInProgress, TurnCount: 1,
		Player1: &model.Player{ID: "p1", GameID: "missing", Name: "Alice", CreatedAt: baseTime}}
	err := s.Store.RecordGuess(s.ctx(), game, &model.Guess{
		ID: "guess_1", GameID: "missing", GuesserID: "p1", TargetID: "p2",
		GuessedNumber: "1234", TurnNumber: 1, CreatedAt: baseTime,
	})
	s.ErrorIs(err, model.ErrGameNotFound)

	guesses, err := s.Store.GetGuessesByGame(s.ctx(), "missing")
	s.Require().NoError(err)
	s.Empty(guesses)
}
