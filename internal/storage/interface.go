package storage

import (
	"context"

	"github.com/mcoot/passcode-go/internal/model"
)

// Storage defines the interface for data persistence.
//
// Lookups of missing records return model.ErrGameNotFound or
// model.ErrPlayerNotFound. Games returned by GetGame and the list methods
// have Player1 and Player2 populated from the player records.
//
// Every write is atomic: readers see a game together with the players and
// guesses written alongside it, or none of them.
type Storage interface {
	// Game operations

	// CreateGame stores a new game together with the players in its slots
	CreateGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	// UpdateGame stores the game and upserts the players in its slots
	UpdateGame(ctx context.Context, game *model.Game) error
	// DeleteGame removes the game together with its players and guesses
	DeleteGame(ctx context.Context, id model.GameID) error
	// ListGames returns all games, newest first
	ListGames(ctx context.Context) ([]*model.Game, error)
	// ListGamesByStatus returns games in the given status, newest first
	ListGamesByStatus(ctx context.Context, status model.GameStatus) ([]*model.Game, error)

	// Player operations
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)

	// Guess operations, results are in turn order

	// RecordGuess stores a guess and the game state it produced
	RecordGuess(ctx context.Context, game *model.Game, guess *model.Guess) error
	GetGuessesByGame(ctx context.Context, gameID model.GameID) ([]*model.Guess, error)
	GetGuessesByGameAndPlayer(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]*model.Guess, error)
}
