package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/passcode-go/internal/model"
	"github.com/mcoot/passcode-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state
// with the store.
type Storage struct {
	mu sync.RWMutex

	games   map[model.GameID]*gameRecord
	players map[model.PlayerID]*model.Player
	guesses map[model.GameID][]*model.Guess
	seq     int64
}

// gameRecord is a game without its hydrated players
type gameRecord struct {
	game      model.Game
	player1ID model.PlayerID
	player2ID model.PlayerID
	seq       int64
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games:   make(map[model.GameID]*gameRecord),
		players: make(map[model.PlayerID]*model.Player),
		guesses: make(map[model.GameID][]*model.Guess),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	rec := newGameRecord(game)
	rec.seq = s.seq
	s.games[game.ID] = rec
	s.putPlayers(game)
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return s.hydrate(rec), nil
}

func (s *Storage) UpdateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateGame(game)
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.games[id]
	if !ok {
		return model.ErrGameNotFound
	}
	delete(s.players, rec.player1ID)
	if rec.player2ID != "" {
		delete(s.players, rec.player2ID)
	}
	delete(s.guesses, id)
	delete(s.games, id)
	return nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	return s.listGames(func(*gameRecord) bool { return true }), nil
}

func (s *Storage) ListGamesByStatus(ctx context.Context, status model.GameStatus) ([]*model.Game, error) {
	return s.listGames(func(rec *gameRecord) bool { return rec.game.Status == status }), nil
}

func (s *Storage) listGames(include func(*gameRecord) bool) []*model.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*gameRecord, 0, len(s.games))
	for _, rec := range s.games {
		if include(rec) {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.game.CreatedAt.Equal(b.game.CreatedAt) {
			return a.game.CreatedAt.After(b.game.CreatedAt)
		}
		return a.seq > b.seq
	})

	games := make([]*model.Game, len(records))
	for i, rec := range records {
		games[i] = s.hydrate(rec)
	}
	return games
}

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

// Guess operations

func (s *Storage) RecordGuess(ctx context.Context, game *model.Game, guess *model.Guess) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.updateGame(game); err != nil {
		return err
	}
	g := *guess
	s.guesses[game.ID] = append(s.guesses[game.ID], &g)
	return nil
}

func (s *Storage) GetGuessesByGame(ctx context.Context, gameID model.GameID) ([]*model.Guess, error) {
	return s.filterGuesses(gameID, func(*model.Guess) bool { return true }), nil
}

func (s *Storage) GetGuessesByGameAndPlayer(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]*model.Guess, error) {
	return s.filterGuesses(gameID, func(g *model.Guess) bool { return g.GuesserID == playerID }), nil
}

func (s *Storage) filterGuesses(gameID model.GameID, include func(*model.Guess) bool) []*model.Guess {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*model.Guess{}
	for _, guess := range s.guesses[gameID] {
		if include(guess) {
			g := *guess
			result = append(result, &g)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TurnNumber < result[j].TurnNumber
	})
	return result
}

// Helpers

func newGameRecord(game *model.Game) *gameRecord {
	rec := &gameRecord{game: *game}
	rec.game.Player1 = nil
	rec.game.Player2 = nil
	if game.Player1 != nil {
		rec.player1ID = game.Player1.ID
	}
	if game.Player2 != nil {
		rec.player2ID = game.Player2.ID
	}
	return rec
}

// updateGame must be called with the write lock held
func (s *Storage) updateGame(game *model.Game) error {
	existing, ok := s.games[game.ID]
	if !ok {
		return model.ErrGameNotFound
	}
	rec := newGameRecord(game)
	rec.seq = existing.seq
	s.games[game.ID] = rec
	s.putPlayers(game)
	return nil
}

// putPlayers must be called with the write lock held
func (s *Storage) putPlayers(game *model.Game) {
	for _, player := range game.Players() {
		p := *player
		s.players[p.ID] = &p
	}
}

// hydrate must be called with the lock held
func (s *Storage) hydrate(rec *gameRecord) *model.Game {
	game := rec.game
	if p, ok := s.players[rec.player1ID]; ok {
		cp := *p
		game.Player1 = &cp
	}
	if rec.player2ID != "" {
		if p, ok := s.players[rec.player2ID]; ok {
			cp := *p
			game.Player2 = &cp
		}
	}
	return &game
}
