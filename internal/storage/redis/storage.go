package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/passcode-go/internal/model"
	"github.com/mcoot/passcode-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
//
// Games and players are JSON strings, a game's guesses are a sorted set
// scored by turn number, and all game IDs sit in a sorted set scored by
// creation time for listing.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// gameDoc is the stored form of a game; players are stored separately
type gameDoc struct {
	ID          model.GameID     `json:"id"`
	Status      model.GameStatus `json:"status"`
	Player1ID   model.PlayerID   `json:"player1_id"`
	Player2ID   model.PlayerID   `json:"player2_id,omitempty"`
	CurrentTurn model.PlayerID   `json:"current_turn,omitempty"`
	WinnerID    model.PlayerID   `json:"winner_id,omitempty"`
	TurnCount   int              `json:"turn_count"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(toGameDoc(game))
	if err != nil {
		return err
	}
	players, err := marshalPlayers(game)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, gameKey(game.ID), data, s.cfg.GameTTL)
	for key, player := range players {
		pipe.Set(ctx, key, player, s.cfg.GameTTL)
	}
	pipe.ZAdd(ctx, gamesIndexKey(), redis.Z{
		Score:  float64(game.CreatedAt.UnixMilli()),
		Member: string(game.ID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	doc, err := s.getGameDoc(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, doc)
}

func (s *Storage) UpdateGame(ctx context.Context, game *model.Game) error {
	return s.writeGame(ctx, game, nil)
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	doc, err := s.getGameDoc(ctx, id)
	if err != nil {
		return err
	}

	// Delete the game and everything it owns in one transaction
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, gameKey(id), guessesKey(id), playerKey(doc.Player1ID))
	if doc.Player2ID != "" {
		pipe.Del(ctx, playerKey(doc.Player2ID))
	}
	pipe.ZRem(ctx, gamesIndexKey(), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	return s.listGames(ctx, func(*gameDoc) bool { return true })
}

func (s *Storage) ListGamesByStatus(ctx context.Context, status model.GameStatus) ([]*model.Game, error) {
	return s.listGames(ctx, func(doc *gameDoc) bool { return doc.Status == status })
}

func (s *Storage) listGames(ctx context.Context, include func(*gameDoc) bool) ([]*model.Game, error) {
	ids, err := s.client.ZRevRange(ctx, gamesIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Game{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(model.GameID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	var expired []any
	for i, val := range values {
		if val == nil {
			// Game expired; drop it from the index
			expired = append(expired, ids[i])
			continue
		}
		var doc gameDoc
		if err := json.Unmarshal([]byte(val.(string)), &doc); err != nil {
			return nil, fmt.Errorf("decode game %s: %w", ids[i], err)
		}
		if !include(&doc) {
			continue
		}
		game, err := s.hydrate(ctx, &doc)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}

	if len(expired) > 0 {
		s.client.ZRem(ctx, gamesIndexKey(), expired...)
	}

	return games, nil
}

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// Guess operations

func (s *Storage) RecordGuess(ctx context.Context, game *model.Game, guess *model.Guess) error {
	return s.writeGame(ctx, game, guess)
}

func (s *Storage) GetGuessesByGame(ctx context.Context, gameID model.GameID) ([]*model.Guess, error) {
	return s.getGuesses(ctx, gameID, func(*model.Guess) bool { return true })
}

func (s *Storage) GetGuessesByGameAndPlayer(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]*model.Guess, error) {
	return s.getGuesses(ctx, gameID, func(g *model.Guess) bool { return g.GuesserID == playerID })
}

func (s *Storage) getGuesses(ctx context.Context, gameID model.GameID, include func(*model.Guess) bool) ([]*model.Guess, error) {
	members, err := s.client.ZRange(ctx, guessesKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	guesses := make([]*model.Guess, 0, len(members))
	for _, member := range members {
		var guess model.Guess
		if err := json.Unmarshal([]byte(member), &guess); err != nil {
			return nil, fmt.Errorf("decode guess: %w", err)
		}
		if include(&guess) {
			guesses = append(guesses, &guess)
		}
	}
	return guesses, nil
}

// Helpers

// writeGame replaces a stored game, its players and optionally appends a
// guess in one MULTI. The game key is watched so a concurrent delete or
// expiry aborts the write instead of resurrecting the game's records.
func (s *Storage) writeGame(ctx context.Context, game *model.Game, guess *model.Guess) error {
	data, err := json.Marshal(toGameDoc(game))
	if err != nil {
		return err
	}
	players, err := marshalPlayers(game)
	if err != nil {
		return err
	}
	var guessData []byte
	if guess != nil {
		if guessData, err = json.Marshal(guess); err != nil {
			return err
		}
	}

	key := gameKey(game.ID)
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		ttl, err := remainingTTL(ctx, tx, key)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, data, redis.SetArgs{KeepTTL: true})
			// Records owned by the game expire with it
			for playerKey, player := range players {
				pipe.Set(ctx, playerKey, player, ttl)
			}
			if guess != nil {
				guesses := guessesKey(game.ID)
				pipe.ZAdd(ctx, guesses, redis.Z{
					Score:  float64(guess.TurnNumber),
					Member: guessData,
				})
				if ttl > 0 {
					pipe.Expire(ctx, guesses, ttl)
				}
			}
			return nil
		})
		return err
	}, key)
}

// remainingTTL returns the time left before key expires, zero if it never does
func remainingTTL(ctx context.Context, tx *redis.Tx, key string) (time.Duration, error) {
	ttl, err := tx.PTTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	switch {
	case ttl == -2: // No such key
		return 0, model.ErrGameNotFound
	case ttl < 0:
		return 0, nil
	}
	return ttl, nil
}

// marshalPlayers encodes the game's players keyed by their Redis key
func marshalPlayers(game *model.Game) (map[string][]byte, error) {
	players := make(map[string][]byte, 2)
	for _, player := range game.Players() {
		data, err := json.Marshal(player)
		if err != nil {
			return nil, err
		}
		players[playerKey(player.ID)] = data
	}
	return players, nil
}

func (s *Storage) getGameDoc(ctx context.Context, id model.GameID) (*gameDoc, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var doc gameDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// hydrate loads both players for a stored game with a single MGET
func (s *Storage) hydrate(ctx context.Context, doc *gameDoc) (*model.Game, error) {
	game := &model.Game{
		ID:          doc.ID,
		Status:      doc.Status,
		CurrentTurn: doc.CurrentTurn,
		WinnerID:    doc.WinnerID,
		TurnCount:   doc.TurnCount,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}

	keys := []string{playerKey(doc.Player1ID)}
	if doc.Player2ID != "" {
		keys = append(keys, playerKey(doc.Player2ID))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, len(values))
	for i, val := range values {
		if val == nil {
			continue // Player expired ahead of the game
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			return nil, fmt.Errorf("decode player: %w", err)
		}
		players[i] = &player
	}

	game.Player1 = players[0]
	if len(players) > 1 {
		game.Player2 = players[1]
	}
	return game, nil
}

func toGameDoc(game *model.Game) *gameDoc {
	doc := &gameDoc{
		ID:          game.ID,
		Status:      game.Status,
		CurrentTurn: game.CurrentTurn,
		WinnerID:    game.WinnerID,
		TurnCount:   game.TurnCount,
		CreatedAt:   game.CreatedAt,
		UpdatedAt:   game.UpdatedAt,
	}
	if game.Player1 != nil {
		doc.Player1ID = game.Player1.ID
	}
	doc.Player2ID = game.Player2ID()
	return doc
}
