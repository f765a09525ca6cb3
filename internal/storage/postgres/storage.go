// Package postgres provides a PostgreSQL-backed game storage implementation.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/passcode-go/internal/model"
	"github.com/mcoot/passcode-go/internal/storage"
)

//go:embed schema.sql
var schema string

// Storage persists games in PostgreSQL
type Storage struct {
	db *pgxpool.Pool
}

// Open connects to databaseURL and ensures the schema exists
func Open(ctx context.Context, databaseURL string) (*Storage, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url is required")
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Storage{db: pool}, nil
}

// NewWithPool creates a storage over an existing pool. The schema must already exist.
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{db: pool}
}

// Close releases the connection pool
func (s *Storage) Close() error {
	s.db.Close()
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

const selectGames = `
SELECT g.id, g.status, g.current_turn, g.winner_id, g.turn_count, g.created_at, g.updated_at,
       p1.id, p1.name, p1.secret_number, p1.is_ready, p1.created_at,
       p2.id, p2.name, p2.secret_number, p2.is_ready, p2.created_at
FROM games g
LEFT JOIN players p1 ON p1.id = g.player1_id
LEFT JOIN players p2 ON p2.id = g.player2_id`

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
INSERT INTO games (id, status, player1_id, player2_id, current_turn, winner_id, turn_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			string(game.ID), string(game.Status), string(game.Player1.ID),
			nullable(string(game.Player2ID())), nullable(string(game.CurrentTurn)), nullable(string(game.WinnerID)),
			game.TurnCount, game.CreatedAt, game.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert game: %w", err)
		}
		return upsertPlayers(ctx, tx, game)
	})
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	row := s.db.QueryRow(ctx, selectGames+` WHERE g.id = $1`, string(id))
	game, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("get game: %w", err)
	}
	return game, nil
}

func (s *Storage) UpdateGame(ctx context.Context, game *model.Game) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return updateGame(ctx, tx, game)
	})
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	// Players and guesses go with the game via ON DELETE CASCADE
	tag, err := s.db.Exec(ctx, `DELETE FROM games WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrGameNotFound
	}
	return nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	rows, err := s.db.Query(ctx, selectGames+` ORDER BY g.created_at DESC, g.seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return collectGames(rows)
}

func (s *Storage) ListGamesByStatus(ctx context.Context, status model.GameStatus) ([]*model.Game, error) {
	rows, err := s.db.Query(ctx,
		selectGames+` WHERE g.status = $1 ORDER BY g.created_at DESC, g.seq DESC`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list games by status: %w", err)
	}
	return collectGames(rows)
}

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var (
		p      model.Player
		pid    string
		gameID string
		secret *string
	)
	err := s.db.QueryRow(ctx,
		`SELECT id, game_id, name, secret_number, is_ready, created_at FROM players WHERE id = $1`, string(id),
	).Scan(&pid, &gameID, &p.Name, &secret, &p.IsReady, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get player: %w", err)
	}
	p.ID = model.PlayerID(pid)
	p.GameID = model.GameID(gameID)
	p.SecretNumber = deref(secret)
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

// Guess operations

func (s *Storage) RecordGuess(ctx context.Context, game *model.Game, guess *model.Guess) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if err := updateGame(ctx, tx, game); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
INSERT INTO guesses (id, game_id, guesser_id, target_id, guessed_number, correct_digits, correct_positions, turn_number, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			string(guess.ID), string(guess.GameID), string(guess.GuesserID), string(guess.TargetID),
			guess.GuessedNumber, guess.CorrectDigits, guess.CorrectPositions, guess.TurnNumber, guess.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert guess: %w", err)
		}
		return nil
	})
}

const selectGuesses = `
SELECT id, game_id, guesser_id, target_id, guessed_number, correct_digits, correct_positions, turn_number, created_at
FROM guesses`

func (s *Storage) GetGuessesByGame(ctx context.Context, gameID model.GameID) ([]*model.Guess, error) {
	rows, err := s.db.Query(ctx, selectGuesses+` WHERE game_id = $1 ORDER BY turn_number`, string(gameID))
	if err != nil {
		return nil, fmt.Errorf("get guesses: %w", err)
	}
	return collectGuesses(rows)
}

func (s *Storage) GetGuessesByGameAndPlayer(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]*model.Guess, error) {
	rows, err := s.db.Query(ctx,
		selectGuesses+` WHERE game_id = $1 AND guesser_id = $2 ORDER BY turn_number`,
		string(gameID), string(playerID))
	if err != nil {
		return nil, fmt.Errorf("get player guesses: %w", err)
	}
	return collectGuesses(rows)
}

// Transaction steps

func updateGame(ctx context.Context, tx pgx.Tx, game *model.Game) error {
	tag, err := tx.Exec(ctx, `
UPDATE games
SET status = $1, player2_id = $2, current_turn = $3, winner_id = $4, turn_count = $5, updated_at = $6
WHERE id = $7`,
		string(game.Status), nullable(string(game.Player2ID())), nullable(string(game.CurrentTurn)),
		nullable(string(game.WinnerID)), game.TurnCount, game.UpdatedAt, string(game.ID),
	)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrGameNotFound
	}
	return upsertPlayers(ctx, tx, game)
}

func upsertPlayers(ctx context.Context, tx pgx.Tx, game *model.Game) error {
	for _, p := range game.Players() {
		_, err := tx.Exec(ctx, `
INSERT INTO players (id, game_id, name, secret_number, is_ready, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name, secret_number = EXCLUDED.secret_number, is_ready = EXCLUDED.is_ready`,
			string(p.ID), string(p.GameID), p.Name, nullable(p.SecretNumber), p.IsReady, p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert player %s: %w", p.ID, err)
		}
	}
	return nil
}

// Scanning

func scanGame(row pgx.Row) (*model.Game, error) {
	var (
		id, status            string
		currentTurn, winnerID *string
		turnCount             int
		createdAt, updatedAt  time.Time

		p1ID, p1Name, p1Secret *string
		p1Ready                *bool
		p1CreatedAt            *time.Time

		p2ID, p2Name, p2Secret *string
		p2Ready                *bool
		p2CreatedAt            *time.Time
	)
	err := row.Scan(
		&id, &status, &currentTurn, &winnerID, &turnCount, &createdAt, &updatedAt,
		&p1ID, &p1Name, &p1Secret, &p1Ready, &p1CreatedAt,
		&p2ID, &p2Name, &p2Secret, &p2Ready, &p2CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	game := &model.Game{
		ID:          model.GameID(id),
		Status:      model.GameStatus(status),
		CurrentTurn: model.PlayerID(deref(currentTurn)),
		WinnerID:    model.PlayerID(deref(winnerID)),
		TurnCount:   turnCount,
		CreatedAt:   createdAt.UTC(),
		UpdatedAt:   updatedAt.UTC(),
	}
	game.Player1 = joinedPlayer(game.ID, p1ID, p1Name, p1Secret, p1Ready, p1CreatedAt)
	game.Player2 = joinedPlayer(game.ID, p2ID, p2Name, p2Secret, p2Ready, p2CreatedAt)
	return game, nil
}

func joinedPlayer(gameID model.GameID, id, name, secret *string, ready *bool, createdAt *time.Time) *model.Player {
	if id == nil {
		return nil
	}
	p := &model.Player{
		ID:           model.PlayerID(*id),
		GameID:       gameID,
		Name:         deref(name),
		SecretNumber: deref(secret),
	}
	if ready != nil {
		p.IsReady = *ready
	}
	if createdAt != nil {
		p.CreatedAt = createdAt.UTC()
	}
	return p
}

func collectGames(rows pgx.Rows) ([]*model.Game, error) {
	defer rows.Close()

	games := []*model.Game{}
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

func collectGuesses(rows pgx.Rows) ([]*model.Guess, error) {
	defer rows.Close()

	guesses := []*model.Guess{}
	for rows.Next() {
		var (
			g                               model.Guess
			id, gameID, guesserID, targetID string
		)
		err := rows.Scan(&id, &gameID, &guesserID, &targetID, &g.GuessedNumber,
			&g.CorrectDigits, &g.CorrectPositions, &g.TurnNumber, &g.CreatedAt)
		if err != nil {
			return nil, err
		}
		g.ID = model.GuessID(id)
		g.GameID = model.GameID(gameID)
		g.GuesserID = model.PlayerID(guesserID)
		g.TargetID = model.PlayerID(targetID)
		g.CreatedAt = g.CreatedAt.UTC()
		guesses = append(guesses, &g)
	}
	return guesses, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
