// Package sqlite provides a SQLite-backed game storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mcoot/passcode-go/internal/model"
	"github.com/mcoot/passcode-go/internal/storage"
	"github.com/mcoot/passcode-go/internal/storage/sqlite/migrations"
)

// Storage persists games in a SQLite database
type Storage struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the database at path and applies migrations
func Open(ctx context.Context, path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db.DB, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database handle
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// gameRow is a game joined with both of its player rows
type gameRow struct {
	ID          string         `db:"id"`
	Status      string         `db:"status"`
	CurrentTurn sql.NullString `db:"current_turn"`
	WinnerID    sql.NullString `db:"winner_id"`
	TurnCount   int            `db:"turn_count"`
	CreatedAt   int64          `db:"created_at"`
	UpdatedAt   int64          `db:"updated_at"`

	P1ID        sql.NullString `db:"p1_id"`
	P1Name      sql.NullString `db:"p1_name"`
	P1Secret    sql.NullString `db:"p1_secret"`
	P1Ready     sql.NullBool   `db:"p1_ready"`
	P1CreatedAt sql.NullInt64  `db:"p1_created_at"`

	P2ID        sql.NullString `db:"p2_id"`
	P2Name      sql.NullString `db:"p2_name"`
	P2Secret    sql.NullString `db:"p2_secret"`
	P2Ready     sql.NullBool   `db:"p2_ready"`
	P2CreatedAt sql.NullInt64  `db:"p2_created_at"`
}

type playerRow struct {
	ID           string         `db:"id"`
	GameID       string         `db:"game_id"`
	Name         string         `db:"name"`
	SecretNumber sql.NullString `db:"secret_number"`
	IsReady      bool           `db:"is_ready"`
	CreatedAt    int64          `db:"created_at"`
}

type guessRow struct {
	ID               string `db:"id"`
	GameID           string `db:"game_id"`
	GuesserID        string `db:"guesser_id"`
	TargetID         string `db:"target_id"`
	GuessedNumber    string `db:"guessed_number"`
	CorrectDigits    int    `db:"correct_digits"`
	CorrectPositions int    `db:"correct_positions"`
	TurnNumber       int    `db:"turn_number"`
	CreatedAt        int64  `db:"created_at"`
}

const selectGames = `
SELECT g.id, g.status, g.current_turn, g.winner_id, g.turn_count, g.created_at, g.updated_at,
       p1.id AS p1_id, p1.name AS p1_name, p1.secret_number AS p1_secret,
       p1.is_ready AS p1_ready, p1.created_at AS p1_created_at,
       p2.id AS p2_id, p2.name AS p2_name, p2.secret_number AS p2_secret,
       p2.is_ready AS p2_ready, p2.created_at AS p2_created_at
FROM games g
LEFT JOIN players p1 ON p1.id = g.player1_id
LEFT JOIN players p2 ON p2.id = g.player2_id`

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO games (id, status, player1_id, player2_id, current_turn, winner_id, turn_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			game.ID, game.Status, game.Player1.ID, nullString(string(game.Player2ID())),
			nullString(string(game.CurrentTurn)), nullString(string(game.WinnerID)),
			game.TurnCount, toMillis(game.CreatedAt), toMillis(game.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert game: %w", err)
		}
		return upsertPlayers(ctx, tx, game)
	})
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	var row gameRow
	err := s.db.GetContext(ctx, &row, selectGames+` WHERE g.id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("get game: %w", err)
	}
	return row.toModel(), nil
}

func (s *Storage) UpdateGame(ctx context.Context, game *model.Game) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		return updateGame(ctx, tx, game)
	})
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM guesses WHERE game_id = ?`, id); err != nil {
			return fmt.Errorf("delete guesses: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM players WHERE game_id = ?`, id); err != nil {
			return fmt.Errorf("delete players: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete game: %w", err)
		}
		return requireOneRow(res, model.ErrGameNotFound)
	})
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	var rows []gameRow
	if err := s.db.SelectContext(ctx, &rows, selectGames+` ORDER BY g.created_at DESC, g.rowid DESC`); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return toGames(rows), nil
}

func (s *Storage) ListGamesByStatus(ctx context.Context, status model.GameStatus) ([]*model.Game, error) {
	var rows []gameRow
	err := s.db.SelectContext(ctx, &rows,
		selectGames+` WHERE g.status = ? ORDER BY g.created_at DESC, g.rowid DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("list games by status: %w", err)
	}
	return toGames(rows), nil
}

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var row playerRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, game_id, name, secret_number, is_ready, created_at FROM players WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get player: %w", err)
	}
	return row.toModel(), nil
}

// Guess operations

func (s *Storage) RecordGuess(ctx context.Context, game *model.Game, guess *model.Guess) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := updateGame(ctx, tx, game); err != nil {
			return err
		}
		_, err := tx.NamedExecContext(ctx, `
INSERT INTO guesses (id, game_id, guesser_id, target_id, guessed_number, correct_digits, correct_positions, turn_number, created_at)
VALUES (:id, :game_id, :guesser_id, :target_id, :guessed_number, :correct_digits, :correct_positions, :turn_number, :created_at)`,
			guessRow{
				ID:               string(guess.ID),
				GameID:           string(guess.GameID),
				GuesserID:        string(guess.GuesserID),
				TargetID:         string(guess.TargetID),
				GuessedNumber:    guess.GuessedNumber,
				CorrectDigits:    guess.CorrectDigits,
				CorrectPositions: guess.CorrectPositions,
				TurnNumber:       guess.TurnNumber,
				CreatedAt:        toMillis(guess.CreatedAt),
			},
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
	var rows []guessRow
	err := s.db.SelectContext(ctx, &rows, selectGuesses+` WHERE game_id = ? ORDER BY turn_number`, gameID)
	if err != nil {
		return nil, fmt.Errorf("get guesses: %w", err)
	}
	return toGuesses(rows), nil
}

func (s *Storage) GetGuessesByGameAndPlayer(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]*model.Guess, error) {
	var rows []guessRow
	err := s.db.SelectContext(ctx, &rows,
		selectGuesses+` WHERE game_id = ? AND guesser_id = ? ORDER BY turn_number`, gameID, playerID)
	if err != nil {
		return nil, fmt.Errorf("get player guesses: %w", err)
	}
	return toGuesses(rows), nil
}

// Transactions

// inTx runs fn in a transaction, committing only if fn succeeds
func (s *Storage) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func updateGame(ctx context.Context, tx *sqlx.Tx, game *model.Game) error {
	res, err := tx.ExecContext(ctx, `
UPDATE games
SET status = ?, player2_id = ?, current_turn = ?, winner_id = ?, turn_count = ?, updated_at = ?
WHERE id = ?`,
		game.Status, nullString(string(game.Player2ID())), nullString(string(game.CurrentTurn)),
		nullString(string(game.WinnerID)), game.TurnCount, toMillis(game.UpdatedAt), game.ID,
	)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if err := requireOneRow(res, model.ErrGameNotFound); err != nil {
		return err
	}
	return upsertPlayers(ctx, tx, game)
}

func upsertPlayers(ctx context.Context, tx *sqlx.Tx, game *model.Game) error {
	for _, player := range game.Players() {
		_, err := tx.NamedExecContext(ctx, `
INSERT INTO players (id, game_id, name, secret_number, is_ready, created_at)
VALUES (:id, :game_id, :name, :secret_number, :is_ready, :created_at)
ON CONFLICT (id) DO UPDATE
SET name = excluded.name, secret_number = excluded.secret_number, is_ready = excluded.is_ready`,
			fromPlayer(player),
		)
		if err != nil {
			return fmt.Errorf("upsert player %s: %w", player.ID, err)
		}
	}
	return nil
}

// Conversions

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func fromPlayer(p *model.Player) playerRow {
	return playerRow{
		ID:           string(p.ID),
		GameID:       string(p.GameID),
		Name:         p.Name,
		SecretNumber: nullString(p.SecretNumber),
		IsReady:      p.IsReady,
		CreatedAt:    toMillis(p.CreatedAt),
	}
}

func (r playerRow) toModel() *model.Player {
	return &model.Player{
		ID:           model.PlayerID(r.ID),
		GameID:       model.GameID(r.GameID),
		Name:         r.Name,
		SecretNumber: r.SecretNumber.String,
		IsReady:      r.IsReady,
		CreatedAt:    fromMillis(r.CreatedAt),
	}
}

func (r gameRow) toModel() *model.Game {
	game := &model.Game{
		ID:          model.GameID(r.ID),
		Status:      model.GameStatus(r.Status),
		CurrentTurn: model.PlayerID(r.CurrentTurn.String),
		WinnerID:    model.PlayerID(r.WinnerID.String),
		TurnCount:   r.TurnCount,
		CreatedAt:   fromMillis(r.CreatedAt),
		UpdatedAt:   fromMillis(r.UpdatedAt),
	}
	if r.P1ID.Valid {
		game.Player1 = &model.Player{
			ID:           model.PlayerID(r.P1ID.String),
			GameID:       game.ID,
			Name:         r.P1Name.String,
			SecretNumber: r.P1Secret.String,
			IsReady:      r.P1Ready.Bool,
			CreatedAt:    fromMillis(r.P1CreatedAt.Int64),
		}
	}
	if r.P2ID.Valid {
		game.Player2 = &model.Player{
			ID:           model.PlayerID(r.P2ID.String),
			GameID:       game.ID,
			Name:         r.P2Name.String,
			SecretNumber: r.P2Secret.String,
			IsReady:      r.P2Ready.Bool,
			CreatedAt:    fromMillis(r.P2CreatedAt.Int64),
		}
	}
	return game
}

func toGames(rows []gameRow) []*model.Game {
	games := make([]*model.Game, len(rows))
	for i, row := range rows {
		games[i] = row.toModel()
	}
	return games
}

func toGuesses(rows []guessRow) []*model.Guess {
	guesses := make([]*model.Guess, len(rows))
	for i, r := range rows {
		guesses[i] = &model.Guess{
			ID:               model.GuessID(r.ID),
			GameID:           model.GameID(r.GameID),
			GuesserID:        model.PlayerID(r.GuesserID),
			TargetID:         model.PlayerID(r.TargetID),
			GuessedNumber:    r.GuessedNumber,
			CorrectDigits:    r.CorrectDigits,
			CorrectPositions: r.CorrectPositions,
			TurnNumber:       r.TurnNumber,
			CreatedAt:        fromMillis(r.CreatedAt),
		}
	}
	return guesses
}
