package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mcoot/passcode-go/internal/dependencies/clock"
	"github.com/mcoot/passcode-go/internal/dependencies/ids"
	"github.com/mcoot/passcode-go/internal/model"
	"github.com/mcoot/passcode-go/internal/services/scoring"
	"github.com/mcoot/passcode-go/internal/storage"
)

var tracer = otel.Tracer("github.com/mcoot/passcode-go/internal/services/game")

// GuessResult is the outcome of a processed guess
type GuessResult struct {
	Guess    *model.Guess
	IsWinner bool
	NextTurn model.PlayerID // Empty if the guess won
	WinnerID model.PlayerID // Empty unless the guess won
	Game     *model.Game
}

// Controller manages the game state machine and turn flow.
//
// Mutations of a single game are serialized; different games proceed in
// parallel.
type Controller struct {
	storage  storage.Storage
	scoring  scoring.ServiceInterface
	clock    clock.Clock
	ids      ids.Generator
	listener Listener
	logger   *slog.Logger
	locks    *gameLocks
}

// NewController creates a new game Controller. A nil listener or logger is allowed.
func NewController(
	storage storage.Storage,
	scoring scoring.ServiceInterface,
	clock clock.Clock,
	ids ids.Generator,
	listener Listener,
	logger *slog.Logger,
) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if listener == nil {
		listener = Listeners{}
	}
	return &Controller{
		storage:  storage,
		scoring:  scoring,
		clock:    clock,
		ids:      ids,
		listener: listener,
		logger:   logger,
		locks:    newGameLocks(),
	}
}

// CreateGame starts a new waiting game with the creator in slot 1
func (c *Controller) CreateGame(ctx context.Context, creatorName string) (game *model.Game, err error) {
	ctx, span := tracer.Start(ctx, "game.CreateGame")
	defer func() { endSpan(span, err) }()

	name, err := model.NormalizePlayerName(creatorName)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	gameID := c.ids.GameID()
	creator := &model.Player{
		ID:        c.ids.PlayerID(),
		GameID:    gameID,
		Name:      name,
		CreatedAt: now,
	}
	game = &model.Game{
		ID:        gameID,
		Status:    model.GameStatusWaiting,
		Player1:   creator,
		CreatedAt: now,
		UpdatedAt: now,
	}
	span.SetAttributes(attribute.String("game.id", string(gameID)))

	// The creator is written with the game so slot 1 is never seen empty
	if err := c.storage.CreateGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(creator.ID)),
	)
	c.notify(ctx, game, model.EventGameCreated, creator.ID, nil)

	return game, nil
}

// JoinGame puts a new player in slot 2. The game stays waiting until both
// players lock a number.
func (c *Controller) JoinGame(ctx context.Context, gameID model.GameID, joinerName string) (game *model.Game, err error) {
	ctx, span := c.startSpan(ctx, "game.JoinGame", gameID)
	defer func() { endSpan(span, err) }()

	name, err := model.NormalizePlayerName(joinerName)
	if err != nil {
		return nil, err
	}

	unlock := c.locks.Lock(gameID)
	defer unlock()

	game, err = c.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.Status == model.GameStatusCompleted {
		return nil, fmt.Errorf("%w: cannot join", model.ErrGameAlreadyCompleted)
	}
	if game.IsFull() {
		return nil, fmt.Errorf("%w: game %s already has two players", model.ErrGameFull, gameID)
	}

	now := c.clock.Now()
	joiner := &model.Player{
		ID:        c.ids.PlayerID(),
		GameID:    gameID,
		Name:      name,
		CreatedAt: now,
	}
	game.Player2 = joiner
	game.UpdatedAt = now
	if err := c.storage.UpdateGame(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("player joined",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(joiner.ID)),
	)
	c.notify(ctx, game, model.EventPlayerJoined, joiner.ID, model.PlayerJoinedPayload{
		PlayerID: joiner.ID,
		Name:     joiner.Name,
	})

	return game, nil
}

// LockNumber sets a player's secret. Once both slots are filled and ready
// the game starts with the creator to move.
func (c *Controller) LockNumber(ctx context.Context, gameID model.GameID, playerID model.PlayerID, secret string) (game *model.Game, err error) {
	ctx, span := c.startSpan(ctx, "game.LockNumber", gameID)
	defer func() { endSpan(span, err) }()

	// Malformed input is rejected before any lookup, so it wins over GameNotFound
	if err := model.ValidateNumber(secret); err != nil {
		return nil, err
	}

	unlock := c.locks.Lock(gameID)
	defer unlock()

	game, err = c.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.Status == model.GameStatusCompleted {
		return nil, fmt.Errorf("%w: cannot lock number", model.ErrGameAlreadyCompleted)
	}
	player := game.Player(playerID)
	if player == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotInGame, playerID)
	}
	if player.IsReady {
		return nil, model.ErrNumberAlreadyLocked
	}

	player.SecretNumber = secret
	player.IsReady = true

	started := false
	if game.Status == model.GameStatusWaiting && game.BothReady() {
		game.Status = model.GameStatusInProgress
		game.CurrentTurn = game.Player1.ID
		started = true
	}
	game.UpdatedAt = c.clock.Now()
	if err := c.storage.UpdateGame(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("number locked",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(playerID)),
	)
	c.notify(ctx, game, model.EventNumberLocked, playerID, nil)

	if started {
		c.logger.Info("game started",
			slog.String("game_id", string(gameID)),
			slog.String("first_turn", string(game.CurrentTurn)),
		)
		c.notify(ctx, game, model.EventGameStarted, "", model.GameStartedPayload{
			FirstTurn: game.CurrentTurn,
		})
	}

	return game, nil
}

// ProcessGuess scores a guess against the opponent's secret and advances
// the turn, completing the game on an exact match.
func (c *Controller) ProcessGuess(ctx context.Context, gameID model.GameID, playerID model.PlayerID, number string) (result *GuessResult, err error) {
	ctx, span := c.startSpan(ctx, "game.ProcessGuess", gameID)
	defer func() { endSpan(span, err) }()

	// Malformed input is rejected before any lookup, so it wins over GameNotFound
	if err := model.ValidateNumber(number); err != nil {
		return nil, err
	}

	unlock := c.locks.Lock(gameID)
	defer unlock()

	game, err := c.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	switch game.Status {
	case model.GameStatusWaiting:
		return nil, fmt.Errorf("%w: both players must join and lock their numbers", model.ErrGameNotStarted)
	case model.GameStatusCompleted:
		return nil, fmt.Errorf("%w: cannot guess", model.ErrGameAlreadyCompleted)
	}
	if !game.HasPlayer(playerID) {
		return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotInGame, playerID)
	}
	if game.CurrentTurn != playerID {
		return nil, model.ErrNotYourTurn
	}

	opponent := game.Opponent(playerID)
	score := c.scoring.Score(opponent.SecretNumber, number)

	now := c.clock.Now()
	game.TurnCount++
	guess := &model.Guess{
		ID:               c.ids.GuessID(),
		GameID:           gameID,
		GuesserID:        playerID,
		TargetID:         opponent.ID,
		GuessedNumber:    number,
		CorrectDigits:    score.CorrectDigits,
		CorrectPositions: score.CorrectPositions,
		TurnNumber:       game.TurnCount,
		CreatedAt:        now,
	}
	result = &GuessResult{Guess: guess, Game: game}
	if score.IsWin() {
		game.WinnerID = playerID
		game.Status = model.GameStatusCompleted
		game.CurrentTurn = ""
		result.IsWinner = true
		result.WinnerID = playerID
	} else {
		game.CurrentTurn = opponent.ID
		result.NextTurn = opponent.ID
	}
	game.UpdatedAt = now
	if err := c.storage.RecordGuess(ctx, game, guess); err != nil {
		c.logger.Error("failed to record guess",
			slog.String("game_id", string(gameID)),
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("guess processed",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(playerID)),
		slog.Int("turn", guess.TurnNumber),
		slog.Int("correct_digits", guess.CorrectDigits),
		slog.Int("correct_positions", guess.CorrectPositions),
	)
	c.notify(ctx, game, model.EventGuessMade, playerID, model.GuessMadePayload{
		GuessID:          guess.ID,
		GuessedNumber:    guess.GuessedNumber,
		CorrectDigits:    guess.CorrectDigits,
		CorrectPositions: guess.CorrectPositions,
		TurnNumber:       guess.TurnNumber,
		NextTurn:         result.NextTurn,
	})

	if result.IsWinner {
		c.logger.Info("game completed",
			slog.String("game_id", string(gameID)),
			slog.String("winner_id", string(playerID)),
			slog.Int("turns", game.TurnCount),
		)
		c.notify(ctx, game, model.EventGameCompleted, playerID, model.GameCompletedPayload{
			WinnerID:   playerID,
			TurnNumber: game.TurnCount,
		})
	}

	return result, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.loadGame(ctx, gameID)
}

// DeleteGame removes a game along with its players and guesses
func (c *Controller) DeleteGame(ctx context.Context, gameID model.GameID) (err error) {
	ctx, span := c.startSpan(ctx, "game.DeleteGame", gameID)
	defer func() { endSpan(span, err) }()

	unlock := c.locks.Lock(gameID)
	defer unlock()

	game, err := c.loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if err := c.storage.DeleteGame(ctx, gameID); err != nil {
		return wrapNotFound(err, gameID)
	}

	c.logger.Info("game deleted", slog.String("game_id", string(gameID)))
	c.notify(ctx, game, model.EventGameDeleted, "", nil)
	return nil
}

// ListGames returns all games, newest first
func (c *Controller) ListGames(ctx context.Context) ([]*model.Game, error) {
	return c.storage.ListGames(ctx)
}

// ListGamesByStatus returns games in the given status, newest first
func (c *Controller) ListGamesByStatus(ctx context.Context, status model.GameStatus) ([]*model.Game, error) {
	return c.storage.ListGamesByStatus(ctx, status)
}

// GetPlayer returns a player of the game
func (c *Controller) GetPlayer(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.Player, error) {
	game, err := c.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	player := game.Player(playerID)
	if player == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotInGame, playerID)
	}
	return player, nil
}

// GetGuesses returns every guess in the game in turn order
func (c *Controller) GetGuesses(ctx context.Context, gameID model.GameID) ([]*model.Guess, error) {
	if _, err := c.loadGame(ctx, gameID); err != nil {
		return nil, err
	}
	return c.storage.GetGuessesByGame(ctx, gameID)
}

// GetPlayerGuesses returns the guesses made by one player in turn order
func (c *Controller) GetPlayerGuesses(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]*model.Guess, error) {
	if _, err := c.loadGame(ctx, gameID); err != nil {
		return nil, err
	}
	return c.storage.GetGuessesByGameAndPlayer(ctx, gameID, playerID)
}

// loadGame fetches a game, adding the ID to not-found errors
func (c *Controller) loadGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, wrapNotFound(err, gameID)
	}
	return game, nil
}

func wrapNotFound(err error, gameID model.GameID) error {
	if errors.Is(err, model.ErrGameNotFound) {
		return fmt.Errorf("%w: %s", model.ErrGameNotFound, gameID)
	}
	return err
}

func (c *Controller) notify(ctx context.Context, game *model.Game, eventType model.EventType, playerID model.PlayerID, payload any) {
	c.listener.OnGameEvent(ctx, model.Event{
		Type:      eventType,
		Timestamp: game.UpdatedAt,
		GameID:    game.ID,
		PlayerID:  playerID,
		Status:    game.Status,
		Payload:   payload,
	})
}

func (c *Controller) startSpan(ctx context.Context, name string, gameID model.GameID) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("game.id", string(gameID))))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// ControllerInterface defines the interface for the game controller
type ControllerInterface interface {
	CreateGame(ctx context.Context, creatorName string) (*model.Game, error)
	JoinGame(ctx context.Context, gameID model.GameID, joinerName string) (*model.Game, error)
	LockNumber(ctx context.Context, gameID model.GameID, playerID model.PlayerID, secret string) (*model.Game, error)
	ProcessGuess(ctx context.Context, gameID model.GameID, playerID model.PlayerID, number string) (*GuessResult, error)
	GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error)
	DeleteGame(ctx context.Context, gameID model.GameID) error
	ListGames(ctx context.Context) ([]*model.Game, error)
	ListGamesByStatus(ctx context.Context, status model.GameStatus) ([]*model.Game, error)
	GetPlayer(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.Player, error)
	GetGuesses(ctx context.Context, gameID model.GameID) ([]*model.Guess, error)
	GetPlayerGuesses(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]*model.Guess, error)
}

// Ensure Controller implements ControllerInterface
var _ ControllerInterface = (*Controller)(nil)
