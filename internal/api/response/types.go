package response

import (
	"time"

	"github.com/mcoot/passcode-go/internal/model"
	"github.com/mcoot/passcode-go/internal/services/game"
)

// Messages returned alongside successful mutations
const (
	MessageGameCreated    = "Game created successfully. Share game_id with opponent to join."
	MessageGameJoined     = "Joined game successfully. Both players need to lock their numbers to start."
	MessageGameStarted    = "Number locked. Game started! Player 1 goes first."
	MessageWaitingForJoin = "Number locked. Waiting for Player 2 to join."
	MessageWaitingForLock = "Number locked. Waiting for opponent to lock their number."
	MessageWinner         = "Congratulations! You guessed the correct number and won the game!"
)

// Root is the response for GET /
type Root struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}

// Health is the response for GET /health
type Health struct {
	Status string `json:"status"`
}

// Player is the public view of a player. The secret is never included.
type Player struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	IsReady  bool   `json:"is_ready"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		PlayerID: string(p.ID),
		Name:     p.Name,
		IsReady:  p.IsReady,
	}
}

func optionalPlayer(p *model.Player) *Player {
	if p == nil {
		return nil
	}
	r := PlayerFromModel(p)
	return &r
}

func optionalID[T ~string](id T) *string {
	if id == "" {
		return nil
	}
	s := string(id)
	return &s
}

// CreateGame is the response for creating a game
type CreateGame struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// CreateGameFromModel builds the create response for the creator
func CreateGameFromModel(g *model.Game) CreateGame {
	return CreateGame{
		GameID:   string(g.ID),
		PlayerID: string(g.Player1.ID),
		Status:   string(g.Status),
		Message:  MessageGameCreated,
	}
}

// JoinGame is the response for joining a game
type JoinGame struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// JoinGameFromModel builds the join response for the joiner
func JoinGameFromModel(g *model.Game) JoinGame {
	return JoinGame{
		GameID:   string(g.ID),
		PlayerID: string(g.Player2ID()),
		Status:   string(g.Status),
		Message:  MessageGameJoined,
	}
}

// LockNumber is the response for locking a secret number
type LockNumber struct {
	PlayerID   string `json:"player_id"`
	IsReady    bool   `json:"is_ready"`
	GameStatus string `json:"game_status"`
	Message    string `json:"message"`
}

// LockNumberFromModel builds the lock response for the given player
func LockNumberFromModel(g *model.Game, playerID model.PlayerID) LockNumber {
	var message string
	switch {
	case g.Status == model.GameStatusInProgress:
		message = MessageGameStarted
	case g.Player2 == nil:
		message = MessageWaitingForJoin
	default:
		message = MessageWaitingForLock
	}

	isReady := false
	if p := g.Player(playerID); p != nil {
		isReady = p.IsReady
	}

	return LockNumber{
		PlayerID:   string(playerID),
		IsReady:    isReady,
		GameStatus: string(g.Status),
		Message:    message,
	}
}

// GameStatus is the full public state of a game
type GameStatus struct {
	GameID      string    `json:"game_id"`
	Status      string    `json:"status"`
	Player1     *Player   `json:"player_1"`
	Player2     *Player   `json:"player_2"`
	CurrentTurn *string   `json:"current_turn"`
	TurnCount   int       `json:"turn_count"`
	WinnerID    *string   `json:"winner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// GameStatusFromModel converts a model.Game
func GameStatusFromModel(g *model.Game) GameStatus {
	return GameStatus{
		GameID:      string(g.ID),
		Status:      string(g.Status),
		Player1:     optionalPlayer(g.Player1),
		Player2:     optionalPlayer(g.Player2),
		CurrentTurn: optionalID(g.CurrentTurn),
		TurnCount:   g.TurnCount,
		WinnerID:    optionalID(g.WinnerID),
		CreatedAt:   g.CreatedAt,
	}
}

// GameStatusList converts a slice of games, never returning nil
func GameStatusList(games []*model.Game) []GameStatus {
	out := make([]GameStatus, 0, len(games))
	for _, g := range games {
		out = append(out, GameStatusFromModel(g))
	}
	return out
}

// Guess is the response for a processed guess
type Guess struct {
	GuessID          string  `json:"guess_id"`
	GuessedNumber    string  `json:"guessed_number"`
	CorrectDigits    int     `json:"correct_digits"`
	CorrectPositions int     `json:"correct_positions"`
	IsWinner         bool    `json:"is_winner"`
	NextTurn         *string `json:"next_turn"`
	WinnerID         *string `json:"winner_id"`
	TurnNumber       int     `json:"turn_number"`
	Message          *string `json:"message"`
}

// GuessFromResult converts a game.GuessResult
func GuessFromResult(r *game.GuessResult) Guess {
	resp := Guess{
		GuessID:          string(r.Guess.ID),
		GuessedNumber:    r.Guess.GuessedNumber,
		CorrectDigits:    r.Guess.CorrectDigits,
		CorrectPositions: r.Guess.CorrectPositions,
		IsWinner:         r.IsWinner,
		NextTurn:         optionalID(r.NextTurn),
		WinnerID:         optionalID(r.WinnerID),
		TurnNumber:       r.Guess.TurnNumber,
	}
	if r.IsWinner {
		msg := MessageWinner
		resp.Message = &msg
	}
	return resp
}

// GuessHistoryEntry is one guess in a history listing
type GuessHistoryEntry struct {
	GuessID          string    `json:"guess_id"`
	Guesser          string    `json:"guesser"`
	GuesserName      string    `json:"guesser_name"`
	GuessedNumber    string    `json:"guessed_number"`
	CorrectDigits    int       `json:"correct_digits"`
	CorrectPositions int       `json:"correct_positions"`
	TurnNumber       int       `json:"turn_number"`
	CreatedAt        time.Time `json:"created_at"`
}

// GuessHistory is the response for listing guesses
type GuessHistory struct {
	GameID       string              `json:"game_id"`
	TotalGuesses int                 `json:"total_guesses"`
	Guesses      []GuessHistoryEntry `json:"guesses"`
}

// GuessHistoryFromModel builds a history, resolving guesser names from the game
func GuessHistoryFromModel(g *model.Game, guesses []*model.Guess) GuessHistory {
	entries := make([]GuessHistoryEntry, 0, len(guesses))
	for _, guess := range guesses {
		var name string
		if p := g.Player(guess.GuesserID); p != nil {
			name = p.Name
		}
		entries = append(entries, GuessHistoryEntry{
			GuessID:          string(guess.ID),
			Guesser:          string(guess.GuesserID),
			GuesserName:      name,
			GuessedNumber:    guess.GuessedNumber,
			CorrectDigits:    guess.CorrectDigits,
			CorrectPositions: guess.CorrectPositions,
			TurnNumber:       guess.TurnNumber,
			CreatedAt:        guess.CreatedAt,
		})
	}
	return GuessHistory{
		GameID:       string(g.ID),
		TotalGuesses: len(entries),
		Guesses:      entries,
	}
}

// Turn is the response for the turn endpoint
type Turn struct {
	GameID            string  `json:"game_id"`
	CurrentTurn       *string `json:"current_turn"`
	CurrentPlayerName *string `json:"current_player_name"`
	TurnCount         int     `json:"turn_count"`
	GameStatus        string  `json:"game_status"`
}

// TurnFromModel converts a model.Game
func TurnFromModel(g *model.Game) Turn {
	resp := Turn{
		GameID:      string(g.ID),
		CurrentTurn: optionalID(g.CurrentTurn),
		TurnCount:   g.TurnCount,
		GameStatus:  string(g.Status),
	}
	if p := g.Player(g.CurrentTurn); p != nil {
		name := p.Name
		resp.CurrentPlayerName = &name
	}
	return resp
}
