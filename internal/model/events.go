package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventGameCreated   EventType = "game_created"
	EventPlayerJoined  EventType = "player_joined"
	EventNumberLocked  EventType = "number_locked"
	EventGameStarted   EventType = "game_started"
	EventGuessMade     EventType = "guess_made"
	EventGameCompleted EventType = "game_completed"
	EventGameDeleted   EventType = "game_deleted"
)

// Event describes a state change in a game. Payloads never carry secrets.
type Event struct {
	Type      EventType
	Timestamp time.Time
	GameID    GameID
	PlayerID  PlayerID // The player who triggered the event, if any
	Status    GameStatus
	Payload   any // Type-specific data
}

// PlayerJoinedPayload contains data for player joined events
type PlayerJoinedPayload struct {
	PlayerID PlayerID
	Name     string
}

// GameStartedPayload contains data for game started events
type GameStartedPayload struct {
	FirstTurn PlayerID
}

// GuessMadePayload contains data for guess events
type GuessMadePayload struct {
	GuessID          GuessID
	GuessedNumber    string
	CorrectDigits    int
	CorrectPositions int
	TurnNumber       int
	NextTurn         PlayerID
}

// GameCompletedPayload contains data for game completed events
type GameCompletedPayload struct {
	WinnerID   PlayerID
	TurnNumber int
}
