package events

import (
	"encoding/json"
	"time"

	"github.com/mcoot/passcode-go/internal/model"
)

// TypeConnected is sent once to every client right after it connects
const TypeConnected = "connected"

// Message is the JSON frame pushed to watchers
type Message struct {
	Type      string    `json:"type"`
	GameID    string    `json:"game_id"`
	PlayerID  string    `json:"player_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// PlayerJoinedData is the data of a player_joined message
type PlayerJoinedData struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

// GameStartedData is the data of a game_started message
type GameStartedData struct {
	FirstTurn string `json:"first_turn"`
}

// GuessMadeData is the data of a guess_made message
type GuessMadeData struct {
	GuessID          string  `json:"guess_id"`
	GuessedNumber    string  `json:"guessed_number"`
	CorrectDigits    int     `json:"correct_digits"`
	CorrectPositions int     `json:"correct_positions"`
	TurnNumber       int     `json:"turn_number"`
	NextTurn         *string `json:"next_turn"`
}

// GameCompletedData is the data of a game_completed message
type GameCompletedData struct {
	WinnerID   string `json:"winner_id"`
	TurnNumber int    `json:"turn_number"`
}

// NewMessage converts a game event to its wire form
func NewMessage(event model.Event) Message {
	msg := Message{
		Type:      string(event.Type),
		GameID:    string(event.GameID),
		PlayerID:  string(event.PlayerID),
		Status:    string(event.Status),
		Timestamp: event.Timestamp,
	}

	switch p := event.Payload.(type) {
	case model.PlayerJoinedPayload:
		msg.Data = PlayerJoinedData{PlayerID: string(p.PlayerID), Name: p.Name}
	case model.GameStartedPayload:
		msg.Data = GameStartedData{FirstTurn: string(p.FirstTurn)}
	case model.GuessMadePayload:
		data := GuessMadeData{
			GuessID:          string(p.GuessID),
			GuessedNumber:    p.GuessedNumber,
			CorrectDigits:    p.CorrectDigits,
			CorrectPositions: p.CorrectPositions,
			TurnNumber:       p.TurnNumber,
		}
		if p.NextTurn != "" {
			next := string(p.NextTurn)
			data.NextTurn = &next
		}
		msg.Data = data
	case model.GameCompletedPayload:
		msg.Data = GameCompletedData{WinnerID: string(p.WinnerID), TurnNumber: p.TurnNumber}
	}

	return msg
}

func connectedMessage(gameID model.GameID) []byte {
	// Marshalling a Message with no data cannot fail
	b, _ := json.Marshal(Message{
		Type:      TypeConnected,
		GameID:    string(gameID),
		Timestamp: time.Now().UTC(),
	})
	return b
}
