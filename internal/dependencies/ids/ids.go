package ids

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mcoot/passcode-go/internal/model"
)

const (
	gamePrefix   = "game_"
	playerPrefix = "player_"
	guessPrefix  = "guess_"

	// suffixLength is the number of hex characters taken from a UUID
	suffixLength = 12
)

// Generator produces unique identifiers for games, players and guesses
type Generator interface {
	GameID() model.GameID
	PlayerID() model.PlayerID
	GuessID() model.GuessID
}

// UUIDGenerator builds prefixed identifiers from random UUIDs,
// e.g. "game_3f2a9c01b4de"
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// GameID returns a new game identifier
func (g *UUIDGenerator) GameID() model.GameID {
	return model.GameID(gamePrefix + suffix())
}

// PlayerID returns a new player identifier
func (g *UUIDGenerator) PlayerID() model.PlayerID {
	return model.PlayerID(playerPrefix + suffix())
}

// GuessID returns a new guess identifier
func (g *UUIDGenerator) GuessID() model.GuessID {
	return model.GuessID(guessPrefix + suffix())
}

func suffix() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return hex[:suffixLength]
}

// Ensure UUIDGenerator implements Generator
var _ Generator = (*UUIDGenerator)(nil)
