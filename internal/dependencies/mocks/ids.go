package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/passcode-go/internal/dependencies/ids"
	"github.com/mcoot/passcode-go/internal/model"
)

// MockIDs is a mock implementation of ids.Generator for testing.
// Queued values are returned first; after that it counts up
// ("game_1", "player_1", "player_2", ...).
type MockIDs struct {
	mu sync.Mutex

	games   []model.GameID
	players []model.PlayerID
	guesses []model.GuessID

	gameCount   int
	playerCount int
	guessCount  int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// GameID returns the next queued game ID, or a sequential one
func (m *MockIDs) GameID() model.GameID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.games) > 0 {
		id := m.games[0]
		m.games = m.games[1:]
		return id
	}
	m.gameCount++
	return model.GameID(fmt.Sprintf("game_%d", m.gameCount))
}

// PlayerID returns the next queued player ID, or a sequential one
func (m *MockIDs) PlayerID() model.PlayerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.players) > 0 {
		id := m.players[0]
		m.players = m.players[1:]
		return id
	}
	m.playerCount++
	return model.PlayerID(fmt.Sprintf("player_%d", m.playerCount))
}

// GuessID returns the next queued guess ID, or a sequential one
func (m *MockIDs) GuessID() model.GuessID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.guesses) > 0 {
		id := m.guesses[0]
		m.guesses = m.guesses[1:]
		return id
	}
	m.guessCount++
	return model.GuessID(fmt.Sprintf("guess_%d", m.guessCount))
}

// QueueGameIDs adds values to the game ID queue
func (m *MockIDs) QueueGameIDs(values ...model.GameID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games = append(m.games, values...)
}

// QueuePlayerIDs adds values to the player ID queue
func (m *MockIDs) QueuePlayerIDs(values ...model.PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = append(m.players, values...)
}

// Reset clears queues and counters
func (m *MockIDs) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games, m.players, m.guesses = nil, nil, nil
	m.gameCount, m.playerCount, m.guessCount = 0, 0, 0
}
