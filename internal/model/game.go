package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameStatus represents the current phase of a game
type GameStatus string

const (
	GameStatusWaiting    GameStatus = "WAITING"     // Waiting for a second player or locked numbers
	GameStatusInProgress GameStatus = "IN_PROGRESS" // Players are taking turns guessing
	GameStatusCompleted  GameStatus = "COMPLETED"   // A player guessed the opponent's number
)

// Valid returns true for a known status
func (s GameStatus) Valid() bool {
	switch s {
	case GameStatusWaiting, GameStatusInProgress, GameStatusCompleted:
		return true
	}
	return false
}

// Game is a two-player passcode game.
//
// Player1 is the creator and is always set. Player2 is nil until someone
// joins. CurrentTurn is only set while the game is in progress, and WinnerID
// only once it is completed. TurnCount equals the number of guesses made.
type Game struct {
	ID     GameID
	Status GameStatus

	Player1 *Player
	Player2 *Player

	CurrentTurn PlayerID
	WinnerID    PlayerID
	TurnCount   int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Player returns the player in either slot with the given ID, or nil
func (g *Game) Player(id PlayerID) *Player {
	if g.Player1 != nil && g.Player1.ID == id {
		return g.Player1
	}
	if g.Player2 != nil && g.Player2.ID == id {
		return g.Player2
	}
	return nil
}

// HasPlayer returns true if the player occupies one of the slots
func (g *Game) HasPlayer(id PlayerID) bool {
	return g.Player(id) != nil
}

// Opponent returns the player in the other slot, or nil
func (g *Game) Opponent(id PlayerID) *Player {
	switch {
	case g.Player1 != nil && g.Player1.ID == id:
		return g.Player2
	case g.Player2 != nil && g.Player2.ID == id:
		return g.Player1
	}
	return nil
}

// IsFull returns true once the second slot is taken
func (g *Game) IsFull() bool {
	return g.Player2 != nil
}

// BothReady returns true if both slots are filled and both players have locked a number
func (g *Game) BothReady() bool {
	return g.Player1 != nil && g.Player2 != nil && g.Player1.IsReady && g.Player2.IsReady
}

// Players returns the occupied slots in slot order
func (g *Game) Players() []*Player {
	players := make([]*Player, 0, 2)
	if g.Player1 != nil {
		players = append(players, g.Player1)
	}
	if g.Player2 != nil {
		players = append(players, g.Player2)
	}
	return players
}

// Player2ID returns the joiner's ID, or empty if nobody has joined
func (g *Game) Player2ID() PlayerID {
	if g.Player2 == nil {
		return ""
	}
	return g.Player2.ID
}

// Clone returns a deep copy so callers can't mutate stored state
func (g *Game) Clone() *Game {
	c := *g
	if g.Player1 != nil {
		p := *g.Player1
		c.Player1 = &p
	}
	if g.Player2 != nil {
		p := *g.Player2
		c.Player2 = &p
	}
	return &c
}
