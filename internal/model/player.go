package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is one participant of a game. A player belongs to exactly one game.
type Player struct {
	ID     PlayerID
	GameID GameID
	Name   string

	// SecretNumber is empty until the player locks a number
	SecretNumber string
	IsReady      bool

	CreatedAt time.Time
}

// HasLockedNumber returns true once the player's secret is set
func (p *Player) HasLockedNumber() bool {
	return p.IsReady && p.SecretNumber != ""
}
