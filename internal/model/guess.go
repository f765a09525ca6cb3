package model

import "time"

// GuessID uniquely identifies a guess
type GuessID string

// Guess records one scored attempt at the opponent's secret. Guesses are
// append-only; TurnNumber is the game's turn counter after the guess.
type Guess struct {
	ID               GuessID
	GameID           GameID
	GuesserID        PlayerID
	TargetID         PlayerID
	GuessedNumber    string
	CorrectDigits    int
	CorrectPositions int
	TurnNumber       int
	CreatedAt        time.Time
}

// IsWinning returns true if every position matched
func (g *Guess) IsWinning() bool {
	return g.CorrectPositions == NumberLength
}
