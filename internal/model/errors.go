package model

import "errors"

// Common errors used across the application
var (
	// Lookup errors
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")

	// Lifecycle errors
	ErrGameFull             = errors.New("game is full")
	ErrGameNotStarted       = errors.New("game has not started")
	ErrGameAlreadyCompleted = errors.New("game is already completed")
	ErrPlayerNotInGame      = errors.New("player is not in this game")
	ErrNotYourTurn          = errors.New("not this player's turn")
	ErrNumberAlreadyLocked  = errors.New("number is already locked")

	// Validation errors
	ErrInvalidNumberFormat = errors.New("invalid number format")
	ErrInvalidPlayerName   = errors.New("invalid player name")
)
