package request

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	PlayerName string `json:"player_name"`
}

// JoinGameRequest is the request body for joining a game
type JoinGameRequest struct {
	PlayerName string `json:"player_name"`
}

// LockNumberRequest is the request body for locking a secret number
type LockNumberRequest struct {
	SecretNumber string `json:"secret_number"`
}

// GuessRequest is the request body for guessing the opponent's number
type GuessRequest struct {
	PlayerID      string `json:"player_id"`
	GuessedNumber string `json:"guessed_number"`
}
