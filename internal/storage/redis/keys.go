package redis

import (
	"fmt"

	"github.com/mcoot/passcode-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "passcode"

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// guessesKey returns the Redis key for the ZSET of a game's guesses, scored by turn number
func guessesKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:guesses:%s", keyPrefix, gameID)
}

// gamesIndexKey returns the Redis key for the ZSET of all game IDs, scored by creation time
func gamesIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}
