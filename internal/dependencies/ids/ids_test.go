package ids

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUUIDGeneratorFormat(t *testing.T) {
	g := New()

	assert.Regexp(t, regexp.MustCompile(`^game_[0-9a-f]{12}$`), string(g.GameID()))
	assert.Regexp(t, regexp.MustCompile(`^player_[0-9a-f]{12}$`), string(g.PlayerID()))
	assert.Regexp(t, regexp.MustCompile(`^guess_[0-9a-f]{12}$`), string(g.GuessID()))
}

func TestUUIDGeneratorUnique(t *testing.T) {
	g := New()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := string(g.GuessID())
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
