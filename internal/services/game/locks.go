package game

import (
	"sync"

	"github.com/mcoot/passcode-go/internal/model"
)

// gameLocks serializes mutations per game. Entries are reference counted and
// dropped once no caller holds or waits on them.
type gameLocks struct {
	mu    sync.Mutex
	locks map[model.GameID]*gameLock
}

type gameLock struct {
	sync.Mutex
	refs int
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[model.GameID]*gameLock)}
}

// Lock blocks until the caller holds the lock for id and returns the unlock func
func (l *gameLocks) Lock(id model.GameID) func() {
	l.mu.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &gameLock{}
		l.locks[id] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.Lock()

	return func() {
		lock.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// size returns the number of live entries
func (l *gameLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
