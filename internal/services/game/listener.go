package game

import (
	"context"

	"github.com/mcoot/passcode-go/internal/model"
)

// Listener is notified after each successful state change.
// Implementations must not block; they run on the request path.
type Listener interface {
	OnGameEvent(ctx context.Context, event model.Event)
}

// ListenerFunc adapts a function to the Listener interface
type ListenerFunc func(ctx context.Context, event model.Event)

// OnGameEvent calls f
func (f ListenerFunc) OnGameEvent(ctx context.Context, event model.Event) {
	f(ctx, event)
}

// Listeners fans an event out to each listener in order
type Listeners []Listener

// OnGameEvent notifies every listener
func (ls Listeners) OnGameEvent(ctx context.Context, event model.Event) {
	for _, l := range ls {
		if l != nil {
			l.OnGameEvent(ctx, event)
		}
	}
}
