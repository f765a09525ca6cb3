package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/passcode-go/internal/model"
)

// Publisher forwards game events to the websocket clients watching the game
type Publisher struct {
	hubs   *HubManager
	logger *slog.Logger
}

// NewPublisher creates a new Publisher
func NewPublisher(hubs *HubManager, logger *slog.Logger) *Publisher {
	return &Publisher{
		hubs:   hubs,
		logger: logger.With(slog.String("component", "events-publisher")),
	}
}

// OnGameEvent broadcasts the event. A deleted game's hub is closed once the
// deletion notice is queued.
func (p *Publisher) OnGameEvent(ctx context.Context, event model.Event) {
	hub := p.hubs.GetHub(event.GameID)
	if hub == nil {
		return
	}

	data, err := json.Marshal(NewMessage(event))
	if err != nil {
		p.logger.Error("failed to encode event",
			slog.String("game_id", string(event.GameID)),
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}
	hub.Broadcast(data)

	if event.Type == model.EventGameDeleted {
		p.hubs.RemoveHub(event.GameID)
	}
}
