package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mcoot/passcode-go/internal/events"
	"github.com/mcoot/passcode-go/internal/services/game"
)

// EventsHandler upgrades watchers of a game to a websocket event stream
type EventsHandler struct {
	gameController *game.Controller
	hubManager     *events.HubManager
	upgrader       *websocket.Upgrader
	logger         *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(gameController *game.Controller, hubManager *events.HubManager, allowedOrigins []string, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		gameController: gameController,
		hubManager:     hubManager,
		upgrader:       events.NewUpgrader(allowedOrigins),
		logger:         logger,
	}
}

// Watch handles GET /api/v1/games/{game_id}/events
func (h *EventsHandler) Watch(w http.ResponseWriter, r *http.Request) {
	gameID := gameIDVar(r)

	// Only existing games get a hub
	if _, err := h.gameController.GetGame(r.Context(), gameID); err != nil {
		writeError(w, r, err)
		return
	}

	hub := h.hubManager.GetOrCreateHub(gameID)
	events.ServeWS(w, r, hub, h.upgrader, h.logger)
}
