package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/passcode-go/internal/api/apierr"
	"github.com/mcoot/passcode-go/internal/api/handler"
	"github.com/mcoot/passcode-go/internal/api/response"
	"github.com/mcoot/passcode-go/internal/config"
	"github.com/mcoot/passcode-go/internal/events"
	"github.com/mcoot/passcode-go/internal/metrics"
	"github.com/mcoot/passcode-go/internal/middleware"
	"github.com/mcoot/passcode-go/internal/services/game"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	GameController *game.Controller
	HubManager     *events.HubManager
	// Metrics is optional; when nil /metrics is not served
	Metrics *metrics.Recorder
	// CORSOrigins lists allowed browser origins; empty allows any
	CORSOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewMethodNotAllowedError())
	})

	// Create handlers
	gameHandler := handler.NewGameHandler(cfg.GameController)
	eventsHandler := handler.NewEventsHandler(cfg.GameController, cfg.HubManager, cfg.CORSOrigins, cfg.Logger)

	// Root routes
	r.HandleFunc("/", rootHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger, writePanic))
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.CORS(cfg.CORSOrigins))
	if cfg.Metrics != nil {
		api.Use(cfg.Metrics.Middleware)
	}

	// Game routes
	api.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games/{game_id}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{game_id}", gameHandler.Delete).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/games/{game_id}/join", gameHandler.Join).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/games/{game_id}/players/{player_id}", gameHandler.GetPlayer).Methods(http.MethodGet)
	api.HandleFunc("/games/{game_id}/players/{player_id}/lock-number", gameHandler.LockNumber).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/games/{game_id}/guess", gameHandler.Guess).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/games/{game_id}/guesses", gameHandler.Guesses).Methods(http.MethodGet)
	api.HandleFunc("/games/{game_id}/turn", gameHandler.Turn).Methods(http.MethodGet)

	// Live event stream
	api.HandleFunc("/games/{game_id}/events", eventsHandler.Watch).Methods(http.MethodGet)

	return r
}

// writePanic answers a panicking API request with the generic internal error body
func writePanic(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}

func rootHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Root{
		Message: "Welcome to " + config.AppName + " API",
		Version: config.Version,
		Docs:    "/api/v1",
	})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "healthy"})
}
