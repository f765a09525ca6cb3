package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/passcode-go/internal/model"
)

func TestRecorderCountsGameEvents(t *testing.T) {
	r := New(nil)
	ctx := context.Background()

	for _, e := range []model.Event{
		{Type: model.EventGameCreated},
		{Type: model.EventGameCreated},
		{Type: model.EventPlayerJoined},
		{Type: model.EventGameStarted},
		{Type: model.EventGuessMade, Status: model.GameStatusInProgress},
		{Type: model.EventGuessMade, Status: model.GameStatusInProgress},
		{Type: model.EventGuessMade, Status: model.GameStatusCompleted},
		{Type: model.EventGameCompleted, Status: model.GameStatusCompleted},
	} {
		r.OnGameEvent(ctx, e)
	}

	assert.InDelta(t, 2, promtestutil.ToFloat64(r.gamesCreated), 0)
	assert.InDelta(t, 1, promtestutil.ToFloat64(r.gamesStarted), 0)
	assert.InDelta(t, 1, promtestutil.ToFloat64(r.gamesCompleted), 0)
	assert.InDelta(t, 2, promtestutil.ToFloat64(r.guesses.WithLabelValues(OutcomeMiss)), 0)
	assert.InDelta(t, 1, promtestutil.ToFloat64(r.guesses.WithLabelValues(OutcomeWin)), 0)
}

func TestEventClientsGauge(t *testing.T) {
	clients := 3
	r := New(func() int { return clients })

	expected := `
# HELP passcode_event_clients Connected websocket event watchers.
# TYPE passcode_event_clients gauge
passcode_event_clients 3
`
	require.NoError(t, promtestutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "passcode_event_clients"))
}

func TestMiddlewareObservesRouteTemplate(t *testing.T) {
	r := New(nil)

	router := mux.NewRouter()
	router.Use(r.Middleware)
	router.HandleFunc("/api/v1/games/{game_id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	router.Handle("/metrics", r.Handler())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/games/game_abc", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.Equal(t, 1, promtestutil.CollectAndCount(r.requests))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `route="/api/v1/games/{game_id}"`)
	assert.Contains(t, body, `status="404"`)
	assert.NotContains(t, body, "game_abc")
}
