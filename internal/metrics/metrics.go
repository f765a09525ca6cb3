package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/passcode-go/internal/middleware"
	"github.com/mcoot/passcode-go/internal/model"
)

const namespace = "passcode"

// Guess outcomes used as the passcode_guesses_total label
const (
	OutcomeMiss = "miss"
	OutcomeWin  = "win"
)

// Recorder exposes game and HTTP metrics on its own registry
type Recorder struct {
	registry *prometheus.Registry

	gamesCreated   prometheus.Counter
	gamesStarted   prometheus.Counter
	gamesCompleted prometheus.Counter
	guesses        *prometheus.CounterVec
	requests       *prometheus.HistogramVec
}

// New creates a Recorder. clientCount, if non-nil, backs the
// passcode_event_clients gauge.
func New(clientCount func() int) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		gamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_created_total",
			Help:      "Games created.",
		}),
		gamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Games that reached IN_PROGRESS.",
		}),
		gamesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_completed_total",
			Help:      "Games won by a player.",
		}),
		guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guesses_total",
			Help:      "Guesses processed, by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.gamesCreated,
		r.gamesStarted,
		r.gamesCompleted,
		r.guesses,
		r.requests,
	)
	if clientCount != nil {
		r.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_clients",
			Help:      "Connected websocket event watchers.",
		}, func() float64 { return float64(clientCount()) }))
	}

	return r
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// OnGameEvent updates the game counters
func (r *Recorder) OnGameEvent(ctx context.Context, event model.Event) {
	switch event.Type {
	case model.EventGameCreated:
		r.gamesCreated.Inc()
	case model.EventGameStarted:
		r.gamesStarted.Inc()
	case model.EventGameCompleted:
		r.gamesCompleted.Inc()
	case model.EventGuessMade:
		outcome := OutcomeMiss
		if event.Status == model.GameStatusCompleted {
			outcome = OutcomeWin
		}
		r.guesses.WithLabelValues(outcome).Inc()
	}
}

// Middleware observes request durations labelled by route template
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := middleware.WrapResponseWriter(w)

		next.ServeHTTP(rec, req)

		route := "unmatched"
		if current := mux.CurrentRoute(req); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		r.requests.WithLabelValues(req.Method, route, strconv.Itoa(rec.Status())).
			Observe(time.Since(start).Seconds())
	})
}
