package api

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/passcode-go/internal/config"
	"github.com/mcoot/passcode-go/internal/middleware"
	"github.com/mcoot/passcode-go/internal/testutil"
)

func TestServerConfigFrom(t *testing.T) {
	cfg := config.Config{
		Host:              "127.0.0.1",
		Port:              9000,
		ReadTimeout:       time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      3 * time.Second,
		IdleTimeout:       4 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}

	sc := ServerConfigFrom(cfg)
	assert.Equal(t, "127.0.0.1", sc.Host)
	assert.Equal(t, 9000, sc.Port)
	assert.Equal(t, 2*time.Second, sc.ReadHeaderTimeout)
	assert.Equal(t, 4*time.Second, sc.IdleTimeout)
	assert.Equal(t, 5*time.Second, sc.ShutdownTimeout)

	server := NewServer(http.NotFoundHandler(), sc, testutil.NopLogger())
	assert.Equal(t, "127.0.0.1:9000", server.Addr())
	assert.Equal(t, 3*time.Second, server.server.WriteTimeout)
}

func TestServerServesOnPickedPortAndShutsDown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := NewServer(handler, ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ShutdownTimeout: time.Second,
	}, testutil.NopLogger())

	require.NoError(t, server.Listen())
	assert.NotEqual(t, "127.0.0.1:0", server.Addr())

	done := make(chan error, 1)
	go func() { done <- server.Start() }()

	resp, err := http.Get(server.URL() + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, server.Shutdown(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServerListenFailsOnBusyPort(t *testing.T) {
	first := NewServer(http.NotFoundHandler(), ServerConfig{Host: "127.0.0.1"}, testutil.NopLogger())
	require.NoError(t, first.Listen())
	defer func() { _ = first.listener.Close() }()

	_, rawPort, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(rawPort)
	require.NoError(t, err)

	second := NewServer(http.NotFoundHandler(), ServerConfig{Host: "127.0.0.1", Port: port}, testutil.NopLogger())
	assert.Error(t, second.Listen())
}

func TestWritePanicHidesPanicValue(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("secret 1234 leaked")
	})
	rr := httptest.NewRecorder()
	middleware.Recovery(testutil.NopLogger(), writePanic)(panicking).
		ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/games/game_1/guess", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`, rr.Body.String())
}
