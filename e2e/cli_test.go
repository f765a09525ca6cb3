package e2e_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/passcode-go/internal/api"
	"github.com/mcoot/passcode-go/internal/factory"
	"github.com/mcoot/passcode-go/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "passcode-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/passcode")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) command(args ...string) *exec.Cmd {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)
	return exec.Command(r.binaryPath, fullArgs...)
}

func (r *cliRunner) run(args ...string) (string, error) {
	output, err := r.command(args...).CombinedOutput()
	return string(output), err
}

// runJSON runs a command that must succeed and decodes its output
func (r *cliRunner) runJSON(t *testing.T, result any, args ...string) {
	t.Helper()
	output, err := r.run(args...)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), result), "output: %s", output)
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Production wiring with real ids and clock
	logger := testutil.NopLogger()
	app, err := factory.New(context.Background(), factory.Config{Logger: logger, MetricsEnabled: true})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		GameController: app.GameController,
		HubManager:     app.HubManager,
		Metrics:        app.Metrics,
	})

	// Port 0 lets the OS pick a free port
	server := api.NewServer(router, api.ServerConfig{
		Host:              "127.0.0.1",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}, logger)
	require.NoError(t, server.Listen())

	go func() {
		if err := server.Start(); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	waitForServer(t, server.URL()+"/health")

	return &testServer{
		addr: server.URL(),
		shutdown: func() {
			app.HubManager.Close()
			_ = server.Shutdown(context.Background())
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type healthResponse struct {
	Status string `json:"status"`
}

type joinResponse struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

type lockResponse struct {
	PlayerID   string `json:"player_id"`
	IsReady    bool   `json:"is_ready"`
	GameStatus string `json:"game_status"`
	Message    string `json:"message"`
}

type guessResponse struct {
	CorrectDigits    int     `json:"correct_digits"`
	CorrectPositions int     `json:"correct_positions"`
	IsWinner         bool    `json:"is_winner"`
	NextTurn         *string `json:"next_turn"`
	WinnerID         *string `json:"winner_id"`
	Message          *string `json:"message"`
}

type gameResponse struct {
	GameID    string  `json:"game_id"`
	Status    string  `json:"status"`
	TurnCount int     `json:"turn_count"`
	WinnerID  *string `json:"winner_id"`
}

type eventMessage struct {
	Type     string `json:"type"`
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	var resp healthResponse
	cli.runJSON(t, &resp, "health")
	assert.Equal(t, "healthy", resp.Status)
}

func TestCLI_FullGameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Alice creates a game, Bob joins
	var alice joinResponse
	cli.runJSON(t, &alice, "game", "create", "Alice")
	assert.True(t, strings.HasPrefix(alice.GameID, "game_"), alice.GameID)
	assert.True(t, strings.HasPrefix(alice.PlayerID, "player_"), alice.PlayerID)
	gameID := alice.GameID

	var bob joinResponse
	cli.runJSON(t, &bob, "game", "join", gameID, "Bob")
	assert.Equal(t, "WAITING", bob.Status)

	// Both lock their numbers
	var lock lockResponse
	cli.runJSON(t, &lock, "game", "lock", gameID, alice.PlayerID, "1234")
	assert.Equal(t, "Number locked. Waiting for opponent to lock their number.", lock.Message)
	cli.runJSON(t, &lock, "game", "lock", gameID, bob.PlayerID, "5678")
	assert.Equal(t, "IN_PROGRESS", lock.GameStatus)

	// Bob can't guess out of turn
	output, err := cli.run("game", "guess", gameID, bob.PlayerID, "1234")
	require.Error(t, err)
	assert.Contains(t, output, "NOT_YOUR_TURN")

	// Alice misses, Bob wins
	var guess guessResponse
	cli.runJSON(t, &guess, "game", "guess", gameID, alice.PlayerID, "8765")
	assert.Equal(t, 4, guess.CorrectDigits)
	assert.Equal(t, 0, guess.CorrectPositions)
	require.NotNil(t, guess.NextTurn)
	assert.Equal(t, bob.PlayerID, *guess.NextTurn)

	cli.runJSON(t, &guess, "game", "guess", gameID, bob.PlayerID, "1234")
	assert.True(t, guess.IsWinner)
	require.NotNil(t, guess.Message)

	var game gameResponse
	cli.runJSON(t, &game, "game", "get", gameID)
	assert.Equal(t, "COMPLETED", game.Status)
	assert.Equal(t, 2, game.TurnCount)
	require.NotNil(t, game.WinnerID)
	assert.Equal(t, bob.PlayerID, *game.WinnerID)

	// Deleting the game makes it disappear
	_, err = cli.run("game", "delete", gameID)
	require.NoError(t, err)
	output, err = cli.run("game", "get", gameID)
	require.Error(t, err)
	assert.Contains(t, output, "GAME_NOT_FOUND")
}

func TestCLI_WatchGame(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	var alice joinResponse
	cli.runJSON(t, &alice, "game", "create", "Alice")

	// Stream two events: the join and the deletion
	watch := cli.command("game", "watch", alice.GameID, "--limit", "2")
	stdout, err := watch.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, watch.Start())
	t.Cleanup(func() { _ = watch.Process.Kill() })

	lines := make(chan string, 8)
	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	next := func() eventMessage {
		t.Helper()
		select {
		case line, ok := <-lines:
			require.True(t, ok, "watch exited early")
			var msg eventMessage
			require.NoError(t, json.Unmarshal([]byte(line), &msg), line)
			return msg
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for event")
			return eventMessage{}
		}
	}

	assert.Equal(t, "connected", next().Type)

	_, err = cli.run("game", "join", alice.GameID, "Bob")
	require.NoError(t, err)
	joined := next()
	assert.Equal(t, "player_joined", joined.Type)
	assert.Equal(t, alice.GameID, joined.GameID)

	_, err = cli.run("game", "delete", alice.GameID)
	require.NoError(t, err)
	assert.Equal(t, "game_deleted", next().Type)

	// Drain stdout before waiting on the process
	for range lines {
	}
	require.NoError(t, watch.Wait())
}
