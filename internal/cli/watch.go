package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/passcode-go/internal/events"
)

func newGameWatchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "watch <game-id>",
		Short: "Stream live events from a game",
		Long: `Connect to the game's websocket endpoint and stream events in real-time.

Events include:
  - player_joined: Player 2 joined
  - number_locked: A player locked their number
  - game_started: Both numbers locked, player 1 to guess
  - guess_made: A guess was scored
  - game_completed: A player guessed correctly
  - game_deleted: The game was deleted (the stream ends)

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchGame(ctx, args[0], limit, NewOutput(cfg.Output, cmd.OutOrStdout()))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Exit after this many game events (0 streams until closed)")

	return cmd
}

// websocketURL maps the server's http(s) URL to ws(s)
func websocketURL(baseURL, path string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://") + path
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://") + path
	}
	return baseURL + path
}

func watchGame(ctx context.Context, gameID string, limit int, out *Output) error {
	url := websocketURL(client.BaseURL(), gamePath(gameID)+"/events")

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		// The server answers with a JSON error before upgrading
		if resp != nil {
			defer func() { _ = resp.Body.Close() }()
			var errResp ErrorResponse
			if body, readErr := io.ReadAll(resp.Body); readErr == nil && json.Unmarshal(body, &errResp) == nil && errResp.Error.Code != "" {
				errResp.Error.Status = resp.StatusCode
				return &errResp.Error
			}
			if resp.StatusCode != http.StatusSwitchingProtocols {
				return fmt.Errorf("connection failed: HTTP %d", resp.StatusCode)
			}
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Unblock the read loop on interrupt
	go func() {
		<-ctx.Done()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	seen := 0
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if out.format != "json" {
					fmt.Fprintln(out.w, "Disconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		var msg events.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("invalid event: %w", err)
		}
		out.printEvent(msg, data)

		if msg.Type == events.TypeConnected {
			continue
		}
		seen++
		if limit > 0 && seen >= limit {
			return nil
		}
	}
}

func (o *Output) printEvent(msg events.Message, raw []byte) {
	if o.format == "json" {
		fmt.Fprintln(o.w, string(raw))
		return
	}

	timestamp := msg.Timestamp.Local().Format("2006-01-02 15:04:05")
	if msg.Type == events.TypeConnected {
		fmt.Fprintf(o.w, "[%s] connected to game %s\n", timestamp, msg.GameID)
		return
	}

	var details []string
	if msg.PlayerID != "" {
		details = append(details, "player="+msg.PlayerID)
	}
	if msg.Status != "" {
		details = append(details, "status="+msg.Status)
	}
	if msg.Data != nil {
		data, _ := json.Marshal(msg.Data)
		details = append(details, string(data))
	}
	fmt.Fprintf(o.w, "[%s] %s: %s\n", timestamp, msg.Type, strings.Join(details, " "))
}
