package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/passcode-go/internal/api/response"
)

// Response types (match the API)
type (
	HealthResult     = response.Health
	CreateGameResult = response.CreateGame
	JoinGameResult   = response.JoinGame
	LockNumberResult = response.LockNumber
	GameStatus       = response.GameStatus
	GameList         = []response.GameStatus
	Player           = response.Player
	GuessResult      = response.Guess
	GuessHistory     = response.GuessHistory
	Turn             = response.Turn
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case CreateGameResult:
		o.printJoined(v.GameID, v.PlayerID, v.Status, v.Message)
	case JoinGameResult:
		o.printJoined(v.GameID, v.PlayerID, v.Status, v.Message)
	case LockNumberResult:
		fmt.Fprintf(o.w, "Player: %s (ready: %s)\n", v.PlayerID, yesNo(v.IsReady))
		fmt.Fprintf(o.w, "Game Status: %s\n", v.GameStatus)
		fmt.Fprintln(o.w, v.Message)
	case GameStatus:
		o.printGameStatus(v)
	case GameList:
		o.printGameList(v)
	case Player:
		fmt.Fprintf(o.w, "Player: %s (%s)\n", v.Name, v.PlayerID)
		fmt.Fprintf(o.w, "Ready: %s\n", yesNo(v.IsReady))
	case GuessResult:
		o.printGuessResult(v)
	case GuessHistory:
		o.printGuessHistory(v)
	case Turn:
		o.printTurn(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printJoined(gameID, playerID, status, message string) {
	fmt.Fprintf(o.w, "Game: %s\n", gameID)
	fmt.Fprintf(o.w, "Player: %s\n", playerID)
	fmt.Fprintf(o.w, "Status: %s\n", status)
	fmt.Fprintln(o.w, message)
}

func (o *Output) printGameStatus(g GameStatus) {
	fmt.Fprintf(o.w, "Game: %s\n", g.GameID)
	fmt.Fprintf(o.w, "Status: %s\n", g.Status)
	fmt.Fprintf(o.w, "Player 1: %s\n", describePlayer(g.Player1))
	fmt.Fprintf(o.w, "Player 2: %s\n", describePlayer(g.Player2))
	fmt.Fprintf(o.w, "Turns: %d\n", g.TurnCount)
	if g.CurrentTurn != nil {
		fmt.Fprintf(o.w, "Current Turn: %s\n", *g.CurrentTurn)
	}
	if g.WinnerID != nil {
		fmt.Fprintf(o.w, "Winner: %s\n", *g.WinnerID)
	}
	fmt.Fprintf(o.w, "Created: %s\n", g.CreatedAt.Format("2006-01-02 15:04:05"))
}

func (o *Output) printGameList(games GameList) {
	if len(games) == 0 {
		fmt.Fprintln(o.w, "No games")
		return
	}
	for _, g := range games {
		players := describePlayer(g.Player1)
		if g.Player2 != nil {
			players += " vs " + describePlayer(g.Player2)
		}
		fmt.Fprintf(o.w, "%s  %-11s  turns=%d  %s\n", g.GameID, g.Status, g.TurnCount, players)
	}
}

func (o *Output) printGuessResult(r GuessResult) {
	fmt.Fprintf(o.w, "Guess %s: %d correct digits, %d in the right position\n",
		r.GuessedNumber, r.CorrectDigits, r.CorrectPositions)
	fmt.Fprintf(o.w, "Turn: %d\n", r.TurnNumber)
	if r.IsWinner {
		fmt.Fprintln(o.w, *r.Message)
		return
	}
	if r.NextTurn != nil {
		fmt.Fprintf(o.w, "Next Turn: %s\n", *r.NextTurn)
	}
}

func (o *Output) printGuessHistory(h GuessHistory) {
	fmt.Fprintf(o.w, "Game: %s (%d guesses)\n", h.GameID, h.TotalGuesses)
	for _, g := range h.Guesses {
		fmt.Fprintf(o.w, "  #%d %s guessed %s: %d digits, %d positions\n",
			g.TurnNumber, g.GuesserName, g.GuessedNumber, g.CorrectDigits, g.CorrectPositions)
	}
}

func (o *Output) printTurn(t Turn) {
	fmt.Fprintf(o.w, "Game: %s\n", t.GameID)
	fmt.Fprintf(o.w, "Status: %s\n", t.GameStatus)
	fmt.Fprintf(o.w, "Turns: %d\n", t.TurnCount)
	if t.CurrentTurn != nil {
		name := ""
		if t.CurrentPlayerName != nil {
			name = *t.CurrentPlayerName
		}
		fmt.Fprintf(o.w, "Current Turn: %s (%s)\n", name, *t.CurrentTurn)
	}
}

func describePlayer(p *Player) string {
	if p == nil {
		return "(open)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", p.Name, p.PlayerID)
	if p.IsReady {
		b.WriteString(" [ready]")
	}
	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
