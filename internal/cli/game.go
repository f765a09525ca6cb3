package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameDeleteCmd())
	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGameLockCmd())
	cmd.AddCommand(newGamePlayerCmd())
	cmd.AddCommand(newGameGuessCmd())
	cmd.AddCommand(newGameGuessesCmd())
	cmd.AddCommand(newGameTurnCmd())
	cmd.AddCommand(newGameWatchCmd())

	return cmd
}

func gamePath(gameID string) string {
	return "/api/v1/games/" + url.PathEscape(gameID)
}

func newGameCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <player-name>",
		Short: "Create a new game as player 1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"player_name": args[0]}
			var result CreateGameResult

			if err := client.Post(cmd.Context(), "/api/v1/games", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/games"
			if status != "" {
				path += "?status=" + url.QueryEscape(status)
			}

			var result GameList
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only show games in this status: WAITING, IN_PROGRESS, COMPLETED")

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <game-id>",
		Short: "Get game state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameStatus

			if err := client.Get(cmd.Context(), gamePath(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <game-id>",
		Short: "Delete a game with its players and guesses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(cmd.Context(), gamePath(args[0])); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage("Game deleted")
			return nil
		},
	}
}

func newGameJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <game-id> <player-name>",
		Short: "Join a waiting game as player 2",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"player_name": args[1]}
			var result JoinGameResult

			if err := client.Post(cmd.Context(), gamePath(args[0])+"/join", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameLockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lock <game-id> <player-id> <number>",
		Short: "Lock your secret 4-digit number",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("%s/players/%s/lock-number", gamePath(args[0]), url.PathEscape(args[1]))
			req := map[string]string{"secret_number": args[2]}
			var result LockNumberResult

			if err := client.Post(cmd.Context(), path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGamePlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "player <game-id> <player-id>",
		Short: "Show a player of the game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("%s/players/%s", gamePath(args[0]), url.PathEscape(args[1]))
			var result Player

			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameGuessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guess <game-id> <player-id> <number>",
		Short: "Guess the opponent's number (on your turn)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"player_id": args[1], "guessed_number": args[2]}
			var result GuessResult

			if err := client.Post(cmd.Context(), gamePath(args[0])+"/guess", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameGuessesCmd() *cobra.Command {
	var playerID string

	cmd := &cobra.Command{
		Use:   "guesses <game-id>",
		Short: "Show the guess history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := gamePath(args[0]) + "/guesses"
			if playerID != "" {
				path += "?player_id=" + url.QueryEscape(playerID)
			}

			var result GuessHistory
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Only show guesses made by this player id")

	return cmd
}

func newGameTurnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "turn <game-id>",
		Short: "Show whose turn it is",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Turn

			if err := client.Get(cmd.Context(), gamePath(args[0])+"/turn", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
