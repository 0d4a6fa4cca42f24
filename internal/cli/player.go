package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayerRegisterCmd())
	cmd.AddCommand(newPlayerLoginCmd())
	cmd.AddCommand(newPlayerShowCmd())

	return cmd
}

func newPlayerRegisterCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new player account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"username": user,
				"password": pass,
			}
			var result Player

			if err := client.Post(cmd.Context(), "/api/v1/players", req, &result); err != nil {
				return err
			}

			if err := cfg.SavePlayer(result.ID); err != nil {
				return fmt.Errorf("failed to save player: %w", err)
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newPlayerLoginCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"username": user,
				"password": pass,
			}
			var result Player

			if err := client.Post(cmd.Context(), "/api/v1/players/login", req, &result); err != nil {
				return err
			}

			if err := cfg.SavePlayer(result.ID); err != nil {
				return fmt.Errorf("failed to save player: %w", err)
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newPlayerShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [player-id]",
		Short: "Show a player, defaulting to the current one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			playerID := ""
			if len(args) == 1 {
				playerID = args[0]
			} else {
				var err error
				if playerID, err = cfg.RequirePlayer(); err != nil {
					return err
				}
			}

			var result Player
			if err := client.Get(cmd.Context(), playerPath(playerID), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
