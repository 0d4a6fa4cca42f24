package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func newRepetitionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repetition",
		Short: "Repetition ladder commands",
	}

	cmd.AddCommand(newRepetitionStatusCmd())
	cmd.AddCommand(newRepetitionRoundsCmd())
	cmd.AddCommand(newRepetitionCompleteCmd())
	cmd.AddCommand(newRepetitionRoundCmd())

	return cmd
}

func newRepetitionStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the highest completed and unlocked levels",
		RunE: func(cmd *cobra.Command, args []string) error {
			playerID, err := cfg.RequirePlayer()
			if err != nil {
				return err
			}

			var result RepetitionStatus
			if err := client.Get(cmd.Context(), playerPath(playerID, "repetition"), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newRepetitionRoundsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rounds <level-id>",
		Short: "Show the most recent round times on a level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			playerID, err := cfg.RequirePlayer()
			if err != nil {
				return err
			}

			var result RecentRounds
			path := playerPath(playerID, "repetition", "levels", args[0], "rounds")
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newRepetitionCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <level-id>",
		Short: "Record a completed level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			playerID, err := cfg.RequirePlayer()
			if err != nil {
				return err
			}

			var result LevelCompletion
			path := playerPath(playerID, "repetition", "levels", args[0], "completions")
			if err := client.Post(cmd.Context(), path, nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newRepetitionRoundCmd() *cobra.Command {
	var elapsed time.Duration

	cmd := &cobra.Command{
		Use:   "round <level-id>",
		Short: "Record a practice round time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			playerID, err := cfg.RequirePlayer()
			if err != nil {
				return err
			}

			req := map[string]int64{"duration_ms": elapsed.Milliseconds()}
			var result Round
			path := playerPath(playerID, "repetition", "levels", args[0], "rounds")
			if err := client.Post(cmd.Context(), path, req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&elapsed, "time", 0, "Round time, e.g. 12s (required)")
	_ = cmd.MarkFlagRequired("time")

	return cmd
}
