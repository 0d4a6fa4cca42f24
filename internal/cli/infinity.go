package cli

import (
	"github.com/spf13/cobra"
)

func newInfinityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "infinity",
		Short: "Infinity puzzle ladder commands",
	}

	cmd.AddCommand(newInfinityStatusCmd())
	cmd.AddCommand(newInfinitySolveCmd())

	return cmd
}

func newInfinityStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the next puzzle and solve counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			playerID, err := cfg.RequirePlayer()
			if err != nil {
				return err
			}

			var result InfinityStatus
			if err := client.Get(cmd.Context(), playerPath(playerID, "infinity"), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newInfinitySolveCmd() *cobra.Command {
	var difficulty string

	cmd := &cobra.Command{
		Use:   "solve <puzzle-id>",
		Short: "Record a solved puzzle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			playerID, err := cfg.RequirePlayer()
			if err != nil {
				return err
			}

			req := map[string]string{
				"puzzle_id":  args[0],
				"difficulty": difficulty,
			}
			var result Solve
			if err := client.Post(cmd.Context(), playerPath(playerID, "infinity", "solves"), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&difficulty, "difficulty", "", "Difficulty of the puzzle: easy, medium, hard, insane (required)")
	_ = cmd.MarkFlagRequired("difficulty")

	return cmd
}
