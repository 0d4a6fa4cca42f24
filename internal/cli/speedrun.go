package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func newSpeedrunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speedrun",
		Short: "Speedrun commands",
	}

	cmd.AddCommand(newSpeedrunStatsCmd())
	cmd.AddCommand(newSpeedrunRecordCmd())

	return cmd
}

func newSpeedrunStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completed count and personal bests",
		RunE: func(cmd *cobra.Command, args []string) error {
			playerID, err := cfg.RequirePlayer()
			if err != nil {
				return err
			}

			var result SpeedrunSummary
			if err := client.Get(cmd.Context(), playerPath(playerID, "speedruns"), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newSpeedrunRecordCmd() *cobra.Command {
	var elapsed time.Duration

	cmd := &cobra.Command{
		Use:   "record <level-id>",
		Short: "Record a speedrun completion time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			playerID, err := cfg.RequirePlayer()
			if err != nil {
				return err
			}

			req := map[string]any{
				"level_id":    args[0],
				"duration_ms": elapsed.Milliseconds(),
			}
			var result CompletedSpeedrun
			if err := client.Post(cmd.Context(), playerPath(playerID, "speedruns"), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&elapsed, "time", 0, "Completion time, e.g. 9.8s or 1m5s (required)")
	_ = cmd.MarkFlagRequired("time")

	return cmd
}
