package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "tactics",
		Short: "CLI tool for the tactics progress API",
		Long: `tactics is a CLI tool for the tactics progress JSON API.

It registers players and reads or records their progress on the infinity
puzzle ladder, speedrun levels and repetition levels.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load player from file if not provided via flag/env
			if err := cfg.LoadPlayer(); err != nil {
				return err
			}

			var trace io.Writer
			if cfg.Verbose {
				trace = cmd.ErrOrStderr()
			}
			client = NewClient(cfg.ServerURL, trace)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: TACTICS_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.PlayerID, "player", cfg.PlayerID, "Player ID (env: TACTICS_PLAYER)")
	rootCmd.PersistentFlags().StringVar(&cfg.PlayerFile, "player-file", cfg.PlayerFile, "Player file path (env: TACTICS_PLAYER_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Log each API request to stderr")

	// Add subcommands
	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newInfinityCmd())
	rootCmd.AddCommand(newSpeedrunCmd())
	rootCmd.AddCommand(newRepetitionCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}
