package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/UnknownOlympus/proximity/internal/config"
	"github.com/UnknownOlympus/proximity/internal/logging"
	"github.com/spf13/cobra"
)

// session carries what every subcommand needs once the root command has loaded it.
type session struct {
	cfg *config.Config
	log *slog.Logger
}

// newRootCmd creates the proximity command. Without a subcommand it serves the API.
func newRootCmd() *cobra.Command {
	rt := &session{}

	cmd := &cobra.Command{
		Use:   "proximity",
		Short: "Proximity search service for a directory of businesses",
		Long: `proximity stores businesses with their position and answers
"what is within R kilometers of this point" queries over HTTP.

Configuration comes from the environment (PROXIMITY_*, DB_*), an optional .env file
and an optional YAML file named by PROXIMITY_CONFIG.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			rt.cfg = cfg
			rt.log = logging.New(cfg.Env, os.Stdout)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), rt)
		},
	}

	cmd.AddCommand(newServeCmd(rt), newInitCmd(rt))

	return cmd
}

func newServeCmd(rt *session) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the initializer pipeline and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), rt)
		},
	}
}

func newInitCmd(rt *session) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Run the initializer stages once and exit",
		Long: `init ensures the schema and the geo index and loads seed data, then exits.
Any failed stage makes the command exit with a non-zero status, whatever the configured
failure policy is.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), rt)
		},
	}
}
