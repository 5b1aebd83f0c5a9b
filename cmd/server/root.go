package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sakif/mydevjourney/internal/config"
	"github.com/sakif/mydevjourney/internal/server"
)

// newRootCmd builds the command tree. The root command itself serves HTTP,
// so a bare `mydevjourney` behaves like `mydevjourney serve`.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mydevjourney",
		Short: "Track GitHub activity, goal streaks and monthly recaps.",
		Long: `mydevjourney serves the MyDevJourney JSON API: GitHub sign-in,
development goals with daily progress, streaks, 30-day GitHub stats and
monthly recaps.

Configuration comes from defaults, an optional YAML file (--config or
MDJ_CONFIG) and MDJ_* environment variables, in that order.`,
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.PersistentFlags().String("config", "", "path to a YAML config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "log at debug level")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		newStatsCmd(),
		newRecapCmd(),
	)
	return root
}

// loadConfig reads the layered config named by --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// newLogger creates the structured logger. Server logs go to stdout; the
// CLI commands log to stderr so stdout stays pure JSON.
func newLogger(cmd *cobra.Command, cfg *config.Config, out io.Writer) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg, os.Stdout)

	// Ensure the data directory exists.
	// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			return fmt.Errorf("creating database directory %s: %w", dbDir, err)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	return srv.Start()
}
