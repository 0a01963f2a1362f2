// Package cli implements the command-line interface for rubik.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/rubik_server/internal/config"
	"github.com/SeamusWaldron/rubik_server/internal/logging"
)

const version = "0.2.0"

var (
	// Global flags
	configPath string
	dbPath     string
	logLevel   string
	verbose    bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "rubik",
	Short: "Rubik's Cube state server",
	Long: `rubik - a virtual 3x3 Rubik's Cube with an HTTP, websocket and MCP interface.

Cubes are driven with standard move notation (R R' L L' U U' D D' F F' B B' M M')
and solved by an external two-phase solver. Run 'rubik serve' for the API,
'rubik play' for a keyboard driven cube, or 'rubik apply' to try sequences.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file (optional)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Journal database path (default: none for serve, ~/.rubik/journal.db for history)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output (same as --log-level debug)")
}

// loadConfig reads the config file and environment, then applies the
// global flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	if cmd.Flags().Changed("db") {
		cfg.DBPath = dbPath
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newLogger builds the stderr logger for cfg.
func newLogger(cfg config.Config) *slog.Logger {
	return logging.NewLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))
}
