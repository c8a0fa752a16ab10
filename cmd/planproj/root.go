package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/chazu/planproj/pkg/config"
	"github.com/chazu/planproj/pkg/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool

	// cfg is loaded from the environment before any command runs.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "planproj",
	Short: "Curve projection and coordinate transforms",
	Long: `Project polylines onto planes along arbitrary directions and convert
points between the world, user, display and paper space coordinate systems.

Settings come from PLANPROJ_* environment variables; flags override them.

Examples:
  planproj project examples/bracket.planproj           # Evaluate a script
  planproj project --dxf out examples/bracket.planproj # Also write DXF files
  planproj transform 1 2 3 --from ucs --to wcs         # Convert a point`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
}

// setup loads the configuration and installs the logger.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	cfg = c

	level, ok, err := cfg.Level()
	if err != nil {
		return err
	}
	if verbose {
		level, ok = slog.LevelDebug, true
	}
	if ok {
		logging.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	}
	return nil
}
