// Package cli provides the Cobra command structure for wrapfix.
package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/wrapfix/internal/logging"
	"github.com/yaklabco/wrapfix/pkg/config"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root wrapfix command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "wrapfix",
		Short: "Wrap serialized test fixtures in a response envelope",
		Long: `wrapfix rewrites generated C# test fixtures so that the object handed to a
serializer is first wrapped in a response envelope such as ApiResponse<T>.

Rewrites are local text edits guided by templates. Sites that cannot be
resolved unambiguously are reported and left alone, and sites that were
already rewritten are recognized, so running wrapfix twice changes nothing.
Files are written atomically, with optional backups, dry-run diffs and a
check mode for CI.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
			cmd.SetContext(logging.WithLogger(cmd.Context(), logging.Default()))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newFixCommand())
	rootCmd.AddCommand(newTemplatesCommand())
	rootCmd.AddCommand(newRestoreCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}

// configureLogger builds the run logger from the log configuration and
// makes it the default. --debug overrides the configured level.
func configureLogger(cmd *cobra.Command, cfg config.LogConfig) *log.Logger {
	level := cfg.Level
	if debug, err := cmd.Flags().GetBool("debug"); err == nil && debug {
		level = "debug"
	}
	logger := logging.NewWithOptions(logging.Options{
		Writer: cmd.ErrOrStderr(),
		Level:  level,
		Format: cfg.Format,
	})
	logging.SetDefault(logger)
	return logger
}
