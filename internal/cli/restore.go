package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/wrapfix/internal/logging"
	"github.com/yaklabco/wrapfix/pkg/config"
	"github.com/yaklabco/wrapfix/pkg/pipeline"
	"github.com/yaklabco/wrapfix/pkg/runner"
)

type restoreFlags struct {
	dryRun bool
}

func newRestoreCommand() *cobra.Command {
	flags := &restoreFlags{}

	cmd := &cobra.Command{
		Use:   "restore [paths...]",
		Short: "Restore rewritten files from their backups",
		Long: `Restore files from the backups written by fix and remove the backups.

Files are discovered the same way fix discovers them. A file without a
backup is left alone.

Examples:
  wrapfix restore                 # Restore every backed-up test file
  wrapfix restore tests/ --dry-run`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "list the files that would be restored")

	return cmd
}

func runRestore(cmd *cobra.Command, args []string, flags *restoreFlags) error {
	workDir, err := os.Getwd()
	if err != nil {
		return withExitCode(ExitIOError, fmt.Errorf("get working directory: %w", err))
	}
	ctx, cfg, err := loadConfig(cmd.Context(), cmd, workDir, &config.Config{})
	if err != nil {
		return err
	}
	logger := logging.FromContext(ctx)

	opts := runner.OptionsFromConfig(cfg, args)
	opts.WorkingDir = workDir
	files, err := runner.Discover(ctx, opts)
	if err != nil {
		return withExitCode(ExitIOError, err)
	}

	backups := pipeline.BackupsFromConfig(cfg)
	var restored int
	var errs []error
	for _, path := range files {
		if !backups.Exists(path) {
			continue
		}
		if flags.dryRun {
			logger.Info("would restore", logging.FieldPath, path)
			restored++
			continue
		}
		ok, err := backups.Restore(ctx, path)
		if err != nil {
			logger.Error("restore failed", logging.FieldPath, path, logging.FieldError, err)
			errs = append(errs, err)
			continue
		}
		if ok {
			logger.Info("restored", logging.FieldPath, path)
			restored++
		}
	}

	logger.Info("restore complete", logging.FieldFiles, restored)
	if err := errors.Join(errs...); err != nil {
		return withExitCode(ExitIOError, err)
	}
	return nil
}
