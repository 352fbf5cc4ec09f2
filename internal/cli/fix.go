package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/wrapfix/internal/configloader"
	"github.com/yaklabco/wrapfix/internal/logging"
	"github.com/yaklabco/wrapfix/pkg/config"
	"github.com/yaklabco/wrapfix/pkg/pipeline"
	"github.com/yaklabco/wrapfix/pkg/reporter"
	"github.com/yaklabco/wrapfix/pkg/rewrite"
	"github.com/yaklabco/wrapfix/pkg/runner"
)

type fixFlags struct {
	format       string
	ignore       []string
	include      []string
	extensions   []string
	suffixes     []string
	triggers     []string
	language     string
	envelope     string
	dataProperty string
	wrapperVar   string
	renamePrefix string
	guardWindow  int
	backupSuffix string
	noStrict     bool
	noContext    bool
	compact      bool
	verbose      bool
	failOnSkip   bool
	summaryOrder string
	watch        bool
}

func newFixCommand() *cobra.Command {
	var cfg config.Config
	flags := &fixFlags{}

	cmd := &cobra.Command{
		Use:     "fix [paths...]",
		Aliases: []string{"rewrite"},
		Short:   "Wrap serialized test fixtures in the response envelope",
		Long:    fixLongDescription,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(cmd, args, &cfg, flags)
		},
	}

	addFixFlags(cmd, &cfg, flags)

	return cmd
}

const fixLongDescription = `Rewrite test fixtures so that the value handed to Serialize is wrapped
in the response envelope:

  var expectedResponse = new Widget { Id = 1 };
  var json = JsonSerializer.Serialize(expectedResponse);

becomes

  var expectedWidget = new Widget { Id = 1 };
  var apiResponse = new ApiResponse<Widget> { Data = expectedWidget };
  var json = JsonSerializer.Serialize(apiResponse);

By default, walks the current directory for *Tests.cs and *Test.cs files.
Files that are already wrapped are left alone, so running twice is safe.

Examples:
  wrapfix fix                          # Rewrite test files under the current directory
  wrapfix fix tests/ WidgetTests.cs    # Rewrite specific directories and files
  wrapfix fix --dry-run --format diff  # Show the changes without writing them
  wrapfix fix --check                  # Exit 1 if any file would change (CI)
  wrapfix fix --watch tests/           # Rewrite fixtures as a generator writes them
  wrapfix fix --envelope Envelope --data-property Payload`

func runFix(cmd *cobra.Command, args []string, cli *config.Config, flags *fixFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	applyFixFlags(cmd, cli, flags)
	if flags.watch && cli.Check {
		return withExitCode(ExitInvalidUsage, errors.New("--watch cannot be combined with --check"))
	}

	workDir, err := os.Getwd()
	if err != nil {
		return withExitCode(ExitIOError, fmt.Errorf("get working directory: %w", err))
	}

	ctx, cfg, err := loadConfig(ctx, cmd, workDir, cli)
	if err != nil {
		return err
	}
	logger := logging.FromContext(ctx)

	rules, err := pipeline.RulesetFromConfig(cfg)
	if err != nil {
		return withExitCode(ExitConfigError, errors.Join(errors.New("invalid rewrite templates"), err))
	}

	rep, err := newReporter(cmd, cfg, flags, workDir)
	if err != nil {
		return withExitCode(ExitInvalidUsage, err)
	}

	runOpts := runner.OptionsFromConfig(cfg, args)
	runOpts.WorkingDir = workDir

	logger.Debug("starting rewrite run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
		logging.FieldDryRun, runOpts.Pipeline.DryRun,
		logging.FieldEnvelope, rules.Envelope().Type,
		logging.FieldRules, len(rules.Rules()),
	)

	run := runner.New(pipeline.New(rules))
	result, err := run.Run(ctx, runOpts)
	if err != nil {
		if result == nil {
			return withExitCode(ExitIOError, errors.Join(errors.New("rewrite run failed"), err))
		}
		logger.Warn("run interrupted; files already written stay written", logging.FieldError, err)
	}

	logOutcomes(logger, result)
	if _, err := rep.Report(ctx, result); err != nil {
		return withExitCode(ExitIOError, fmt.Errorf("report results: %w", err))
	}

	logger.Debug("rewrite run finished",
		logging.FieldFilesDiscovered, result.Stats.FilesDiscovered,
		logging.FieldFilesChanged, result.Stats.FilesChanged,
		logging.FieldFilesWritten, result.Stats.FilesWritten,
		logging.FieldSitesRewritten, result.Stats.Sites[rewrite.StatusRewritten],
	)

	if ctx.Err() != nil {
		return withExitCode(ExitInternalError, fmt.Errorf("run cancelled: %w", ctx.Err()))
	}

	if flags.watch {
		return watchFix(ctx, run, runOpts, rep)
	}

	switch code := ExitCodeFromResult(result, cfg.Check, flags.failOnSkip); code {
	case ExitSuccess:
		return nil
	case ExitChangesPending:
		return withExitCode(code, ErrChangesPending)
	case ExitSkippedSites:
		return withExitCode(code, ErrSkippedSites)
	default:
		return withExitCode(code, fmt.Errorf("%d file(s) could not be processed", result.Stats.FilesErrored))
	}
}

// applyFixFlags copies flags that were set on the command line into cli.
// Unset flags stay zero so that they do not override configuration files.
func applyFixFlags(cmd *cobra.Command, cli *config.Config, flags *fixFlags) {
	changed := cmd.Flags().Changed

	if changed("format") {
		cli.Format = config.OutputFormat(flags.format)
	}
	if changed("ignore") {
		cli.Ignore = flags.ignore
	}
	if changed("include") {
		cli.Discovery.Include = flags.include
	}
	if changed("ext") {
		cli.Discovery.Extensions = flags.extensions
	}
	if changed("suffix") {
		cli.Discovery.Suffixes = flags.suffixes
	}
	if changed("trigger") {
		cli.Discovery.Triggers = flags.triggers
	}
	if changed("language") {
		cli.Discovery.Language = flags.language
	}
	cli.Envelope.Type = flags.envelope
	cli.Envelope.DataProperty = flags.dataProperty
	cli.Envelope.Variable = flags.wrapperVar
	if changed("rename-prefix") {
		cli.Envelope.RenamePrefix = config.Ptr(flags.renamePrefix)
	}
	cli.Envelope.GuardWindow = flags.guardWindow
	cli.Backups.Suffix = flags.backupSuffix
	if flags.noStrict {
		cli.Strict = config.Ptr(false)
	}
}

// loadConfig resolves the configuration and returns ctx carrying the
// logger it configures.
func loadConfig(ctx context.Context, cmd *cobra.Command, workDir string, cli *config.Config) (context.Context, *config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return ctx, nil, fmt.Errorf("get config flag: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cli,
	})
	if err != nil {
		return ctx, nil, withExitCode(ExitConfigError, errors.Join(errors.New("failed to load configuration"), err))
	}
	cfg := loadResult.Config

	logger := configureLogger(cmd, cfg.Log)

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}
	return logging.WithLogger(ctx, logger), cfg, nil
}

// logOutcomes writes per-file outcomes at debug level and withheld or
// failed files at warn level.
func logOutcomes(logger *log.Logger, result *runner.Result) {
	for _, file := range result.Files {
		switch {
		case file.Error != nil:
			logger.Warn("file failed", logging.FieldPath, file.Path, logging.FieldError, file.Error)
		case file.Result == nil:
		case file.Result.Skipped:
			logger.Warn("changes withheld", logging.FieldPath, file.Path, logging.FieldReason, file.Result.SkipReason)
		default:
			logger.Debug("file processed", logging.FieldPath, file.Path, logging.FieldOutcome, file.Result.Summary())
		}
	}
}

func newReporter(cmd *cobra.Command, cfg *config.Config, flags *fixFlags, workDir string) (reporter.Reporter, error) {
	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return nil, fmt.Errorf("invalid format: %w", err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:         cmd.OutOrStdout(),
		ErrorWriter:    cmd.ErrOrStderr(),
		Format:         format,
		Color:          colorMode,
		ShowContext:    !flags.noContext,
		ShowSummary:    true,
		GroupByFile:    true,
		IncludeWrapped: flags.verbose,
		Compact:        flags.compact,
		SummaryOrder:   reporter.SummaryOrder(flags.summaryOrder),
		WorkingDir:     workDir,
	})
	if err != nil {
		return nil, fmt.Errorf("create reporter: %w", err)
	}
	return rep, nil
}

// watchFix rewrites files as they change until ctx is cancelled. Only
// outcomes worth showing are reported: rewrites, skipped sites and errors.
func watchFix(ctx context.Context, run *runner.Runner, opts runner.Options, rep reporter.Reporter) error {
	logger := logging.FromContext(ctx)
	logger.Info("watching for changes; press Ctrl+C to stop", logging.FieldPaths, opts.Paths)

	err := run.Watch(ctx, opts, func(outcome runner.FileOutcome) {
		single := runner.NewResult(outcome)
		if !single.HasErrors() && !single.HasChanges() && !single.HasSkippedSites() && single.Stats.FilesSkipped == 0 {
			logger.Debug("no changes", logging.FieldPath, outcome.Path)
			return
		}
		logOutcomes(logger, single)
		if _, err := rep.Report(ctx, single); err != nil {
			logger.Warn("report failed", logging.FieldError, err)
		}
	})
	if err != nil {
		return withExitCode(ExitIOError, fmt.Errorf("watch: %w", err))
	}
	logger.Info("stopped watching")
	return nil
}

func addFixFlags(cmd *cobra.Command, cfg *config.Config, flags *fixFlags) {
	fs := cmd.Flags()

	fs.BoolVar(&cfg.DryRun, "dry-run", false, "show what would change without writing files")
	fs.BoolVar(&cfg.Check, "check", false, "like --dry-run, but exit 1 when any file would change")
	fs.IntVarP(&cfg.Jobs, "jobs", "j", 0, "number of parallel workers (0 = auto)")
	fs.StringVar(&flags.format, "format", "text", "output format: text, table, json, diff, summary, markdown, html")

	// Discovery.
	fs.StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to skip")
	fs.StringSliceVar(&flags.include, "include", nil, "only process paths matching these glob patterns")
	fs.StringSliceVar(&flags.extensions, "ext", nil, "file extensions to walk (default .cs)")
	fs.StringSliceVar(&flags.suffixes, "suffix", nil, "file name suffixes to walk (default Tests.cs, Test.cs)")
	fs.StringSliceVar(&flags.triggers, "trigger", nil, "text one of which a file must contain (default Serialize()")
	fs.StringVar(&flags.language, "language", "", `language a file must be detected as, or "any"`)
	fs.BoolVar(&cfg.Discovery.FollowSymlinks, "follow-symlinks", false, "follow directory symlinks")

	// Envelope.
	fs.StringVar(&flags.envelope, "envelope", "", "envelope type (default ApiResponse)")
	fs.StringVar(&flags.dataProperty, "data-property", "", "envelope property that receives the value (default Data)")
	fs.StringVar(&flags.wrapperVar, "wrapper-var", "", "name of the envelope variable (default apiResponse)")
	fs.StringVar(&flags.renamePrefix, "rename-prefix", "", `prefix for the renamed value (default "expected"; "" keeps the name)`)
	fs.IntVar(&flags.guardWindow, "guard-window", 0, "bytes after a declaration searched for an existing envelope")

	// Safety.
	fs.BoolVar(&cfg.NoBackups, "no-backups", false, "do not keep a backup of rewritten files")
	fs.StringVar(&flags.backupSuffix, "backup-suffix", "", "suffix of backup files (default .wrapfix.bak)")
	fs.BoolVar(&cfg.NoVerify, "no-verify", false, "write even when a second pass would change the file again")
	fs.BoolVar(&flags.noStrict, "no-strict", false, "detect concurrent edits by size and mod time only")

	// Output.
	fs.BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	fs.BoolVar(&flags.compact, "compact", false, "use compact output format")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "also list sites that are already wrapped")
	fs.BoolVar(&flags.failOnSkip, "fail-on-skip", false, "exit 2 when any site could not be rewritten")
	fs.StringVar(&flags.summaryOrder, "summary-order", "templates",
		"order of tables in summary output: templates, files")
	fs.BoolVarP(&flags.watch, "watch", "w", false, "keep running and rewrite files as they are written")
}
