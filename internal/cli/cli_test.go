package cli_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/yaklabco/wrapfix/internal/cli"
	"github.com/yaklabco/wrapfix/pkg/pipeline"
	"github.com/yaklabco/wrapfix/pkg/rewrite"
	"github.com/yaklabco/wrapfix/pkg/runner"
)

func testInfo() cli.BuildInfo {
	return cli.BuildInfo{Version: "test", Commit: "test", Date: "test"}
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	if cmd == nil {
		t.Fatal("NewRootCommand returned nil")
	}
	if cmd.Use != "wrapfix" {
		t.Errorf("expected Use to be 'wrapfix', got %q", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("expected Short and Long descriptions to be set")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	for _, name := range []string{"fix", "templates", "restore", "init", "config", "version"} {
		subCmd, _, err := cmd.Find([]string{name})
		if err != nil {
			t.Errorf("expected subcommand %q to exist, got error: %v", name, err)
			continue
		}
		if subCmd.Name() != name {
			t.Errorf("expected subcommand name %q, got %q", name, subCmd.Name())
		}
	}
}

func TestFixCommandAlias(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	sub, _, err := cmd.Find([]string{"rewrite"})
	if err != nil {
		t.Fatalf("rewrite alias not found: %v", err)
	}
	if sub.Name() != "fix" {
		t.Errorf("alias resolved to %q", sub.Name())
	}
}

func TestFixCommandFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	fixCmd, _, err := cmd.Find([]string{"fix"})
	if err != nil {
		t.Fatalf("fix command not found: %v", err)
	}

	expectedFlags := []string{
		"dry-run",
		"check",
		"jobs",
		"format",
		"ignore",
		"include",
		"ext",
		"suffix",
		"trigger",
		"language",
		"envelope",
		"data-property",
		"wrapper-var",
		"rename-prefix",
		"guard-window",
		"no-backups",
		"backup-suffix",
		"no-verify",
		"fail-on-skip",
		"watch",
		"summary-order",
	}
	for _, flagName := range expectedFlags {
		if fixCmd.Flags().Lookup(flagName) == nil {
			t.Errorf("expected flag %q to exist on fix command", flagName)
		}
	}

	if err := fixCmd.Args(fixCmd, []string{"WidgetTests.cs", "tests/"}); err != nil {
		t.Errorf("fix command should accept arbitrary args, got error: %v", err)
	}
}

func TestGlobalFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	for _, flagName := range []string{"debug", "config", "color"} {
		if cmd.PersistentFlags().Lookup(flagName) == nil {
			t.Errorf("expected global flag %q to exist", flagName)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	info := cli.BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2024-01-01"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"full", []string{"version"}, []string{"wrapfix", "1.2.3", "abc123", "2024-01-01"}},
		{"short", []string{"version", "--short"}, []string{"1.2.3\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := cli.NewRootCommand(info)
			cmd.SetArgs(tt.args)
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&out)

			if err := cmd.Execute(); err != nil {
				t.Fatalf("version command failed: %v", err)
			}
			for _, want := range tt.want {
				if !bytes.Contains(out.Bytes(), []byte(want)) {
					t.Errorf("output %q missing %q", out.String(), want)
				}
			}
		})
	}
}

func TestRootHelpListsExitCodes(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	cmd.SetArgs([]string{"--help", "--color", "never"})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, want := range []string{"Usage:", "Commands:", "Exit Codes:", "--fail-on-skip found sites"} {
		if !bytes.Contains(out.Bytes(), []byte(want)) {
			t.Errorf("help output missing %q:\n%s", want, out.String())
		}
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, cli.ExitSuccess},
		{"plain error", errors.New("boom"), cli.ExitInternalError},
		{"exit error", &cli.ExitError{Code: cli.ExitConfigError, Err: errors.New("bad")}, cli.ExitConfigError},
		{"wrapped exit error", fmt.Errorf("run: %w", &cli.ExitError{Code: cli.ExitIOError}), cli.ExitIOError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := cli.ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitErrorSilent(t *testing.T) {
	t.Parallel()

	pending := &cli.ExitError{Code: cli.ExitChangesPending, Err: cli.ErrChangesPending}
	if !pending.Silent() {
		t.Error("changes pending should be silent")
	}
	failed := &cli.ExitError{Code: cli.ExitIOError, Err: errors.New("disk full")}
	if failed.Silent() {
		t.Error("I/O failure should not be silent")
	}
	if (&cli.ExitError{Code: 3}).Error() != "exit status 3" {
		t.Errorf("Error() = %q", (&cli.ExitError{Code: 3}).Error())
	}
}

func TestExitCodeFromResult(t *testing.T) {
	t.Parallel()

	rewritten := &runner.Result{
		Files: []runner.FileOutcome{{
			Path: "a.cs",
			Result: &pipeline.Result{Result: &rewrite.Result{
				Original: "a",
				Text:     "b",
				Sites:    []rewrite.Site{{Status: rewrite.StatusRewritten}},
			}},
		}},
		Stats: runner.Stats{FilesChanged: 1},
	}
	skipped := &runner.Result{
		Stats: runner.Stats{Sites: map[rewrite.Status]int{rewrite.StatusUnresolved: 1}},
	}
	failed := &runner.Result{
		Files: []runner.FileOutcome{{Path: "b.cs", Error: errors.New("denied")}},
		Stats: runner.Stats{FilesErrored: 1},
	}

	tests := []struct {
		name       string
		result     *runner.Result
		check      bool
		failOnSkip bool
		want       int
	}{
		{"clean", &runner.Result{}, true, true, cli.ExitSuccess},
		{"changes without check", rewritten, false, false, cli.ExitSuccess},
		{"changes with check", rewritten, true, false, cli.ExitChangesPending},
		{"skipped sites ignored", skipped, false, false, cli.ExitSuccess},
		{"skipped sites fail", skipped, false, true, cli.ExitSkippedSites},
		{"file error", failed, false, false, cli.ExitIOError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := cli.ExitCodeFromResult(tt.result, tt.check, tt.failOnSkip); got != tt.want {
				t.Errorf("ExitCodeFromResult() = %d, want %d", got, tt.want)
			}
		})
	}
}
