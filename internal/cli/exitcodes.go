package cli

import (
	"errors"
	"fmt"

	"github.com/yaklabco/wrapfix/pkg/runner"
)

// Exit codes for wrapfix.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitChangesPending indicates that --check found files that would be
	// rewritten.
	ExitChangesPending = 1

	// ExitSkippedSites indicates that --fail-on-skip found sites that
	// could not be rewritten.
	ExitSkippedSites = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// exitCodeHelp describes each exit code for the root help.
//
//nolint:gochecknoglobals // Read-only lookup table.
var exitCodeHelp = []struct {
	code int
	help string
}{
	{ExitSuccess, "success"},
	{ExitChangesPending, "--check found files that would change"},
	{ExitSkippedSites, "--fail-on-skip found sites left unchanged"},
	{ExitInvalidUsage, "invalid usage"},
	{ExitConfigError, "invalid configuration"},
	{ExitInternalError, "internal error"},
	{ExitIOError, "a file could not be read or written"},
}

// ExitError carries a process exit code with the error that caused it.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Silent reports whether the error only signals an exit status and needs
// no log line.
func (e *ExitError) Silent() bool {
	return errors.Is(e.Err, ErrChangesPending) || errors.Is(e.Err, ErrSkippedSites)
}

// withExitCode wraps err with code; nil stays nil.
func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitInternalError
}

// Signals for exit codes that do not indicate a failure of the tool.
var (
	ErrChangesPending = errors.New("changes pending")
	ErrSkippedSites   = errors.New("sites skipped")
)

// ExitCodeFromResult determines the exit code of a run. File errors win
// over pending changes, which win over skipped sites.
func ExitCodeFromResult(result *runner.Result, check, failOnSkip bool) int {
	if result == nil {
		return ExitSuccess
	}

	switch {
	case result.HasErrors():
		return ExitIOError
	case check && (result.HasChanges() || result.Stats.FilesSkipped > 0):
		return ExitChangesPending
	case failOnSkip && result.HasSkippedSites():
		return ExitSkippedSites
	default:
		return ExitSuccess
	}
}
