// Package pipeline runs the rewrite engine over one file with the safety
// steps around it: snapshot, dry-run diff, change detection, backup and
// atomic write.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/wrapfix/pkg/fix"
	"github.com/yaklabco/wrapfix/pkg/fsutil"
	"github.com/yaklabco/wrapfix/pkg/langdetect"
	"github.com/yaklabco/wrapfix/pkg/rewrite"
)

// Pipeline error types for categorization.
var (
	// ErrFileNotFound indicates the file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrWriteFailure indicates a write error.
	ErrWriteFailure = errors.New("write failure")
)

// Result is the outcome of processing one file.
type Result struct {
	// Result holds the sites and the rewritten text.
	*rewrite.Result

	Path string

	// Snapshot is the file state before processing; nil for in-memory input.
	Snapshot *fsutil.Snapshot

	// Diff is set in dry-run mode when the text changed.
	Diff *fix.Diff

	// Filtered explains why the rules never ran on this file, e.g. the
	// language did not match or no trigger text was present.
	Filtered string

	// Skipped is true if changes were computed but deliberately not written.
	Skipped    bool
	SkipReason string

	// Backup is the path of the backup written for this file, if any.
	Backup string

	// Written is true if the file was written to disk.
	Written bool
}

// Summary returns a short human-readable outcome.
func (r *Result) Summary() string {
	switch {
	case r.Filtered != "":
		return "filtered: " + r.Filtered
	case r.Skipped:
		return "skipped: " + r.SkipReason
	case r.Written && r.Backup != "":
		return "rewritten (backup created)"
	case r.Written:
		return "rewritten"
	case r.Result != nil && r.Changed():
		return "changes pending"
	default:
		return "no changes"
	}
}

// Options controls file selection and the safety steps.
type Options struct {
	// Language, when set, is the go-enry language a file must have.
	// Generated and vendored files are always filtered.
	Language string

	// Triggers are cheap substrings of which at least one must occur
	// before the rules run.
	Triggers []string

	// DryRun computes diffs without writing files.
	DryRun bool

	// Backups configures sidecar backups.
	Backups fsutil.Backups

	// StrictRaceDetection re-hashes the file before writing. When false,
	// only mod time and size are compared.
	StrictRaceDetection bool

	// Verify re-runs the rules on the rewritten text and refuses to write
	// when that second pass would change it again.
	Verify bool
}

// DefaultOptions returns the default safety options.
func DefaultOptions() Options {
	return Options{
		Language:            langdetect.CSharp,
		Triggers:            []string{"Serialize("},
		StrictRaceDetection: true,
		Verify:              true,
	}
}

// Pipeline processes single files with one ruleset.
type Pipeline struct {
	Rules *rewrite.Ruleset
}

// New creates a pipeline for rules.
func New(rules *rewrite.Ruleset) *Pipeline {
	return &Pipeline{Rules: rules}
}

// ProcessFile runs the full pipeline for one file:
//
//  1. Load and snapshot the file.
//  2. Filter by language and trigger text, then rewrite in memory.
//  3. Optionally verify that a second pass is a no-op.
//  4. In dry-run mode, produce a diff and stop.
//  5. Check that the file was not modified meanwhile.
//  6. Create a backup, if enabled.
//  7. Write the new text atomically.
//
// Files without rewritten sites are never written.
func (p *Pipeline) ProcessFile(ctx context.Context, path string, opts Options) (*Result, error) {
	original, snap, err := fsutil.Load(ctx, path)
	if err != nil {
		return nil, categorizeError(err)
	}

	result, err := p.process(ctx, path, original, opts)
	if err != nil {
		return nil, err
	}
	result.Snapshot = snap
	if result.Filtered != "" || result.Skipped || !result.Changed() || opts.DryRun {
		return result, nil
	}

	changed, err := p.checkModified(ctx, snap, opts.StrictRaceDetection)
	if err != nil {
		return nil, err
	}
	if changed {
		result.Skipped = true
		result.SkipReason = "file modified during processing"
		return result, nil
	}

	backup, err := opts.Backups.Create(ctx, snap, original)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.Backup = backup

	if err := fsutil.WriteAtomic(ctx, path, []byte(result.Text), snap.Mode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.Written = true

	return result, nil
}

// ProcessContent runs the rewrite over in-memory text without file I/O.
func (p *Pipeline) ProcessContent(ctx context.Context, path, content string, opts Options) (*Result, error) {
	return p.process(ctx, path, content, opts)
}

func (p *Pipeline) process(ctx context.Context, path, content string, opts Options) (*Result, error) {
	if reason := filter(path, content, opts); reason != "" {
		return &Result{
			Result:   &rewrite.Result{Original: content, Text: content},
			Path:     path,
			Filtered: reason,
		}, nil
	}

	rw, err := p.Rules.Rewrite(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("processing cancelled: %w", err)
	}
	result := &Result{Result: rw, Path: path}
	if !rw.Changed() {
		return result, nil
	}

	if opts.Verify {
		again, err := p.Rules.Rewrite(ctx, rw.Text)
		if err != nil {
			return nil, fmt.Errorf("processing cancelled: %w", err)
		}
		if again.Changed() {
			result.Skipped = true
			result.SkipReason = fmt.Sprintf("a second pass would rewrite %d more site(s)",
				again.Count(rewrite.StatusRewritten))
			return result, nil
		}
	}

	if opts.DryRun {
		result.Diff = fix.GenerateDiff(path, rw.Original, rw.Text)
	}
	return result, nil
}

func filter(path, content string, opts Options) string {
	raw := []byte(content)
	if !langdetect.HasAny(raw, opts.Triggers) {
		return "no trigger text"
	}
	verdict := langdetect.Classify(path, raw)
	switch {
	case verdict.Generated:
		return "generated source"
	case verdict.Vendored:
		return "vendored source"
	case !verdict.Accept(opts.Language):
		lang := verdict.Language
		if lang == langdetect.Unknown {
			lang = "unknown language"
		}
		return fmt.Sprintf("%s, not %s", lang, opts.Language)
	}
	return ""
}

func (p *Pipeline) checkModified(ctx context.Context, snap *fsutil.Snapshot, strict bool) (bool, error) {
	var (
		changed bool
		err     error
	)
	if strict {
		changed, err = snap.Changed(ctx)
	} else {
		changed, err = snap.ChangedQuick(ctx)
	}
	if err != nil {
		return false, fmt.Errorf("check modified: %w", err)
	}
	return changed, nil
}

// categorizeError wraps an error with the matching pipeline error type.
func categorizeError(err error) error {
	switch {
	case errors.Is(err, fsutil.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	case errors.Is(err, fsutil.ErrPermissionDenied):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		return err
	}
}

// IsPipelineError checks if an error is a known pipeline error type.
func IsPipelineError(err error) bool {
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrWriteFailure)
}
