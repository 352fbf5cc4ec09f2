// Package runner discovers candidate source files and rewrites them
// concurrently through a pipeline.
package runner

import (
	"time"

	"github.com/yaklabco/wrapfix/pkg/config"
	"github.com/yaklabco/wrapfix/pkg/pipeline"
)

// Options controls multi-file runs.
type Options struct {
	// Paths are the files or directories to process. If empty, defaults
	// to the working directory.
	Paths []string

	// WorkingDir resolves relative Paths. If empty, the process working
	// directory is used.
	WorkingDir string

	// Extensions are the file extensions (with leading dot) considered.
	// Defaults to DefaultExtensions().
	Extensions []string

	// Suffixes, when set, restrict discovery to file names ending in one
	// of them, e.g. "Tests.cs". Matching ignores case.
	Suffixes []string

	// IncludeGlobs restrict discovery to matching paths when non-empty.
	IncludeGlobs []string

	// ExcludeGlobs skip matching files and directories. A pattern without
	// a '/' is matched against the base name.
	ExcludeGlobs []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs is the maximum number of concurrent workers; 0 or negative
	// means runtime.NumCPU().
	Jobs int

	// Debounce is how long Watch waits after the last event for a file
	// before processing it; 0 means DefaultDebounce.
	Debounce time.Duration

	// Pipeline holds the per-file options.
	Pipeline pipeline.Options
}

// DefaultExtensions returns the default source extensions.
func DefaultExtensions() []string {
	return []string{".cs"}
}

// DefaultSuffixes returns the default file name suffixes.
func DefaultSuffixes() []string {
	return []string{"Tests.cs", "Test.cs"}
}

// DefaultExcludeGlobs returns the build output directories skipped by default.
func DefaultExcludeGlobs() []string {
	return []string{"bin", "obj"}
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}

// OptionsFromConfig creates run Options for paths from config.Config.
func OptionsFromConfig(cfg *config.Config, paths []string) Options {
	return Options{
		Paths:          paths,
		Extensions:     cfg.Discovery.Extensions,
		Suffixes:       cfg.Discovery.Suffixes,
		IncludeGlobs:   cfg.Discovery.Include,
		ExcludeGlobs:   cfg.Ignore,
		FollowSymlinks: cfg.Discovery.FollowSymlinks,
		Jobs:           cfg.Jobs,
		Pipeline:       pipeline.OptionsFromConfig(cfg),
	}
}
