package reporter

import (
	"io"
	"os"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// SummaryOrder controls the order of tables in summary output.
type SummaryOrder string

const (
	// SummaryOrderTemplates shows the template table first.
	SummaryOrderTemplates SummaryOrder = "templates"
	// SummaryOrderFiles shows the file table first.
	SummaryOrderFiles SummaryOrder = "files"
)

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output (typically os.Stdout).
	Writer io.Writer

	// ErrorWriter is the destination for errors (typically os.Stderr).
	ErrorWriter io.Writer

	// Format specifies the output format.
	Format Format

	// Color controls colorized output.
	// Values: "auto" (default), "always", "never"
	Color string

	// ShowContext includes the matched source line under each site.
	ShowContext bool

	// ShowSummary displays aggregate statistics after results.
	ShowSummary bool

	// GroupByFile groups sites by file (default: true for text format).
	GroupByFile bool

	// IncludeWrapped lists already-wrapped sites, which are otherwise
	// only counted.
	IncludeWrapped bool

	// Compact uses compact/minified output where applicable.
	Compact bool

	// SummaryOrder controls the order of tables in summary output.
	SummaryOrder SummaryOrder

	// WorkingDir is the directory to make paths relative to.
	// If empty, paths are kept as-is (typically absolute).
	WorkingDir string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:       os.Stdout,
		ErrorWriter:  os.Stderr,
		Format:       FormatText,
		Color:        "auto",
		ShowContext:  true,
		ShowSummary:  true,
		GroupByFile:  true,
		SummaryOrder: SummaryOrderTemplates,
	}
}
