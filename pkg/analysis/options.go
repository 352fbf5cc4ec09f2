package analysis

// SortField specifies how to sort analysis results.
type SortField string

const (
	// SortByCount sorts by site count (descending by default).
	SortByCount SortField = "count"
	// SortByAlpha sorts alphabetically.
	SortByAlpha SortField = "alpha"
	// SortBySkipped sorts by skipped sites, most first.
	SortBySkipped SortField = "skipped"
)

// IsValid returns true if the sort field is valid.
func (s SortField) IsValid() bool {
	switch s {
	case SortByCount, SortByAlpha, SortBySkipped:
		return true
	default:
		return false
	}
}

// Options configures the Analyze function.
type Options struct {
	// IncludeSites includes the flat site list.
	IncludeSites bool

	// IncludeByFile includes the per-file analysis.
	IncludeByFile bool

	// IncludeByTemplate includes the per-template analysis.
	IncludeByTemplate bool

	// IncludeQuiet keeps files without sites in ByFile.
	IncludeQuiet bool

	// IncludeDiffs copies dry-run diffs into ByFile.
	IncludeDiffs bool

	// SortBy specifies how to sort ByFile and ByTemplate.
	SortBy SortField

	// SortDesc sorts in descending order (highest first).
	SortDesc bool

	// WorkingDir is the directory to make paths relative to.
	// If empty, paths are kept as-is (typically absolute).
	WorkingDir string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		IncludeSites:      true,
		IncludeByFile:     true,
		IncludeByTemplate: true,
		SortBy:            SortByCount,
		SortDesc:          true,
	}
}
