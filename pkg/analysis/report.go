package analysis

import (
	"time"

	"github.com/yaklabco/wrapfix/pkg/rewrite"
)

// Report contains pre-computed views of a run.
// Computed once by Analyze(), used by all renderers.
type Report struct {
	// Sites is the flat list for detailed output, in file order.
	Sites []SiteEntry `json:"sites,omitempty"`

	// ByFile groups sites by file path.
	ByFile []FileAnalysis `json:"byFile,omitempty"`

	// ByTemplate groups sites by the template that matched them.
	ByTemplate []TemplateAnalysis `json:"byTemplate,omitempty"`

	// Errors lists files that could not be processed.
	Errors []FileError `json:"errors,omitempty"`

	// Totals contains aggregate statistics.
	Totals Totals `json:"summary"`

	// Version is the report format version.
	Version string `json:"version"`

	// Timestamp is when the analysis was performed.
	Timestamp time.Time `json:"timestamp"`
}

// SiteEntry represents a single site in the report.
type SiteEntry struct {
	FilePath string         `json:"filePath"`
	Template string         `json:"template"`
	Status   rewrite.Status `json:"status"`
	Line     int            `json:"line"`
	Subject  string         `json:"subject"`
	Type     string         `json:"type,omitempty"`
	Renamed  string         `json:"renamed,omitempty"`
	Wrapper  string         `json:"wrapper,omitempty"`
	Reason   string         `json:"reason,omitempty"`
}

// Skipped reports whether the site was left alone for a reportable reason.
func (e SiteEntry) Skipped() bool {
	return e.Status != rewrite.StatusRewritten && e.Status != rewrite.StatusAlreadyWrapped
}

// FileError is a file that failed.
type FileError struct {
	FilePath string `json:"filePath"`
	Message  string `json:"message"`
}

// Totals contains aggregate statistics for the report.
type Totals struct {
	Files         int `json:"filesChecked"`
	FilesFiltered int `json:"filesFiltered"`
	FilesChanged  int `json:"filesChanged"`
	FilesWritten  int `json:"filesWritten"`
	FilesSkipped  int `json:"filesSkipped"`
	FilesErrored  int `json:"filesErrored"`

	Sites          int `json:"sites"`
	Rewritten      int `json:"rewritten"`
	AlreadyWrapped int `json:"alreadyWrapped"`
	Unresolved     int `json:"unresolved"`
	AmbiguousType  int `json:"ambiguousType"`
	Conflict       int `json:"conflict"`
}

// Skipped returns the number of sites left alone for a reportable reason.
func (t Totals) Skipped() int {
	return t.Unresolved + t.AmbiguousType + t.Conflict
}

// HasChanges returns true if any file was or would be changed.
func (t Totals) HasChanges() bool {
	return t.FilesChanged > 0
}

// HasErrors returns true if any file failed.
func (t Totals) HasErrors() bool {
	return t.FilesErrored > 0
}

// FileAnalysis contains aggregated data for a single file.
type FileAnalysis struct {
	Path string `json:"path"`

	// Outcome is the one-line file outcome, e.g. "rewritten".
	Outcome string `json:"outcome"`

	Sites     int `json:"sites"`
	Rewritten int `json:"rewritten"`
	Skipped   int `json:"skipped"`

	Written bool   `json:"written"`
	Backup  string `json:"backup,omitempty"`

	// Diff is the unified diff of a dry run, when requested.
	Diff string `json:"diff,omitempty"`

	Templates []string `json:"templates,omitempty"`
}

// TemplateAnalysis contains aggregated data for a single template.
type TemplateAnalysis struct {
	Template       string   `json:"template"`
	Sites          int      `json:"sites"`
	Rewritten      int      `json:"rewritten"`
	AlreadyWrapped int      `json:"alreadyWrapped"`
	Skipped        int      `json:"skipped"`
	Files          []string `json:"files,omitempty"`
}
