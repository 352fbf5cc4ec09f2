package runner

import (
	"github.com/yaklabco/wrapfix/pkg/pipeline"
	"github.com/yaklabco/wrapfix/pkg/rewrite"
)

// FileOutcome is the outcome of one file.
type FileOutcome struct {
	Path string

	// Result is nil if the file could not be processed.
	Result *pipeline.Result

	// Error is set if the file could not be processed.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int

	// FilesFiltered counts files the rules never ran on.
	FilesFiltered int

	// FilesSkipped counts files whose changes were withheld.
	FilesSkipped int

	FilesErrored int

	// FilesChanged counts files with at least one rewritten site, written
	// or, in dry-run mode, pending.
	FilesChanged int

	// FilesWritten counts files written to disk.
	FilesWritten int

	// Sites counts sites by status.
	Sites map[rewrite.Status]int
}

// SitesTotal returns the number of matched sites.
func (s Stats) SitesTotal() int {
	n := 0
	for _, c := range s.Sites {
		n += c
	}
	return n
}

// Result is the overall runner result.
type Result struct {
	// Files are in discovery order.
	Files []FileOutcome
	Stats Stats
}

// NewResult collects outcomes into a Result, computing its stats.
func NewResult(outcomes ...FileOutcome) *Result {
	result := &Result{Files: make([]FileOutcome, 0, len(outcomes))}
	result.Stats.FilesDiscovered = len(outcomes)
	for _, o := range outcomes {
		result.accumulate(o)
	}
	return result
}

// HasErrors reports whether any file failed.
func (r *Result) HasErrors() bool {
	return r != nil && r.Stats.FilesErrored > 0
}

// HasChanges reports whether any file has rewritten sites.
func (r *Result) HasChanges() bool {
	return r != nil && r.Stats.FilesChanged > 0
}

// HasSkippedSites reports whether any site was left alone for a reason
// other than already being wrapped.
func (r *Result) HasSkippedSites() bool {
	if r == nil {
		return false
	}
	for status, n := range r.Stats.Sites {
		if n > 0 && status != rewrite.StatusRewritten && status != rewrite.StatusAlreadyWrapped {
			return true
		}
	}
	return false
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	pr := outcome.Result
	if pr == nil {
		return
	}

	r.Stats.FilesProcessed++
	switch {
	case pr.Filtered != "":
		r.Stats.FilesFiltered++
		return
	case pr.Skipped:
		r.Stats.FilesSkipped++
	case pr.Changed():
		r.Stats.FilesChanged++
	}
	if pr.Written {
		r.Stats.FilesWritten++
	}

	if r.Stats.Sites == nil {
		r.Stats.Sites = make(map[rewrite.Status]int)
	}
	for _, site := range pr.Sites {
		r.Stats.Sites[site.Status]++
	}
}
