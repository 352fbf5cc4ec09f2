package reporter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yaklabco/wrapfix/pkg/analysis"
	"github.com/yaklabco/wrapfix/pkg/rewrite"
)

// MarkdownRenderer writes the report as GitHub-flavored Markdown, suitable
// for pull request comments and CI job summaries.
type MarkdownRenderer struct {
	opts Options
}

// NewMarkdownRenderer creates a new Markdown renderer.
func NewMarkdownRenderer(opts Options) *MarkdownRenderer {
	return &MarkdownRenderer{opts: opts}
}

// Render implements Renderer.
func (r *MarkdownRenderer) Render(_ context.Context, report *analysis.Report) (err error) {
	bw := bufio.NewWriterSize(r.opts.Writer, bufWriterSize)
	defer func() {
		if flushErr := bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	r.write(bw, report)
	return nil
}

func (r *MarkdownRenderer) write(w io.Writer, report *analysis.Report) {
	totals := report.Totals

	fmt.Fprintln(w, "# wrapfix report")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "- Files checked: %d (%d filtered)\n", totals.Files, totals.FilesFiltered)
	fmt.Fprintf(w, "- Files changed: %d (%d written)\n", totals.FilesChanged, totals.FilesWritten)
	if totals.FilesSkipped > 0 {
		fmt.Fprintf(w, "- Files withheld: %d\n", totals.FilesSkipped)
	}
	if totals.FilesErrored > 0 {
		fmt.Fprintf(w, "- Files failed: %d\n", totals.FilesErrored)
	}
	fmt.Fprintf(w, "- Sites: %d (%d rewritten, %d already wrapped, %d skipped)\n",
		totals.Sites, totals.Rewritten, totals.AlreadyWrapped, totals.Skipped())

	if len(report.ByTemplate) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "## Templates")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Template | Sites | Rewritten | Already wrapped | Skipped | Files |")
		fmt.Fprintln(w, "|---|--:|--:|--:|--:|--:|")
		for _, t := range report.ByTemplate {
			fmt.Fprintf(w, "| %s | %d | %d | %d | %d | %d |\n",
				mdCell(t.Template), t.Sites, t.Rewritten, t.AlreadyWrapped, t.Skipped, len(t.Files))
		}
	}

	sites := r.visibleSites(report.Sites)
	if len(sites) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "## Sites")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| File | Line | Status | Subject | Type | Detail |")
		fmt.Fprintln(w, "|---|--:|---|---|---|---|")
		for _, s := range sites {
			fmt.Fprintf(w, "| %s | %d | %s | %s | %s | %s |\n",
				mdCell(s.FilePath), s.Line, s.Status, mdCode(s.Subject), mdCode(s.Type), mdCell(siteDetail(s)))
		}
	}

	if len(report.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "## Errors")
		fmt.Fprintln(w)
		for _, fe := range report.Errors {
			fmt.Fprintf(w, "- %s: %s\n", mdCode(fe.FilePath), fe.Message)
		}
	}

	var diffs []analysis.FileAnalysis
	for _, f := range report.ByFile {
		if f.Diff != "" {
			diffs = append(diffs, f)
		}
	}
	if len(diffs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "## Changes")
		for _, f := range diffs {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "### %s\n\n", f.Path)
			fmt.Fprintln(w, "```diff")
			fmt.Fprint(w, strings.TrimRight(f.Diff, "\n")+"\n")
			fmt.Fprintln(w, "```")
		}
	}
}

func (r *MarkdownRenderer) visibleSites(sites []analysis.SiteEntry) []analysis.SiteEntry {
	if r.opts.IncludeWrapped {
		return sites
	}
	visible := make([]analysis.SiteEntry, 0, len(sites))
	for _, s := range sites {
		if s.Status != rewrite.StatusAlreadyWrapped {
			visible = append(visible, s)
		}
	}
	return visible
}

// siteDetail describes the rewrite made, or why a site was skipped.
func siteDetail(s analysis.SiteEntry) string {
	if s.Reason != "" {
		return s.Reason
	}
	if s.Wrapper == "" {
		return ""
	}
	if s.Renamed != "" && s.Renamed != s.Subject {
		return fmt.Sprintf("renamed to %s, wrapped in %s", s.Renamed, s.Wrapper)
	}
	return "wrapped in " + s.Wrapper
}

func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func mdCode(s string) string {
	if s == "" {
		return ""
	}
	return "`" + mdCell(s) + "`"
}
