package reporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/wrapfix/internal/ui/pretty"
	"github.com/yaklabco/wrapfix/pkg/fix"
	"github.com/yaklabco/wrapfix/pkg/pipeline"
	"github.com/yaklabco/wrapfix/pkg/rewrite"
	"github.com/yaklabco/wrapfix/pkg/runner"
)

// DiffReporter prints one git-style unified diff per changed file, the
// format "git apply" accepts. Withheld and failed files get a one-line note.
type DiffReporter struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewDiffReporter creates a new diff reporter.
func NewDiffReporter(opts Options) *DiffReporter {
	return &DiffReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		out:    opts.Writer,
	}
}

// Report implements Reporter. It returns the number of rewritten sites
// shown.
func (r *DiffReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	if result == nil {
		return 0, nil
	}

	var files, sites, added, removed int
	for _, file := range result.Files {
		path := filepath.ToSlash(relativeTo(file.Path, r.opts.WorkingDir))

		switch {
		case file.Error != nil:
			fmt.Fprintf(r.out, "# %s: %s\n", path, r.styles.Error.Render(file.Error.Error()))
			continue
		case file.Result != nil && file.Result.Skipped:
			fmt.Fprintf(r.out, "# %s: %s\n", path, r.styles.Skipped.Render("withheld: "+file.Result.SkipReason))
			continue
		}

		diff := diffOf(file.Result)
		if diff == nil {
			continue
		}
		files++
		sites += file.Result.Count(rewrite.StatusRewritten)
		added += diff.Additions
		removed += diff.Deletions

		if err := r.writeDiff(path, diff); err != nil {
			return sites, err
		}
	}

	if files > 0 && r.opts.ShowSummary {
		fmt.Fprintln(r.out, r.stat(files, added, removed))
	}
	return sites, nil
}

// diffOf returns the dry-run diff of a file, or the diff of what was
// written. Withheld and unchanged files have none.
func diffOf(pr *pipeline.Result) *fix.Diff {
	if pr == nil || pr.Result == nil || pr.Skipped || !pr.Changed() {
		return nil
	}
	if pr.Diff != nil {
		return pr.Diff
	}
	return fix.GenerateDiff(pr.Path, pr.Original, pr.Text)
}

func (r *DiffReporter) writeDiff(path string, diff *fix.Diff) error {
	var b strings.Builder
	line := func(style lipgloss.Style, text string) {
		b.WriteString(style.Render(text))
		b.WriteByte('\n')
	}

	line(r.styles.DiffHeader, "diff --git a/"+path+" b/"+path)
	line(r.styles.DiffRemove, "--- a/"+path)
	line(r.styles.DiffAdd, "+++ b/"+path)
	for _, h := range diff.Hunks {
		line(r.styles.DiffHunk, fmt.Sprintf("@@ -%d,%d +%d,%d @@",
			h.OriginalStart, h.OriginalCount, h.ModifiedStart, h.ModifiedCount))
		for _, l := range h.Lines {
			switch l.Kind {
			case fix.DiffLineAdd:
				line(r.styles.DiffAdd, "+"+l.Content)
			case fix.DiffLineRemove:
				line(r.styles.DiffRemove, "-"+l.Content)
			default:
				line(r.styles.DiffContext, " "+l.Content)
			}
		}
	}
	b.WriteByte('\n')

	_, err := io.WriteString(r.out, b.String())
	return err
}

// stat renders a "git diff --stat" style total.
func (r *DiffReporter) stat(files, added, removed int) string {
	out := fmt.Sprintf("%d %s changed", files, pick(files, "file", "files"))
	if added > 0 {
		out += ", " + r.styles.DiffAdd.Render(fmt.Sprintf("%d %s(+)", added, pick(added, "insertion", "insertions")))
	}
	if removed > 0 {
		out += ", " + r.styles.DiffRemove.Render(fmt.Sprintf("%d %s(-)", removed, pick(removed, "deletion", "deletions")))
	}
	return out
}

func pick(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// relativeTo shortens path for display: relative to workDir, or to the
// current directory when workDir is empty. Paths outside stay absolute.
func relativeTo(path, workDir string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	if workDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return path
		}
		workDir = cwd
	}
	rel, err := filepath.Rel(workDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
