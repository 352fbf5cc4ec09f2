package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/wrapfix/internal/ui/pretty"
	"github.com/yaklabco/wrapfix/pkg/rewrite"
	"github.com/yaklabco/wrapfix/pkg/runner"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No files to check."))
		}
		return 0, nil
	}

	var total int
	for _, file := range result.Files {
		total += r.reportFile(file)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return total, nil
}

// reportFile writes one file's sites and returns how many were written.
func (r *TextReporter) reportFile(file runner.FileOutcome) int {
	path := relativeTo(file.Path, r.opts.WorkingDir)

	if file.Error != nil {
		fmt.Fprintf(r.bw, "%s: %s\n",
			r.styles.FilePath.Render(path),
			r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
		)
		return 0
	}

	pr := file.Result
	if pr == nil || pr.Result == nil || pr.Filtered != "" {
		return 0
	}

	sites := r.visibleSites(pr.Sites)
	if len(sites) == 0 && !pr.Skipped {
		return 0
	}

	if r.opts.GroupByFile {
		fmt.Fprintln(r.bw, r.styles.FormatFileHeader(path, pr.Summary(), len(sites)))
	} else if pr.Skipped {
		fmt.Fprintf(r.bw, "%s: %s\n", r.styles.FilePath.Render(path), r.styles.Skipped.Render(pr.Summary()))
	}

	for _, site := range sites {
		var sourceLine string
		if r.opts.ShowContext {
			sourceLine = pretty.SourceLine(pr.Original, site.Line)
		}
		fmt.Fprint(r.bw, r.styles.FormatSite(path, site, r.opts.ShowContext, sourceLine))
	}

	if r.opts.GroupByFile {
		fmt.Fprintln(r.bw)
	}
	return len(sites)
}

func (r *TextReporter) visibleSites(sites []rewrite.Site) []rewrite.Site {
	if r.opts.IncludeWrapped {
		return sites
	}
	visible := make([]rewrite.Site, 0, len(sites))
	for _, site := range sites {
		if site.Status != rewrite.StatusAlreadyWrapped {
			visible = append(visible, site)
		}
	}
	return visible
}
