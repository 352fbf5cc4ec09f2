package reporter

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yaklabco/wrapfix/internal/ui/pretty"
	"github.com/yaklabco/wrapfix/pkg/analysis"
)

// Table layout constants for summary output.
// Both tables use the same width for visual consistency.
const (
	tableWidth            = 90 // Width of table separators (same for both tables).
	templateColWidth      = 30 // Width of the template name column.
	fileColWidth          = 54 // Width of the file path column (wider for relative paths).
	numColWidth           = 7  // Width of numeric columns.
	wrappedColWidth       = 9  // Width of the already-wrapped column.
	maxTemplateNameLength = 28 // Maximum characters for template name before truncation.
	maxFilePathLength     = 52 // Maximum characters for file path before truncation.
)

// padRight pads a string to the given width with spaces on the right.
// This must be called BEFORE applying ANSI styles.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// padLeft pads a string to the given width with spaces on the left.
// This must be called BEFORE applying ANSI styles.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// SummaryRenderer formats results as aggregated summary tables.
type SummaryRenderer struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewSummaryRenderer creates a new summary renderer.
func NewSummaryRenderer(opts Options) *SummaryRenderer {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryRenderer{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// Render implements Renderer.
func (r *SummaryRenderer) Render(_ context.Context, report *analysis.Report) error {
	if report.Totals.Sites == 0 && len(report.Errors) == 0 {
		fmt.Fprintln(r.out, r.styles.Success.Render("No sites found"))
		return nil
	}

	if r.opts.SummaryOrder == SummaryOrderFiles {
		r.renderFileTable(report.ByFile)
		fmt.Fprintln(r.out)
		r.renderTemplateTable(report.ByTemplate)
	} else {
		r.renderTemplateTable(report.ByTemplate)
		fmt.Fprintln(r.out)
		r.renderFileTable(report.ByFile)
	}

	if len(report.Errors) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, r.styles.Bold.Render("Errors"))
		for _, fe := range report.Errors {
			fmt.Fprintf(r.out, "  %s: %s\n", fe.FilePath, r.styles.Error.Render(fe.Message))
		}
	}

	fmt.Fprintln(r.out)
	r.renderTotals(report.Totals)

	return nil
}

func (r *SummaryRenderer) separator() {
	fmt.Fprintln(r.out, r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)))
}

func (r *SummaryRenderer) renderTemplateTable(templates []analysis.TemplateAnalysis) {
	if len(templates) == 0 {
		return
	}

	fmt.Fprintln(r.out, r.styles.Bold.Render("Templates Summary"))
	r.separator()

	// Header - pad first, then style
	fmt.Fprintf(r.out, "%s %s %s %s %s %s\n",
		r.styles.TableHeader.Render(padRight("Template", templateColWidth)),
		r.styles.TableHeader.Render(padLeft("Sites", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Fixed", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Wrapped", wrappedColWidth)),
		r.styles.TableHeader.Render(padLeft("Skipped", numColWidth+1)),
		r.styles.TableHeader.Render(padLeft("Files", numColWidth)),
	)
	r.separator()

	for _, tmpl := range templates {
		name := tmpl.Template
		if len(name) > maxTemplateNameLength {
			name = name[:maxTemplateNameLength] + "…"
		}

		fmt.Fprintf(r.out, "%s %s %s %s %s %s\n",
			r.rowStyle(tmpl.Rewritten, tmpl.Skipped, padRight(name, templateColWidth)),
			padLeft(strconv.Itoa(tmpl.Sites), numColWidth),
			padLeft(strconv.Itoa(tmpl.Rewritten), numColWidth),
			padLeft(strconv.Itoa(tmpl.AlreadyWrapped), wrappedColWidth),
			padLeft(strconv.Itoa(tmpl.Skipped), numColWidth+1),
			padLeft(strconv.Itoa(len(tmpl.Files)), numColWidth),
		)
	}
}

func (r *SummaryRenderer) renderFileTable(files []analysis.FileAnalysis) {
	if len(files) == 0 {
		return
	}

	fmt.Fprintln(r.out, r.styles.Bold.Render("Files Summary"))
	r.separator()

	fmt.Fprintf(r.out, "%s %s %s %s %s\n",
		r.styles.TableHeader.Render(padRight("File", fileColWidth)),
		r.styles.TableHeader.Render(padLeft("Sites", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Fixed", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Skipped", numColWidth+1)),
		r.styles.TableHeader.Render(padLeft("Written", numColWidth+1)),
	)
	r.separator()

	for _, file := range files {
		path := file.Path
		if len(path) > maxFilePathLength {
			path = "…" + path[len(path)-(maxFilePathLength-1):]
		}

		written := padLeft("", numColWidth+1)
		if file.Written {
			written = r.styles.Success.Render(padLeft("✓", numColWidth+1))
		}

		fmt.Fprintf(r.out, "%s %s %s %s %s\n",
			r.rowStyle(file.Rewritten, file.Skipped, padRight(path, fileColWidth)),
			padLeft(strconv.Itoa(file.Sites), numColWidth),
			padLeft(strconv.Itoa(file.Rewritten), numColWidth),
			padLeft(strconv.Itoa(file.Skipped), numColWidth+1),
			written,
		)
	}
}

// rowStyle colors a padded cell: skipped sites win over rewritten ones.
func (r *SummaryRenderer) rowStyle(rewritten, skipped int, cell string) string {
	switch {
	case skipped > 0:
		return r.styles.TableSkippedRow.Render(cell)
	case rewritten > 0:
		return r.styles.TableRewrittenRow.Render(cell)
	default:
		return cell
	}
}

func (r *SummaryRenderer) renderTotals(totals analysis.Totals) {
	siteWord := "sites"
	if totals.Sites == 1 {
		siteWord = "site"
	}
	parts := []string{fmt.Sprintf("%d %s", totals.Sites, siteWord)}

	var breakdown []string
	if totals.Rewritten > 0 {
		breakdown = append(breakdown, r.styles.Rewritten.Render(fmt.Sprintf("%d rewritten", totals.Rewritten)))
	}
	if totals.AlreadyWrapped > 0 {
		breakdown = append(breakdown, r.styles.Wrapped.Render(fmt.Sprintf("%d already wrapped", totals.AlreadyWrapped)))
	}
	if n := totals.Skipped(); n > 0 {
		breakdown = append(breakdown, r.styles.Skipped.Render(fmt.Sprintf("%d skipped", n)))
	}
	if len(breakdown) > 0 {
		parts[0] += " (" + strings.Join(breakdown, ", ") + ")"
	}

	fileWord := "files"
	if totals.Files == 1 {
		fileWord = "file"
	}
	parts = append(parts, fmt.Sprintf("in %d %s", totals.Files, fileWord))
	if totals.FilesErrored > 0 {
		parts = append(parts, r.styles.Error.Render(fmt.Sprintf("(%d failed)", totals.FilesErrored)))
	}

	fmt.Fprintln(r.out, r.styles.Bold.Render("Total: ")+strings.Join(parts, " "))
}
