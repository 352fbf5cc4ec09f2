package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/wrapfix/pkg/rewrite"
	"github.com/yaklabco/wrapfix/pkg/runner"
)

// Table formatting constants.
const (
	tablePadding      = 2
	tableColumnCount  = 5 // FILE, LINE, STATUS, MESSAGE, TEMPLATE
	minFileWidth      = 20
	minLineWidth      = 4
	minStatusWidth    = 14
	minMessageWidth   = 30
	minTemplateWidth  = 8
	heavySeparator    = "="
	lightSeparator    = "-"
	defaultTermWidth  = 100
	ellipsis          = "..."
	ellipsisThreshold = 3
)

// TableRow represents a single site in the table.
type TableRow struct {
	File     string
	Line     string
	Status   rewrite.Status
	Message  string
	Template string
}

// SiteToTableRow converts a site to a table row.
func SiteToTableRow(path string, site rewrite.Site) TableRow {
	msg := SiteMessage(site)
	if site.Reason != "" {
		msg += ": " + site.Reason
	}
	return TableRow{
		File:     path,
		Line:     strconv.Itoa(site.Line),
		Status:   site.Status,
		Message:  msg,
		Template: site.Template,
	}
}

// TableFormatter formats sites as a styled table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
	}
}

// FormatTable formats runner results as a styled table, one group per file.
// Already-wrapped sites are listed only when includeWrapped is set.
func (t *TableFormatter) FormatTable(result *runner.Result, includeWrapped bool) string {
	if result == nil || len(result.Files) == 0 {
		return ""
	}

	groups := collectRows(result, includeWrapped)
	if len(groups) == 0 {
		return ""
	}

	widths := t.calculateColumnWidths(groups)

	var builder strings.Builder
	builder.WriteString(t.formatHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths, heavySeparator))
	builder.WriteString("\n")

	for i, group := range groups {
		if i > 0 {
			builder.WriteString(t.formatSeparator(widths, lightSeparator))
			builder.WriteString("\n")
		}
		for _, row := range group {
			builder.WriteString(t.formatRow(row, widths))
			builder.WriteString("\n")
		}
	}

	builder.WriteString(t.formatSeparator(widths, heavySeparator))
	builder.WriteString("\n")
	builder.WriteString(t.formatLegend())
	builder.WriteString("\n")

	return builder.String()
}

func collectRows(result *runner.Result, includeWrapped bool) [][]TableRow {
	var groups [][]TableRow
	for _, file := range result.Files {
		if file.Result == nil || file.Result.Result == nil {
			continue
		}
		var rows []TableRow
		for _, site := range file.Result.Sites {
			if site.Status == rewrite.StatusAlreadyWrapped && !includeWrapped {
				continue
			}
			rows = append(rows, SiteToTableRow(file.Path, site))
		}
		if len(rows) > 0 {
			groups = append(groups, rows)
		}
	}
	return groups
}

type columnWidths struct {
	file     int
	line     int
	status   int
	message  int
	template int
}

func (w columnWidths) total() int {
	return w.file + w.line + w.status + w.message + w.template + tablePadding*tableColumnCount
}

// calculateColumnWidths sizes columns to content, then shrinks the message
// and file columns to fit the terminal.
func (t *TableFormatter) calculateColumnWidths(groups [][]TableRow) columnWidths {
	widths := columnWidths{
		file:     minFileWidth,
		line:     minLineWidth,
		status:   minStatusWidth,
		message:  minMessageWidth,
		template: minTemplateWidth,
	}

	for _, group := range groups {
		for _, row := range group {
			widths.file = max(widths.file, len(row.File))
			widths.line = max(widths.line, len(row.Line))
			widths.status = max(widths.status, len(row.Status))
			widths.message = max(widths.message, len(row.Message))
			widths.template = max(widths.template, len(row.Template))
		}
	}

	if excess := widths.total() - t.termWidth; excess > 0 {
		widths.message = max(minMessageWidth, widths.message-excess)
		if excess = widths.total() - t.termWidth; excess > 0 {
			widths.file = max(minFileWidth, widths.file-excess)
		}
	}

	return widths
}

func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %-*s  %-*s  %-*s ",
		widths.file, "FILE",
		widths.line, "LINE",
		widths.status, "STATUS",
		widths.message, "MESSAGE",
		widths.template, "TEMPLATE",
	)
	return t.styles.TableHeader.Render(header)
}

func (t *TableFormatter) formatSeparator(widths columnWidths, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, widths.total()))
}

func (t *TableFormatter) formatRow(row TableRow, widths columnWidths) string {
	content := fmt.Sprintf(" %-*s  %*s  %-*s  %-*s  %-*s ",
		widths.file, truncateFilePath(row.File, widths.file),
		widths.line, row.Line,
		widths.status, string(row.Status),
		widths.message, truncateString(row.Message, widths.message),
		widths.template, truncateString(row.Template, widths.template),
	)
	return t.rowStyle(row.Status).Render(content)
}

func (t *TableFormatter) rowStyle(status rewrite.Status) lipgloss.Style {
	switch status {
	case rewrite.StatusRewritten:
		return t.styles.TableRewrittenRow
	case rewrite.StatusAlreadyWrapped:
		return lipgloss.NewStyle()
	default:
		return t.styles.TableSkippedRow
	}
}

func (t *TableFormatter) formatLegend() string {
	if !t.colorEnabled {
		return t.styles.TableLegend.Render(" Legend: rewritten rows changed the file; other rows were left unchanged")
	}
	return t.styles.TableLegend.Render(fmt.Sprintf(" Legend: %s = rewritten  %s = skipped",
		t.styles.TableRewrittenRow.Render(" rewritten "),
		t.styles.TableSkippedRow.Render(" skipped "),
	))
}

// FormatTableSummary formats a summary line for table output.
func (t *TableFormatter) FormatTableSummary(stats runner.Stats, duration string) string {
	parts := []string{fmt.Sprintf("%d files checked", stats.FilesProcessed)}

	if n := stats.Sites[rewrite.StatusRewritten]; n > 0 {
		parts = append(parts, t.styles.Rewritten.Render(fmt.Sprintf("%d rewritten", n)))
	}
	if n := stats.Sites[rewrite.StatusAlreadyWrapped]; n > 0 {
		parts = append(parts, t.styles.Wrapped.Render(fmt.Sprintf("%d already wrapped", n)))
	}
	if n := skippedSites(stats); n > 0 {
		parts = append(parts, t.styles.Skipped.Render(fmt.Sprintf("%d skipped", n)))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, t.styles.Error.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}
	if duration != "" {
		parts = append(parts, t.styles.Dim.Render(duration))
	}

	return " " + strings.Join(parts, " | ")
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= ellipsisThreshold {
		return str[:maxLen]
	}
	return str[:maxLen-len(ellipsis)] + ellipsis
}

// truncateFilePath truncates a path from the front so the file name stays.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= ellipsisThreshold {
		return path[len(path)-maxLen:]
	}
	return ellipsis + path[len(path)-maxLen+len(ellipsis):]
}
