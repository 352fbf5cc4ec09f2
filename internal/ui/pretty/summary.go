package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/wrapfix/pkg/rewrite"
	"github.com/yaklabco/wrapfix/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func skippedSites(stats runner.Stats) int {
	return stats.SitesTotal() - stats.Sites[rewrite.StatusRewritten] - stats.Sites[rewrite.StatusAlreadyWrapped]
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "5 sites in 3 files: 3 rewritten, 1 already wrapped, 1 skipped, 2 files written".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	total := stats.SitesTotal()
	if total == 0 {
		msg := s.Success.Render("No sites found") +
			s.Dim.Render(fmt.Sprintf(" (%d %s checked)", stats.FilesProcessed, plural(stats.FilesProcessed, wordFile, wordFiles)))
		if stats.FilesErrored > 0 {
			msg += ", " + s.Error.Render(fmt.Sprintf("%d %s failed", stats.FilesErrored, plural(stats.FilesErrored, wordFile, wordFiles)))
		}
		return msg + "\n"
	}

	files := stats.FilesProcessed - stats.FilesFiltered
	head := fmt.Sprintf("%d %s in %d %s", total, plural(total, "site", "sites"), files, plural(files, wordFile, wordFiles))

	var parts []string
	if n := stats.Sites[rewrite.StatusRewritten]; n > 0 {
		parts = append(parts, s.Rewritten.Render(fmt.Sprintf("%d rewritten", n)))
	}
	if n := stats.Sites[rewrite.StatusAlreadyWrapped]; n > 0 {
		parts = append(parts, s.Wrapped.Render(fmt.Sprintf("%d already wrapped", n)))
	}
	if n := skippedSites(stats); n > 0 {
		parts = append(parts, s.Skipped.Render(fmt.Sprintf("%d skipped", n)))
	}

	var tail []string
	switch {
	case stats.FilesWritten > 0:
		tail = append(tail, s.Success.Render(fmt.Sprintf("%d %s written", stats.FilesWritten, plural(stats.FilesWritten, wordFile, wordFiles))))
	case stats.FilesChanged > 0:
		tail = append(tail, s.Dim.Render(fmt.Sprintf("%d %s pending", stats.FilesChanged, plural(stats.FilesChanged, wordFile, wordFiles))))
	}
	if stats.FilesSkipped > 0 {
		tail = append(tail, s.Skipped.Render(fmt.Sprintf("%d %s withheld", stats.FilesSkipped, plural(stats.FilesSkipped, wordFile, wordFiles))))
	}
	if stats.FilesErrored > 0 {
		tail = append(tail, s.Error.Render(fmt.Sprintf("%d %s failed", stats.FilesErrored, plural(stats.FilesErrored, wordFile, wordFiles))))
	}

	line := head
	if len(parts) > 0 {
		line += ": " + strings.Join(parts, ", ")
	}
	if len(tail) > 0 {
		line += ", " + strings.Join(tail, ", ")
	}
	return line + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	row := func(label, value string) {
		builder.WriteString(fmt.Sprintf("  %-19s%s\n", label+":", value))
	}

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	row("Files checked", s.SummaryValue.Render(strconv.Itoa(stats.FilesProcessed)))
	if stats.FilesFiltered > 0 {
		row("Files filtered", s.Dim.Render(strconv.Itoa(stats.FilesFiltered)))
	}
	if stats.FilesChanged > 0 {
		row("Files changed", s.Success.Render(strconv.Itoa(stats.FilesChanged)))
	}
	if stats.FilesWritten > 0 {
		row("Files written", s.Success.Render(strconv.Itoa(stats.FilesWritten)))
	}
	if stats.FilesSkipped > 0 {
		row("Files withheld", s.Skipped.Render(strconv.Itoa(stats.FilesSkipped)))
	}
	if stats.FilesErrored > 0 {
		row("Files failed", s.Failure.Render(strconv.Itoa(stats.FilesErrored)))
	}

	builder.WriteString("\n")

	row("Sites", s.SummaryValue.Render(strconv.Itoa(stats.SitesTotal())))
	for _, status := range rewrite.Statuses() {
		if n := stats.Sites[status]; n > 0 {
			row("  "+string(status), s.FormatStatusCount(status, n))
		}
	}

	builder.WriteString("\n")

	switch {
	case stats.FilesErrored > 0:
		builder.WriteString(s.Failure.Render("Rewrite failed for some files"))
	case skippedSites(stats) > 0 || stats.FilesSkipped > 0:
		builder.WriteString(s.Skipped.Render("Rewrite completed with skipped sites"))
	case stats.FilesChanged > 0 && stats.FilesWritten == 0:
		builder.WriteString(s.Dim.Render("Changes pending"))
	default:
		builder.WriteString(s.Success.Render("Rewrite complete"))
	}
	builder.WriteString("\n")

	return builder.String()
}

// FormatStatusCount renders n in the status color.
func (s *Styles) FormatStatusCount(status rewrite.Status, n int) string {
	text := strconv.Itoa(n)
	switch status {
	case rewrite.StatusRewritten:
		return s.Rewritten.Render(text)
	case rewrite.StatusAlreadyWrapped:
		return s.Wrapped.Render(text)
	default:
		return s.Skipped.Render(text)
	}
}
