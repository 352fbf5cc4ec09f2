package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/wrapfix/pkg/rewrite"
)

// FormatSite formats a single site for terminal output.
func (s *Styles) FormatSite(path string, site rewrite.Site, showContext bool, sourceLine string) string {
	var builder strings.Builder

	location := fmt.Sprintf("%s:%d", s.FilePath.Render(path), site.Line)

	// Main line: location  status  message  (template)
	builder.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
		location,
		s.FormatStatus(site.Status),
		s.Message.Render(SiteMessage(site)),
		s.Template.Render("("+site.Template+")"),
	))

	if showContext && sourceLine != "" {
		builder.WriteString(s.FormatSourceContext(sourceLine))
	}

	if site.Reason != "" {
		builder.WriteString("    " + s.Dim.Render("Reason:") + " " +
			s.Detail.Render(site.Reason) + "\n")
	}

	return builder.String()
}

// SiteMessage describes what happened to a site in one phrase.
func SiteMessage(site rewrite.Site) string {
	switch site.Status {
	case rewrite.StatusRewritten:
		value := site.Subject
		if site.Renamed != "" && site.Renamed != site.Subject {
			value = site.Subject + " -> " + site.Renamed
		}
		return fmt.Sprintf("%s wrapped in %s (%s)", value, site.Wrapper, site.TypeText)
	case rewrite.StatusAlreadyWrapped:
		return site.Subject + " is already wrapped"
	default:
		if site.TypeText != "" {
			return fmt.Sprintf("%s (%s) left unchanged", site.Subject, site.TypeText)
		}
		return site.Subject + " left unchanged"
	}
}

// FormatStatus returns a styled status string.
func (s *Styles) FormatStatus(status rewrite.Status) string {
	return s.StatusStyle(status).Render(string(status))
}

// FormatSourceContext formats the matched source line.
func (s *Styles) FormatSourceContext(line string) string {
	const indent = "        "
	return indent + s.SourceLine.Render(strings.TrimRight(line, "\r")) + "\n"
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path, outcome string, siteCount int) string {
	header := s.FilePath.Render(path)
	if siteCount > 0 {
		word := "sites"
		if siteCount == 1 {
			word = "site"
		}
		header += s.Dim.Render(fmt.Sprintf(" (%d %s, %s)", siteCount, word, outcome))
	} else if outcome != "" {
		header += s.Dim.Render(" (" + outcome + ")")
	}
	return header
}

// SourceLine returns line n (1-based) of text, or "".
func SourceLine(text string, n int) string {
	if n < 1 {
		return ""
	}
	for i := 1; i < n; i++ {
		nl := strings.IndexByte(text, '\n')
		if nl < 0 {
			return ""
		}
		text = text[nl+1:]
	}
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[:nl]
	}
	return strings.TrimRight(text, "\r")
}
