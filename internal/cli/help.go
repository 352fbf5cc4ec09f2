package cli

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/wrapfix/internal/ui/pretty"
)

// helpStyles are the styles used by command help.
type helpStyles struct {
	command lipgloss.Style
	heading lipgloss.Style
	name    lipgloss.Style
	flag    lipgloss.Style
	dim     lipgloss.Style
}

func newHelpStyles(colorEnabled bool) helpStyles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return helpStyles{command: plain, heading: plain, name: plain, flag: plain, dim: plain}
	}
	return helpStyles{
		command: lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		heading: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		name:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		flag:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// HelpFormatter renders styled help for Cobra commands.
type HelpFormatter struct {
	styles helpStyles
}

// NewHelpFormatter creates a help formatter for the given color mode.
func NewHelpFormatter(colorMode string, writer io.Writer) *HelpFormatter {
	return &HelpFormatter{styles: newHelpStyles(pretty.IsColorEnabled(colorMode, writer))}
}

const usageTemplate = `{{ heading "Usage:" }}
{{- if .Runnable }}
  {{ command .UseLine }}{{ end }}
{{- if .HasAvailableSubCommands }}
  {{ command .CommandPath }} [command]{{ end }}
{{- if .Aliases }}

{{ heading "Aliases:" }}
  {{ dim (join .Aliases ", ") }}{{ end }}
{{- if .HasAvailableSubCommands }}

{{ heading "Commands:" }}{{ range .Commands }}{{ if or .IsAvailableCommand (eq .Name "help") }}
  {{ name (rpad .Name .NamePadding) }} {{ .Short }}{{ end }}{{ end }}{{ end }}
{{- if .HasAvailableLocalFlags }}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}{{ end }}
{{- if .HasAvailableInheritedFlags }}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}{{ end }}
{{- if not .HasParent }}

{{ heading "Exit Codes:" }}
{{ exitCodes }}{{ end }}
{{- if .HasAvailableSubCommands }}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.{{ end }}
`

const helpTemplate = `{{ with or .Long .Short }}{{ trimRight . }}

{{ end }}` + usageTemplate

func (h *HelpFormatter) funcs() template.FuncMap {
	return template.FuncMap{
		"heading":   h.styles.heading.Render,
		"command":   h.styles.command.Render,
		"name":      h.styles.name.Render,
		"dim":       h.styles.dim.Render,
		"flags":     h.renderFlags,
		"exitCodes": h.renderExitCodes,
		"join":      strings.Join,
		"rpad":      rpad,
		"trimRight": func(s string) string { return strings.TrimRight(s, " \t\n") },
	}
}

// renderFlags lists flags one per line with aligned descriptions.
func (h *HelpFormatter) renderFlags(fs *pflag.FlagSet) string {
	type row struct {
		flag, varname, usage string
		width                int
	}
	var rows []row
	width := 0

	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		varname, usage := pflag.UnquoteUsage(f)
		switch f.DefValue {
		case "", "false", "0", "[]":
		default:
			usage += fmt.Sprintf(" (default %s)", f.DefValue)
		}

		flag := "    --" + f.Name
		if f.Shorthand != "" {
			flag = "-" + f.Shorthand + ", --" + f.Name
		}
		r := row{flag: flag, varname: varname, usage: usage, width: len(flag)}
		if varname != "" {
			r.width += 1 + len(varname)
		}
		rows = append(rows, r)
		width = max(width, r.width)
	})

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		left := h.styles.flag.Render(r.flag)
		if r.varname != "" {
			left += " " + h.styles.dim.Render(r.varname)
		}
		lines = append(lines, "  "+left+strings.Repeat(" ", width-r.width)+"   "+r.usage)
	}
	return strings.Join(lines, "\n")
}

func (h *HelpFormatter) renderExitCodes() string {
	lines := make([]string, 0, len(exitCodeHelp))
	for _, e := range exitCodeHelp {
		lines = append(lines, fmt.Sprintf("  %s  %s", h.styles.name.Render(fmt.Sprintf("%3d", e.code)), e.help))
	}
	return strings.Join(lines, "\n")
}

// ApplyToCommand installs styled help and usage on cmd and, through
// inheritance, on its subcommands.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	funcs := h.funcs()
	usage := template.Must(template.New("usage").Funcs(funcs).Parse(usageTemplate))
	help := template.Must(template.New("help").Funcs(funcs).Parse(helpTemplate))

	cmd.SetUsageFunc(func(c *cobra.Command) error {
		if err := usage.Execute(c.OutOrStderr(), c); err != nil {
			return fmt.Errorf("render usage: %w", err)
		}
		return nil
	})
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if err := help.Execute(c.OutOrStdout(), c); err != nil {
			c.PrintErrln(err)
		}
	})
}

func rpad(s string, padding int) string {
	if len(s) >= padding {
		return s
	}
	return s + strings.Repeat(" ", padding-len(s))
}
