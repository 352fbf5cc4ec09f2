package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full documents every setting and lists the built-in templates.
	// If false, generates a minimal template.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string

	// Templates are listed, commented out, in a full template.
	Templates []TemplateConfig
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON()
	}
	if opts.Full {
		return generateFullTemplate(opts.Templates), nil
	}
	return generateMinimalTemplate(), nil
}

func generateMinimalTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader() + `

# The wrapper introduced around serialized test values.
envelope:
  type: ApiResponse
  data_property: Data
  variable: apiResponse
  # Set to "" to keep the original variable name.
  rename_prefix: expected

# Which files are considered.
discovery:
  extensions: [".cs"]
  suffixes: ["Tests.cs", "Test.cs"]

# Glob patterns for files and directories to skip.
ignore:
  - bin
  - obj

# backups:
#   enabled: true
#   suffix: .wrapfix.bak
`)
	return buf.Bytes()
}

func generateFullTemplate(templates []TemplateConfig) []byte {
	cfg := NewConfig()
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader() + `
#
# This template documents every setting with its default value.
# Uncomment and modify settings as needed.

envelope:
`)
	fmt.Fprintf(&buf, "  # %s\n", wrapComment("Generic wrapper type. Must be a plain, possibly qualified, type name.", commentWrapWidth))
	fmt.Fprintf(&buf, "  type: %s\n", cfg.Envelope.Type)
	buf.WriteString("  # Property of the wrapper that receives the value.\n")
	fmt.Fprintf(&buf, "  data_property: %s\n", cfg.Envelope.DataProperty)
	buf.WriteString("  # Name of the wrapper variable; a numeric suffix is added on clashes.\n")
	fmt.Fprintf(&buf, "  variable: %s\n", cfg.Envelope.Variable)
	fmt.Fprintf(&buf, "  # %s\n", wrapComment("The wrapped value is renamed to this prefix followed by its type name, e.g. expectedWidget. Set to \"\" to keep the original name.", commentWrapWidth))
	fmt.Fprintf(&buf, "  rename_prefix: %s\n", Value(cfg.Envelope.RenamePrefix, ""))
	buf.WriteString("  # Bytes after a declaration searched for an existing wrapper.\n")
	fmt.Fprintf(&buf, "  guard_window: %d\n", cfg.Envelope.GuardWindow)

	buf.WriteString(`
# Built-in templates. Entries with a built-in name adjust or disable it;
# entries with a new name and a pattern add a template.
# templates:
`)
	for _, tc := range templates {
		fmt.Fprintf(&buf, "#   - name: %s\n", tc.Name)
		fmt.Fprintf(&buf, "#     # pattern: %q\n", tc.Pattern)
		fmt.Fprintf(&buf, "#     max_gap: %d\n", tc.MaxGap)
		fmt.Fprintf(&buf, "#     max_type_depth: %d\n", tc.MaxTypeDepth)
		buf.WriteString("#     enabled: true\n")
	}

	buf.WriteString(`
discovery:
  # Extensions walked when a directory is given.
`)
	writeList(&buf, "  ", "extensions", cfg.Discovery.Extensions)
	buf.WriteString("  # Walked files must end in one of these; explicit files are exempt.\n")
	writeList(&buf, "  ", "suffixes", cfg.Discovery.Suffixes)
	buf.WriteString("  # Files without any of these substrings are never parsed.\n")
	writeList(&buf, "  ", "triggers", cfg.Discovery.Triggers)
	fmt.Fprintf(&buf, "  # Detected language required; %q disables detection.\n", LanguageAny)
	fmt.Fprintf(&buf, "  language: %q\n", cfg.Discovery.Language)
	buf.WriteString("  # include: [\"tests/**\"]\n")
	buf.WriteString("  follow_symlinks: false\n")

	buf.WriteString("\n# Glob patterns for files and directories to skip.\n")
	writeList(&buf, "", "ignore", cfg.Ignore)

	buf.WriteString("\nbackups:\n")
	fmt.Fprintf(&buf, "  enabled: %t\n", Value(cfg.Backups.Enabled, true))
	fmt.Fprintf(&buf, "  suffix: %s\n", cfg.Backups.Suffix)

	buf.WriteString("\n# Refuse to write a file when a second pass would change it again.\n")
	fmt.Fprintf(&buf, "verify: %t\n", Value(cfg.Verify, true))
	buf.WriteString("# Re-hash files before writing to detect concurrent edits.\n")
	fmt.Fprintf(&buf, "strict: %t\n", Value(cfg.Strict, true))

	buf.WriteString("\nlog:\n")
	buf.WriteString("  # debug, info, warn, or error\n")
	fmt.Fprintf(&buf, "  level: %s\n", cfg.Log.Level)
	buf.WriteString("  # text, json, or logfmt\n")
	fmt.Fprintf(&buf, "  format: %s\n", cfg.Log.Format)

	return buf.Bytes()
}

func writeList(buf *bytes.Buffer, indent, key string, values []string) {
	fmt.Fprintf(buf, "%s%s:\n", indent, key)
	for _, v := range values {
		fmt.Fprintf(buf, "%s  - %q\n", indent, v)
	}
}

// wrapComment wraps a comment to fit within maxWidth characters.
func wrapComment(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	currentLine := ""

	for _, word := range words {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n  # ")
}

// templateToJSON renders the default configuration as JSON. JSON has no
// comments, so the output is the same with or without Full.
func templateToJSON() ([]byte, error) {
	yamlBytes, err := NewConfig().ToYAML()
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := yaml.Unmarshal(yamlBytes, &doc); err != nil {
		return nil, fmt.Errorf("decode defaults: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return append(jsonBytes, '\n'), nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# wrapfix configuration
# See: https://github.com/yaklabco/wrapfix`
}
