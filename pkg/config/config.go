// Package config defines the configuration types for wrapfix.
// These types are plain data; loading, merging and validation live in
// internal/configloader.
package config

import "slices"

// OutputFormat specifies the report format.
type OutputFormat string

const (
	FormatText     OutputFormat = "text"
	FormatTable    OutputFormat = "table"
	FormatJSON     OutputFormat = "json"
	FormatDiff     OutputFormat = "diff"
	FormatSummary  OutputFormat = "summary"
	FormatMarkdown OutputFormat = "markdown"
	FormatHTML     OutputFormat = "html"
)

// OutputFormats lists every supported format.
func OutputFormats() []OutputFormat {
	return []OutputFormat{FormatText, FormatTable, FormatJSON, FormatDiff, FormatSummary, FormatMarkdown, FormatHTML}
}

// IsValid reports whether f is a supported format.
func (f OutputFormat) IsValid() bool {
	return slices.Contains(OutputFormats(), f)
}

// EnvelopeConfig configures the wrapper construct.
type EnvelopeConfig struct {
	Type         string `yaml:"type,omitempty"`
	DataProperty string `yaml:"data_property,omitempty"`
	Variable     string `yaml:"variable,omitempty"`

	// RenamePrefix is a pointer so that an explicit empty string, which
	// disables renaming, can be told apart from unset.
	RenamePrefix *string `yaml:"rename_prefix,omitempty"`

	GuardWindow int `yaml:"guard_window,omitempty"`
}

// TemplateConfig adds a rewrite template or adjusts a built-in one.
// An entry whose name matches a built-in template and has no pattern
// only changes that template's limits or enables and disables it.
type TemplateConfig struct {
	Name         string `yaml:"name"`
	Pattern      string `yaml:"pattern,omitempty"`
	MaxGap       int    `yaml:"max_gap,omitempty"`
	MaxTypeDepth int    `yaml:"max_type_depth,omitempty"`
	Enabled      *bool  `yaml:"enabled,omitempty"`
}

// DiscoveryConfig controls which files are considered.
type DiscoveryConfig struct {
	// Extensions are the file extensions, with leading dot, to walk.
	Extensions []string `yaml:"extensions,omitempty"`

	// Suffixes restrict walked files to names ending in one of them.
	Suffixes []string `yaml:"suffixes,omitempty"`

	// Triggers are substrings one of which must occur in a file.
	Triggers []string `yaml:"triggers,omitempty"`

	// Language is the detected language a file must have. "any" turns
	// the check off.
	Language string `yaml:"language,omitempty"`

	// Include restricts discovery to matching paths.
	Include []string `yaml:"include,omitempty"`

	FollowSymlinks bool `yaml:"follow_symlinks,omitempty"`
}

// LanguageAny disables language detection.
const LanguageAny = "any"

// BackupsConfig controls backup behavior when writing files.
type BackupsConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Suffix  string `yaml:"suffix,omitempty"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Config is the root configuration structure for wrapfix.
type Config struct {
	Envelope EnvelopeConfig `yaml:"envelope"`

	// Templates add to or adjust the built-in templates.
	Templates []TemplateConfig `yaml:"templates,omitempty"`

	Discovery DiscoveryConfig `yaml:"discovery"`

	// Ignore contains glob patterns for files and directories to skip.
	Ignore []string `yaml:"ignore,omitempty"`

	Backups BackupsConfig `yaml:"backups"`

	// Verify refuses to write a file when a second pass would change it.
	Verify *bool `yaml:"verify,omitempty"`

	// Strict re-hashes files before writing instead of comparing only
	// size and modification time.
	Strict *bool `yaml:"strict,omitempty"`

	Log LogConfig `yaml:"log"`

	// CLI-level options (not persisted to config files).

	// DryRun reports what would change without writing.
	DryRun bool `yaml:"-"`

	// Check is DryRun with a failing exit status when changes are pending.
	Check bool `yaml:"-"`

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-"`

	// NoBackups disables backup creation.
	NoBackups bool `yaml:"-"`

	// NoVerify disables the second-pass check.
	NoVerify bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Envelope: EnvelopeConfig{
			Type:         "ApiResponse",
			DataProperty: "Data",
			Variable:     "apiResponse",
			RenamePrefix: Ptr("expected"),
			GuardWindow:  500,
		},
		Discovery: DiscoveryConfig{
			Extensions: []string{".cs"},
			Suffixes:   []string{"Tests.cs", "Test.cs"},
			Triggers:   []string{"Serialize("},
			Language:   "C#",
		},
		Ignore: []string{"bin", "obj"},
		Backups: BackupsConfig{
			Enabled: Ptr(true),
			Suffix:  ".wrapfix.bak",
		},
		Verify: Ptr(true),
		Strict: Ptr(true),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Format: FormatText,
		Jobs:   0, // 0 means use NumCPU
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Value returns *p, or def when p is nil.
func Value[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// BackupsEnabled reports whether backups are written.
func (c *Config) BackupsEnabled() bool {
	return Value(c.Backups.Enabled, true) && !c.NoBackups
}

// VerifyEnabled reports whether the second-pass check runs.
func (c *Config) VerifyEnabled() bool {
	return Value(c.Verify, true) && !c.NoVerify
}

// StrictEnabled reports whether files are re-hashed before writing.
func (c *Config) StrictEnabled() bool {
	return Value(c.Strict, true)
}

// WritesFiles reports whether the run may modify files.
func (c *Config) WritesFiles() bool {
	return !c.DryRun && !c.Check
}
