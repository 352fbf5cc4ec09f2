package configloader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/yaklabco/wrapfix/internal/logging"
	"github.com/yaklabco/wrapfix/pkg/config"
	"github.com/yaklabco/wrapfix/pkg/langdetect"
	"github.com/yaklabco/wrapfix/pkg/pipeline"
	"github.com/yaklabco/wrapfix/pkg/rewrite"
	"github.com/yaklabco/wrapfix/pkg/runner"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "envelope.variable").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// Validate checks a configuration for errors and warnings. Besides field
// checks it compiles the templates, so a valid configuration always
// yields a ruleset.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Format != "" && !cfg.Format.IsValid() {
		result.fail("format", cfg.Format, "invalid format %q; must be one of: %s",
			cfg.Format, strings.Join(lo.Map(config.OutputFormats(), func(f config.OutputFormat, _ int) string {
				return string(f)
			}), ", "))
	}
	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}
	if err := logging.ValidateFormat(cfg.Log.Format); err != nil {
		result.fail("log.format", cfg.Log.Format, "%v", err)
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		result.fail("log.level", cfg.Log.Level, "invalid level %q; must be one of: debug, info, warn, error", cfg.Log.Level)
	}

	validateEnvelope(cfg, result)
	validateTemplates(cfg, result)
	validateDiscovery(cfg, result)
	return result
}

func validateEnvelope(cfg *config.Config, result *ValidationResult) {
	err := pipeline.EnvelopeFromConfig(cfg).Validate()
	if err == nil {
		return
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			result.fail("envelope", nil, "%v", e)
		}
		return
	}
	result.fail("envelope", nil, "%v", err)
}

func validateTemplates(cfg *config.Config, result *ValidationResult) {
	for i, tc := range cfg.Templates {
		field := fmt.Sprintf("templates[%d]", i)
		if tc.Name == "" {
			result.fail(field+".name", tc.Name, "template name is required")
		}
		if tc.MaxGap < 0 {
			result.fail(field+".max_gap", tc.MaxGap, "max_gap must be >= 0")
		}
		if tc.MaxTypeDepth < 0 {
			result.fail(field+".max_type_depth", tc.MaxTypeDepth, "max_type_depth must be >= 0")
		}
	}
	for _, dup := range lo.FindDuplicatesBy(cfg.Templates, func(tc config.TemplateConfig) string { return tc.Name }) {
		result.warn("templates", dup.Name, "template %q is configured more than once; later entries win", dup.Name)
	}
	if !result.Valid() {
		return
	}

	specs := pipeline.TemplateSpecsFromConfig(cfg)
	if len(specs) == 0 {
		result.fail("templates", nil, "every template is disabled")
		return
	}
	for _, spec := range specs {
		if spec.Source == "" {
			result.fail("templates", spec.Name, "template %q is not built in and has no pattern", spec.Name)
		}
	}
	if !result.Valid() {
		return
	}
	if _, err := rewrite.NewRuleset(pipeline.EnvelopeFromConfig(cfg), specs); err != nil {
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				result.fail("templates", nil, "%v", e)
			}
			return
		}
		result.fail("templates", nil, "%v", err)
	}
}

func validateDiscovery(cfg *config.Config, result *ValidationResult) {
	d := cfg.Discovery
	for i, ext := range d.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			result.fail(fmt.Sprintf("discovery.extensions[%d]", i), ext, "extension %q must start with a dot", ext)
		}
	}
	if d.Language != "" && !strings.EqualFold(d.Language, config.LanguageAny) {
		if _, ok := langdetect.Canonical(d.Language); !ok {
			result.fail("discovery.language", d.Language, "unknown language %q", d.Language)
		}
	}
	if len(d.Triggers) == 0 {
		result.warn("discovery.triggers", nil, "no triggers; every file is parsed")
	}
	if err := runner.ValidateGlobs(d.Include); err != nil {
		result.fail("discovery.include", d.Include, "%v", err)
	}
	if err := runner.ValidateGlobs(cfg.Ignore); err != nil {
		result.fail("ignore", cfg.Ignore, "%v", err)
	}
	if cfg.Backups.Suffix != "" && strings.ContainsAny(cfg.Backups.Suffix, `/\`) {
		result.fail("backups.suffix", cfg.Backups.Suffix, "suffix must not contain a path separator")
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}
	return result
}
