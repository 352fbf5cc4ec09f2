package pipeline

import (
	"slices"
	"strings"

	"github.com/yaklabco/wrapfix/pkg/config"
	"github.com/yaklabco/wrapfix/pkg/fsutil"
	"github.com/yaklabco/wrapfix/pkg/langdetect"
	"github.com/yaklabco/wrapfix/pkg/rewrite"
)

// RulesetFromConfig compiles the envelope and templates of cfg.
func RulesetFromConfig(cfg *config.Config) (*rewrite.Ruleset, error) {
	return rewrite.NewRuleset(EnvelopeFromConfig(cfg), TemplateSpecsFromConfig(cfg))
}

// EnvelopeFromConfig returns the envelope settings of cfg. Unset fields
// take the engine defaults.
func EnvelopeFromConfig(cfg *config.Config) rewrite.Envelope {
	env := rewrite.DefaultEnvelope()
	if cfg == nil {
		return env
	}
	e := cfg.Envelope
	if e.Type != "" {
		env.Type = e.Type
	}
	if e.DataProperty != "" {
		env.DataProperty = e.DataProperty
	}
	if e.Variable != "" {
		env.Variable = e.Variable
	}
	env.RenamePrefix = config.Value(e.RenamePrefix, env.RenamePrefix)
	if e.GuardWindow != 0 {
		env.GuardWindow = e.GuardWindow
	}
	return env
}

// TemplateSpecsFromConfig returns the built-in templates merged with the
// configured ones: built-ins first, then additions in configuration
// order. Disabled templates are dropped.
func TemplateSpecsFromConfig(cfg *config.Config) []rewrite.TemplateSpec {
	specs := rewrite.DefaultTemplates()
	if cfg == nil {
		return specs
	}

	disabled := make(map[string]bool)
	for _, tc := range cfg.Templates {
		i := slices.IndexFunc(specs, func(s rewrite.TemplateSpec) bool { return s.Name == tc.Name })
		if i < 0 {
			i = len(specs)
			specs = append(specs, rewrite.TemplateSpec{
				Name:         tc.Name,
				MaxGap:       rewrite.DefaultTemplates()[0].MaxGap,
				MaxTypeDepth: rewrite.DefaultMaxTypeDepth,
			})
		}
		spec := &specs[i]
		if tc.Pattern != "" {
			spec.Source = tc.Pattern
		}
		if tc.MaxGap != 0 {
			spec.MaxGap = tc.MaxGap
		}
		if tc.MaxTypeDepth != 0 {
			spec.MaxTypeDepth = tc.MaxTypeDepth
		}
		disabled[tc.Name] = !config.Value(tc.Enabled, true)
	}

	return slices.DeleteFunc(specs, func(s rewrite.TemplateSpec) bool { return disabled[s.Name] })
}

// BuiltinTemplates returns the built-in templates in configuration form.
func BuiltinTemplates() []config.TemplateConfig {
	specs := rewrite.DefaultTemplates()
	out := make([]config.TemplateConfig, 0, len(specs))
	for _, spec := range specs {
		out = append(out, config.TemplateConfig{
			Name:         spec.Name,
			Pattern:      spec.Source,
			MaxGap:       spec.MaxGap,
			MaxTypeDepth: spec.MaxTypeDepth,
		})
	}
	return out
}

// BackupsFromConfig creates the backup settings from config.Config.
func BackupsFromConfig(cfg *config.Config) fsutil.Backups {
	if cfg == nil {
		return fsutil.Backups{Enabled: true, Suffix: fsutil.DefaultBackupSuffix}
	}
	return fsutil.Backups{
		Enabled: cfg.BackupsEnabled(),
		Suffix:  cfg.Backups.Suffix,
	}
}

// OptionsFromConfig creates Options from config.Config.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return DefaultOptions()
	}

	return Options{
		Language:            languageFromConfig(cfg.Discovery.Language),
		Triggers:            cfg.Discovery.Triggers,
		DryRun:              !cfg.WritesFiles(),
		Backups:             BackupsFromConfig(cfg),
		StrictRaceDetection: cfg.StrictEnabled(),
		Verify:              cfg.VerifyEnabled(),
	}
}

func languageFromConfig(name string) string {
	switch {
	case name == "":
		return langdetect.CSharp
	case strings.EqualFold(name, config.LanguageAny):
		return ""
	}
	if canonical, ok := langdetect.Canonical(name); ok {
		return canonical
	}
	return name
}
