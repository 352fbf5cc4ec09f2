package configloader

import (
	"slices"

	"github.com/yaklabco/wrapfix/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Pointers: override overwrites base if override is non-nil
//   - Slices: override replaces base entirely if override is non-nil
//   - Templates: merged by name, later entries refine earlier ones
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()
	o := override.Clone()

	// Envelope
	setString(&result.Envelope.Type, o.Envelope.Type)
	setString(&result.Envelope.DataProperty, o.Envelope.DataProperty)
	setString(&result.Envelope.Variable, o.Envelope.Variable)
	setPtr(&result.Envelope.RenamePrefix, o.Envelope.RenamePrefix)
	if o.Envelope.GuardWindow != 0 {
		result.Envelope.GuardWindow = o.Envelope.GuardWindow
	}

	result.Templates = mergeTemplates(result.Templates, o.Templates)

	// Discovery
	setSlice(&result.Discovery.Extensions, o.Discovery.Extensions)
	setSlice(&result.Discovery.Suffixes, o.Discovery.Suffixes)
	setSlice(&result.Discovery.Triggers, o.Discovery.Triggers)
	setSlice(&result.Discovery.Include, o.Discovery.Include)
	setString(&result.Discovery.Language, o.Discovery.Language)
	if o.Discovery.FollowSymlinks {
		result.Discovery.FollowSymlinks = true
	}

	setSlice(&result.Ignore, o.Ignore)

	setPtr(&result.Backups.Enabled, o.Backups.Enabled)
	setString(&result.Backups.Suffix, o.Backups.Suffix)
	setPtr(&result.Verify, o.Verify)
	setPtr(&result.Strict, o.Strict)

	setString(&result.Log.Level, o.Log.Level)
	setString(&result.Log.Format, o.Log.Format)

	// CLI-only fields. Booleans can only be switched on.
	if o.Format != "" {
		result.Format = o.Format
	}
	if o.Jobs != 0 {
		result.Jobs = o.Jobs
	}
	result.DryRun = result.DryRun || o.DryRun
	result.Check = result.Check || o.Check
	result.NoBackups = result.NoBackups || o.NoBackups
	result.NoVerify = result.NoVerify || o.NoVerify

	return result
}

// mergeTemplates merges template entries by name. Fields set in an
// override entry replace the base entry's; new names are appended.
func mergeTemplates(base, override []config.TemplateConfig) []config.TemplateConfig {
	result := slices.Clone(base)
	for _, o := range override {
		i := slices.IndexFunc(result, func(t config.TemplateConfig) bool { return t.Name == o.Name })
		if i < 0 {
			result = append(result, o)
			continue
		}
		t := &result[i]
		setString(&t.Pattern, o.Pattern)
		if o.MaxGap != 0 {
			t.MaxGap = o.MaxGap
		}
		if o.MaxTypeDepth != 0 {
			t.MaxTypeDepth = o.MaxTypeDepth
		}
		setPtr(&t.Enabled, o.Enabled)
	}
	return result
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setPtr[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

func setSlice(dst *[]string, v []string) {
	if v != nil {
		*dst = v
	}
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
