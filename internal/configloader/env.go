package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/samber/lo"

	"github.com/yaklabco/wrapfix/pkg/config"
)

// envVarPrefix is the prefix for all wrapfix environment variables.
const envVarPrefix = "WRAPFIX_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeSlice
)

// envMapping binds one environment variable to a config field.
type envMapping struct {
	typ  envFieldType
	help string

	str   func(*config.Config, string)
	flag  func(*config.Config, bool)
	num   func(*config.Config, int)
	slice func(*config.Config, []string)
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"ENVELOPE_TYPE": {typ: envTypeString, help: "Envelope type, e.g. ApiResponse",
		str: func(c *config.Config, v string) { c.Envelope.Type = v }},
	"DATA_PROPERTY": {typ: envTypeString, help: "Envelope property receiving the value",
		str: func(c *config.Config, v string) { c.Envelope.DataProperty = v }},
	"WRAPPER_VARIABLE": {typ: envTypeString, help: "Name of the wrapper variable",
		str: func(c *config.Config, v string) { c.Envelope.Variable = v }},
	"RENAME_PREFIX": {typ: envTypeString, help: "Prefix for renamed values; \"-\" disables renaming",
		str: func(c *config.Config, v string) {
			if v == "-" {
				v = ""
			}
			c.Envelope.RenamePrefix = config.Ptr(v)
		}},
	"GUARD_WINDOW": {typ: envTypeInt, help: "Bytes searched for an existing wrapper",
		num: func(c *config.Config, v int) { c.Envelope.GuardWindow = v }},
	"EXTENSIONS": {typ: envTypeSlice, help: "File extensions to walk",
		slice: func(c *config.Config, v []string) { c.Discovery.Extensions = v }},
	"SUFFIXES": {typ: envTypeSlice, help: "File name suffixes to walk",
		slice: func(c *config.Config, v []string) { c.Discovery.Suffixes = v }},
	"TRIGGERS": {typ: envTypeSlice, help: "Substrings a file must contain",
		slice: func(c *config.Config, v []string) { c.Discovery.Triggers = v }},
	"LANGUAGE": {typ: envTypeString, help: "Required language, or \"any\"",
		str: func(c *config.Config, v string) { c.Discovery.Language = v }},
	"INCLUDE": {typ: envTypeSlice, help: "Glob patterns to include",
		slice: func(c *config.Config, v []string) { c.Discovery.Include = v }},
	"IGNORE": {typ: envTypeSlice, help: "Glob patterns to ignore",
		slice: func(c *config.Config, v []string) { c.Ignore = v }},
	"BACKUPS_ENABLED": {typ: envTypeBool, help: "Write backups before modifying files",
		flag: func(c *config.Config, v bool) { c.Backups.Enabled = config.Ptr(v) }},
	"BACKUPS_SUFFIX": {typ: envTypeString, help: "Backup file suffix",
		str: func(c *config.Config, v string) { c.Backups.Suffix = v }},
	"NO_BACKUPS": {typ: envTypeBool, help: "Disable backups",
		flag: func(c *config.Config, v bool) { c.NoBackups = v }},
	"VERIFY": {typ: envTypeBool, help: "Refuse writes a second pass would change",
		flag: func(c *config.Config, v bool) { c.Verify = config.Ptr(v) }},
	"STRICT": {typ: envTypeBool, help: "Re-hash files before writing",
		flag: func(c *config.Config, v bool) { c.Strict = config.Ptr(v) }},
	"DRY_RUN": {typ: envTypeBool, help: "Report changes without writing",
		flag: func(c *config.Config, v bool) { c.DryRun = v }},
	"JOBS": {typ: envTypeInt, help: "Number of parallel workers (0 = auto)",
		num: func(c *config.Config, v int) { c.Jobs = v }},
	"FORMAT": {typ: envTypeString, help: "Output format: text, table, json, diff, summary, markdown, or html",
		str: func(c *config.Config, v string) { c.Format = config.OutputFormat(v) }},
	"LOG_LEVEL": {typ: envTypeString, help: "Log level: debug, info, warn, or error",
		str: func(c *config.Config, v string) { c.Log.Level = v }},
	"LOG_FORMAT": {typ: envTypeString, help: "Log format: text, json, or logfmt",
		str: func(c *config.Config, v string) { c.Log.Format = v }},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with WRAPFIX_ (e.g., WRAPFIX_JOBS).
// Empty variables are ignored.
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for suffix, mapping := range envMappings {
		envVar := envVarPrefix + suffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}
	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		mapping.str(cfg, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		mapping.flag(cfg, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		mapping.num(cfg, i)
	case envTypeSlice:
		parts, err := parseSliceValue(value)
		if err != nil {
			return fmt.Errorf("invalid list for %s: %w", envVar, err)
		}
		mapping.slice(cfg, parts)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
	return nil
}

// parseSliceValue splits a list given as shell words, commas, or both:
// `bin,obj`, `bin obj` and `"my dir" obj` are all accepted. Duplicates
// and empty elements are dropped.
func parseSliceValue(value string) ([]string, error) {
	words, err := shlex.Split(value)
	if err != nil {
		return nil, err
	}
	var parts []string
	for _, word := range words {
		for _, part := range strings.Split(word, ",") {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	return lo.Uniq(lo.Compact(parts)), nil
}

// ListEnvVars returns all supported environment variables with their
// descriptions, sorted by name.
func ListEnvVars() [][2]string {
	names := lo.Keys(envMappings)
	sort.Strings(names)
	return lo.Map(names, func(name string, _ int) [2]string {
		return [2]string{envVarPrefix + name, envMappings[name].help}
	})
}
