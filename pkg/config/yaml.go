package config

import (
	"bytes"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// ToYAML serializes the configuration to YAML format.
func (c *Config) ToYAML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent())

	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// ToYAMLWithHeader serializes the configuration with a header comment.
func (c *Config) ToYAMLWithHeader(header string) ([]byte, error) {
	yamlBytes, err := c.ToYAML()
	if err != nil {
		return nil, err
	}

	if header == "" {
		return yamlBytes, nil
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	if header[len(header)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(yamlBytes)

	return buf.Bytes(), nil
}

// FromYAML parses a configuration from YAML bytes. Unknown keys are an
// error so that typos do not silently fall back to defaults.
func FromYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	clone.Envelope.RenamePrefix = clonePtr(c.Envelope.RenamePrefix)
	clone.Discovery.Extensions = slices.Clone(c.Discovery.Extensions)
	clone.Discovery.Suffixes = slices.Clone(c.Discovery.Suffixes)
	clone.Discovery.Triggers = slices.Clone(c.Discovery.Triggers)
	clone.Discovery.Include = slices.Clone(c.Discovery.Include)
	clone.Ignore = slices.Clone(c.Ignore)
	clone.Backups.Enabled = clonePtr(c.Backups.Enabled)
	clone.Verify = clonePtr(c.Verify)
	clone.Strict = clonePtr(c.Strict)

	if c.Templates != nil {
		clone.Templates = make([]TemplateConfig, len(c.Templates))
		for i, tc := range c.Templates {
			tc.Enabled = clonePtr(tc.Enabled)
			clone.Templates[i] = tc
		}
	}
	return &clone
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// YAMLIndent returns the default YAML indentation.
func YAMLIndent() int {
	return 2
}
