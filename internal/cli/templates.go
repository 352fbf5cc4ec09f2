package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/yaklabco/wrapfix/internal/logging"
	"github.com/yaklabco/wrapfix/pkg/config"
	"github.com/yaklabco/wrapfix/pkg/pipeline"
	"github.com/yaklabco/wrapfix/pkg/rewrite"
)

type templatesFlags struct {
	format string
}

const formatJSON = "json"

// templateInfo represents a template in JSON output.
type templateInfo struct {
	Name         string   `json:"name"`
	Pattern      string   `json:"pattern"`
	Slots        []string `json:"slots"`
	MaxGap       int      `json:"maxGap"`
	MaxTypeDepth int      `json:"maxTypeDepth"`
	Builtin      bool     `json:"builtin"`
}

func newTemplatesCommand() *cobra.Command {
	flags := &templatesFlags{}

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the rewrite templates in effect",
		Long: `List the rewrite templates that fix would use: the built-in templates
adjusted by configuration, followed by templates added in configuration.
Every template is compiled, so this also checks custom patterns.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workDir, err := os.Getwd()
			if err != nil {
				return withExitCode(ExitIOError, fmt.Errorf("get working directory: %w", err))
			}
			ctx, cfg, err := loadConfig(cmd.Context(), cmd, workDir, &config.Config{})
			if err != nil {
				return err
			}

			rules, err := pipeline.RulesetFromConfig(cfg)
			if err != nil {
				return withExitCode(ExitConfigError, err)
			}
			infos := describeTemplates(rules)

			if flags.format == formatJSON {
				return outputTemplatesJSON(cmd.OutOrStdout(), infos)
			}

			logger := logging.FromContext(ctx)
			env := rules.Envelope()
			logger.Info("envelope",
				"type", env.Type,
				"data_property", env.DataProperty,
				"variable", env.Variable,
				"rename_prefix", env.RenamePrefix,
			)
			for _, info := range infos {
				origin := "custom"
				if info.Builtin {
					origin = "built-in"
				}
				logger.Info(info.Name,
					"origin", origin,
					"max_gap", info.MaxGap,
					"max_type_depth", info.MaxTypeDepth,
					"pattern", info.Pattern,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")

	return cmd
}

func describeTemplates(rules *rewrite.Ruleset) []templateInfo {
	builtin := make([]string, 0, len(rewrite.DefaultTemplates()))
	for _, spec := range rewrite.DefaultTemplates() {
		builtin = append(builtin, spec.Name)
	}

	infos := make([]templateInfo, 0, len(rules.Rules()))
	for _, rule := range rules.Rules() {
		tmpl := rule.Template
		infos = append(infos, templateInfo{
			Name:         tmpl.Name(),
			Pattern:      tmpl.Source(),
			Slots:        tmpl.Slots(),
			MaxGap:       tmpl.MaxGap(),
			MaxTypeDepth: rule.MaxTypeDepth,
			Builtin:      slices.Contains(builtin, tmpl.Name()),
		})
	}
	return infos
}

// outputTemplatesJSON writes templates as a JSON array.
func outputTemplatesJSON(w io.Writer, infos []templateInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(infos); err != nil {
		return fmt.Errorf("encoding templates: %w", err)
	}
	return nil
}
