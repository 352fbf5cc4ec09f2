package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/wrapfix/internal/configloader"
	"github.com/yaklabco/wrapfix/internal/logging"
	"github.com/yaklabco/wrapfix/pkg/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect wrapfix configuration",
		Long: `Inspect how wrapfix resolves its configuration.

Configuration is merged from defaults, /etc/wrapfix, the user config
directory, the nearest .wrapfix.yml, --config, WRAPFIX_* environment
variables and command-line flags, in increasing precedence.

Examples:
  wrapfix config show               Print the effective configuration
  wrapfix config paths              Show which config files were found
  wrapfix config env                List supported environment variables
  wrapfix config validate ci.yml    Check a config file without running`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigPathsCommand())
	cmd.AddCommand(newConfigEnvCommand())
	cmd.AddCommand(newConfigValidateCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			header := config.DefaultTemplateHeader() + "\n# Effective configuration"
			if len(result.LoadedFrom) > 0 {
				header += " from:\n#   " + strings.Join(result.LoadedFrom, "\n#   ")
			} else {
				header += " (defaults only)"
			}

			content, err := result.Config.ToYAMLWithHeader(header)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(content)
			return err
		},
	}
}

func newConfigPathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show the configuration files wrapfix looks at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			printConfigPaths(cmd.OutOrStdout(), result.Paths)
			return nil
		},
	}
}

func printConfigPaths(w io.Writer, paths *configloader.ConfigPaths) {
	if paths == nil {
		paths = &configloader.ConfigPaths{}
	}
	rows := [][2]string{
		{"system", paths.System},
		{"user", paths.User},
		{"project", paths.Project},
		{"explicit", paths.Explicit},
	}
	for _, row := range rows {
		value := row[1]
		if value == "" {
			value = "(none)"
		}
		fmt.Fprintf(w, "%-9s %s\n", row[0], value)
	}
}

func newConfigEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the WRAPFIX_* environment variables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vars := configloader.ListEnvVars()
			width := 0
			for _, v := range vars {
				width = max(width, len(v[0]))
			}
			for _, v := range vars {
				fmt.Fprintf(cmd.OutOrStdout(), "%-*s  %s\n", width, v[0], v[1])
			}
			return nil
		},
	}
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a configuration file or the effective configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewInteractive()

			var (
				cfg  *config.Config
				path string
			)
			if len(args) == 1 {
				path = args[0]
				content, err := os.ReadFile(path)
				if err != nil {
					return withExitCode(ExitIOError, fmt.Errorf("read config: %w", err))
				}
				parsed, err := config.FromYAML(content)
				if err != nil {
					return withExitCode(ExitConfigError, fmt.Errorf("%s: %w", path, err))
				}
				cfg = parsed
			} else {
				result, err := resolveConfig(cmd)
				if err != nil {
					return err
				}
				cfg = result.Config
			}

			validation := configloader.ValidateWithFile(cfg, path)
			for _, w := range validation.Warnings {
				logger.Warn(w.Error())
			}
			if !validation.Valid() {
				errs := make([]error, 0, len(validation.Errors))
				for i := range validation.Errors {
					errs = append(errs, &validation.Errors[i])
				}
				return withExitCode(ExitConfigError, errors.Join(errs...))
			}

			logger.Info("configuration is valid", logging.FieldConfig, displayPath(path))
			return nil
		},
	}
}

// resolveConfig loads the layered configuration without CLI overrides.
func resolveConfig(cmd *cobra.Command) (*configloader.LoadResult, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, withExitCode(ExitIOError, fmt.Errorf("get working directory: %w", err))
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	result, err := configloader.Load(cmd.Context(), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
	})
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	return result, nil
}

func displayPath(path string) string {
	if path == "" {
		return "(effective)"
	}
	return path
}
