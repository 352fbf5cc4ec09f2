package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/wrapfix/internal/cli"
)

const (
	widgetTests = "using Xunit;\n\npublic class WidgetTests\n{\n" +
		"    [Fact]\n    public void Serializes()\n    {\n" +
		"        var expectedResponse = new Widget { Id = 1 };\n" +
		"        var json = JsonSerializer.Serialize(expectedResponse);\n" +
		"        Assert.NotNull(json);\n    }\n}\n"

	widgetTestsFixed = "using Xunit;\n\npublic class WidgetTests\n{\n" +
		"    [Fact]\n    public void Serializes()\n    {\n" +
		"        var expectedWidget = new Widget { Id = 1 };\n" +
		"        var apiResponse = new ApiResponse<Widget> { Data = expectedWidget };\n" +
		"        var json = JsonSerializer.Serialize(apiResponse);\n" +
		"        Assert.NotNull(json);\n    }\n}\n"
)

// fixtureDir creates a directory holding WidgetTests.cs and an empty
// config file, and returns both paths.
func fixtureDir(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "WidgetTests.cs"), []byte(widgetTests), 0o644))
	cfgFile := filepath.Join(dir, ".wrapfix.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("log:\n  level: warn\n"), 0o644))
	return dir, cfgFile
}

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(testInfo())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestIntegration_FixWritesFileAndBackup(t *testing.T) {
	t.Parallel()

	dir, cfgFile := fixtureDir(t)
	file := filepath.Join(dir, "WidgetTests.cs")

	stdout, _, err := execute(t, "fix", "--config", cfgFile, "--color", "never", dir)
	require.NoError(t, err)

	assert.Equal(t, widgetTestsFixed, readFile(t, file))
	assert.Equal(t, widgetTests, readFile(t, file+".wrapfix.bak"))
	assert.Contains(t, stdout, "expectedWidget")
	assert.Contains(t, stdout, "1 file written")
}

func TestIntegration_FixTwiceIsNoOp(t *testing.T) {
	t.Parallel()

	dir, cfgFile := fixtureDir(t)
	file := filepath.Join(dir, "WidgetTests.cs")

	_, _, err := execute(t, "fix", "--config", cfgFile, "--no-backups", dir)
	require.NoError(t, err)

	_, _, err = execute(t, "fix", "--config", cfgFile, "--no-backups", "--check", dir)
	require.NoError(t, err, "second run should find nothing to change")
	assert.Equal(t, widgetTestsFixed, readFile(t, file))
}

func TestIntegration_DryRunLeavesFile(t *testing.T) {
	t.Parallel()

	dir, cfgFile := fixtureDir(t)
	file := filepath.Join(dir, "WidgetTests.cs")

	stdout, _, err := execute(t, "fix", "--config", cfgFile, "--dry-run", "--format", "diff", "--color", "never", dir)
	require.NoError(t, err)

	assert.Equal(t, widgetTests, readFile(t, file))
	assert.NoFileExists(t, file+".wrapfix.bak")
	assert.Contains(t, stdout, "-        var expectedResponse = new Widget { Id = 1 };")
	assert.Contains(t, stdout, "+        var apiResponse = new ApiResponse<Widget> { Data = expectedWidget };")
}

func TestIntegration_CheckExitCode(t *testing.T) {
	t.Parallel()

	dir, cfgFile := fixtureDir(t)
	file := filepath.Join(dir, "WidgetTests.cs")

	_, _, err := execute(t, "fix", "--config", cfgFile, "--check", dir)
	require.Error(t, err)
	assert.Equal(t, cli.ExitChangesPending, cli.ExitCode(err))
	assert.ErrorIs(t, err, cli.ErrChangesPending)
	assert.Equal(t, widgetTests, readFile(t, file))
}

func TestIntegration_FailOnSkip(t *testing.T) {
	t.Parallel()

	dir, cfgFile := fixtureDir(t)
	file := filepath.Join(dir, "DeepTests.cs")
	source := "public class DeepTests\n{\n    public void Serializes()\n    {\n" +
		"        var expectedResponse = new A<B<C<D<E>>>> { };\n" +
		"        var json = Serialize(expectedResponse);\n    }\n}\n"
	require.NoError(t, os.WriteFile(file, []byte(source), 0o644))

	_, _, err := execute(t, "fix", "--config", cfgFile, "--dry-run", "--language", "any", file)
	require.NoError(t, err, "skipped sites alone do not fail the run")

	_, _, err = execute(t, "fix", "--config", cfgFile, "--dry-run", "--language", "any", "--fail-on-skip", file)
	require.Error(t, err)
	assert.Equal(t, cli.ExitSkippedSites, cli.ExitCode(err))
	assert.Equal(t, source, readFile(t, file))
}

func TestIntegration_JSONFormat(t *testing.T) {
	t.Parallel()

	dir, cfgFile := fixtureDir(t)

	stdout, _, err := execute(t, "fix", "--config", cfgFile, "--dry-run", "--format", "json", dir)
	require.NoError(t, err)

	var report struct {
		Sites []struct {
			Status  string `json:"status"`
			Subject string `json:"subject"`
			Renamed string `json:"renamed"`
		} `json:"sites"`
		Summary struct {
			Rewritten int `json:"rewritten"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report), stdout)
	require.Len(t, report.Sites, 1)
	assert.Equal(t, "rewritten", report.Sites[0].Status)
	assert.Equal(t, "expectedResponse", report.Sites[0].Subject)
	assert.Equal(t, "expectedWidget", report.Sites[0].Renamed)
	assert.Equal(t, 1, report.Summary.Rewritten)
}

func TestIntegration_InvalidFormat(t *testing.T) {
	t.Parallel()

	dir, cfgFile := fixtureDir(t)

	_, _, err := execute(t, "fix", "--config", cfgFile, "--dry-run", "--format", "sarif", dir)
	require.Error(t, err)
}

func TestIntegration_EnvelopeFlags(t *testing.T) {
	t.Parallel()

	dir, cfgFile := fixtureDir(t)
	file := filepath.Join(dir, "WidgetTests.cs")

	_, _, err := execute(t, "fix", "--config", cfgFile, "--no-backups",
		"--envelope", "Envelope", "--data-property", "Payload", "--wrapper-var", "envelope", dir)
	require.NoError(t, err)

	got := readFile(t, file)
	assert.Contains(t, got, "var envelope = new Envelope<Widget> { Payload = expectedWidget };")
	assert.Contains(t, got, "JsonSerializer.Serialize(envelope);")
}

func TestIntegration_ConfigFileEnvelope(t *testing.T) {
	t.Parallel()

	dir, _ := fixtureDir(t)
	file := filepath.Join(dir, "WidgetTests.cs")
	cfgFile := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("envelope:\n  type: Result\n  rename_prefix: \"\"\n"), 0o644))

	_, _, err := execute(t, "fix", "--config", cfgFile, "--no-backups", dir)
	require.NoError(t, err)

	got := readFile(t, file)
	assert.Contains(t, got, "var expectedResponse = new Widget { Id = 1 };")
	assert.Contains(t, got, "var apiResponse = new Result<Widget> { Data = expectedResponse };")
}

func TestIntegration_Restore(t *testing.T) {
	t.Parallel()

	dir, cfgFile := fixtureDir(t)
	file := filepath.Join(dir, "WidgetTests.cs")

	_, _, err := execute(t, "fix", "--config", cfgFile, dir)
	require.NoError(t, err)
	require.Equal(t, widgetTestsFixed, readFile(t, file))

	_, _, err = execute(t, "restore", "--config", cfgFile, "--dry-run", dir)
	require.NoError(t, err)
	assert.Equal(t, widgetTestsFixed, readFile(t, file))

	_, _, err = execute(t, "restore", "--config", cfgFile, dir)
	require.NoError(t, err)
	assert.Equal(t, widgetTests, readFile(t, file))
	assert.NoFileExists(t, file+".wrapfix.bak")
}

func TestIntegration_TemplatesJSON(t *testing.T) {
	t.Parallel()

	_, cfgFile := fixtureDir(t)

	stdout, _, err := execute(t, "templates", "--config", cfgFile, "--format", "json")
	require.NoError(t, err)

	var templates []struct {
		Name    string   `json:"name"`
		Slots   []string `json:"slots"`
		Builtin bool     `json:"builtin"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &templates), stdout)

	names := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		names = append(names, tmpl.Name)
		assert.True(t, tmpl.Builtin, tmpl.Name)
		assert.Contains(t, tmpl.Slots, "subject", tmpl.Name)
	}
	assert.Equal(t, []string{"var-new", "typed-new", "target-typed"}, names)
}

func TestIntegration_InitCreatesConfig(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), ".wrapfix.yml")

	_, _, err := execute(t, "init", "--output", out)
	require.NoError(t, err)
	assert.Contains(t, readFile(t, out), "envelope:")

	_, _, err = execute(t, "init", "--output", out)
	require.Error(t, err, "existing file without --force")
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))

	_, _, err = execute(t, "init", "--output", out, "--force", "--full")
	require.NoError(t, err)
	for _, name := range []string{"var-new", "typed-new", "target-typed"} {
		assert.Contains(t, readFile(t, out), "#   - name: "+name)
	}

	_, _, err = execute(t, "config", "validate", out)
	require.NoError(t, err, "generated config should validate")
}

func TestIntegration_InitJSON(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "wrapfix.json")

	_, _, err := execute(t, "init", "--format", "json", "--output", out)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(readFile(t, out)), &doc))
	assert.Contains(t, doc, "envelope")
}

func TestIntegration_ConfigCommands(t *testing.T) {
	t.Parallel()

	_, cfgFile := fixtureDir(t)

	stdout, _, err := execute(t, "config", "env")
	require.NoError(t, err)
	assert.Contains(t, stdout, "WRAPFIX_")

	stdout, _, err = execute(t, "config", "show", "--config", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "envelope:")
	assert.Contains(t, stdout, cfgFile)

	stdout, _, err = execute(t, "config", "paths", "--config", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "explicit  "+cfgFile)

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("envelope:\n  tpye: Oops\n"), 0o644))
	_, _, err = execute(t, "config", "validate", bad)
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(err))
}

func TestIntegration_WatchRejectsCheck(t *testing.T) {
	t.Parallel()

	dir, cfgFile := fixtureDir(t)

	_, _, err := execute(t, "fix", "--config", cfgFile, "--watch", "--check", dir)
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
}
