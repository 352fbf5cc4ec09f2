package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/wrapfix/pkg/analysis"
	"github.com/yaklabco/wrapfix/pkg/pipeline"
	"github.com/yaklabco/wrapfix/pkg/reporter"
	"github.com/yaklabco/wrapfix/pkg/rewrite"
	"github.com/yaklabco/wrapfix/pkg/runner"
)

const (
	widgetBefore = "var expectedResponse = new Widget { Id = 1 };\n" +
		"var json = JsonSerializer.Serialize(expectedResponse);\n"
	widgetAfter = "var expectedWidget = new Widget { Id = 1 };\n" +
		"var apiResponse = new ApiResponse<Widget> { Data = expectedWidget };\n" +
		"var json = JsonSerializer.Serialize(apiResponse);\n"
	orderText = "Order expected = Build();\nvar json = JsonSerializer.Serialize(expected);\n"
)

// createTestResult returns a run over three files: one rewritten, one with
// an unresolved site and one that failed to load.
func createTestResult() *runner.Result {
	return &runner.Result{
		Files: []runner.FileOutcome{
			{
				Path: "tests/WidgetTests.cs",
				Result: &pipeline.Result{
					Path: "tests/WidgetTests.cs",
					Result: &rewrite.Result{
						Original: widgetBefore,
						Text:     widgetAfter,
						Sites: []rewrite.Site{
							{
								Template: "var-new", Status: rewrite.StatusRewritten, Line: 1,
								Subject: "expectedResponse", TypeText: "Widget",
								Renamed: "expectedWidget", Wrapper: "apiResponse",
							},
							{
								Template: "var-new", Status: rewrite.StatusAlreadyWrapped, Line: 9,
								Subject: "expectedResponse",
							},
						},
					},
					Written: true,
				},
			},
			{
				Path: "tests/OrderTests.cs",
				Result: &pipeline.Result{
					Path: "tests/OrderTests.cs",
					Result: &rewrite.Result{
						Original: orderText,
						Text:     orderText,
						Sites: []rewrite.Site{
							{
								Template: "typed-new", Status: rewrite.StatusUnresolved, Line: 1,
								Subject: "expected", Reason: "no call argument",
							},
						},
					},
				},
			},
			{
				Path:  "tests/Missing.cs",
				Error: errors.New("file not found"),
			},
		},
		Stats: runner.Stats{
			FilesProcessed: 2,
			FilesErrored:   1,
			FilesChanged:   1,
			FilesWritten:   1,
			Sites: map[rewrite.Status]int{
				rewrite.StatusRewritten:      1,
				rewrite.StatusAlreadyWrapped: 1,
				rewrite.StatusUnresolved:     1,
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{name: "empty defaults to text", input: "", want: reporter.FormatText},
		{name: "text", input: "text", want: reporter.FormatText},
		{name: "table", input: "table", want: reporter.FormatTable},
		{name: "json", input: "json", want: reporter.FormatJSON},
		{name: "diff", input: "diff", want: reporter.FormatDiff},
		{name: "markdown", input: "markdown", want: reporter.FormatMarkdown},
		{name: "case insensitive", input: "HTML", want: reporter.FormatHTML},
		{name: "unknown format", input: "xml", wantErr: true},
		{name: "sarif is not supported", input: "sarif", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "valid formats")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_IsValid(t *testing.T) {
	for _, f := range reporter.Formats() {
		assert.True(t, f.IsValid(), f)
	}
	assert.False(t, reporter.Format("unknown").IsValid())
	assert.False(t, reporter.Format("").IsValid())
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		format  reporter.Format
		wantErr bool
	}{
		{name: "text reporter", format: reporter.FormatText},
		{name: "table reporter", format: reporter.FormatTable},
		{name: "json reporter", format: reporter.FormatJSON},
		{name: "diff reporter", format: reporter.FormatDiff},
		{name: "summary reporter", format: reporter.FormatSummary},
		{name: "markdown reporter", format: reporter.FormatMarkdown},
		{name: "html reporter", format: reporter.FormatHTML},
		{name: "empty defaults to text", format: ""},
		{name: "unknown format", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			opts := reporter.Options{
				Writer: &buf,
				Format: tt.format,
				Color:  "never",
			}

			rep, err := reporter.New(opts)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, rep)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, rep)
		})
	}
}

func TestTextReporter_NilResult(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		ShowSummary: true,
	})

	count, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Contains(t, buf.String(), "No files to check")
}

func TestTextReporter_WithSites(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		ShowSummary: true,
		ShowContext: true,
		GroupByFile: true,
	})

	count, err := rep.Report(context.Background(), createTestResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count, "already-wrapped sites are not listed")

	output := buf.String()
	assert.Contains(t, output, "tests/WidgetTests.cs (1 site, rewritten)")
	assert.Contains(t, output, "expectedResponse -> expectedWidget wrapped in apiResponse (Widget)")
	assert.Contains(t, output, "var expectedResponse = new Widget { Id = 1 };", "source context")
	assert.Contains(t, output, "Reason: no call argument")
	assert.Contains(t, output, "tests/Missing.cs: error: file not found")
	assert.Contains(t, output, "3 sites in 2 files")
	assert.NotContains(t, output, "already-wrapped")
}

func TestTextReporter_IncludeWrapped(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:         &buf,
		Color:          "never",
		IncludeWrapped: true,
	})

	count, err := rep.Report(context.Background(), createTestResult())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Contains(t, buf.String(), "is already wrapped")
}

func TestJSONReporter_NilResult(t *testing.T) {
	var buf bytes.Buffer
	rep, err := reporter.New(reporter.Options{Writer: &buf, Format: reporter.FormatJSON})
	require.NoError(t, err)

	count, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	var output analysis.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, analysis.ReportVersion, output.Version)
	assert.Empty(t, output.Sites)
}

func TestJSONReporter_WithSites(t *testing.T) {
	var buf bytes.Buffer
	rep, err := reporter.New(reporter.Options{Writer: &buf, Format: reporter.FormatJSON})
	require.NoError(t, err)

	count, err := rep.Report(context.Background(), createTestResult())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	var output analysis.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	assert.Len(t, output.Sites, 3)
	assert.Equal(t, 1, output.Totals.Rewritten)
	assert.Equal(t, 1, output.Totals.FilesErrored)
	require.Len(t, output.Errors, 1)
	assert.Equal(t, "tests/Missing.cs", output.Errors[0].FilePath)
	assert.Contains(t, buf.String(), `"status": "rewritten"`)
}

func TestJSONReporter_Compact(t *testing.T) {
	var buf bytes.Buffer
	rep, err := reporter.New(reporter.Options{Writer: &buf, Format: reporter.FormatJSON, Compact: true})
	require.NoError(t, err)

	_, err = rep.Report(context.Background(), createTestResult())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1)
}

func TestDiffReporter_NilResult(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewDiffReporter(reporter.Options{
		Writer: &buf,
		Color:  "never",
	})

	count, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, buf.String())
}

func TestDiffReporter_WrittenChanges(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewDiffReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		ShowSummary: true,
	})

	count, err := rep.Report(context.Background(), createTestResult())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	output := buf.String()
	assert.Contains(t, output, "diff --git a/tests/WidgetTests.cs b/tests/WidgetTests.cs")
	assert.Contains(t, output, "+var apiResponse = new ApiResponse<Widget> { Data = expectedWidget };")
	assert.Contains(t, output, "-var json = JsonSerializer.Serialize(expectedResponse);")
	assert.NotContains(t, output, "OrderTests.cs")
	assert.Contains(t, output, "1 file changed")
}

func TestDiffReporter_SkipsWithheldFiles(t *testing.T) {
	result := createTestResult()
	result.Files[0].Result.Skipped = true
	result.Files[0].Result.SkipReason = "file changed on disk"
	result.Files[0].Result.Written = false

	var buf bytes.Buffer
	rep := reporter.NewDiffReporter(reporter.Options{Writer: &buf, Color: "never"})

	count, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.NotContains(t, buf.String(), "diff --git")
	assert.Contains(t, buf.String(), "# tests/WidgetTests.cs: withheld: file changed on disk")
	assert.Contains(t, buf.String(), "# tests/Missing.cs: ")
}

func TestTableReporter(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewTableReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		ShowSummary: true,
	})

	count, err := rep.Report(context.Background(), createTestResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	output := buf.String()
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "tests/OrderTests.cs")
	assert.Contains(t, output, "2 files checked | 1 rewritten | 1 already wrapped | 1 skipped | 1 failed")
}

func TestMarkdownReporter(t *testing.T) {
	var buf bytes.Buffer
	rep, err := reporter.New(reporter.Options{Writer: &buf, Format: reporter.FormatMarkdown})
	require.NoError(t, err)

	result := createTestResult()
	result.Files[0].Result.Diff = nil

	_, err = rep.Report(context.Background(), result)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "# wrapfix report")
	assert.Contains(t, output, "| var-new | 2 | 1 | 1 | 0 | 1 |")
	assert.Contains(t, output, "| tests/WidgetTests.cs | 1 | rewritten | `expectedResponse` | `Widget` | renamed to expectedWidget, wrapped in apiResponse |")
	assert.Contains(t, output, "no call argument")
	assert.Contains(t, output, "## Errors")
	assert.NotContains(t, output, "## Changes", "only dry runs carry diffs")
}

func TestHTMLReporter(t *testing.T) {
	var buf bytes.Buffer
	rep, err := reporter.New(reporter.Options{Writer: &buf, Format: reporter.FormatHTML})
	require.NoError(t, err)

	_, err = rep.Report(context.Background(), createTestResult())
	require.NoError(t, err)

	output := buf.String()
	assert.True(t, strings.HasPrefix(output, "<!DOCTYPE html>"))
	assert.Contains(t, output, "<h1>wrapfix report</h1>")
	assert.Contains(t, output, "<table>")
	assert.Contains(t, output, "<code>Widget</code>")
	assert.True(t, strings.HasSuffix(output, "</html>\n"))
}

func TestDefaultOptions(t *testing.T) {
	opts := reporter.DefaultOptions()

	assert.NotNil(t, opts.Writer)
	assert.NotNil(t, opts.ErrorWriter)
	assert.Equal(t, reporter.FormatText, opts.Format)
	assert.Equal(t, "auto", opts.Color)
	assert.True(t, opts.ShowContext)
	assert.True(t, opts.ShowSummary)
	assert.True(t, opts.GroupByFile)
	assert.Equal(t, reporter.SummaryOrderTemplates, opts.SummaryOrder)
}
