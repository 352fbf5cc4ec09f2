package pretty_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/wrapfix/internal/ui/pretty"
	"github.com/yaklabco/wrapfix/pkg/rewrite"
)

func TestNewStylesWithoutColorIsPlain(t *testing.T) {
	styles := pretty.NewStyles(false)
	require.NotNil(t, styles)

	for _, status := range rewrite.Statuses() {
		assert.Equal(t, string(status), styles.FormatStatus(status), "status %s", status)
	}
	assert.Equal(t, "WidgetTests.cs", styles.FilePath.Render("WidgetTests.cs"))
	assert.Equal(t, "+added", styles.DiffAdd.Render("+added"))
}

func TestStatusStyle(t *testing.T) {
	styles := pretty.NewStyles(true)

	tests := []struct {
		status rewrite.Status
		want   func(*pretty.Styles) string
	}{
		{rewrite.StatusRewritten, func(s *pretty.Styles) string { return s.Rewritten.Render("x") }},
		{rewrite.StatusAlreadyWrapped, func(s *pretty.Styles) string { return s.Wrapped.Render("x") }},
		{rewrite.StatusUnresolved, func(s *pretty.Styles) string { return s.Skipped.Render("x") }},
		{rewrite.StatusAmbiguousType, func(s *pretty.Styles) string { return s.Skipped.Render("x") }},
		{rewrite.StatusConflict, func(s *pretty.Styles) string { return s.Skipped.Render("x") }},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want(styles), styles.StatusStyle(tt.status).Render("x"))
		})
	}

	assert.Equal(t, "x", styles.StatusStyle("bogus").Render("x"))
}

func TestIsColorEnabled(t *testing.T) {
	var buf bytes.Buffer

	tests := []struct {
		name    string
		mode    string
		noColor string
		writer  io.Writer
		want    bool
	}{
		{name: "always", mode: "always", writer: &buf, want: true},
		{name: "never on a file", mode: "never", writer: os.Stdout, want: false},
		{name: "auto on a buffer", mode: "auto", writer: &buf, want: false},
		{name: "auto with NO_COLOR", mode: "auto", noColor: "1", writer: os.Stdout, want: false},
		{name: "empty mode is auto", mode: "", writer: &buf, want: false},
		{name: "unknown mode is auto", mode: "sometimes", writer: &buf, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			assert.Equal(t, tt.want, pretty.IsColorEnabled(tt.mode, tt.writer))
		})
	}
}
