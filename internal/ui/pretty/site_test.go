package pretty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/wrapfix/internal/ui/pretty"
	"github.com/yaklabco/wrapfix/pkg/rewrite"
)

func TestFormatSite_Rewritten(t *testing.T) {
	styles := pretty.NewStyles(false)

	site := rewrite.Site{
		Template: "var-new",
		Status:   rewrite.StatusRewritten,
		Line:     12,
		Subject:  "expectedResponse",
		TypeText: "Widget",
		Renamed:  "expectedWidget",
		Wrapper:  "apiResponse",
	}

	result := styles.FormatSite("WidgetTests.cs", site, false, "")

	assert.Contains(t, result, "WidgetTests.cs:12")
	assert.Contains(t, result, "rewritten")
	assert.Contains(t, result, "expectedResponse -> expectedWidget wrapped in apiResponse (Widget)")
	assert.Contains(t, result, "(var-new)")
	assert.NotContains(t, result, "Reason:")
}

func TestFormatSite_SkippedWithReason(t *testing.T) {
	styles := pretty.NewStyles(false)

	site := rewrite.Site{
		Template: "typed-new",
		Status:   rewrite.StatusAmbiguousType,
		Line:     4,
		Subject:  "expectedResponse",
		TypeText: "Dictionary<string, List<int>>",
		Reason:   "ambiguous type: nests 2 generic levels",
	}

	result := styles.FormatSite("a.cs", site, true, "    Dictionary<string, List<int>> expectedResponse = new() {};")

	assert.Contains(t, result, "ambiguous-type")
	assert.Contains(t, result, "left unchanged")
	assert.Contains(t, result, "Reason:")
	assert.Contains(t, result, "nests 2 generic levels")
	assert.Contains(t, result, "expectedResponse = new()")
}

func TestSiteMessage(t *testing.T) {
	tests := []struct {
		name string
		site rewrite.Site
		want string
	}{
		{
			name: "rewritten without rename",
			site: rewrite.Site{Status: rewrite.StatusRewritten, Subject: "expected", Renamed: "expected", Wrapper: "apiResponse", TypeText: "Widget"},
			want: "expected wrapped in apiResponse (Widget)",
		},
		{
			name: "already wrapped",
			site: rewrite.Site{Status: rewrite.StatusAlreadyWrapped, Subject: "expectedResponse"},
			want: "expectedResponse is already wrapped",
		},
		{
			name: "unresolved without type",
			site: rewrite.Site{Status: rewrite.StatusUnresolved, Subject: "x"},
			want: "x left unchanged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pretty.SiteMessage(tt.site))
		})
	}
}

func TestFormatFileHeader(t *testing.T) {
	styles := pretty.NewStyles(false)

	assert.Equal(t, "a.cs (1 site, rewritten)", styles.FormatFileHeader("a.cs", "rewritten", 1))
	assert.Equal(t, "a.cs (3 sites, changes pending)", styles.FormatFileHeader("a.cs", "changes pending", 3))
	assert.Equal(t, "a.cs (no changes)", styles.FormatFileHeader("a.cs", "no changes", 0))
}

func TestSourceLine(t *testing.T) {
	text := "first\r\nsecond\nthird"

	assert.Equal(t, "first", pretty.SourceLine(text, 1))
	assert.Equal(t, "second", pretty.SourceLine(text, 2))
	assert.Equal(t, "third", pretty.SourceLine(text, 3))
	assert.Empty(t, pretty.SourceLine(text, 4))
	assert.Empty(t, pretty.SourceLine(text, 0))
}
