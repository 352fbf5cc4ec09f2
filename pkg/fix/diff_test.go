package fix_test

import (
	"strings"
	"testing"

	"github.com/yaklabco/wrapfix/pkg/fix"
)

func TestGenerateDiffIdentical(t *testing.T) {
	t.Parallel()

	if d := fix.GenerateDiff("a.cs", "same\n", "same\n"); d != nil {
		t.Errorf("GenerateDiff of identical content = %+v, want nil", d)
	}
	var d *fix.Diff
	if d.HasChanges() || d.String() != "" || d.FullString() != "" || d.GitHeader() != "" {
		t.Error("nil Diff should render empty")
	}
}

func TestGenerateDiffInsertion(t *testing.T) {
	t.Parallel()

	original := "a\nb\nc\n"
	modified := "a\nb\nX\nc\n"

	d := fix.GenerateDiff("/src/WidgetTests.cs", original, modified)
	if !d.HasChanges() {
		t.Fatal("HasChanges() = false")
	}
	if d.Additions != 1 || d.Deletions != 0 {
		t.Errorf("additions/deletions = %d/%d, want 1/0", d.Additions, d.Deletions)
	}

	want := strings.Join([]string{
		"--- a/src/WidgetTests.cs",
		"+++ b/src/WidgetTests.cs",
		"@@ -1,3 +1,4 @@",
		" a",
		" b",
		"+X",
		" c",
		"",
	}, "\n")
	if got := d.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
	if got := d.FullString(); !strings.HasPrefix(got, "diff --git a/src/WidgetTests.cs b/src/WidgetTests.cs\n---") {
		t.Errorf("FullString() header = %q", got)
	}
}

func TestGenerateDiffReplacement(t *testing.T) {
	t.Parallel()

	d := fix.GenerateDiff("f", "one\ntwo\nthree\n", "one\nTWO\nthree\n")
	if d.Additions != 1 || d.Deletions != 1 {
		t.Fatalf("additions/deletions = %d/%d, want 1/1", d.Additions, d.Deletions)
	}
	if len(d.Hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(d.Hunks))
	}
	h := d.Hunks[0]
	if h.OriginalStart != 1 || h.OriginalCount != 3 || h.ModifiedStart != 1 || h.ModifiedCount != 3 {
		t.Errorf("hunk header = -%d,%d +%d,%d", h.OriginalStart, h.OriginalCount, h.ModifiedStart, h.ModifiedCount)
	}
}

func TestGenerateDiffSeparateHunks(t *testing.T) {
	t.Parallel()

	var lines []string
	for i := range 30 {
		lines = append(lines, strings.Repeat("x", i+1))
	}
	original := strings.Join(lines, "\n") + "\n"

	changed := append([]string(nil), lines...)
	changed[2] = "first change"
	changed[25] = "second change"
	modified := strings.Join(changed, "\n") + "\n"

	d := fix.GenerateDiff("f", original, modified)
	if len(d.Hunks) != 2 {
		t.Fatalf("got %d hunks, want 2", len(d.Hunks))
	}
	if d.Hunks[1].OriginalStart != 23 {
		t.Errorf("second hunk starts at %d, want 23", d.Hunks[1].OriginalStart)
	}
}
