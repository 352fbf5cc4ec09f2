package fix_test

import (
	"testing"

	"github.com/yaklabco/wrapfix/pkg/fix"
)

func TestApplyEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		edits   []fix.TextEdit
		want    string
	}{
		{
			name:    "no edits returns original",
			content: "hello world",
			want:    "hello world",
		},
		{
			name:    "single replacement",
			content: "hello world",
			edits:   []fix.TextEdit{{StartOffset: 0, EndOffset: 5, NewText: "hi"}},
			want:    "hi world",
		},
		{
			name:    "insertion",
			content: "hello world",
			edits:   []fix.TextEdit{{StartOffset: 5, EndOffset: 5, NewText: " brave"}},
			want:    "hello brave world",
		},
		{
			name:    "deletion",
			content: "hello world",
			edits:   []fix.TextEdit{{StartOffset: 5, EndOffset: 11}},
			want:    "hello",
		},
		{
			name:    "offsets refer to the original",
			content: "var a = 1;\nuse(a);\n",
			edits: []fix.TextEdit{
				{StartOffset: 4, EndOffset: 5, NewText: "renamed"},
				{StartOffset: 11, EndOffset: 11, NewText: "wrap(renamed);\n"},
				{StartOffset: 15, EndOffset: 16, NewText: "wrapped"},
			},
			want: "var renamed = 1;\nwrap(renamed);\nuse(wrapped);\n",
		},
		{
			name:    "insert before replacement at same offset",
			content: "abc",
			edits: []fix.TextEdit{
				{StartOffset: 1, EndOffset: 1, NewText: "X"},
				{StartOffset: 1, EndOffset: 2, NewText: "Y"},
			},
			want: "aXYc",
		},
		{
			name:    "empty content",
			content: "",
			edits:   []fix.TextEdit{{StartOffset: 0, EndOffset: 0, NewText: "hello"}},
			want:    "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fix.ApplyEdits(tt.content, tt.edits); got != tt.want {
				t.Errorf("ApplyEdits() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Applying in one forward pass must equal splicing from the highest
// offset down, which keeps earlier offsets valid.
func TestApplyEditsMatchesDescendingSplice(t *testing.T) {
	t.Parallel()

	content := "0123456789abcdef"
	edits := []fix.TextEdit{
		{StartOffset: 1, EndOffset: 3, NewText: "--"},
		{StartOffset: 5, EndOffset: 5, NewText: "+++"},
		{StartOffset: 8, EndOffset: 12, NewText: ""},
		{StartOffset: 15, EndOffset: 16, NewText: "END"},
	}

	prepared, err := fix.PrepareEdits(edits, len(content))
	if err != nil {
		t.Fatalf("PrepareEdits: %v", err)
	}

	want := content
	for i := len(prepared) - 1; i >= 0; i-- {
		e := prepared[i]
		want = want[:e.StartOffset] + e.NewText + want[e.EndOffset:]
	}

	if got := fix.ApplyEdits(content, prepared); got != want {
		t.Errorf("forward pass = %q, descending splice = %q", got, want)
	}
}
