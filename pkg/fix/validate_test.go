package fix_test

import (
	"errors"
	"testing"

	"github.com/yaklabco/wrapfix/pkg/fix"
)

func TestValidateEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		edit    fix.TextEdit
		wantErr bool
	}{
		{name: "valid", edit: fix.TextEdit{StartOffset: 0, EndOffset: 3}},
		{name: "insert at end", edit: fix.TextEdit{StartOffset: 5, EndOffset: 5}},
		{name: "negative start", edit: fix.TextEdit{StartOffset: -1, EndOffset: 2}, wantErr: true},
		{name: "end before start", edit: fix.TextEdit{StartOffset: 3, EndOffset: 2}, wantErr: true},
		{name: "past end", edit: fix.TextEdit{StartOffset: 0, EndOffset: 6}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fix.ValidateEdits([]fix.TextEdit{tt.edit}, 5)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateEdits() error = %v, wantErr %v", err, tt.wantErr)
			}
			var verr *fix.ValidationError
			if tt.wantErr && !errors.As(err, &verr) {
				t.Errorf("error %T is not *ValidationError", err)
			}
		})
	}
}

func TestPrepareEdits(t *testing.T) {
	t.Parallel()

	t.Run("sorts", func(t *testing.T) {
		t.Parallel()

		got, err := fix.PrepareEdits([]fix.TextEdit{
			{StartOffset: 6, EndOffset: 7},
			{StartOffset: 0, EndOffset: 1},
			{StartOffset: 3, EndOffset: 3},
		}, 10)
		if err != nil {
			t.Fatalf("PrepareEdits: %v", err)
		}
		for i, want := range []int{0, 3, 6} {
			if got[i].StartOffset != want {
				t.Errorf("edit %d starts at %d, want %d", i, got[i].StartOffset, want)
			}
		}
	})

	t.Run("overlap", func(t *testing.T) {
		t.Parallel()

		_, err := fix.PrepareEdits([]fix.TextEdit{
			{StartOffset: 0, EndOffset: 4},
			{StartOffset: 2, EndOffset: 6},
		}, 10)
		if err == nil {
			t.Fatal("PrepareEdits accepted overlapping edits")
		}
	})

	t.Run("two inserts at one offset", func(t *testing.T) {
		t.Parallel()

		_, err := fix.PrepareEdits([]fix.TextEdit{
			{StartOffset: 2, EndOffset: 2, NewText: "a"},
			{StartOffset: 2, EndOffset: 2, NewText: "b"},
		}, 10)
		if err == nil {
			t.Fatal("PrepareEdits accepted ambiguous inserts")
		}
	})
}

func TestValidateGroup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		group   fix.Group
		wantErr bool
	}{
		{
			name: "edits inside span",
			group: fix.Group{Label: "site", Start: 2, End: 8, Edits: []fix.TextEdit{
				{StartOffset: 2, EndOffset: 4, NewText: "x"},
				{StartOffset: 8, EndOffset: 8, NewText: "y"},
			}},
		},
		{
			name: "edit before span",
			group: fix.Group{Label: "site", Start: 2, End: 8, Edits: []fix.TextEdit{
				{StartOffset: 1, EndOffset: 3},
			}},
			wantErr: true,
		},
		{
			name:    "span past content",
			group:   fix.Group{Label: "site", Start: 2, End: 20},
			wantErr: true,
		},
		{
			name: "edits overlap each other",
			group: fix.Group{Label: "site", Start: 0, End: 10, Edits: []fix.TextEdit{
				{StartOffset: 1, EndOffset: 5},
				{StartOffset: 4, EndOffset: 6},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fix.ValidateGroup(tt.group, 10)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateGroup() error = %v, wantErr %v", err, tt.wantErr)
			}
			var verr *fix.ValidationError
			if tt.wantErr && (!errors.As(err, &verr) || verr.Label != "site") {
				t.Errorf("error %v is not a labelled *ValidationError", err)
			}
		})
	}
}

func TestPrepareGroups(t *testing.T) {
	t.Parallel()

	content := "aaaa bbbb cccc dddd"
	groups := []fix.Group{
		{Label: "third", Start: 10, End: 14, Edits: []fix.TextEdit{{StartOffset: 10, EndOffset: 14, NewText: "CCCC"}}},
		{Label: "first", Start: 0, End: 4, Edits: []fix.TextEdit{{StartOffset: 0, EndOffset: 4, NewText: "AAAA"}}},
		{Label: "overlaps-first", Start: 2, End: 9, Edits: []fix.TextEdit{{StartOffset: 5, EndOffset: 9, NewText: "BBBB"}}},
		{Label: "invalid", Start: 15, End: 19, Edits: []fix.TextEdit{{StartOffset: 14, EndOffset: 19, NewText: "x"}}},
	}

	edits, rejected := fix.PrepareGroups(groups, len(content))

	if got := fix.ApplyEdits(content, edits); got != "AAAA bbbb CCCC dddd" {
		t.Errorf("applied = %q", got)
	}
	if len(rejected) != 2 {
		t.Fatalf("got %d rejected groups, want 2", len(rejected))
	}

	var conflict *fix.ConflictError
	if rejected[0].Group.Label != "overlaps-first" || !errors.As(rejected[0].Err, &conflict) {
		t.Errorf("rejected[0] = %s (%v), want overlaps-first conflict", rejected[0].Group.Label, rejected[0].Err)
	} else if conflict.Accepted.Label != "first" {
		t.Errorf("conflict with %q, want first", conflict.Accepted.Label)
	}

	var verr *fix.ValidationError
	if rejected[1].Group.Label != "invalid" || !errors.As(rejected[1].Err, &verr) {
		t.Errorf("rejected[1] = %s (%v), want invalid validation error", rejected[1].Group.Label, rejected[1].Err)
	}
}

func TestEditBuilder(t *testing.T) {
	t.Parallel()

	b := fix.NewEditBuilder("site", 0, 10)
	b.Insert(3, "x")
	b.ReplaceRange(5, 7, "yy")

	g := b.Group()
	if b.Len() != 2 || len(g.Edits) != 2 {
		t.Fatalf("Len() = %d, group edits = %d, want 2", b.Len(), len(g.Edits))
	}
	if g.Label != "site" || g.Start != 0 || g.End != 10 {
		t.Errorf("group = %+v", g)
	}
	if !g.Edits[0].IsInsert() || g.Edits[1].IsInsert() {
		t.Error("IsInsert() misreports edit kinds")
	}

	b.Insert(9, "z")
	if len(g.Edits) != 2 {
		t.Error("Group() result shares storage with the builder")
	}
}
