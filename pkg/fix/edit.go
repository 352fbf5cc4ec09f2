// Package fix represents rewrites as edits against an immutable original
// buffer, validates them, and materializes the result in one pass.
package fix

// TextEdit represents a single text replacement in a file.
type TextEdit struct {
	// StartOffset is the byte index where the edit begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where the edit ends (exclusive).
	EndOffset int

	// NewText is the replacement text.
	NewText string
}

// IsInsert reports whether the edit replaces nothing.
func (e TextEdit) IsInsert() bool {
	return e.StartOffset == e.EndOffset
}

// Group is the set of edits produced for one rewrite site. A group is
// applied whole or not at all, and every edit must lie within
// [Start, End).
type Group struct {
	// Label identifies the site in error messages.
	Label string

	// Start and End delimit the span the group may touch.
	Start int
	End   int

	// Edits are the replacements, in any order.
	Edits []TextEdit
}

// Overlaps reports whether the spans of g and other intersect.
func (g Group) Overlaps(other Group) bool {
	return g.Start < other.End && other.Start < g.End
}

// EditBuilder accumulates the edits of one rewrite site.
type EditBuilder struct {
	label      string
	start, end int
	edits      []TextEdit
}

// NewEditBuilder creates a builder for edits confined to [start, end).
func NewEditBuilder(label string, start, end int) *EditBuilder {
	return &EditBuilder{label: label, start: start, end: end}
}

// ReplaceRange adds an edit that replaces bytes [start, end) with newText.
func (b *EditBuilder) ReplaceRange(start, end int, newText string) {
	b.edits = append(b.edits, TextEdit{
		StartOffset: start,
		EndOffset:   end,
		NewText:     newText,
	})
}

// Insert adds an edit that inserts text at the given offset.
func (b *EditBuilder) Insert(offset int, text string) {
	b.ReplaceRange(offset, offset, text)
}

// Len returns the number of accumulated edits.
func (b *EditBuilder) Len() int {
	return len(b.edits)
}

// Group returns the accumulated edits as a Group.
func (b *EditBuilder) Group() Group {
	return Group{
		Label: b.label,
		Start: b.start,
		End:   b.end,
		Edits: append([]TextEdit(nil), b.edits...),
	}
}
