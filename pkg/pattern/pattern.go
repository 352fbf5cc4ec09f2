// Package pattern implements a small template language for locating
// structural code shapes in plain text.
//
// A template is literal text interleaved with placeholders:
//
//	{name}          identifier slot
//	{name:kind}     typed slot (ident, qualifier, type, block, tail, gap)
//	{@name}         zero-width mark
//	{{ and }}       literal braces
//
// Repeating an identifier slot name turns the second use into a
// back-reference that must match the first capture exactly. Whitespace
// in a template matches any run of whitespace in the text, and is
// required only between two identifier-like elements.
package pattern

import "fmt"

// SlotKind names the matching behavior of a placeholder.
type SlotKind string

const (
	// SlotIdent matches one identifier.
	SlotIdent SlotKind = "ident"

	// SlotQualifier matches zero or more "Name." prefixes.
	SlotQualifier SlotKind = "qualifier"

	// SlotType matches lenient type text such as Foo.Bar<Baz, Qux[]>?.
	SlotType SlotKind = "type"

	// SlotBlock matches one or more balanced (...) or {...} groups.
	SlotBlock SlotKind = "block"

	// SlotTail matches an empty or comma-led argument tail before ')'.
	SlotTail SlotKind = "tail"

	// SlotGap matches arbitrary text, as little as possible.
	SlotGap SlotKind = "gap"
)

// DefaultMaxGap bounds how many bytes a gap slot may span.
const DefaultMaxGap = 4096

// Options tunes template compilation.
type Options struct {
	// MaxGap bounds the length of every gap slot. Zero means DefaultMaxGap.
	MaxGap int
}

// Capture is the text bound to a slot at one position.
type Capture struct {
	Name  string
	Kind  SlotKind
	Text  string
	Start int
	End   int
}

// Match is one located occurrence of a template.
type Match struct {
	// Template is the name of the template that produced the match.
	Template string

	// Start and End delimit the matched span [Start, End).
	Start int
	End   int

	// Captures holds the first binding of each slot name.
	Captures map[string]Capture

	// Occurrences lists every slot binding in text order, including
	// back-references.
	Occurrences []Capture

	// Marks maps mark names to byte offsets.
	Marks map[string]int
}

// Text returns the captured text for name, or "" when the slot is absent.
func (m Match) Text(name string) string {
	return m.Captures[name].Text
}

// OccurrencesOf returns every binding of name in text order.
func (m Match) OccurrencesOf(name string) []Capture {
	var out []Capture
	for _, c := range m.Occurrences {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// SyntaxError reports a malformed template.
type SyntaxError struct {
	Template string
	Offset   int
	Message  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template %q: offset %d: %s", e.Template, e.Offset, e.Message)
}
