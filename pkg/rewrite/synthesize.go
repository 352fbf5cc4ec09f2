package rewrite

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/yaklabco/wrapfix/pkg/fix"
	"github.com/yaklabco/wrapfix/pkg/pattern"
	"github.com/yaklabco/wrapfix/pkg/resolve"
	"github.com/yaklabco/wrapfix/pkg/typeexpr"
)

var (
	// ErrAmbiguousType means the resolved type could not be parsed
	// cleanly or nests deeper than allowed.
	ErrAmbiguousType = errors.New("ambiguous type")

	// ErrMissingMark means the match lacks the call mark or the call
	// argument after it.
	ErrMissingMark = errors.New("missing call mark")
)

// Plan is the synthesized rewrite for one site.
type Plan struct {
	// Group holds the edits, all within the match span.
	Group fix.Group

	// Subject is the original variable name.
	Subject string

	// Renamed is the new name of the wrapped value. It equals Subject
	// when no rename was made.
	Renamed string

	// Wrapper is the name of the envelope variable.
	Wrapper string

	// TypeText is the envelope type argument, verbatim.
	TypeText string
}

// Synthesize builds the edits for one match:
//
//  1. occurrences of the subject before the call are renamed to
//     RenamePrefix + a type-derived suffix,
//  2. a wrapper declaration is inserted before the call with the call
//     line's indentation and line ending,
//  3. the call argument is re-pointed at the wrapper.
//
// The rename is skipped when the subject is still referenced after the
// match in its enclosing block, since those uses lie outside the span.
// New names are unique in the enclosing block and never one of reserved,
// which holds names already claimed by other plans in that block.
func Synthesize(text string, m pattern.Match, rc resolve.Context, env Envelope, maxDepth int, reserved ...string) (Plan, error) {
	expr, err := typeexpr.Parse(rc.TypeText)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrAmbiguousType, err)
	}
	if maxDepth > 0 && expr.Depth() > maxDepth {
		return Plan{}, fmt.Errorf("%w: %s nests %d generic levels, limit is %d",
			ErrAmbiguousType, expr.Raw, expr.Depth(), maxDepth)
	}

	call, ok := m.Marks[MarkCall]
	if !ok {
		return Plan{}, fmt.Errorf("%w: template %s", ErrMissingMark, m.Template)
	}
	subject := m.Text(SlotSubject)
	arg, ok := callArgument(m, call)
	if !ok {
		return Plan{}, fmt.Errorf("%w: no %s argument after the call", ErrMissingMark, subject)
	}

	lo, hi := ScopeOf(text, m.Start, m.End)
	renamed := subject
	if env.RenamePrefix != "" && !identUsed(text, m.End, hi, subject) {
		renamed = freeName(text, lo, hi, env.RenamePrefix+expr.Ident(), subject, reserved...)
	}
	reuse := ""
	if renamed != subject {
		reuse = subject
	}
	wrapper := freeName(text, lo, hi, env.Variable, reuse, append(slices.Clone(reserved), renamed)...)

	b := fix.NewEditBuilder(fmt.Sprintf("%s@%d", m.Template, m.Start), m.Start, m.End)
	if renamed != subject {
		pattern.Identifiers(text, m.Start, call, subject, func(start, end int) bool {
			if !memberAccess(text, start) {
				b.ReplaceRange(start, end, renamed)
			}
			return true
		})
	}

	indent, newline := layoutAt(text, call)
	line := fmt.Sprintf("var %s = new %s<%s> { %s = %s };", wrapper, env.Type, expr.Raw, env.DataProperty, renamed)
	b.Insert(call, line+newline+indent)
	b.ReplaceRange(arg.Start, arg.End, wrapper)

	return Plan{
		Group:    b.Group(),
		Subject:  subject,
		Renamed:  renamed,
		Wrapper:  wrapper,
		TypeText: expr.Raw,
	}, nil
}

// callArgument returns the last subject occurrence at or after the call.
func callArgument(m pattern.Match, call int) (pattern.Capture, bool) {
	occ := m.OccurrencesOf(SlotSubject)
	for i := len(occ) - 1; i >= 0; i-- {
		if occ[i].Start >= call {
			return occ[i], true
		}
	}
	return pattern.Capture{}, false
}

// layoutAt returns the indentation of the line holding offset and the
// line ending that precedes it, falling back to the file's first one.
func layoutAt(text string, offset int) (string, string) {
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	lead := text[lineStart:offset]
	indent := lead[:len(lead)-len(strings.TrimLeft(lead, " \t"))]

	newline := "\n"
	switch {
	case lineStart >= 2 && text[lineStart-2] == '\r':
		newline = "\r\n"
	case lineStart == 0 && strings.Contains(text, "\r\n"):
		newline = "\r\n"
	}
	return indent, newline
}

// freeName returns base, or base with the smallest numeric suffix from 2
// up, such that the name is not an identifier in text[start:end] and
// not in taken. reuse counts as free because it is being renamed away.
func freeName(text string, start, end int, base, reuse string, taken ...string) string {
	candidate := base
	for n := 2; ; n++ {
		if candidate == reuse || (!identUsed(text, start, end, candidate) && !slices.Contains(taken, candidate)) {
			return candidate
		}
		candidate = base + strconv.Itoa(n)
	}
}

func identUsed(text string, start, end int, name string) bool {
	used := false
	pattern.Identifiers(text, start, end, name, func(int, int) bool {
		used = true
		return false
	})
	return used
}

// memberAccess reports whether the identifier at offset follows a '.'.
func memberAccess(text string, offset int) bool {
	i := offset - 1
	for i >= 0 && (text[i] == ' ' || text[i] == '\t') {
		i--
	}
	return i >= 0 && text[i] == '.'
}

// ScopeOf returns the bounds of the innermost brace block enclosing
// text[start:end], or the whole text at top level.
func ScopeOf(text string, start, end int) (int, int) {
	return blockStart(text, start), blockEnd(text, end)
}

// blockStart returns the offset just past the '{' opening the block that
// contains offset, or 0.
func blockStart(text string, offset int) int {
	var open []int
	for i := 0; i < offset; {
		if next, ok := pattern.SkipLiteral(text, i); ok {
			i = next
			continue
		}
		switch text[i] {
		case '{':
			open = append(open, i+1)
		case '}':
			if len(open) > 0 {
				open = open[:len(open)-1]
			}
		}
		i++
	}
	if len(open) == 0 {
		return 0
	}
	return open[len(open)-1]
}

// blockEnd returns the offset of the '}' closing the block that contains
// from, or len(text).
func blockEnd(text string, from int) int {
	depth := 0
	for i := from; i < len(text); {
		if end, ok := pattern.SkipLiteral(text, i); ok {
			i = end
			continue
		}
		switch text[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
		i++
	}
	return len(text)
}
