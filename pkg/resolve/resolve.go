// Package resolve finds the declaration that binds an identifier by
// scanning backward from a reference, line by line.
//
// Resolution is lexical proximity only: the nearest preceding declaration
// of the name wins. There is no symbol table, so shadowing across
// unrelated blocks in the same file can resolve to the wrong binding.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yaklabco/wrapfix/pkg/pattern"
)

// ErrUnresolved is returned when no usable declaration precedes the
// reference. Callers skip the site.
var ErrUnresolved = errors.New("unresolved declaration")

// Form is the syntactic shape of a declaration.
type Form string

const (
	// FormVar is "var name = new Type ...".
	FormVar Form = "var"

	// FormTyped is "Type name = ...".
	FormTyped Form = "typed"
)

// Context is a resolved declaration.
type Context struct {
	// Name is the bound identifier.
	Name string

	// TypeText is the declared type, or the constructed type for var.
	TypeText string

	// Form tells which declaration shape was found.
	Form Form

	// NameStart and NameEnd delimit the identifier in the declaration.
	NameStart int
	NameEnd   int

	// LineStart is the offset of the first byte of the declaring line.
	LineStart int

	// Line is the 1-based line number of the declaration.
	Line int
}

// statementStarts may precede a declaration on the same line.
const statementStarts = ";{}("

var modifiers = map[string]bool{
	"const": true, "readonly": true, "static": true, "private": true,
	"public": true, "internal": true, "protected": true, "required": true,
	"scoped": true,
}

var notTypes = map[string]bool{
	"return": true, "else": true, "new": true, "await": true, "case": true,
	"throw": true, "yield": true, "in": true, "out": true, "ref": true,
	"is": true, "as": true, "goto": true, "using": true, "var": true,
}

// Resolve returns the nearest declaration of name before offset. The
// line containing offset is searched first, up to offset only.
func Resolve(text string, offset int, name string) (Context, error) {
	offset = min(max(offset, 0), len(text))
	end := offset
	for {
		lineStart := strings.LastIndexByte(text[:end], '\n') + 1

		ctx, found, err := declarationIn(text, lineStart, end, name)
		if err != nil {
			return Context{}, err
		}
		if found {
			return ctx, nil
		}

		if lineStart == 0 {
			return Context{}, fmt.Errorf("%w: no declaration of %s", ErrUnresolved, name)
		}
		end = lineStart - 1
	}
}

// declarationIn looks for the last declaration of name in text[lineStart:end].
func declarationIn(text string, lineStart, end int, name string) (Context, bool, error) {
	var (
		ctx   Context
		found bool
	)
	pattern.Identifiers(text, lineStart, end, name, func(start, stop int) bool {
		eq := skipBlanks(text, stop)
		if eq >= len(text) || text[eq] != '=' || (eq+1 < len(text) && (text[eq+1] == '=' || text[eq+1] == '>')) {
			return true
		}

		before := strings.TrimRight(text[lineStart:start], " \t")
		if form, typeText, ok := declarator(before); ok {
			ctx = Context{
				Name:      name,
				TypeText:  typeText,
				Form:      form,
				NameStart: start,
				NameEnd:   stop,
				LineStart: lineStart,
				Line:      strings.Count(text[:lineStart], "\n") + 1,
			}
			if form == FormVar {
				ctx.TypeText = constructedType(text[eq+1:])
			}
			found = true
		}
		return true
	})

	if found && ctx.TypeText == "" {
		return Context{}, false, fmt.Errorf("%w: %s declared at line %d has no explicit type",
			ErrUnresolved, name, ctx.Line)
	}
	return ctx, found, nil
}

// declarator inspects the text before the name and reports whether it
// completes a declaration.
func declarator(before string) (Form, string, bool) {
	if strings.HasSuffix(before, "var") {
		head := before[:len(before)-len("var")]
		if head == "" || !pattern.IsIdentByte(head[len(head)-1]) {
			if statementBoundary(head) {
				return FormVar, "", true
			}
		}
	}

	typeStart, ok := typeTokenStart(before)
	if !ok {
		return "", "", false
	}
	typeText := before[typeStart:]
	first := typeText
	if i := strings.IndexAny(first, ".<[?"); i >= 0 {
		first = first[:i]
	}
	if notTypes[first] || !statementBoundary(before[:typeStart]) {
		return "", "", false
	}
	return FormTyped, typeText, true
}

// typeTokenStart walks backward over a type token ending at len(s).
func typeTokenStart(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	depth := 0
	i := len(s)
	for i > 0 {
		c := s[i-1]
		switch {
		case c == '>':
			depth++
		case c == '<':
			if depth == 0 {
				return 0, false
			}
			depth--
		case pattern.IsIdentByte(c), c == '.', c == '?', c == '[', c == ']':
		case (c == ',' || c == ' ' || c == '\t') && depth > 0:
		case c == ',' && strings.Contains(s[i:], "]"):
		default:
			if depth != 0 {
				return 0, false
			}
			return typeStartAt(s, i)
		}
		i--
	}
	if depth != 0 {
		return 0, false
	}
	return typeStartAt(s, 0)
}

func typeStartAt(s string, i int) (int, bool) {
	if i >= len(s) || !pattern.IsIdentStart(s[i]) {
		return 0, false
	}
	return i, true
}

// statementBoundary reports whether head, the text before a declaration
// on its line, ends where a new statement may begin.
func statementBoundary(head string) bool {
	head = strings.TrimRight(head, " \t")
	if head == "" {
		return true
	}
	if strings.ContainsRune(statementStarts, rune(head[len(head)-1])) {
		return true
	}
	word := head
	if i := strings.LastIndexAny(head, " \t"); i >= 0 {
		word = head[i+1:]
	}
	return modifiers[word] && statementBoundary(head[:len(head)-len(word)])
}

// constructedType extracts T from the right-hand side "new T { ... }".
// Target-typed "new()" and non-constructor values yield "".
func constructedType(rhs string) string {
	rhs = strings.TrimLeft(rhs, " \t\r\n")
	if !strings.HasPrefix(rhs, "new") || len(rhs) == len("new") || pattern.IsIdentByte(rhs[len("new")]) {
		return ""
	}
	rhs = strings.TrimLeft(rhs[len("new"):], " \t")
	if end := strings.IndexAny(rhs, "{(;\r\n="); end >= 0 {
		rhs = rhs[:end]
	}
	return strings.TrimSpace(rhs)
}

func skipBlanks(text string, i int) int {
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	return i
}
