// Package typeexpr parses the type expressions captured from declarations,
// such as Widget, Models.Widget, PagedResponse<Widget> or List<int[]>?.
package typeexpr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAmbiguous is wrapped by every parse failure. A type that cannot be
// parsed cleanly must not be used to synthesize a rewrite.
var ErrAmbiguous = errors.New("ambiguous type expression")

var (
	ErrEmpty         = fmt.Errorf("%w: empty", ErrAmbiguous)
	ErrUnbalanced    = fmt.Errorf("%w: unbalanced angle brackets", ErrAmbiguous)
	ErrEmptyArgument = fmt.Errorf("%w: empty type argument", ErrAmbiguous)
	ErrTrailing      = fmt.Errorf("%w: unexpected trailing text", ErrAmbiguous)
)

// Expr is a parsed type expression.
type Expr struct {
	// Name is the dotted type name without arguments.
	Name string

	// Args holds the generic type arguments, if any.
	Args []*Expr

	// Suffix is the trailing array and nullable markers, e.g. "[]" or "?".
	Suffix string

	// Raw is the verbatim source text, trimmed.
	Raw string
}

// Parse parses text as a single type expression.
func Parse(text string) (*Expr, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return nil, ErrEmpty
	}

	p := parser{src: raw}
	expr, err := p.parseType()
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", raw, err)
	}
	p.skipSpace()
	if p.peek() == '>' {
		return nil, fmt.Errorf("parse %q at %d: %w", raw, p.pos, ErrUnbalanced)
	}
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("parse %q at %d: %w", raw, p.pos, ErrTrailing)
	}
	return expr, nil
}

// String renders the canonical form, with ", " between arguments.
func (e *Expr) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Expr) write(b *strings.Builder) {
	b.WriteString(e.Name)
	if len(e.Args) > 0 {
		b.WriteByte('<')
		for i, arg := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			arg.write(b)
		}
		b.WriteByte('>')
	}
	b.WriteString(e.Suffix)
}

// SimpleName returns the last segment of the dotted name.
func (e *Expr) SimpleName() string {
	if i := strings.LastIndexByte(e.Name, '.'); i >= 0 {
		return e.Name[i+1:]
	}
	return e.Name
}

// Outer returns the simple name of the outermost type.
func (e *Expr) Outer() string {
	return e.SimpleName()
}

// Ident derives an identifier fragment from the type:
// PagedResponse<Widget> gives PagedResponseWidget and Models.Widget[]
// gives WidgetArray.
func (e *Expr) Ident() string {
	var b strings.Builder
	e.writeIdent(&b)
	return b.String()
}

func (e *Expr) writeIdent(b *strings.Builder) {
	name := e.SimpleName()
	if name != "" {
		b.WriteString(strings.ToUpper(name[:1]))
		b.WriteString(name[1:])
	}
	for _, arg := range e.Args {
		arg.writeIdent(b)
	}
	if strings.Contains(e.Suffix, "[") {
		b.WriteString("Array")
	}
}

// Depth reports generic nesting depth: 0 for Widget, 1 for
// PagedResponse<Widget>, 2 for ApiResponse<PagedResponse<Widget>>.
func (e *Expr) Depth() int {
	depth := 0
	for _, arg := range e.Args {
		depth = max(depth, arg.Depth()+1)
	}
	return depth
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) parseType() (*Expr, error) {
	p.skipSpace()
	start := p.pos

	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	expr := &Expr{Name: name}

	p.skipSpace()
	if p.peek() == '<' {
		p.pos++
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		expr.Args = args
	}

	suffixStart := p.pos
	if err := p.parseSuffix(); err != nil {
		return nil, err
	}
	expr.Suffix = strings.ReplaceAll(p.src[suffixStart:p.pos], " ", "")
	expr.Raw = strings.TrimSpace(p.src[start:p.pos])
	return expr, nil
}

func (p *parser) parseName() (string, error) {
	start := p.pos
	for {
		id := p.pos
		for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
			p.pos++
		}
		if p.pos == id || isDigit(p.src[id]) {
			switch {
			case p.pos >= len(p.src) && id == start:
				return "", ErrEmptyArgument
			case p.peek() == '<' || p.peek() == '>':
				return "", ErrUnbalanced
			case id == start && (p.peek() == ',' || p.peek() == 0):
				return "", ErrEmptyArgument
			}
			return "", fmt.Errorf("at %d: %w", p.pos, ErrTrailing)
		}
		if p.peek() != '.' {
			return p.src[start:p.pos], nil
		}
		p.pos++
	}
}

func (p *parser) parseArgs() ([]*Expr, error) {
	var args []*Expr
	for {
		p.skipSpace()
		if c := p.peek(); c == ',' || c == '>' {
			return nil, ErrEmptyArgument
		}
		if p.pos >= len(p.src) {
			return nil, ErrUnbalanced
		}

		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return args, nil
		default:
			if p.pos >= len(p.src) {
				return nil, ErrUnbalanced
			}
			return nil, fmt.Errorf("at %d: %w", p.pos, ErrTrailing)
		}
	}
}

// parseSuffix consumes array ranks ("[]", "[,]") and nullable markers.
func (p *parser) parseSuffix() error {
	for {
		p.skipSpace()
		switch p.peek() {
		case '?':
			p.pos++
		case '[':
			p.pos++
			for p.peek() == ',' || p.peek() == ' ' {
				p.pos++
			}
			if p.peek() != ']' {
				return fmt.Errorf("at %d: %w", p.pos, ErrTrailing)
			}
			p.pos++
		default:
			return nil
		}
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || isDigit(c) || c >= 0x80
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
