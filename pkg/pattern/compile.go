package pattern

import (
	"strconv"
	"strings"
)

type nodeKind int

const (
	nodeLiteral nodeKind = iota
	nodeSpace
	nodeSlot
	nodeMark
)

type node struct {
	kind     nodeKind
	text     string   // literal text
	required bool     // space nodes: at least one whitespace byte
	name     string   // slot or mark name
	slot     SlotKind // slot kind
	backref  bool     // slot repeats an earlier identifier slot
}

// Template is a compiled pattern. It is immutable and safe for
// concurrent use.
type Template struct {
	name   string
	source string
	nodes  []node
	fence  []node
	maxGap int
	slots  []string
	marks  []string
}

// Name returns the template name.
func (t *Template) Name() string { return t.name }

// Source returns the template source text.
func (t *Template) Source() string { return t.source }

// MaxGap returns the gap bound in bytes.
func (t *Template) MaxGap() int { return t.maxGap }

// Slots returns the distinct slot names in declaration order.
func (t *Template) Slots() []string { return append([]string(nil), t.slots...) }

// Marks returns the mark names in declaration order.
func (t *Template) Marks() []string { return append([]string(nil), t.marks...) }

// HasBackref reports whether name is bound and later repeated.
func (t *Template) HasBackref(name string) bool {
	for _, n := range t.nodes {
		if n.kind == nodeSlot && n.backref && n.name == name {
			return true
		}
	}
	return false
}

// MustCompile is like Compile but panics on error.
func MustCompile(name, source string, opts Options) *Template {
	t, err := Compile(name, source, opts)
	if err != nil {
		panic(err)
	}
	return t
}

// Compile parses source into a Template.
func Compile(name, source string, opts Options) (*Template, error) {
	c := compiler{name: name, src: source, kinds: map[string]SlotKind{}}
	if err := c.parse(); err != nil {
		return nil, err
	}
	if err := c.check(); err != nil {
		return nil, err
	}

	maxGap := opts.MaxGap
	if maxGap <= 0 {
		maxGap = DefaultMaxGap
	}

	c.markRequiredSpaces()
	return &Template{
		name:   name,
		source: source,
		nodes:  c.nodes,
		fence:  c.fence(),
		maxGap: maxGap,
		slots:  c.slotOrder,
		marks:  c.markOrder,
	}, nil
}

type compiler struct {
	name      string
	src       string
	nodes     []node
	lit       strings.Builder
	kinds     map[string]SlotKind
	slotOrder []string
	markOrder []string
}

func (c *compiler) errorf(offset int, msg string) error {
	return &SyntaxError{Template: c.name, Offset: offset, Message: msg}
}

func (c *compiler) flush() {
	if c.lit.Len() > 0 {
		c.nodes = append(c.nodes, node{kind: nodeLiteral, text: c.lit.String()})
		c.lit.Reset()
	}
}

func (c *compiler) parse() error {
	src := strings.TrimSpace(c.src)
	if src == "" {
		return c.errorf(0, "empty template")
	}
	for i := 0; i < len(src); {
		ch := src[i]
		switch {
		case ch == '{' && i+1 < len(src) && src[i+1] == '{':
			c.lit.WriteByte('{')
			i += 2
		case ch == '}' && i+1 < len(src) && src[i+1] == '}':
			c.lit.WriteByte('}')
			i += 2
		case ch == '{':
			end := strings.IndexByte(src[i:], '}')
			if end < 0 {
				return c.errorf(i, "unterminated placeholder")
			}
			c.flush()
			if err := c.placeholder(i, src[i+1:i+end]); err != nil {
				return err
			}
			i += end + 1
		case ch == '}':
			return c.errorf(i, "unmatched '}' (use '}}' for a literal brace)")
		case isSpace(ch):
			c.flush()
			i = skipSpace(src, i)
			c.nodes = append(c.nodes, node{kind: nodeSpace})
		default:
			c.lit.WriteByte(ch)
			i++
		}
	}
	c.flush()
	return nil
}

func (c *compiler) placeholder(offset int, body string) error {
	body = strings.TrimSpace(body)
	if strings.HasPrefix(body, "@") {
		name := body[1:]
		if !isIdentifier(name) {
			return c.errorf(offset, "invalid mark name "+strconv.Quote(name))
		}
		for _, m := range c.markOrder {
			if m == name {
				return c.errorf(offset, "duplicate mark "+strconv.Quote(name))
			}
		}
		c.markOrder = append(c.markOrder, name)
		c.nodes = append(c.nodes, node{kind: nodeMark, name: name})
		return nil
	}

	name, kindText, hasKind := strings.Cut(body, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return c.errorf(offset, "empty placeholder name")
	}
	if !isIdentifier(name) {
		return c.errorf(offset, "invalid placeholder name "+strconv.Quote(name))
	}

	kind := SlotIdent
	if hasKind {
		kind = SlotKind(strings.TrimSpace(kindText))
		switch kind {
		case SlotIdent, SlotQualifier, SlotType, SlotBlock, SlotTail, SlotGap:
		default:
			return c.errorf(offset, "unknown slot kind "+strconv.Quote(string(kind)))
		}
	}

	if prev, seen := c.kinds[name]; seen {
		if prev != SlotIdent || kind != SlotIdent {
			return c.errorf(offset, "only identifier slots may repeat: "+strconv.Quote(name))
		}
		c.nodes = append(c.nodes, node{kind: nodeSlot, name: name, slot: kind, backref: true})
		return nil
	}

	c.kinds[name] = kind
	c.slotOrder = append(c.slotOrder, name)
	c.nodes = append(c.nodes, node{kind: nodeSlot, name: name, slot: kind})
	return nil
}

// check enforces structural rules that need the whole node list.
func (c *compiler) check() error {
	first := c.nodes[0]
	if first.kind == nodeMark || (first.kind == nodeSlot && first.slot == SlotGap) {
		return c.errorf(0, "template must begin with a literal or a slot")
	}
	last := c.nodes[len(c.nodes)-1]
	if last.kind == nodeSlot && last.slot == SlotGap {
		return c.errorf(len(c.src), "template must not end with a gap")
	}

	prevGap := false
	for _, n := range c.nodes {
		switch {
		case n.kind == nodeSlot && n.slot == SlotGap:
			if prevGap {
				return c.errorf(0, "adjacent gap slots")
			}
			prevGap = true
		case n.kind == nodeSpace, n.kind == nodeMark:
		default:
			prevGap = false
		}
	}
	return nil
}

// markRequiredSpaces makes a whitespace run mandatory when both of its
// neighbors are identifier-like, so "var {x}" cannot match "varx".
func (c *compiler) markRequiredSpaces() {
	for i := range c.nodes {
		if c.nodes[i].kind != nodeSpace || i == 0 || i == len(c.nodes)-1 {
			continue
		}
		c.nodes[i].required = wordyEdge(c.nodes[i-1], false) && wordyEdge(c.nodes[i+1], true)
	}
}

func wordyEdge(n node, leading bool) bool {
	switch n.kind {
	case nodeLiteral:
		if leading {
			return IsIdentByte(n.text[0])
		}
		return IsIdentByte(n.text[len(n.text)-1])
	case nodeSlot:
		return n.slot == SlotIdent || n.slot == SlotType
	}
	return false
}

// fence returns the template prefix that re-binds the first identifier
// slot repeated after a gap. A gap never spans text where this prefix
// matches again with the same binding.
func (c *compiler) fence() []node {
	gapAt := -1
	for i, n := range c.nodes {
		if n.kind == nodeSlot && n.slot == SlotGap {
			gapAt = i
			break
		}
	}
	if gapAt < 0 {
		return nil
	}

	for i := 0; i < gapAt; i++ {
		n := c.nodes[i]
		if n.kind != nodeSlot || n.slot != SlotIdent || n.backref {
			continue
		}
		for _, later := range c.nodes[gapAt+1:] {
			if later.kind == nodeSlot && later.backref && later.name == n.name {
				prefix := append([]node(nil), c.nodes[:i+1]...)
				prefix[i].backref = true
				return prefix
			}
		}
	}
	return nil
}

func isIdentifier(s string) bool {
	return s != "" && identEnd(s, 0) == len(s)
}
