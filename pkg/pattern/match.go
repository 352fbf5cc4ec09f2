package pattern

import "strings"

// typeKeywords may never start a type slot.
var typeKeywords = map[string]bool{
	"var": true, "new": true, "return": true, "await": true, "throw": true,
	"yield": true, "case": true, "else": true, "using": true, "in": true,
	"is": true, "as": true, "out": true, "ref": true, "goto": true,
}

// matcher runs one match attempt. Captures are kept in a stack so a gap
// can roll back everything bound after it when it retries.
type matcher struct {
	t     *Template
	text  string
	caps  []Capture
	marks []Capture
}

func (m *matcher) bound(name string) (Capture, bool) {
	for _, c := range m.caps {
		if c.Name == name {
			return c, true
		}
	}
	return Capture{}, false
}

func (m *matcher) capture(n node, start, end int) {
	m.caps = append(m.caps, Capture{
		Name:  n.name,
		Kind:  n.slot,
		Text:  m.text[start:end],
		Start: start,
		End:   end,
	})
}

// run matches nodes[i:] at pos and returns the end offset.
func (m *matcher) run(nodes []node, i, pos int) (int, bool) {
	for ; i < len(nodes); i++ {
		n := nodes[i]
		switch n.kind {
		case nodeLiteral:
			end, ok := m.literal(n.text, pos)
			if !ok {
				return 0, false
			}
			pos = end

		case nodeSpace:
			end := skipSpace(m.text, pos)
			if n.required && end == pos {
				return 0, false
			}
			pos = end

		case nodeMark:
			m.marks = append(m.marks, Capture{Name: n.name, Start: pos, End: pos})

		case nodeSlot:
			if n.slot == SlotGap {
				return m.gap(nodes, i, pos)
			}
			end, ok := m.slot(n, pos)
			if !ok {
				return 0, false
			}
			m.capture(n, pos, end)
			pos = end
		}
	}
	return pos, true
}

// gap tries successively longer spans for nodes[i] and matches the rest
// of the template after each. A gap never leaves the block it starts in.
func (m *matcher) gap(nodes []node, i, pos int) (int, bool) {
	limit := blockClose(m.text, pos, min(len(m.text), pos+m.t.maxGap))
	caps, marks := len(m.caps), len(m.marks)
	for end := pos; end <= limit; end++ {
		if end > pos && m.fenced(end) {
			break
		}
		m.capture(nodes[i], pos, end)
		if stop, ok := m.run(nodes, i+1, end); ok {
			return stop, true
		}
		m.caps, m.marks = m.caps[:caps], m.marks[:marks]
	}
	return 0, false
}

// blockClose returns the offset of the first '}' in text[pos:limit] that
// closes a block opened before pos, or limit.
func blockClose(text string, pos, limit int) int {
	depth := 0
	for i := pos; i < limit; {
		if next, ok := SkipLiteral(text, i); ok {
			i = next
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
	return limit
}

// fenced reports whether the fence prefix matches at pos with the
// current bindings, which means the gap would swallow a redeclaration.
func (m *matcher) fenced(pos int) bool {
	if len(m.t.fence) == 0 || pos >= len(m.text) || !wordStart(m.text, pos) || !IsIdentStart(m.text[pos]) {
		return false
	}
	if first := m.t.fence[0]; first.kind == nodeLiteral && !strings.HasPrefix(m.text[pos:], first.text) {
		return false
	}
	probe := matcher{t: m.t, text: m.text, caps: m.caps[:len(m.caps):len(m.caps)]}
	_, ok := probe.run(m.t.fence, 0, pos)
	return ok
}

func (m *matcher) literal(lit string, pos int) (int, bool) {
	if !strings.HasPrefix(m.text[pos:], lit) {
		return 0, false
	}
	end := pos + len(lit)
	if IsIdentByte(lit[0]) && !wordStart(m.text, pos) {
		return 0, false
	}
	if IsIdentByte(lit[len(lit)-1]) && !wordEnd(m.text, end) {
		return 0, false
	}
	return end, true
}

func (m *matcher) slot(n node, pos int) (int, bool) {
	text := m.text
	switch {
	case n.backref:
		prev, ok := m.bound(n.name)
		if !ok || !strings.HasPrefix(text[pos:], prev.Text) {
			return 0, false
		}
		end := pos + len(prev.Text)
		return end, wordStart(text, pos) && wordEnd(text, end)

	case n.slot == SlotIdent:
		if !wordStart(text, pos) {
			return 0, false
		}
		end := identEnd(text, pos)
		return end, end > pos

	case n.slot == SlotQualifier:
		return qualifierEnd(text, pos), true

	case n.slot == SlotType:
		return typeEnd(text, pos)

	case n.slot == SlotBlock:
		return blockEnd(text, pos)

	case n.slot == SlotTail:
		return tailEnd(text, pos)
	}
	return 0, false
}

func qualifierEnd(text string, pos int) int {
	if !wordStart(text, pos) {
		return pos
	}
	end := pos
	for {
		id := identEnd(text, end)
		if id == end || id >= len(text) || text[id] != '.' {
			return end
		}
		end = id + 1
	}
}

// typeEnd scans lenient type text. Whitespace is only allowed inside
// angle brackets, so "Widget expected" stops after "Widget".
func typeEnd(text string, pos int) (int, bool) {
	if !wordStart(text, pos) {
		return 0, false
	}
	first := identEnd(text, pos)
	if first == pos || typeKeywords[text[pos:first]] {
		return 0, false
	}

	depth := 0
	end := first
	for i := first; i < len(text); i++ {
		c := text[i]
		switch {
		case IsIdentByte(c), c == '.', c == '?', c == '[', c == ']':
		case c == ',':
			if depth == 0 && !inBrackets(text[first:i]) {
				return end, true
			}
		case c == '<':
			depth++
		case c == '>':
			if depth == 0 {
				return end, true
			}
			depth--
		case c == ' ' || c == '\t':
			if depth == 0 {
				return end, true
			}
			continue
		default:
			return end, true
		}
		end = i + 1
	}
	return end, true
}

// inBrackets reports whether s has an unclosed '['.
func inBrackets(s string) bool {
	return strings.Count(s, "[") > strings.Count(s, "]")
}

// blockEnd consumes one or more balanced groups separated by whitespace.
func blockEnd(text string, pos int) (int, bool) {
	end, ok := skipGroup(text, pos)
	if !ok {
		return 0, false
	}
	for {
		next := skipSpace(text, end)
		if next >= len(text) || (text[next] != '(' && text[next] != '{') {
			return end, true
		}
		groupEnd, ok := skipGroup(text, next)
		if !ok {
			return 0, false
		}
		end = groupEnd
	}
}

// tailEnd consumes ", arg, arg" up to, not including, the closing ')'.
func tailEnd(text string, pos int) (int, bool) {
	start := skipSpace(text, pos)
	if start >= len(text) || text[start] != ',' {
		return pos, true
	}

	depth := 0
	for i := start; i < len(text); {
		if end, ok := SkipLiteral(text, i); ok {
			i = end
			continue
		}
		switch text[i] {
		case '(', '[', '{':
			depth++
		case ']', '}':
			if depth == 0 {
				return 0, false
			}
			depth--
		case ')':
			if depth == 0 {
				return i, true
			}
			depth--
		case ';':
			if depth == 0 {
				return 0, false
			}
		}
		i++
	}
	return 0, false
}
