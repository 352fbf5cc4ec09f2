package pattern

import (
	"iter"
	"strings"
)

// Scanner yields the matches of one template over one text in ascending
// start order. A scanner is single-pass: once exhausted it yields nothing.
// Overlapping candidates resolve first-match-wins; scanning resumes at
// the end of the previous match. Matches never start inside a comment or
// a string or character literal.
type Scanner struct {
	t      *Template
	text   string
	cursor int
	done   bool

	// lexed is the offset up to which literals have been skipped.
	lexed int
}

// Scan returns a fresh scanner over text.
func (t *Template) Scan(text string) *Scanner {
	return &Scanner{t: t, text: text}
}

// FindAll collects every match in text.
func (t *Template) FindAll(text string) []Match {
	var out []Match
	for m := range t.Scan(text).All() {
		out = append(out, m)
	}
	return out
}

// Next returns the next match, or false when the text is exhausted.
func (s *Scanner) Next() (Match, bool) {
	if s.done {
		return Match{}, false
	}
	for pos := s.cursor; pos < len(s.text); pos++ {
		pos = s.candidate(pos)
		if pos < 0 {
			break
		}
		if code := s.outsideLiterals(pos); code != pos {
			pos = code - 1
			continue
		}
		m, ok := s.t.matchAt(s.text, pos)
		if !ok {
			continue
		}
		s.cursor = max(m.End, pos+1)
		return m, true
	}
	s.done = true
	s.cursor = len(s.text)
	return Match{}, false
}

// All adapts the scanner to a range-over-func sequence.
func (s *Scanner) All() iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for {
			m, ok := s.Next()
			if !ok || !yield(m) {
				return
			}
		}
	}
}

// candidate returns the next offset at or after pos where the template
// could start, or -1.
func (s *Scanner) candidate(pos int) int {
	first := s.t.nodes[0]
	if first.kind != nodeLiteral {
		return pos
	}
	idx := strings.Index(s.text[pos:], first.text)
	if idx < 0 {
		return -1
	}
	return pos + idx
}

// outsideLiterals returns pos, or the end of the comment or literal that
// covers or starts at pos.
func (s *Scanner) outsideLiterals(pos int) int {
	for s.lexed <= pos && s.lexed < len(s.text) {
		end, ok := SkipLiteral(s.text, s.lexed)
		if !ok {
			s.lexed++
			continue
		}
		s.lexed = end
		pos = max(pos, end)
	}
	return pos
}

func (t *Template) matchAt(text string, pos int) (Match, bool) {
	m := matcher{t: t, text: text}
	end, ok := m.run(t.nodes, 0, pos)
	if !ok {
		return Match{}, false
	}

	match := Match{
		Template:    t.name,
		Start:       pos,
		End:         end,
		Captures:    make(map[string]Capture, len(t.slots)),
		Occurrences: m.caps,
		Marks:       make(map[string]int, len(m.marks)),
	}
	for _, c := range m.caps {
		if _, seen := match.Captures[c.Name]; !seen {
			match.Captures[c.Name] = c
		}
	}
	for _, mk := range m.marks {
		match.Marks[mk.Name] = mk.Start
	}
	return match, true
}
