package pattern

import "strings"

// IsIdentByte reports whether c can appear inside an identifier.
// Bytes of multi-byte UTF-8 sequences count as identifier bytes.
func IsIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c >= 0x80
}

// IsIdentStart reports whether c can begin an identifier.
func IsIdentStart(c byte) bool {
	return IsIdentByte(c) && (c < '0' || c > '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// wordStart reports whether offset i sits on the left edge of a word.
func wordStart(text string, i int) bool {
	return i == 0 || !IsIdentByte(text[i-1])
}

// wordEnd reports whether offset i sits on the right edge of a word.
func wordEnd(text string, i int) bool {
	return i >= len(text) || !IsIdentByte(text[i])
}

// identEnd returns the end of the identifier starting at i, or i when
// none starts there.
func identEnd(text string, i int) int {
	if i >= len(text) || !IsIdentStart(text[i]) {
		return i
	}
	j := i + 1
	for j < len(text) && IsIdentByte(text[j]) {
		j++
	}
	return j
}

func skipSpace(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}

// SkipLiteral reports whether a string literal, character literal or
// comment starts at i, and returns the offset just past it. Unterminated
// literals run to the end of text; unterminated regular strings stop at
// the end of the line.
func SkipLiteral(text string, i int) (int, bool) {
	if i >= len(text) {
		return i, false
	}
	rest := text[i:]
	switch {
	case strings.HasPrefix(rest, "//"):
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			return i + nl, true
		}
		return len(text), true
	case strings.HasPrefix(rest, "/*"):
		if end := strings.Index(rest[2:], "*/"); end >= 0 {
			return i + 2 + end + 2, true
		}
		return len(text), true
	case strings.HasPrefix(rest, `"""`):
		if end := strings.Index(rest[3:], `"""`); end >= 0 {
			return i + 3 + end + 3, true
		}
		return len(text), true
	case strings.HasPrefix(rest, `@"`), strings.HasPrefix(rest, `$@"`), strings.HasPrefix(rest, `@$"`):
		return skipVerbatim(text, i+strings.IndexByte(rest, '"')+1), true
	case strings.HasPrefix(rest, `$"`):
		return skipQuoted(text, i+2, '"'), true
	case rest[0] == '"':
		return skipQuoted(text, i+1, '"'), true
	case rest[0] == '\'':
		return skipQuoted(text, i+1, '\''), true
	}
	return i, false
}

func skipQuoted(text string, i int, quote byte) int {
	for i < len(text) {
		switch text[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return i + 1
		case '\n':
			return i
		}
		i++
	}
	return len(text)
}

func skipVerbatim(text string, i int) int {
	for i < len(text) {
		if text[i] == '"' {
			if i+1 < len(text) && text[i+1] == '"' {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return len(text)
}

// skipGroup consumes one balanced group opening at i and returns the
// offset just past its closing delimiter.
func skipGroup(text string, i int) (int, bool) {
	var stack []byte
	for i < len(text) {
		if end, ok := SkipLiteral(text, i); ok {
			i = end
			continue
		}
		switch c := text[i]; c {
		case '(', '{', '[':
			stack = append(stack, closerOf(c))
		case ')', '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i + 1, true
			}
		}
		if len(stack) == 0 {
			return 0, false
		}
		i++
	}
	return 0, false
}

func closerOf(c byte) byte {
	switch c {
	case '(':
		return ')'
	case '[':
		return ']'
	}
	return '}'
}

// Identifiers calls yield for every whole-word occurrence of name in
// text[start:end] that lies outside string literals and comments.
func Identifiers(text string, start, end int, name string, yield func(start, end int) bool) {
	if name == "" {
		return
	}
	end = min(end, len(text))
	i := start
	for i < end {
		if next, ok := SkipLiteral(text, i); ok {
			i = next
			continue
		}
		if !IsIdentStart(text[i]) || !wordStart(text, i) {
			i++
			continue
		}
		j := identEnd(text, i)
		if j <= end && text[i:j] == name {
			if !yield(i, j) {
				return
			}
		}
		i = j
	}
}
