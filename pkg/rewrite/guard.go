package rewrite

import (
	"strings"

	"github.com/yaklabco/wrapfix/pkg/pattern"
	"github.com/yaklabco/wrapfix/pkg/typeexpr"
)

// AlreadyWrapped reports whether a match is the product of an earlier
// rewrite. That is the case when the matched declaration constructs the
// envelope itself, or when an envelope wrapping the subject already
// follows the declaration within the guard window.
func (r *Ruleset) AlreadyWrapped(text string, m pattern.Match) bool {
	if t, ok := m.Captures[SlotType]; ok && r.IsEnvelope(t.Text) {
		return true
	}

	subject, ok := m.Captures[SlotSubject]
	if !ok {
		return false
	}
	end := min(len(text), subject.End+r.envelope.GuardWindow)
	window := text[subject.End:end]

	for _, guard := range r.guards {
		for w := range guard.Scan(window).All() {
			if w.Text("target") == subject.Text {
				return true
			}
		}
	}
	return false
}

// IsEnvelope reports whether typeText names the envelope type, with any
// type arguments.
func (r *Ruleset) IsEnvelope(typeText string) bool {
	expr, err := typeexpr.Parse(typeText)
	if err != nil {
		return strings.HasPrefix(strings.TrimSpace(typeText), r.envelope.Type+"<")
	}
	return expr.SimpleName() == r.envelope.simpleType()
}
