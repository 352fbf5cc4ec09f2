package rewrite

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/wrapfix/pkg/fix"
	"github.com/yaklabco/wrapfix/pkg/pattern"
	"github.com/yaklabco/wrapfix/pkg/resolve"
)

// Status is the outcome of one site.
type Status string

const (
	StatusRewritten      Status = "rewritten"
	StatusAlreadyWrapped Status = "already-wrapped"
	StatusUnresolved     Status = "unresolved"
	StatusAmbiguousType  Status = "ambiguous-type"
	StatusConflict       Status = "conflict"
)

// Statuses lists every status in report order.
func Statuses() []Status {
	return []Status{StatusRewritten, StatusAlreadyWrapped, StatusUnresolved, StatusAmbiguousType, StatusConflict}
}

// Site describes one template match and what happened to it.
type Site struct {
	Template string `json:"template"`
	Status   Status `json:"status"`

	// Start and End delimit the matched span in the original text.
	Start int `json:"start"`
	End   int `json:"end"`

	// Line is the 1-based line of Start.
	Line int `json:"line"`

	Subject  string `json:"subject"`
	TypeText string `json:"type,omitempty"`
	Renamed  string `json:"renamed,omitempty"`
	Wrapper  string `json:"wrapper,omitempty"`

	// Reason explains a skipped site.
	Reason string `json:"reason,omitempty"`
}

// Skipped reports whether the site was left unchanged for a reason worth
// reporting. Already-wrapped sites are skipped silently.
func (s Site) Skipped() bool {
	return s.Status != StatusRewritten && s.Status != StatusAlreadyWrapped
}

// Result is the outcome of rewriting one text.
type Result struct {
	// Original is the input text.
	Original string

	// Text is the rewritten text; equal to Original when nothing changed.
	Text string

	// Sites lists every match in ascending start order.
	Sites []Site
}

// Changed reports whether any site was rewritten.
func (r *Result) Changed() bool {
	return r.Text != r.Original
}

// Count returns the number of sites with the given status.
func (r *Result) Count(status Status) int {
	n := 0
	for _, s := range r.Sites {
		if s.Status == status {
			n++
		}
	}
	return n
}

// Rewrite runs every rule over text. For each match it runs the guard,
// resolves the subject's declaration, and synthesizes a plan. Plans are
// validated together and applied in one pass against the original text.
// Per-site failures are recorded on the site and never abort the text.
func (r *Ruleset) Rewrite(ctx context.Context, text string) (*Result, error) {
	var (
		sites    []Site
		groups   []fix.Group
		byKey    = make(map[string]int)
		reserved = make(map[int][]string)
	)

	for _, rule := range r.rules {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("rewrite: %w", err)
		}
		for m := range rule.Template.Scan(text).All() {
			scope, _ := ScopeOf(text, m.Start, m.End)
			site, plan := r.evaluate(text, rule, m, reserved[scope])
			if plan != nil {
				byKey[plan.Group.Label] = len(sites)
				groups = append(groups, plan.Group)
				reserved[scope] = append(reserved[scope], plan.Renamed, plan.Wrapper)
			}
			sites = append(sites, site)
		}
	}

	edits, rejected := fix.PrepareGroups(groups, len(text))
	for _, rej := range rejected {
		site := &sites[byKey[rej.Group.Label]]
		site.Status = StatusConflict
		var conflict *fix.ConflictError
		if errors.As(rej.Err, &conflict) {
			site.Reason = "overlaps site at line " + fmt.Sprint(lineOf(text, conflict.Accepted.Start))
		} else {
			site.Reason = rej.Err.Error()
		}
		site.Renamed, site.Wrapper = "", ""
	}

	slices.SortStableFunc(sites, func(a, b Site) int { return a.Start - b.Start })
	return &Result{
		Original: text,
		Text:     fix.ApplyEdits(text, edits),
		Sites:    sites,
	}, nil
}

func (r *Ruleset) evaluate(text string, rule Rule, m pattern.Match, reserved []string) (Site, *Plan) {
	site := Site{
		Template: m.Template,
		Start:    m.Start,
		End:      m.End,
		Line:     lineOf(text, m.Start),
		Subject:  m.Text(SlotSubject),
		TypeText: m.Text(SlotType),
	}

	if r.AlreadyWrapped(text, m) {
		site.Status = StatusAlreadyWrapped
		return site, nil
	}

	decl := m.OccurrencesOf(SlotSubject)
	arg, ok := callArgument(m, m.Marks[MarkCall])
	if len(decl) == 0 || !ok {
		site.Status = StatusUnresolved
		site.Reason = "no call argument"
		return site, nil
	}

	rc, err := resolve.Resolve(text, arg.Start, site.Subject)
	switch {
	case err != nil:
		site.Status = StatusUnresolved
		site.Reason = err.Error()
		return site, nil
	case rc.NameStart != decl[0].Start:
		site.Status = StatusUnresolved
		site.Reason = fmt.Sprintf("nearest declaration of %s is at line %d, not the matched one", site.Subject, rc.Line)
		return site, nil
	}
	site.TypeText = rc.TypeText

	if r.IsEnvelope(rc.TypeText) {
		site.Status = StatusAlreadyWrapped
		return site, nil
	}

	plan, err := Synthesize(text, m, rc, r.envelope, rule.MaxTypeDepth, reserved...)
	if err != nil {
		site.Status = StatusUnresolved
		if errors.Is(err, ErrAmbiguousType) {
			site.Status = StatusAmbiguousType
		}
		site.Reason = err.Error()
		return site, nil
	}

	site.Status = StatusRewritten
	site.TypeText = plan.TypeText
	site.Renamed = plan.Renamed
	site.Wrapper = plan.Wrapper
	return site, &plan
}

func lineOf(text string, offset int) int {
	return strings.Count(text[:offset], "\n") + 1
}
