package rewrite

import (
	"errors"
	"fmt"
	"slices"

	"github.com/yaklabco/wrapfix/pkg/pattern"
)

// Slot and mark names every rewrite template must provide.
const (
	// SlotSubject binds the serialized variable. It must appear in the
	// declaration and again as the call argument.
	SlotSubject = "subject"

	// SlotType, when present, captures the declared or constructed type.
	SlotType = "type"

	// MarkCall marks the start of the serializing statement.
	MarkCall = "call"
)

// DefaultMaxTypeDepth caps generic nesting; deeper types are ambiguous.
const DefaultMaxTypeDepth = 3

// ErrInvalidTemplate is returned for templates that cannot drive a rewrite.
var ErrInvalidTemplate = errors.New("invalid rewrite template")

const serializeTail = "{gap:gap}{@call}var {result} = {receiver:qualifier}Serialize({subject}{rest:tail});"

// TemplateSpec is the configuration form of a rewrite template.
type TemplateSpec struct {
	Name         string
	Source       string
	MaxGap       int
	MaxTypeDepth int
}

// DefaultTemplates returns the built-in templates: an object built with
// var, with an explicit type, or with a target-typed new(), followed by
// a serialize call on the same variable.
func DefaultTemplates() []TemplateSpec {
	return []TemplateSpec{
		{
			Name:         "var-new",
			Source:       "var {subject} = new {type:type} {init:block};" + serializeTail,
			MaxGap:       pattern.DefaultMaxGap,
			MaxTypeDepth: DefaultMaxTypeDepth,
		},
		{
			Name:         "typed-new",
			Source:       "{type:type} {subject} = new {ctor:type} {init:block};" + serializeTail,
			MaxGap:       pattern.DefaultMaxGap,
			MaxTypeDepth: DefaultMaxTypeDepth,
		},
		{
			Name:         "target-typed",
			Source:       "{type:type} {subject} = new {init:block};" + serializeTail,
			MaxGap:       pattern.DefaultMaxGap,
			MaxTypeDepth: DefaultMaxTypeDepth,
		},
	}
}

// Rule is one compiled template with its limits.
type Rule struct {
	Template     *pattern.Template
	MaxTypeDepth int
}

// Ruleset is the immutable set of rules and the envelope they produce.
// Build it once and share it; it is safe for concurrent use.
type Ruleset struct {
	envelope Envelope
	rules    []Rule
	guards   []*pattern.Template
}

// NewRuleset compiles specs. All template errors are reported together.
func NewRuleset(env Envelope, specs []TemplateSpec) (*Ruleset, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no templates configured", ErrInvalidTemplate)
	}

	rs := &Ruleset{envelope: env}
	var errs []error
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if seen[spec.Name] {
			errs = append(errs, fmt.Errorf("%w: duplicate name %q", ErrInvalidTemplate, spec.Name))
			continue
		}
		seen[spec.Name] = true

		rule, err := compileRule(spec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rs.rules = append(rs.rules, rule)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	guards, err := compileGuards(env)
	if err != nil {
		return nil, err
	}
	rs.guards = guards
	return rs, nil
}

// MustNewRuleset is like NewRuleset but panics on error.
func MustNewRuleset(env Envelope, specs []TemplateSpec) *Ruleset {
	rs, err := NewRuleset(env, specs)
	if err != nil {
		panic(err)
	}
	return rs
}

func compileRule(spec TemplateSpec) (Rule, error) {
	tmpl, err := pattern.Compile(spec.Name, spec.Source, pattern.Options{MaxGap: spec.MaxGap})
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	if !tmpl.HasBackref(SlotSubject) {
		return Rule{}, fmt.Errorf("%w: %q must bind {%s} and repeat it as the call argument",
			ErrInvalidTemplate, spec.Name, SlotSubject)
	}
	if !slices.Contains(tmpl.Marks(), MarkCall) {
		return Rule{}, fmt.Errorf("%w: %q must place {@%s} before the serializing statement",
			ErrInvalidTemplate, spec.Name, MarkCall)
	}
	if spec.MaxTypeDepth < 0 {
		return Rule{}, fmt.Errorf("%w: %q has negative max type depth", ErrInvalidTemplate, spec.Name)
	}
	return Rule{Template: tmpl, MaxTypeDepth: spec.MaxTypeDepth}, nil
}

// compileGuards builds the templates that recognize an existing wrapper
// such as "new ApiResponse<Widget> { Data = expectedWidget".
func compileGuards(env Envelope) ([]*pattern.Template, error) {
	sources := []string{
		fmt.Sprintf("new %s<{inner:type}> {{ %s = {target}", env.Type, env.DataProperty),
		fmt.Sprintf("new %s<{inner:type}>() {{ %s = {target}", env.Type, env.DataProperty),
	}
	guards := make([]*pattern.Template, 0, len(sources))
	for i, src := range sources {
		tmpl, err := pattern.Compile(fmt.Sprintf("guard-%d", i), src, pattern.Options{})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
		}
		guards = append(guards, tmpl)
	}
	return guards, nil
}

// Envelope returns the envelope settings.
func (r *Ruleset) Envelope() Envelope {
	return r.envelope
}

// Rules returns the compiled rules in evaluation order.
func (r *Ruleset) Rules() []Rule {
	return slices.Clone(r.rules)
}
