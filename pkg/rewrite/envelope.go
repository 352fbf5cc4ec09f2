// Package rewrite turns template matches into envelope rewrites: it guards
// already-wrapped sites, resolves the declared type, synthesizes the edits
// and applies them to the file text in one pass.
package rewrite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yaklabco/wrapfix/pkg/pattern"
	"github.com/yaklabco/wrapfix/pkg/typeexpr"
)

// Default envelope settings.
const (
	DefaultEnvelopeType = "ApiResponse"
	DefaultDataProperty = "Data"
	DefaultVariable     = "apiResponse"
	DefaultRenamePrefix = "expected"
	DefaultGuardWindow  = 500
)

// ErrInvalidEnvelope is returned for unusable envelope settings.
var ErrInvalidEnvelope = errors.New("invalid envelope")

// Envelope describes the wrapper construct introduced around a value.
type Envelope struct {
	// Type is the generic envelope type, e.g. ApiResponse.
	Type string

	// DataProperty is the envelope property that receives the value.
	DataProperty string

	// Variable is the name of the wrapper variable.
	Variable string

	// RenamePrefix prefixes the type-derived name given to the wrapped
	// value. Empty disables renaming.
	RenamePrefix string

	// GuardWindow is how many bytes after a declaration are searched for
	// an existing wrapper.
	GuardWindow int
}

// DefaultEnvelope returns the ApiResponse envelope.
func DefaultEnvelope() Envelope {
	return Envelope{
		Type:         DefaultEnvelopeType,
		DataProperty: DefaultDataProperty,
		Variable:     DefaultVariable,
		RenamePrefix: DefaultRenamePrefix,
		GuardWindow:  DefaultGuardWindow,
	}
}

// Validate checks that every name is a usable identifier.
func (e Envelope) Validate() error {
	var errs []error
	if expr, err := typeexpr.Parse(e.Type); err != nil || len(expr.Args) > 0 || expr.Suffix != "" {
		errs = append(errs, fmt.Errorf("%w: type %q must be a plain type name", ErrInvalidEnvelope, e.Type))
	}
	for _, f := range []struct{ field, value string }{
		{"data property", e.DataProperty},
		{"variable", e.Variable},
	} {
		if !isIdentifier(f.value) {
			errs = append(errs, fmt.Errorf("%w: %s %q is not an identifier", ErrInvalidEnvelope, f.field, f.value))
		}
	}
	if e.RenamePrefix != "" && !isIdentifier(e.RenamePrefix) {
		errs = append(errs, fmt.Errorf("%w: rename prefix %q is not an identifier", ErrInvalidEnvelope, e.RenamePrefix))
	}
	if e.GuardWindow < 0 {
		errs = append(errs, fmt.Errorf("%w: guard window %d is negative", ErrInvalidEnvelope, e.GuardWindow))
	}
	return errors.Join(errs...)
}

// simpleType returns the last segment of the envelope type name.
func (e Envelope) simpleType() string {
	if i := strings.LastIndexByte(e.Type, '.'); i >= 0 {
		return e.Type[i+1:]
	}
	return e.Type
}

func isIdentifier(s string) bool {
	if s == "" || !pattern.IsIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !pattern.IsIdentByte(s[i]) {
			return false
		}
	}
	return true
}
