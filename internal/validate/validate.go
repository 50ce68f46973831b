// Package validate implements the client-side form validation engine.
//
// Each form declares its rule table once, at construction time, as a Scope:
// an ordered set of named fields with a required flag and optional extra
// rules. The engine evaluates the whole scope on demand and keeps the last
// computed error set, which screens read through FieldProps. Server-side
// field errors (422 responses) are overlaid by the owning form through
// SetErrors; the engine itself never patches individual entries.
package validate

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RequiredMessage is the fixed message recorded for an empty required field.
const RequiredMessage = "This field is required"

// RuleFunc checks a field value and returns an error message, or "" when the
// value passes. Rules run only on non-empty trimmed values; emptiness is the
// required flag's concern.
type RuleFunc func(value string) string

// Field is one entry in a form's rule table. Value is read at validation
// time so the table can be built once per form.
type Field struct {
	Name     string
	Required bool
	Rules    []RuleFunc
	Value    func() string
}

// Scope is the region of a form the engine evaluates: the rule table for
// one logical group of inputs.
type Scope struct {
	fields []Field
}

// NewScope builds a scope from the given fields.
func NewScope(fields ...Field) *Scope {
	return &Scope{fields: fields}
}

// Add appends a field to the scope and returns the scope for chaining.
func (s *Scope) Add(f Field) *Scope {
	s.fields = append(s.fields, f)
	return s
}

// FieldNames returns the names of all fields in declaration order.
func (s *Scope) FieldNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		if f.Name != "" {
			names = append(names, f.Name)
		}
	}
	return names
}

// FieldProps is the presentation-agnostic descriptor a screen needs to
// decorate one input.
type FieldProps struct {
	Invalid bool
	Message string
}

// Engine evaluates scopes and holds the error set from the last pass.
// The zero value is not usable; call New.
type Engine struct {
	errors map[string]string
}

// New returns an engine with an empty error set.
func New() *Engine {
	return &Engine{errors: map[string]string{}}
}

// ValidateAll evaluates every field in the scope and replaces the current
// error set wholesale. It returns true iff no errors were recorded.
//
// A nil or empty scope yields zero errors: there was nothing to validate,
// which callers must not read as "confirmed valid". Fields without a name
// are skipped without recording anything.
func (e *Engine) ValidateAll(scope *Scope) bool {
	next := map[string]string{}
	if scope != nil {
		for _, f := range scope.fields {
			if f.Name == "" {
				continue
			}
			value := ""
			if f.Value != nil {
				value = strings.TrimSpace(f.Value())
			}
			if value == "" {
				if f.Required {
					next[f.Name] = RequiredMessage
				}
				continue
			}
			for _, rule := range f.Rules {
				if msg := rule(value); msg != "" {
					next[f.Name] = msg
					break
				}
			}
		}
	}
	e.errors = next
	return len(next) == 0
}

// FieldProps reports the current state of one field. No recomputation, no
// side effects; absence from the error set means "not currently known to
// be invalid".
func (e *Engine) FieldProps(name string) FieldProps {
	if msg, ok := e.errors[name]; ok {
		return FieldProps{Invalid: true, Message: msg}
	}
	return FieldProps{}
}

// SetErrors replaces the error set with an externally supplied mapping,
// typically server-side 422 field errors. A nil map clears the set.
func (e *Engine) SetErrors(errs map[string]string) {
	next := make(map[string]string, len(errs))
	for name, msg := range errs {
		if name == "" || msg == "" {
			continue
		}
		next[name] = msg
	}
	e.errors = next
}

// Clear drops every recorded error.
func (e *Engine) Clear() {
	e.errors = map[string]string{}
}

// Errors returns a copy of the current error set.
func (e *Engine) Errors() map[string]string {
	out := make(map[string]string, len(e.errors))
	for name, msg := range e.errors {
		out[name] = msg
	}
	return out
}

// Decimal is a rule requiring the value to parse as a decimal number.
func Decimal(value string) string {
	if _, err := decimal.NewFromString(value); err != nil {
		return "Must be a number"
	}
	return ""
}

// PositiveAmount is a rule requiring a decimal strictly greater than zero.
func PositiveAmount(value string) string {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return "Must be a number"
	}
	if d.Sign() <= 0 {
		return "Must be greater than zero"
	}
	return ""
}

// OneOf returns a rule requiring the value to be one of the allowed codes.
func OneOf(allowed ...string) RuleFunc {
	return func(value string) string {
		for _, a := range allowed {
			if value == a {
				return ""
			}
		}
		return "Invalid value"
	}
}
