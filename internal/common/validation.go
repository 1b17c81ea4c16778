package common

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// FieldError is one failed rule for one field.
type FieldError struct {
	Field   string
	Problem string
}

func (e FieldError) Error() string {
	return e.Field + " " + e.Problem
}

// Rule inspects a value and returns a problem description, or "" when the
// value passes. Rules ignore value types they do not understand.
type Rule func(value any) string

// Validator accumulates field errors across chained Field calls.
type Validator struct {
	failed []FieldError
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Field(name string, value any, rules ...Rule) *Validator {
	for _, rule := range rules {
		if problem := rule(value); problem != "" {
			v.failed = append(v.failed, FieldError{Field: name, Problem: problem})
		}
	}
	return v
}

func (v *Validator) HasErrors() bool { return len(v.failed) > 0 }

func (v *Validator) Errors() []FieldError { return v.failed }

// ErrorMessage joins every failure as "field problem; field problem".
func (v *Validator) ErrorMessage() string {
	parts := make([]string, len(v.failed))
	for i, fe := range v.failed {
		parts[i] = fe.Error()
	}
	return strings.Join(parts, "; ")
}

// Error returns nil or an error wrapping ErrValidation.
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrValidation, v.ErrorMessage())
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func Required(value any) string {
	switch s := value.(type) {
	case nil:
		return "is required"
	case string:
		if strings.TrimSpace(s) == "" {
			return "is required"
		}
	case *string:
		if s == nil || strings.TrimSpace(*s) == "" {
			return "is required"
		}
	}
	return ""
}

func MinLength(n int) Rule {
	return func(value any) string {
		if s, ok := value.(string); ok && utf8.RuneCountInString(s) < n {
			return fmt.Sprintf("needs %d or more characters", n)
		}
		return ""
	}
}

// OneOf compares case-insensitively and lets "" through.
func OneOf(allowed ...string) Rule {
	return func(value any) string {
		s, _ := value.(string)
		if s == "" || slices.Contains(allowed, strings.ToLower(s)) {
			return ""
		}
		return fmt.Sprintf("%q is not one of [%s]", s, strings.Join(allowed, " "))
	}
}

// Range is inclusive on both ends.
func Range(lo, hi float64) Rule {
	return func(value any) string {
		var f float64
		switch n := value.(type) {
		case float64:
			f = n
		case float32:
			f = float64(n)
		case int:
			f = float64(n)
		case int64:
			f = float64(n)
		default:
			return ""
		}
		if f < lo || f > hi {
			return fmt.Sprintf("%v is outside [%g, %g]", value, lo, hi)
		}
		return ""
	}
}

func UUID(value any) string {
	s, _ := value.(string)
	if _, err := uuid.Parse(s); err != nil {
		return "is not a uuid"
	}
	return ""
}
