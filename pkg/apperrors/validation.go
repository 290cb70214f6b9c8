package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries field-keyed violation messages. It is a distinct
// category from permission errors: callers render validation failures against
// the offending input fields.
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

// NewValidationError creates an empty ValidationError ready to collect
// violations.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records a violation message for the given field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Addf records a formatted violation message for the given field.
func (e *ValidationError) Addf(field, format string, args ...any) {
	e.Add(field, fmt.Sprintf(format, args...))
}

// HasViolations reports whether any violation was recorded.
func (e *ValidationError) HasViolations() bool {
	return e != nil && len(e.Fields) > 0
}

// ErrOrNil returns the error itself when violations were recorded, nil
// otherwise. Collection sites can build up violations and return the result
// unconditionally.
func (e *ValidationError) ErrOrNil() error {
	if e.HasViolations() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	if !e.HasViolations() {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, field := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(field)
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Fields[field], ", "))
	}
	return b.String()
}

// AsValidationError unwraps err as a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
