package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy shared by every usecase. Callers classify with errors.Is.
var (
	// ErrNotFound is fatal: an unknown account, category, rule, candidate or pattern.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks row-scoped or input problems (missing column, bad date/amount).
	ErrValidation = errors.New("validation failed")

	// ErrDuplicate is returned by repositories when a unique key is violated.
	ErrDuplicate = errors.New("duplicate")

	// ErrStructural is fatal: no parsable header or table was found.
	ErrStructural = errors.New("structural error")

	// ErrConflict marks an illegal state transition.
	ErrConflict = errors.New("conflict")
)

// MissingColumnError reports a required canonical field that none of the
// candidate headers resolved.
type MissingColumnError struct {
	Row     int
	Field   string
	Aliases []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("row %d: missing column %q (tried: %s)", e.Row, e.Field, strings.Join(e.Aliases, ", "))
}

func (e *MissingColumnError) Unwrap() error { return ErrValidation }

// ParseError reports a malformed value in a single row.
type ParseError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("row %d: invalid %s %q", e.Row, e.Field, e.Value)
	}
	return fmt.Sprintf("row %d: invalid %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

// NotFoundError builds an ErrNotFound-wrapping error for the given entity.
func NotFoundError(entity string, id any) error {
	return fmt.Errorf("%s %v not found: %w", entity, id, ErrNotFound)
}
