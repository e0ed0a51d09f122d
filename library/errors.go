package library

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState matches every *InvalidStateError.
	ErrInvalidState = errors.New("invalid state")
)

// ValidationError reports malformed fields of a book or user. Fields maps a
// field name to the first problem found with it.
type ValidationError struct {
	Entity string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an id that does not resolve in its collection.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidStateError reports an operation rejected by the current state of an
// entity. Nothing is modified when it is returned.
type InvalidStateError struct {
	Op     string
	ID     string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Op, e.ID, e.Reason)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }
