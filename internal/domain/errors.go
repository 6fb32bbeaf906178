package domain

import (
	"errors"  // Error matching
	"sort"    // Stable error output
	"strings" // String manipulation
)

// Error taxonomy shared by services and handlers
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("username or email already exists")
	ErrNotFound     = errors.New("todo not found")
)

// ValidationError carries field-level messages for a rejected request
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a message for field, keeping the first one reported
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// OrNil returns nil when no field was recorded
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
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
	return "validation failed: " + strings.Join(parts, "; ")
}
