package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound the row does not exist inside the caller's scope
	ErrNotFound = errors.New("not found")
	// ErrSlugConflict slug retries exhausted
	ErrSlugConflict = errors.New("could not allocate a unique slug")
	// ErrTenantExists the owner already has a restaurant
	ErrTenantExists = errors.New("owner already has a restaurant")
	// ErrUsernameTaken registration with an existing username
	ErrUsernameTaken = errors.New("username already exists")
)

// ValidationError carries field level messages for the client
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records another field message
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = message
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
