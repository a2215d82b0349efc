package main

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStoreUnavailable is returned when no database connection was configured.
var ErrStoreUnavailable = errors.New("document store is not initialized")

// FieldError describes a single rejected field using its wire name.
type FieldError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Message    string `json:"message"`
}

// ValidationError means the client sent data that violates the schema.
// It never reaches the store.
type ValidationError struct {
	Fields []FieldError `json:"detail"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// StoreError wraps any failure of the underlying document database.
type StoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s on %q: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// MappingError means a stored document cannot be turned into its wire shape.
type MappingError struct {
	DocumentID string
	Field      string
	Reason     string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("document %s: field %q %s", e.DocumentID, e.Field, e.Reason)
}
