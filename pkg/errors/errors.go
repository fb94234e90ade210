// Package errors provides custom error types for the tdiff system.
// These errors enable programmatic error checking and carry enough
// context (row index, column, group identity) to locate the offending
// source data.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the tdiff system
var (
	// ErrNoData indicates that the record source returned zero rows.
	// An empty input table is a valid terminal outcome for the engine
	// itself; sources and commands use this sentinel to report it.
	ErrNoData = errors.New("no data")

	// ErrMalformedRow indicates a row missing a required identity,
	// merge-key, or version value
	ErrMalformedRow = errors.New("malformed row")

	// ErrInvalidSchema indicates a schema definition that cannot be
	// applied to the input table
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")
)

// MalformedRowError reports a row that violates the well-formedness
// invariant the engine assumes. Reconciliation aborts on the first one;
// silently guessing would corrupt grouping.
type MalformedRowError struct {
	Row     int    // zero-based index into the input table
	Column  string // offending column
	Message string
}

// Error implements the error interface
func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row %d: column %s: %s", e.Row, e.Column, e.Message)
}

// Is implements errors.Is support
func (e *MalformedRowError) Is(target error) bool {
	return target == ErrMalformedRow
}

// NewMalformedRowError creates a new MalformedRowError
func NewMalformedRowError(row int, column, message string) *MalformedRowError {
	return &MalformedRowError{Row: row, Column: column, Message: message}
}

// SchemaError represents a schema definition or schema/table mismatch
type SchemaError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema error for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("schema error: %s", e.Message)
}

// Is implements errors.Is support
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError
func NewSchemaError(field, message string) *SchemaError {
	return &SchemaError{Field: field, Message: message}
}

// SourceError represents a failure while acquiring the input table
type SourceError struct {
	Operation string // "connect", "prepare", "query"
	Detail    string
	Err       error
}

// Error implements the error interface
func (e *SourceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("source error during %s (%s): %v", e.Operation, e.Detail, e.Err)
	}
	return fmt.Sprintf("source error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new SourceError
func NewSourceError(operation, detail string, err error) *SourceError {
	return &SourceError{Operation: operation, Detail: detail, Err: err}
}

// SinkError represents a failure while persisting a report or snapshot
type SinkError struct {
	Format string // "csv", "html", "parquet"
	Path   string
	Err    error
}

// Error implements the error interface
func (e *SinkError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("sink error writing %s to %s: %v", e.Format, e.Path, e.Err)
	}
	return fmt.Sprintf("sink error writing %s: %v", e.Format, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SinkError) Unwrap() error {
	return e.Err
}

// NewSinkError creates a new SinkError
func NewSinkError(format, path string, err error) *SinkError {
	return &SinkError{Format: format, Path: path, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// Helper functions for error checking

// IsNoData checks if an error reports an empty source result
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}

// IsMalformedRow checks if an error is a row well-formedness violation
func IsMalformedRow(err error) bool {
	return errors.Is(err, ErrMalformedRow)
}

// IsInvalidSchema checks if an error is a schema error
func IsInvalidSchema(err error) bool {
	return errors.Is(err, ErrInvalidSchema)
}

// Helper wrapping functions for common patterns

// WrapSource wraps an error as a SourceError
func WrapSource(operation, detail string, err error) error {
	if err == nil {
		return nil
	}
	return NewSourceError(operation, detail, err)
}

// WrapSink wraps an error as a SinkError
func WrapSink(format, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewSinkError(format, path, err)
}
