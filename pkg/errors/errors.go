// Package errors defines the error vocabulary of the placemap
// pipeline: sentinels for programmatic checks, typed errors that carry
// the context a failure happened in, and wrap helpers for the common
// failure paths (I/O, parsing, store operations).
package errors

import (
	"errors"
	"fmt"
)

// New is the standard library errors.New, re-exported so callers need
// only one errors import.
var New = errors.New

// Sentinels matched with errors.Is.
var (
	// ErrNotFound marks a lookup for a resource that does not exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists marks an attempt to create a resource twice
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput marks input that failed validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyGroup marks an empty candidate group reaching the merge
	// pipeline, which is a programming error in the caller
	ErrEmptyGroup = errors.New("empty candidate group")

	// ErrStoreClosed marks an operation on a closed store
	ErrStoreClosed = errors.New("store closed")

	// ErrCanceled marks an operation abandoned before it finished
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError reports which resource a failed lookup was for.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError builds a NotFoundError for the given resource.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports a value that failed validation and why.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// MalformedObservationError reports an observation missing a mandatory
// scalar. Such observations are excluded from grouping rather than
// failing the run.
type MalformedObservationError struct {
	ObservationID string
	Connector     string
	Reason        string
}

// NewMalformedObservationError builds a MalformedObservationError.
func NewMalformedObservationError(observationID, connector, reason string) *MalformedObservationError {
	return &MalformedObservationError{
		ObservationID: observationID,
		Connector:     connector,
		Reason:        reason,
	}
}

func (e *MalformedObservationError) Error() string {
	if e.Connector != "" {
		return fmt.Sprintf("malformed observation %s from %s: %s", e.ObservationID, e.Connector, e.Reason)
	}
	return fmt.Sprintf("malformed observation %s: %s", e.ObservationID, e.Reason)
}

// Is matches ErrInvalidInput.
func (e *MalformedObservationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ParseError reports a document that could not be decoded.
type ParseError struct {
	Format  string // yaml, json, env
	File    string
	Message string
	Err     error
}

// NewParseError builds a ParseError.
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError reports a failed filesystem or connection operation.
type IOError struct {
	Operation string // read, write, create, delete, open, close
	Path      string
	Message   string
	Err       error
}

// NewIOError builds an IOError around err.
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   messageOf(err),
		Err:       err,
	}
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ResourceError reports a failed operation on a named resource, such
// as an entity upsert or a store open.
type ResourceError struct {
	Operation string // create, update, upsert, get, list
	Resource  string // entity, trust table, store
	ID        string
	Message   string
	Err       error
}

// NewResourceError builds a ResourceError around err.
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   messageOf(err),
		Err:       err,
	}
}

func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// messageOf keeps constructors nil-safe.
func messageOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Predicates for the checks callers actually make.

// IsNotFound reports whether err is a missing-resource error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err is a duplicate-resource error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError reports whether err is a validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsEmptyGroup reports whether err is the empty-group violation.
func IsEmptyGroup(err error) bool {
	return errors.Is(err, ErrEmptyGroup)
}

// IsMalformedObservation reports whether err marks an observation
// excluded from grouping.
func IsMalformedObservation(err error) bool {
	var malformed *MalformedObservationError
	return errors.As(err, &malformed)
}

// IsParseError reports whether err came from decoding a document.
func IsParseError(err error) bool {
	var parse *ParseError
	return errors.As(err, &parse)
}

// Wrap helpers for the common failure paths. All pass nil through so
// call sites can wrap unconditionally.

// WrapValidation wraps err as a ValidationError on field.
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps err as an IOError.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps err as a ResourceError.
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps err as a ParseError.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
