package errors

import (
	"errors"
	"fmt"
)

// Aliases for the standard library helpers so callers need one import.
var (
	New = errors.New
	Is  = errors.Is
	As  = errors.As
)

// Sentinel errors shared by the engine, the sources and the HTTP layer.
var (
	// ErrInvalidArgument indicates a bad configuration value passed to a call
	// (unknown sort or presence direction, report width below minimum).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidInput indicates input data with the wrong shape or type
	// (duplicate keys or column labels, non-numeric values in a tolerance check).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates that a column, dimension or job was not found.
	ErrNotFound = errors.New("not found")

	// ErrReconciliationFailed indicates that at least one check failed and the
	// caller asked for failures to be returned as an error.
	ErrReconciliationFailed = errors.New("reconciliation failed")
)

// ArgumentError reports a rejected configuration value.
type ArgumentError struct {
	Param   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Param, e.Value, e.Message)
}

// Is implements errors.Is support
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NewArgumentError creates a new ArgumentError
func NewArgumentError(param string, value any, message string) *ArgumentError {
	return &ArgumentError{Param: param, Value: value, Message: message}
}

// ShapeError reports data that does not have the shape an operation needs.
type ShapeError struct {
	Subject string
	Message string
}

// Error implements the error interface
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Subject, e.Message)
}

// Is implements errors.Is support
func (e *ShapeError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewShapeError creates a new ShapeError
func NewShapeError(subject, message string) *ShapeError {
	return &ShapeError{Subject: subject, Message: message}
}

// NotFoundError represents an error when a named resource is not found
type NotFoundError struct {
	Resource string
	Name     string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Name)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, name string) *NotFoundError {
	return &NotFoundError{Resource: resource, Name: name}
}

// FailedError is returned by a run that was asked to raise on failure.
type FailedError struct {
	Failures int
	Checks   []string
}

// Error implements the error interface
func (e *FailedError) Error() string {
	return fmt.Sprintf("reconciliation failed with %d failing check(s)", e.Failures)
}

// Is implements errors.Is support
func (e *FailedError) Is(target error) bool {
	return target == ErrReconciliationFailed
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error in %s: %s: %v", e.Component, e.Message, e.Err)
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}
