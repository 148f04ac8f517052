/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned when attempting to create a record that already exists
	ErrAlreadyExists = errors.New("record already exists")

	// ErrInvalidInput is returned when input or configuration validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a conditional write fails
	ErrConditionFailed = errors.New("condition check failed")

	// ErrMissingID is returned when a record carries no usable id
	ErrMissingID = errors.New("missing \"id\" field in record")

	// ErrMissingRequiredField is returned when a required attribute has no value
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrStream is returned when a scan terminates with an error event
	ErrStream = errors.New("stream failed")

	// ErrNotImplemented is returned when a repository has no way to build entities
	ErrNotImplemented = errors.New("method not implemented")
)

// NotFoundError represents an error when a record is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when a record already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConditionFailedError represents a failed conditional operation
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// MissingIDError is raised when a record cannot be turned into an entity
// because its id bin is absent, empty or zero.
type MissingIDError struct {
	Value any
}

func (e *MissingIDError) Error() string {
	if e.Value == nil {
		return ErrMissingID.Error()
	}
	return fmt.Sprintf("%s: got %#v", ErrMissingID.Error(), e.Value)
}

func (e *MissingIDError) Is(target error) bool {
	return target == ErrMissingID
}

// MissingRequiredFieldError names the in-memory attribute that was unset.
type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

func (e *MissingRequiredFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField
}

// StreamError wraps the error event that terminated a scan.
type StreamError struct {
	Namespace string
	Set       string
	Err       error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("scan of %s.%s failed: %v", e.Namespace, e.Set, e.Err)
}

func (e *StreamError) Is(target error) bool {
	return target == ErrStream
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(recordType, key string) error {
	return &NotFoundError{Type: recordType, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(recordType, key string) error {
	return &AlreadyExistsError{Type: recordType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// NewMissingIDError creates a new MissingIDError
func NewMissingIDError(value any) error {
	return &MissingIDError{Value: value}
}

// NewMissingRequiredFieldError creates a new MissingRequiredFieldError
func NewMissingRequiredFieldError(field string) error {
	return &MissingRequiredFieldError{Field: field}
}

// NewStreamError creates a new StreamError
func NewStreamError(namespace, set string, err error) error {
	return &StreamError{Namespace: namespace, Set: set, Err: err}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// IsMissingID checks if an error is a missing id error
func IsMissingID(err error) bool {
	return errors.Is(err, ErrMissingID)
}

// IsMissingRequiredField checks if an error is a missing required field error
func IsMissingRequiredField(err error) bool {
	return errors.Is(err, ErrMissingRequiredField)
}

// IsStreamError checks if an error terminated a scan
func IsStreamError(err error) bool {
	return errors.Is(err, ErrStream)
}
