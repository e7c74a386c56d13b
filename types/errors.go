/*
Copyright © 2025 TaskScout Authors
*/
package types

import (
	"errors"
	"fmt"
)

// ErrorCode classifies boundary and engine failures.
type ErrorCode string

const (
	// ErrCodeInvalidArgument marks malformed or missing caller input,
	// rejected before the engines run. No partial result is produced.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeNotFound marks a caller-identified item absent from the
	// supplied snapshot. Distinct from an empty result.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeStructural marks a consistency failure such as a dependency
	// cycle or a dangling subtask reference in a breakdown.
	ErrCodeStructural ErrorCode = "STRUCTURAL"
	// ErrCodeStore marks snapshot store failures.
	ErrCodeStore ErrorCode = "STORE"
	// ErrCodePolicy marks a policy denial.
	ErrCodePolicy ErrorCode = "POLICY_DENIED"
)

// CodedError provides structured error information for CLI and MCP responses.
type CodedError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *CodedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Err
}

// NewCodedError creates a new structured error.
func NewCodedError(code ErrorCode, message string, details map[string]interface{}) *CodedError {
	return &CodedError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewInvalidArgument creates an INVALID_ARGUMENT error.
func NewInvalidArgument(message string) *CodedError {
	return NewCodedError(ErrCodeInvalidArgument, message, nil)
}

// NewNotFound creates a NOT_FOUND error for the given item identifier.
func NewNotFound(itemID int) *CodedError {
	return NewCodedError(ErrCodeNotFound, fmt.Sprintf("item %d not found in snapshot", itemID), map[string]interface{}{
		"item_id": itemID,
	})
}

// NewStructural creates a STRUCTURAL error.
func NewStructural(message string) *CodedError {
	return NewCodedError(ErrCodeStructural, message, nil)
}

// NewPolicyDenied creates a POLICY_DENIED error carrying the violations.
func NewPolicyDenied(violations []string) *CodedError {
	return NewCodedError(ErrCodePolicy, "denied by policy", map[string]interface{}{
		"violations": violations,
	})
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
