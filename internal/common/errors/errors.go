// Package errors provides standardized error handling for the notification pipeline.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfigLookupFailed ErrorCode = "CONFIG_LOOKUP_FAILED"

	ErrCodeEventDataBuildFailed ErrorCode = "EVENT_DATA_BUILD_FAILED"

	ErrCodeRuleResolutionFailed ErrorCode = "RULE_RESOLUTION_FAILED"
	ErrCodeInvalidRuleKind      ErrorCode = "INVALID_RULE_KIND"
	ErrCodeInvalidRuleBucket    ErrorCode = "INVALID_RULE_BUCKET"
	ErrCodeRecipientsEmpty      ErrorCode = "RECIPIENTS_EMPTY"

	ErrCodeEnqueueFailed  ErrorCode = "ENQUEUE_FAILED"
	ErrCodeDeliveryFailed ErrorCode = "DELIVERY_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigLookupFailedError creates a retryable configuration store error.
func NewConfigLookupFailedError(eventName string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigLookupFailed,
		Message:   "Configuration store lookup failed",
		Details:   fmt.Sprintf("eventName: %s, error: %s", eventName, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEventDataBuildFailedError creates a non-retryable builder error. The handler
// logs it and skips the event; retry belongs to the delivery queue, not here.
func NewEventDataBuildFailedError(eventName string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventDataBuildFailed,
		Message:   "Event data build failed",
		Details:   fmt.Sprintf("eventName: %s, error: %s", eventName, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRuleResolutionFailedError creates a non-retryable per-rule error. The rule
// contributes zero addresses; sibling rules still resolve.
func NewRuleResolutionFailedError(ruleID int64, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRuleResolutionFailed,
		Message:   "Recipient rule resolution failed",
		Details:   fmt.Sprintf("ruleId: %d, error: %s", ruleID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRuleKindError creates a non-retryable validation error.
func NewInvalidRuleKindError(kind string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRuleKind,
		Message:   "Unknown recipient rule kind",
		Details:   fmt.Sprintf("kind: %s", kind),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRuleBucketError creates a non-retryable validation error.
func NewInvalidRuleBucketError(bucket string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRuleBucket,
		Message:   "Unknown recipient bucket",
		Details:   fmt.Sprintf("bucket: %s", bucket),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecipientsEmptyError marks a message that reached the transport with no
// addresses. Retrying cannot grow the recipient list, so it never retries.
func NewRecipientsEmptyError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecipientsEmpty,
		Message:   "Message has no recipients",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnqueueFailedError creates a retryable queue error.
func NewEnqueueFailedError(eventName string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnqueueFailed,
		Message:   "Delivery queue enqueue failed",
		Details:   fmt.Sprintf("eventName: %s, error: %s", eventName, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeliveryFailedError creates a retryable transport error; the broker's
// redelivery policy owns the retry schedule.
func NewDeliveryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDeliveryFailed,
		Message:   "Email delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryName string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("query: %s, error: %s", queryName, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether err is a StandardError marked retryable.
func IsRetryable(err error) bool {
	if se, ok := err.(*StandardError); ok {
		return se.Retryable
	}
	return false
}
