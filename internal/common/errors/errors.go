// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Error codes surfaced by the campus assistant workers. Every failure path
// maps to one of these; none of them is fatal to the process.
const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_ERROR"
	ErrCodeConfigurationGap ErrorCode = "CONFIGURATION_GAP"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"

	ErrCodeMissingSelection ErrorCode = "MISSING_SELECTION"
	ErrCodePricingNotFound  ErrorCode = "PRICING_NOT_FOUND"

	ErrCodePersistenceFailure ErrorCode = "PERSISTENCE_FAILURE"

	ErrCodeTrackerReadFailed  ErrorCode = "TRACKER_READ_FAILED"
	ErrCodeTrackerWriteFailed ErrorCode = "TRACKER_WRITE_FAILED"

	ErrCodeCatalogLoadFailed ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodePricingLoadFailed ErrorCode = "PRICING_LOAD_FAILED"

	ErrCodeTemplateValidationFailed ErrorCode = "TEMPLATE_VALIDATION_FAILED"

	ErrCodeUnknownMenuAction ErrorCode = "UNKNOWN_MENU_ACTION"
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
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationError creates a non-retryable user-input validation error.
// The slot is cleared by the caller and a corrective prompt is shown; the
// turn ends without state corruption.
func NewValidationError(slot, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   fmt.Sprintf("Invalid value for slot '%s'", slot),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigurationGapError creates a non-retryable configuration gap error.
// Surfaced to the user as an apologetic message, never a crash.
func NewConfigurationGapError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationGap,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable lookup miss.
func NewNotFoundError(what, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", what),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingSelectionError creates a non-retryable error for an incomplete
// tuition selection (admission group or faculty absent).
func NewMissingSelectionError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingSelection,
		Message:   "Admission group or faculty not selected",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPricingNotFoundError creates a non-retryable error for a pricing table
// row without usable rates.
func NewPricingNotFoundError(group, faculty string) *StandardError {
	return &StandardError{
		Code:      ErrCodePricingNotFound,
		Message:   "No usable rates in pricing table",
		Details:   fmt.Sprintf("group: %s, faculty: %s", group, faculty),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceFailureError creates a persistence error. It is caught at
// the calculator boundary and reported inline; the computed result is kept.
func NewPersistenceFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailure,
		Message:   "Tuition run could not be persisted",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTrackerReadFailedError creates a retryable tracker store read error.
func NewTrackerReadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTrackerReadFailed,
		Message:   "Conversation state could not be read",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTrackerWriteFailedError creates a retryable tracker store write error.
func NewTrackerWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTrackerWriteFailed,
		Message:   "Conversation state could not be written",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogLoadFailedError creates a non-retryable locations catalog error.
func NewCatalogLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogLoadFailed,
		Message:   "Locations catalog could not be loaded",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPricingLoadFailedError creates a non-retryable pricing table error.
func NewPricingLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePricingLoadFailed,
		Message:   "Pricing table could not be loaded",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateValidationFailedError creates a non-retryable template validation error.
func NewTemplateValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateValidationFailed,
		Message:   "Data validation failed for reply template",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownMenuActionError creates a non-retryable error for an
// unrecognized button action name.
func NewUnknownMenuActionError(action string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownMenuAction,
		Message:   "Unknown menu action",
		Details:   fmt.Sprintf("action: %s", action),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (same as internal).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:         "VALIDATION_ERROR",
	ErrCodeConfigurationGap:         "CONFIGURATION_GAP",
	ErrCodeNotFound:                 "NOT_FOUND",
	ErrCodeMissingSelection:         "MISSING_SELECTION",
	ErrCodePricingNotFound:          "PRICING_NOT_FOUND",
	ErrCodePersistenceFailure:       "PERSISTENCE_FAILURE",
	ErrCodeTrackerReadFailed:        "TRACKER_READ_FAILED",
	ErrCodeTrackerWriteFailed:       "TRACKER_WRITE_FAILED",
	ErrCodeCatalogLoadFailed:        "CATALOG_LOAD_FAILED",
	ErrCodePricingLoadFailed:        "PRICING_LOAD_FAILED",
	ErrCodeTemplateValidationFailed: "TEMPLATE_VALIDATION_FAILED",
	ErrCodeUnknownMenuAction:        "UNKNOWN_MENU_ACTION",
}

// GetRetryCount returns the recommended retry count per error code.
// Conversational failures are terminal for the turn and never retried;
// only infrastructure errors below the conversation contract retry.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeTrackerReadFailed,
		ErrCodeTrackerWriteFailed:
		return 3 // Retryable technical errors

	default:
		return 0 // Domain errors: reported once, no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "SELECTION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CONFIGURATION") || strings.Contains(codeStr, "PRICING") || strings.Contains(codeStr, "CATALOG") || strings.Contains(codeStr, "TEMPLATE"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "PERSISTENCE"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "TRACKER"):
		return "TRACKER"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "LOOKUP"
	default:
		return "OTHER"
	}
}
