// Package errors provides standardized error handling for the PLC
// AutoConfig client.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Transport / API errors
	ErrCodeAPIUnavailable ErrorCode = "API_UNAVAILABLE"
	ErrCodeAPITimeout     ErrorCode = "API_TIMEOUT"
	ErrCodeAPIRejected    ErrorCode = "API_REQUEST_REJECTED"

	// Project lifecycle errors
	ErrCodeProjectNotFound  ErrorCode = "PROJECT_NOT_FOUND"
	ErrCodeRecoveryFailed   ErrorCode = "PROJECT_RECOVERY_FAILED"
	ErrCodeUploadRejected   ErrorCode = "UPLOAD_REJECTED"
	ErrCodeAnalysisTimeout  ErrorCode = "ANALYSIS_TIMEOUT"
	ErrCodeAnalysisFailed   ErrorCode = "ANALYSIS_FAILED"
	ErrCodeDeployFailed     ErrorCode = "DEPLOY_FAILED"
	ErrCodeArtifactFailed   ErrorCode = "ARTIFACT_GENERATION_FAILED"
	ErrCodeResearchTimeout  ErrorCode = "RESEARCH_TIMEOUT"
	ErrCodeConsultantFailed ErrorCode = "CONSULTANT_FAILED"

	// Client-side errors
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeStoreFailed      ErrorCode = "STORE_OPERATION_FAILED"
	ErrCodeNotifyFailed     ErrorCode = "NOTIFICATION_SEND_FAILED"
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

// Error constructors

// NewAPIUnavailableError creates a retryable transport error.
func NewAPIUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAPIUnavailable,
		Message:   "Backend API unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAPITimeoutError creates a retryable request timeout error.
func NewAPITimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAPITimeout,
		Message:   "Backend API request timeout",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAPIRejectedError creates a non-retryable error carrying the server
// detail message verbatim.
func NewAPIRejectedError(status int, detail string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAPIRejected,
		Message:   detail,
		Details:   fmt.Sprintf("status: %d", status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProjectNotFoundError creates a recoverable not-found error. It is
// retryable in the sense that recovery may recreate the project.
func NewProjectNotFoundError(projectID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProjectNotFound,
		Message:   "Project not found on the server",
		Details:   fmt.Sprintf("projectId: %s", projectID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecoveryFailedError creates a terminal recovery error.
func NewRecoveryFailedError(projectID string, attempts int, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecoveryFailed,
		Message:   "Project recovery failed, refresh and retry",
		Details:   fmt.Sprintf("projectId: %s, attempts: %d, error: %v", projectID, attempts, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadRejectedError creates a non-retryable upload error.
func NewUploadRejectedError(filename, detail string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadRejected,
		Message:   "File upload rejected by server",
		Details:   fmt.Sprintf("filename: %s, detail: %s", filename, detail),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalysisTimeoutError creates an analysis poll timeout error. The
// server-side job keeps running; a later status check may still succeed.
func NewAnalysisTimeoutError(projectID string, attempts int) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisTimeout,
		Message:   "Analysis did not complete within the polling window",
		Details:   fmt.Sprintf("projectId: %s, attempts: %d", projectID, attempts),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalysisFailedError creates a terminal analysis error.
func NewAnalysisFailedError(projectID, detail string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisFailed,
		Message:   "Analysis failed on the server",
		Details:   fmt.Sprintf("projectId: %s, detail: %s", projectID, detail),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable client-side
// validation error raised before any network call.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error. Cache
// failures never fail the calling operation; they only lose fallback.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Report cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreFailedError creates a retryable local store error.
func NewStoreFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreFailed,
		Message:   "Local descriptor store operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %v", operation, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotifyFailedError creates a retryable notification error.
func NewNotifyFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotifyFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %v", channel, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeAPIUnavailable,
		ErrCodeStoreFailed,
		ErrCodeNotifyFailed:
		return 3

	case ErrCodeAPITimeout,
		ErrCodeCacheUnavailable:
		return 2

	case ErrCodeProjectNotFound:
		return 1 // one recovery pass, then the original call is retried once

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "API"):
		return "TRANSPORT"
	case strings.Contains(codeStr, "PROJECT") || strings.Contains(codeStr, "UPLOAD"):
		return "PROJECT"
	case strings.Contains(codeStr, "ANALYSIS") || strings.Contains(codeStr, "RESEARCH") || strings.Contains(codeStr, "CONSULTANT") || strings.Contains(codeStr, "ARTIFACT"):
		return "AI"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CACHE") || strings.Contains(codeStr, "STORE"):
		return "LOCAL_STATE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
