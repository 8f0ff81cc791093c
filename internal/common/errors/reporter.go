// internal/common/errors/reporter.go
package errors

import (
	"errors"
	"time"
)

// Reporter normalizes and logs operation errors in one place so every
// command surfaces failures the same way.
type Reporter struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewReporter(logger Logger) *Reporter {
	return &Reporter{logger: logger}
}

// Report normalizes err to a StandardError, logs it with its category
// and retry guidance, and returns the normalized error for the caller
// to surface to the user.
func (r *Reporter) Report(operation string, err error) *StandardError {
	stdErr := Normalize(err)

	fields := map[string]interface{}{
		"operation": operation,
		"errorCode": string(stdErr.Code),
		"category":  GetErrorCategory(stdErr.Code),
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
		"retries":   GetRetryCount(stdErr.Code),
	}

	if stdErr.Retryable {
		r.logger.Warn(stdErr.Message, fields)
	} else {
		r.logger.Error(stdErr.Message, fields)
	}

	return stdErr
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
