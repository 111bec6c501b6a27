package apperror

import "net/http"

type AppError struct {
	Code       int      `json:"code"`
	Message    string   `json:"message"`
	Violations []string `json:"violations,omitempty"`
	Retryable  bool     `json:"retryable,omitempty"`
	Err        error    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

// Validation carries the complete list of violated constraints so a client
// can fix everything in one round trip.
func Validation(violations []string) *AppError {
	e := New(http.StatusBadRequest, "Validation failed", nil)
	e.Violations = violations
	return e
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

// Unavailable marks an exhausted dependency (storage timeout, unreachable
// store) as retryable. Never used for genuine zero-result queries.
func Unavailable(message string, err error) *AppError {
	e := New(http.StatusServiceUnavailable, message, err)
	e.Retryable = true
	return e
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}
