package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Standard error types
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict")
	ErrInternal           = errors.New("internal server error")
	ErrValidation         = errors.New("validation error")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
)

// AppError represents an application error with context
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code string, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, code string, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// Common error constructors

func NotFound(resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:        ErrUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Err:        ErrForbidden,
		Code:       "FORBIDDEN",
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:        ErrConflict,
		Code:       "CONFLICT",
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func Internal(message string) *AppError {
	return &AppError{
		Err:        ErrInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func Validation(details map[string]string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Code:       "VALIDATION_ERROR",
		Message:    "validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

func TokenExpired() *AppError {
	return &AppError{
		Err:        ErrTokenExpired,
		Code:       "TOKEN_EXPIRED",
		Message:    "token has expired",
		StatusCode: http.StatusUnauthorized,
	}
}

func TokenInvalid() *AppError {
	return &AppError{
		Err:        ErrTokenInvalid,
		Code:       "TOKEN_INVALID",
		Message:    "invalid token",
		StatusCode: http.StatusUnauthorized,
	}
}

// Letter generation error taxonomy

func TemplateNotFound(id string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "TEMPLATE_NOT_FOUND",
		Message:    fmt.Sprintf("template %s not found", id),
		StatusCode: http.StatusNotFound,
	}
}

func TemplateFileNotFound(path string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "TEMPLATE_FILE_NOT_FOUND",
		Message:    fmt.Sprintf("template file not found: %s", path),
		StatusCode: http.StatusNotFound,
	}
}

func TemplateInactive(id string) *AppError {
	return &AppError{
		Err:        ErrConflict,
		Code:       "TEMPLATE_INACTIVE",
		Message:    fmt.Sprintf("template %s is inactive", id),
		StatusCode: http.StatusConflict,
	}
}

func TemplateParsingFailed(path string, err error) *AppError {
	return &AppError{
		Err:        err,
		Code:       "TEMPLATE_PARSING_FAILED",
		Message:    fmt.Sprintf("failed to parse template file: %s", path),
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func UnsupportedFileFormat(ext string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Code:       "UNSUPPORTED_FILE_FORMAT",
		Message:    fmt.Sprintf("unsupported template file format: %s", ext),
		StatusCode: http.StatusBadRequest,
	}
}

func ClientNotFound(id string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "CLIENT_NOT_FOUND",
		Message:    fmt.Sprintf("client %s not found", id),
		StatusCode: http.StatusNotFound,
	}
}

func ServiceNotFound(id string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "SERVICE_NOT_FOUND",
		Message:    fmt.Sprintf("service %s not found", id),
		StatusCode: http.StatusNotFound,
	}
}

func LetterNotFound(id string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "LETTER_NOT_FOUND",
		Message:    fmt.Sprintf("letter %s not found", id),
		StatusCode: http.StatusNotFound,
	}
}

// MissingRequiredFields carries the list of unresolved required placeholder keys.
func MissingRequiredFields(keys []string) *AppError {
	details := make(map[string]string, len(keys))
	for _, k := range keys {
		details[k] = "required placeholder has no value"
	}
	return &AppError{
		Err:        ErrValidation,
		Code:       "MISSING_REQUIRED_FIELDS",
		Message:    "missing required fields: " + strings.Join(keys, ", "),
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// ValidationFailed carries field-level validation messages keyed by placeholder.
func ValidationFailed(details map[string]string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Code:       "VALIDATION_FAILED",
		Message:    "placeholder validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

func DocumentGenerationFailed(err error) *AppError {
	return &AppError{
		Err:        err,
		Code:       "DOCUMENT_GENERATION_FAILED",
		Message:    "failed to generate document",
		StatusCode: http.StatusInternalServerError,
	}
}

// BulkGenerationFailed marks a bulk run whose batch-level work failed.
// Per-item failures are reported inside the result, not through this error.
func BulkGenerationFailed(err error) *AppError {
	return &AppError{
		Err:        err,
		Code:       "BULK_GENERATION_FAILED",
		Message:    "bulk letter generation failed",
		StatusCode: http.StatusInternalServerError,
	}
}

func ZipFileNotFound(id string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "ZIP_FILE_NOT_FOUND",
		Message:    fmt.Sprintf("bulk archive %s not found", id),
		StatusCode: http.StatusNotFound,
	}
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}
