package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

var statusByCode = map[string]int{
	CodeValidation:         fiber.StatusBadRequest,
	CodeUnauthorized:       fiber.StatusUnauthorized,
	CodeTokenExpired:       fiber.StatusUnauthorized,
	CodeNotFound:           fiber.StatusNotFound,
	CodeConflict:           fiber.StatusConflict,
	CodeServiceUnavailable: fiber.StatusServiceUnavailable,
	CodeInternal:           fiber.StatusInternalServerError,
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// AppError is a failure with a client-facing message. Err holds the internal
// cause and is never serialized.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Err: cause}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return newAppError(CodeNotFound, fmt.Sprintf("%s with ID %v not found", resource, id), nil)
}

func NewValidationError(message string) *AppError {
	return newAppError(CodeValidation, message, nil)
}

func NewUnauthorizedError(message string) *AppError {
	return newAppError(CodeUnauthorized, message, nil)
}

func NewTokenExpiredError() *AppError {
	return newAppError(CodeTokenExpired, "Token expired", nil)
}

func NewConflictError(message string) *AppError {
	return newAppError(CodeConflict, message, nil)
}

// NewUnavailableError wraps a timeout or lost connection to the store.
func NewUnavailableError(err error) *AppError {
	return newAppError(CodeServiceUnavailable, "Service temporarily unavailable", err)
}

func NewInternalError(err error) *AppError {
	return newAppError(CodeInternal, "Internal server error", err)
}

// IsCode reports whether err is an *AppError carrying code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// HTTPStatus maps err to the status it is served with. A *fiber.Error keeps
// its own code; anything unrecognized is a 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if status, ok := statusByCode[appErr.Code]; ok {
			return status
		}
		return fiber.StatusInternalServerError
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// RespondWithError writes err with the given status. The cause of an AppError
// and the text of any unclassified 5xx stay server-side.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return c.Status(status).JSON(ErrorResponse{Error: appErr.Message, Code: appErr.Code})
	case status >= fiber.StatusInternalServerError:
		return c.Status(status).JSON(ErrorResponse{Error: "Internal server error", Code: CodeInternal})
	default:
		return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
	}
}
