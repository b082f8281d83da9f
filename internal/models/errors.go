package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned in the API error envelope.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeValidation     = "VALIDATION_ERROR"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeAuth           = "AUTH_ERROR"
	CodeReauthRequired = "REAUTH_REQUIRED"
	CodeInternal       = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewUnauthorizedError signals the caller is authenticated but not allowed to
// perform this operation on this resource.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

// NewAuthError signals a failure to establish who the caller is.
func NewAuthError(message string) *AppError {
	return &AppError{
		Code:    CodeAuth,
		Message: message,
	}
}

// NewReauthRequiredError signals that a sensitive operation needs the current
// password even though the session token is valid.
func NewReauthRequiredError(message string) *AppError {
	return &AppError{
		Code:    CodeReauthRequired,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// StatusForError maps an application error onto an HTTP status code.
func StatusForError(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeAuth:
		return fiber.StatusUnauthorized
	case CodeUnauthorized, CodeReauthRequired:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	response := ErrorResponse{Error: err.Error()}

	var appErr *AppError
	if errors.As(err, &appErr) {
		response.Error = appErr.Message
		response.Code = appErr.Code
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	}

	return c.Status(status).JSON(response)
}
