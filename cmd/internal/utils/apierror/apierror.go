package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is what services hand back to routes. It serializes to
// {"message": ..., "details": [...]} and carries its HTTP status.
type ErrorResponse interface {
	error
	Code() int
}

type apiError struct {
	Status  int      `json:"-"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *apiError) Error() string {
	return e.Message
}

func (e *apiError) Code() int {
	return e.Status
}

var (
	MalformedBodyError      = NewSimple(http.StatusBadRequest, "Malformed request body")
	NotFoundError           = NewSimple(http.StatusNotFound, "Appointment not found")
	RouteNotFoundError      = NewSimple(http.StatusNotFound, "Route not found")
	InternalServerError     = NewSimple(http.StatusInternalServerError, "Internal server error")
	MissingAuthTokenError   = NewSimple(http.StatusUnauthorized, "Authentication token required")
	InvalidAuthTokenError   = NewSimple(http.StatusForbidden, "Invalid or expired token")
	InvalidCredentialsError = NewSimple(http.StatusUnauthorized, "Invalid username or password")
	MissingCredentialsError = NewSimple(http.StatusBadRequest, "Username and password are required")
	InvalidTimestampError   = NewSimple(http.StatusBadRequest, "Timestamps must be RFC 3339")
)

func NewSimple(status int, message string) ErrorResponse {
	return &apiError{Status: status, Message: message}
}

func NewMissingParamError(param string) ErrorResponse {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("Missing required parameter '%s'", param))
}

func NewInvalidParamTypeError(param, expected string) ErrorResponse {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("Parameter '%s' must be of type %s", param, expected))
}

// FromValidationError turns validator failures into a 400 listing each
// offending field. Anything else is reported as a malformed body.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, describe(fe))
	}
	return &apiError{
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Details: details,
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "iso8601":
		return fmt.Sprintf("%s must be an RFC 3339 timestamp", fe.Field())
	case "recurrence":
		return fmt.Sprintf("%s must be one of none, daily, weekly", fe.Field())
	case "min", "max":
		return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
	}
}
