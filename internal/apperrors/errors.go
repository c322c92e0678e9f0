package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"ptime/internal/models"
)

var (
	// ErrUnauthenticated is returned when no valid credential maps to a profile.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned on a role or ownership mismatch.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when an entity is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyRegistered is returned when signup finds an existing profile for the email.
	ErrAlreadyRegistered = errors.New("account already registered")
	// ErrNoAccount is returned when signin finds no profile for the email.
	ErrNoAccount = errors.New("no account for this email")
	// ErrInvalidEmployer is returned when a business operation is attempted by a non-employer profile.
	ErrInvalidEmployer = errors.New("profile is not an employer")
	// ErrInvalidStatusTransition is returned when a job status change is not allowed.
	ErrInvalidStatusTransition = errors.New("invalid job status transition")
	// ErrStateReplayed is returned when an OAuth state token is consumed twice.
	ErrStateReplayed = errors.New("oauth state already consumed")
	// ErrUpstream wraps failures of the external database or identity provider.
	ErrUpstream = errors.New("upstream failure")
)

// ValidationError is returned when input fails a domain constraint on a
// specific field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a ValidationError for field.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// RoleMismatchError is returned when signin declares a role other than
// the one the profile was registered with.
type RoleMismatchError struct {
	Declared models.Role
	Actual   models.Role
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("role mismatch: signed in as %s but account is registered as %s", e.Declared, e.Actual)
}

// Upstream wraps err as an upstream failure, keeping the cause in the chain.
func Upstream(err error) error {
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

// HTTPError carries the status code and stable error token for a rejection.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// MapErrorToHTTP maps domain errors to HTTP errors with the error tokens
// the frontend translates into role-aware guidance.
func MapErrorToHTTP(err error) *HTTPError {
	var mismatch *RoleMismatchError
	var invalid *ValidationError
	switch {
	case errors.As(err, &invalid):
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Code:       "validation_error",
			Message:    "Validation failed",
			Details:    map[string]string{invalid.Field: invalid.Message},
		}
	case errors.As(err, &mismatch):
		return &HTTPError{
			StatusCode: http.StatusForbidden,
			Code:       "role_mismatch",
			Message:    mismatch.Error(),
			Details: map[string]string{
				"declared_role": string(mismatch.Declared),
				"actual_role":   string(mismatch.Actual),
			},
		}
	case errors.Is(err, ErrUnauthenticated):
		return &HTTPError{StatusCode: http.StatusUnauthorized, Code: "unauthenticated", Message: "authentication required"}
	case errors.Is(err, ErrForbidden):
		return &HTTPError{StatusCode: http.StatusForbidden, Code: "forbidden", Message: err.Error()}
	case errors.Is(err, ErrNotFound):
		return &HTTPError{StatusCode: http.StatusNotFound, Code: "not_found", Message: err.Error()}
	case errors.Is(err, ErrAlreadyRegistered):
		return &HTTPError{StatusCode: http.StatusConflict, Code: "already_registered", Message: err.Error()}
	case errors.Is(err, ErrNoAccount):
		return &HTTPError{StatusCode: http.StatusNotFound, Code: "no_account", Message: err.Error()}
	case errors.Is(err, ErrInvalidEmployer):
		return &HTTPError{StatusCode: http.StatusForbidden, Code: "invalid_employer", Message: err.Error()}
	case errors.Is(err, ErrInvalidStatusTransition):
		return &HTTPError{StatusCode: http.StatusBadRequest, Code: "invalid_status_transition", Message: err.Error()}
	case errors.Is(err, ErrStateReplayed):
		return &HTTPError{StatusCode: http.StatusConflict, Code: "state_replayed", Message: err.Error()}
	case errors.Is(err, ErrUpstream):
		return &HTTPError{StatusCode: http.StatusBadGateway, Code: "upstream_failure", Message: "upstream service error"}
	default:
		return &HTTPError{StatusCode: http.StatusInternalServerError, Code: "internal_error", Message: "internal server error"}
	}
}
