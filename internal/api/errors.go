package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/signup/internal/domain"
	"github.com/phrazzld/signup/internal/service"
	"github.com/phrazzld/signup/internal/service/auth"
)

// MapErrorToStatusCode maps service and domain errors to HTTP status codes.
// Unknown errors map to 500 so internal failures never look like client errors.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrEmailExists):
		return http.StatusConflict

	case errors.Is(err, service.ErrTermsNotAccepted):
		return http.StatusForbidden

	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Validation
// reasons are passed through because they only describe the caller's input.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}

	switch {
	case errors.Is(err, service.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, service.ErrTermsNotAccepted):
		return "Terms of service must be accepted"
	case errors.Is(err, service.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"
	case errors.Is(err, auth.ErrExpiredRefreshToken):
		return "Refresh token expired"
	case errors.Is(err, auth.ErrInvalidRefreshToken):
		return "Invalid refresh token"
	default:
		return "An unexpected error occurred"
	}
}

// errorField returns the offending input field for validation errors.
func errorField(err error) string {
	var verr domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Field
	}
	return ""
}
