package service

import "errors"

// Business failures carried on a failed result.Result. The API layer maps
// each of them to its own HTTP status.
var (
	// ErrEmailExists indicates another account already uses the email.
	// API layer should map this to HTTP 409 Conflict.
	ErrEmailExists = errors.New("a user with this email already exists")

	// ErrTermsNotAccepted indicates the terms of service were not accepted.
	// API layer should map this to HTTP 403 Forbidden.
	ErrTermsNotAccepted = errors.New("terms of service must be accepted")

	// ErrUserNotFound indicates no user exists with the requested id.
	// API layer should map this to HTTP 404 Not Found.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	// The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
