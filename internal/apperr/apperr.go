// Package apperr defines the error taxonomy shared by every service.
// Components surface these typed failures directly to their caller; there is
// no local recovery or retry anywhere in the core.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated covers missing, malformed, signature-invalid or
	// expired credentials.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the caller is authenticated but lacks the required
	// permission or role.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means a referenced role, permission, user, course,
	// enrollment or assignment does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict covers duplicate role names and duplicate emails.
	ErrConflict = errors.New("conflict")

	// ErrValidation covers malformed input, e.g. an enrollment status
	// outside the allowed set.
	ErrValidation = errors.New("validation failed")
)

// Unauthenticatedf wraps ErrUnauthenticated with a formatted message
func Unauthenticatedf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrUnauthenticated)...)
}

// Forbiddenf wraps ErrForbidden with a formatted message
func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrForbidden)...)
}

// NotFoundf wraps ErrNotFound with a formatted message
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Conflictf wraps ErrConflict with a formatted message
func Conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

// Validationf wraps ErrValidation with a formatted message
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// StatusOf maps an error to its HTTP status code. Unrecognized errors map to
// 500.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
