package xerrors

import (
	"errors"
)

// Common reusable application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// Account errors. Each maps to exactly one response code.
var (
	ErrDuplicateID       = errors.New("duplicate id")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrDuplicateNickname = errors.New("duplicate nickname")
	ErrDuplicatePhone    = errors.New("duplicate phone")
	ErrInvalidPassword   = errors.New("password does not satisfy policy")
	ErrSignInFailed      = errors.New("sign in failed")
	ErrWrongPassword     = errors.New("wrong password")
)

// IsDuplicate reports whether err is one of the uniqueness conflicts.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateID) ||
		errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrDuplicateNickname) ||
		errors.Is(err, ErrDuplicatePhone)
}
