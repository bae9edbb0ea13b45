package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Auth-flow errors. Each wraps one of the sentinels above, so errors.Is
// matches both the specific error and its HTTP class.
var (
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	ErrInvalidOTP         = fmt.Errorf("invalid OTP: %w", ErrBadRequest)
	ErrOTPExpired         = fmt.Errorf("OTP expired: %w", ErrBadRequest)
	ErrPasswordMismatch   = fmt.Errorf("passwords do not match: %w", ErrBadRequest)
)
