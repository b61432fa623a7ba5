package domain

import (
	"errors"
	"fmt"
)

// ValidationError marks malformed or out-of-range input. Handlers map
// it to a 400 with the message as-is.
type ValidationError struct {
	msg string
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.msg
}

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicatePhone     = errors.New("phone number already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrNotFound           = errors.New("record not found")

	// Token errors. ErrInvalidToken is the catch-all the auth flows
	// answer with; the token service itself reports the finer-grained
	// expired/malformed/invalid triple.
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenInvalid   = errors.New("token missing required claims")

	ErrInvalidRole      = errors.New("invalid role")
	ErrLoanExists       = errors.New("loan application already exists")
	ErrDuplicateReceipt = errors.New("receipt already exists")
	ErrSharesExist      = errors.New("shares record already exists")
)
