package utils

import (
	"errors"
	"strings"
)

// Error taxonomy shared by the service packages. Handlers map these onto
// HTTP status codes: ValidationError -> 400, ErrUnauthorized -> 401,
// ErrNotFound -> 404.
var (
    ErrNotFound     = errors.New("not found")
    ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError marks user-correctable input problems (duplicate
// registration, self-follow, empty comment content).
type ValidationError struct {
    Message string
}

func (e *ValidationError) Error() string {
    return e.Message
}

func NewValidationError(message string) error {
    return &ValidationError{Message: message}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
    var ve *ValidationError
    return errors.As(err, &ve)
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
// Postgres reports "duplicate key value violates unique constraint",
// SQLite reports "UNIQUE constraint failed".
func IsDuplicateKey(err error) bool {
    if err == nil {
        return false
    }
    return strings.Contains(err.Error(), "duplicate key") ||
        strings.Contains(err.Error(), "UNIQUE constraint")
}
