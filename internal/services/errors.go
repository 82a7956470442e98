package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrForbidden          = errors.New("this action is unauthorized")
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
)

// ValidationError rejects malformed input with per-field detail. It is
// surfaced before any state change.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

func validationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
