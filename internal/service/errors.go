package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrDuplicateEmail is returned when an email address already belongs to another account.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound is returned when a record does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOrExpiredToken is returned for reset tokens that cannot be redeemed.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	// ErrUnauthenticated is returned when a session is missing or no longer valid.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError maps form fields to the problems found in them.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message against a field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// First returns the first message recorded for field, or "".
func (e *ValidationError) First(field string) string {
	if e == nil || len(e.Fields[field]) == 0 {
		return ""
	}
	return e.Fields[field][0]
}

// OrNil returns e when it holds at least one message.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
