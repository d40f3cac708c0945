package model

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to interactive callers
var (
	ErrCredentialsMissing = errors.New("credentials not configured")
	ErrTransport          = errors.New("transport error")
	ErrDecode             = errors.New("decode error")
	ErrPersistence        = errors.New("persistence error")
	ErrInvalidSettings    = errors.New("invalid settings")
)

// Error attaches an error kind and the failing operation to an underlying cause
type Error struct {
	Kind error
	Op   string
	Err  error
}

// NewError builds an Error of the given kind
func NewError(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Is reports a match on the kind so errors.Is(err, ErrTransport) works
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindName returns a short machine-readable name for an error's kind
func KindName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCredentialsMissing):
		return "credentials_missing"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrInvalidSettings):
		return "invalid_settings"
	default:
		return "internal"
	}
}
