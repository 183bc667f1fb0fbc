package service

import (
	"errors"
	"strings"

	"github.com/mindmap-server/internal/auth"
	"github.com/mindmap-server/internal/validation"
)

var (
	// ErrNotFound means the resource does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict means a unique value is already taken
	ErrConflict = errors.New("conflict")
	// ErrForbidden and ErrUnauthenticated are shared with the authorization gate
	ErrForbidden       = auth.ErrForbidden
	ErrUnauthenticated = auth.ErrUnauthenticated
	// ErrInvalidCredentials is a login failure; it is an ErrUnauthenticated
	ErrInvalidCredentials = &credentialsError{}
)

type credentialsError struct{}

func (e *credentialsError) Error() string        { return "invalid username or password" }
func (e *credentialsError) Is(target error) bool { return target == ErrUnauthenticated }

// ValidationError carries the field errors of a rejected request
type ValidationError struct {
	Errors []validation.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// invalid wraps field errors, returning nil when there are none
func invalid(errs []validation.FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}
