package authflow

import (
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/acadcart/internal/client/state"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 30
	MinPasswordLen = 6
)

const (
	MsgFieldsRequired   = "All fields are required"
	MsgUsernameTooShort = "Username must be at least 3 characters"
	MsgUsernameTooLong  = "Username must be at most 30 characters"
	MsgPasswordTooShort = "Password must be at least 6 characters"
)

// ValidationError is a local form error. It never involves the service.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate checks the form fields. Blankness is judged on trimmed values,
// lengths on the values as typed.
func Validate(f state.AuthForm) error {
	if strings.TrimSpace(f.Username) == "" || strings.TrimSpace(f.Password) == "" {
		return &ValidationError{Message: MsgFieldsRequired}
	}
	n := utf8.RuneCountInString(f.Username)
	if n < MinUsernameLen {
		return &ValidationError{Message: MsgUsernameTooShort}
	}
	if n > MaxUsernameLen {
		return &ValidationError{Message: MsgUsernameTooLong}
	}
	if utf8.RuneCountInString(f.Password) < MinPasswordLen {
		return &ValidationError{Message: MsgPasswordTooShort}
	}
	return nil
}
