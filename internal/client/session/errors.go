package session

import "fmt"

const (
	LoginFailedMessage    = "Invalid username or password"
	RegisterFailedMessage = "Registration failed"
)

// FailureError is a login or register failure. Message is what the user
// is shown; Err is the underlying cause.
type FailureError struct {
	Op      string
	Message string
	Err     error
}

func (e *FailureError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *FailureError) Unwrap() error { return e.Err }
