// Package authflow drives the login/register form: local validation,
// submission through the session manager, outcome messages and mode
// toggling.
package authflow

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/acadcart/internal/client/session"
	"github.com/dmitrijs2005/acadcart/internal/client/state"
	"github.com/dmitrijs2005/acadcart/internal/logging"
)

const RegisteredMessage = "Registration successful! Please login."

// ErrSubmitting is returned by Submit while a submission is pending.
var ErrSubmitting = errors.New("submission already in progress")

// Authenticator performs the remote half of a submission.
type Authenticator interface {
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, username, password string) error
}

type Phase int

const (
	Idle Phase = iota
	Submitting
	Failed
	Succeeded
)

func (p Phase) String() string {
	switch p {
	case Submitting:
		return "submitting"
	case Failed:
		return "error"
	case Succeeded:
		return "success"
	default:
		return "idle"
	}
}

type Flow struct {
	store  *state.Store
	auth   Authenticator
	logger logging.Logger
}

func New(store *state.Store, auth Authenticator, logger logging.Logger) *Flow {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Flow{store: store, auth: auth, logger: logger.With("module", "authflow")}
}

func (f *Flow) Form() state.AuthForm { return f.store.Form() }

func (f *Flow) SetUsername(v string) {
	f.store.UpdateForm(func(af state.AuthForm) state.AuthForm { return af.WithUsername(v) })
}

func (f *Flow) SetPassword(v string) {
	f.store.UpdateForm(func(af state.AuthForm) state.AuthForm { return af.WithPassword(v) })
}

// Toggle switches between login and register. It is allowed at any time.
func (f *Flow) Toggle() state.Mode {
	return f.store.UpdateForm(state.AuthForm.Toggled).Mode
}

// Phase derives the sub-state shown next to the form.
func (f *Flow) Phase() Phase {
	af := f.store.Form()
	switch {
	case af.Submitting:
		return Submitting
	case af.Error != "":
		return Failed
	case af.Success != "":
		return Succeeded
	default:
		return Idle
	}
}

// Submit validates the form and, if it passes, runs the login or register
// call for the current mode. A validation failure is recorded on the form
// and returned without contacting the service. Service failures are
// recorded on the form as well; the returned error is for logging.
func (f *Flow) Submit(ctx context.Context) error {
	sent, err := f.Begin()
	if err != nil {
		return err
	}
	return f.Complete(ctx, sent)
}

// Begin validates the form and marks it submitting. It returns the form as
// it was sent; the caller hands it to Complete, possibly from another
// goroutine. ErrSubmitting is returned while an earlier submission is
// pending.
func (f *Flow) Begin() (state.AuthForm, error) {
	var (
		busy    bool
		invalid error
		sent    state.AuthForm
	)
	f.store.UpdateForm(func(af state.AuthForm) state.AuthForm {
		if af.Submitting {
			busy = true
			return af
		}
		if err := Validate(af); err != nil {
			invalid = err
			return af.Invalid(err.Error())
		}
		sent = af
		return af.Submitted()
	})
	if busy {
		return state.AuthForm{}, ErrSubmitting
	}
	if invalid != nil {
		return state.AuthForm{}, invalid
	}
	return sent, nil
}

// Complete runs the remote call for a form returned by Begin and records
// the outcome.
func (f *Flow) Complete(ctx context.Context, sent state.AuthForm) error {
	var err error
	if sent.Mode == state.ModeRegister {
		err = f.auth.Register(ctx, sent.Username, sent.Password)
	} else {
		err = f.auth.Login(ctx, sent.Username, sent.Password)
	}

	if err != nil {
		msg := failureMessage(sent.Mode, err)
		f.store.UpdateForm(func(af state.AuthForm) state.AuthForm { return af.Failed(msg) })
		f.logger.Debug(ctx, "submission failed", "mode", sent.Mode, "err", err)
		return err
	}

	if sent.Mode == state.ModeRegister {
		f.store.UpdateForm(func(af state.AuthForm) state.AuthForm { return af.Registered(RegisteredMessage) })
	} else {
		f.store.UpdateForm(state.AuthForm.LoggedIn)
	}
	return nil
}

func failureMessage(mode state.Mode, err error) string {
	var fe *session.FailureError
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	if mode == state.ModeRegister {
		return session.RegisterFailedMessage
	}
	return session.LoginFailedMessage
}
