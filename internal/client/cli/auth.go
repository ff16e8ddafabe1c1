package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/acadcart/internal/client/authflow"
	"github.com/dmitrijs2005/acadcart/internal/client/state"
)

const (
	submittingMessage = "Submitting..."
	busyMessage       = "A submission is in progress; please wait"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// Login switches the form to login mode, prompts for both fields and
// submits.
func (a *App) Login(ctx context.Context) error {
	return a.authenticate(state.ModeLogin)
}

// Register is Login for the register mode.
func (a *App) Register(ctx context.Context) error {
	return a.authenticate(state.ModeRegister)
}

func (a *App) authenticate(mode state.Mode) error {
	b := a.current()
	if b.flow.Phase() == authflow.Submitting {
		printlnFn(busyMessage)
		return authflow.ErrSubmitting
	}
	if b.flow.Form().Mode != mode {
		b.flow.Toggle()
	}

	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	b.flow.SetUsername(username)
	b.flow.SetPassword(password)
	return a.submit(b)
}

// Toggle flips between login and register.
func (a *App) Toggle(ctx context.Context) error {
	mode := a.current().flow.Toggle()
	printlnFn("Mode:", modeTitle(mode))
	if mode == state.ModeLogin {
		printlnFn("Need an account? Type 'mode' to register.")
	} else {
		printlnFn("Already have an account? Type 'mode' to login.")
	}
	return nil
}

// SetUser sets the username field, prompting when name is empty.
func (a *App) SetUser(ctx context.Context, name string) error {
	if name == "" {
		var err error
		if name, err = getSimpleText(a.reader, "Enter username", a.out); err != nil {
			return err
		}
	}
	a.current().flow.SetUsername(name)
	return nil
}

// SetPassword prompts for the password field.
func (a *App) SetPassword(ctx context.Context) error {
	pw, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	a.current().flow.SetPassword(pw)
	return nil
}

// Submit sends the form as it stands.
func (a *App) Submit(ctx context.Context) error {
	return a.submit(a.current())
}

// submit marks the form busy and returns; the service call runs in the
// background and its outcome is printed when it lands. Validation failures
// and a pending submission are reported right away.
func (a *App) submit(b *boot) error {
	sent, err := b.flow.Begin()
	switch {
	case errors.Is(err, authflow.ErrSubmitting):
		printlnFn(busyMessage)
		return err
	case err != nil:
		printlnFn("Error:", b.flow.Form().Error)
		return err
	}

	printlnFn(submittingMessage)
	if !b.spawn(func(ctx context.Context) { a.complete(ctx, b, sent) }) {
		// the boot is going away; its form goes with it
		return context.Canceled
	}
	return nil
}

func (a *App) complete(ctx context.Context, b *boot, sent state.AuthForm) {
	err := b.flow.Complete(ctx, sent)
	if ctx.Err() != nil {
		return
	}

	form := b.flow.Form()
	switch {
	case form.Error != "":
		printlnFn("Error:", form.Error)
	case form.Success != "":
		printlnFn(form.Success)
	case err == nil && b.store.Authenticated():
		printlnFn(welcome(b.store.Session().User))
	}
	if err != nil {
		a.logger.Debug(ctx, "submit", "err", err)
	}
}

// Logout drops the session; no request is made.
func (a *App) Logout(ctx context.Context) error {
	b := a.current()
	if err := b.manager.Logout(b.ctx); err != nil {
		printlnFn("Logout:", err)
		return err
	}
	printlnFn("Logged out")
	return nil
}

// Retry reloads the client, which probes the backend again.
func (a *App) Retry(ctx context.Context) error {
	printlnFn(fmt.Sprintf("Retrying connection to %s...", a.backendURL()))
	return a.reload(ctx)
}
