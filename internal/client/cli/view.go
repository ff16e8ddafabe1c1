package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/acadcart/internal/client/authflow"
	"github.com/dmitrijs2005/acadcart/internal/client/models"
	"github.com/dmitrijs2005/acadcart/internal/client/state"
)

func (a *App) connectivity() state.Connectivity {
	return a.current().store.Connectivity()
}

func (a *App) isLoggedIn() bool {
	return a.current().store.Authenticated()
}

func (a *App) backendURL() string {
	return a.current().api.BaseURL()
}

// statusLine is shown in the prompt.
func (a *App) statusLine() string {
	b := a.current()
	switch conn := b.store.Connectivity(); conn.Phase {
	case state.Checking:
		return "(connecting)"
	case state.Unavailable:
		return "(offline)"
	}
	if sess := b.store.Session(); sess.Valid() {
		return fmt.Sprintf("(%s)", sess.User.Username)
	}
	if b.flow.Phase() == authflow.Submitting {
		return fmt.Sprintf("(%s, submitting)", b.store.Form().Mode)
	}
	return fmt.Sprintf("(%s)", b.store.Form().Mode)
}

// Users prints the gated user list.
func (a *App) Users(ctx context.Context) error {
	printlnFn(renderUsers(a.current().store.Users()))
	return nil
}

// WhoAmI prints the signed-in profile and, for JWT credentials, the expiry.
func (a *App) WhoAmI(ctx context.Context) error {
	b := a.current()
	printlnFn(welcome(b.store.Session().User))
	if exp, ok := b.manager.Claims(); ok {
		printlnFn("Session expires:", exp.Local().Format(time.RFC1123))
	}
	return nil
}

// Status prints connectivity, session and form state.
func (a *App) Status(ctx context.Context) error {
	b := a.current()
	conn := b.store.Connectivity()

	line := fmt.Sprintf("Backend: %s (%s)", b.api.BaseURL(), conn.Phase)
	if conn.Reason != "" {
		line += ": " + conn.Reason
	}
	printlnFn(line)

	if sess := b.store.Session(); sess.Valid() {
		printlnFn("Session: signed in as", sess.User.Username)
		return nil
	}
	form := b.flow.Form()
	printlnFn("Session: signed out")
	printlnFn(fmt.Sprintf("Form: %s, username %q, password set: %t, %s",
		modeTitle(form.Mode), form.Username, form.Password != "", b.flow.Phase()))
	return nil
}

func welcome(u *models.User) string {
	if u == nil {
		return "Welcome"
	}
	return "Welcome, " + u.Username
}

func modeTitle(m state.Mode) string {
	if m == state.ModeRegister {
		return "Register"
	}
	return "Login"
}

func renderUsers(l state.UserList) string {
	if !l.Loaded {
		return "Loading users..."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Registered Users (%d)", len(l.Users))
	switch {
	case l.Err != "":
		fmt.Fprintf(&sb, "\nFailed to load users: %s", l.Err)
	case len(l.Users) == 0:
		sb.WriteString("\nNo users found")
	}
	for _, u := range l.Users {
		joined := "unknown"
		if !u.CreatedAt.IsZero() {
			joined = u.CreatedAt.Local().Format("2006-01-02")
		}
		fmt.Fprintf(&sb, "\n  - %s (Joined: %s)", u.Username, joined)
	}
	return sb.String()
}

func unavailablePanel(reason, url string) string {
	return strings.Join([]string{
		"Connection Error",
		reason,
		"Verify backend is running at:",
		"  " + url,
		"Type 'retry' to retry the connection.",
	}, "\n")
}

func checkingMessage(url string) string {
	return "Connecting to backend... Checking: " + url
}
