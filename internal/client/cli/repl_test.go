package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/acadcart/internal/client/state"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	conn     state.Connectivity
	loggedIn bool

	calls []string
	user  string
}

func (f *fakeExec) connectivity() state.Connectivity { return f.conn }
func (f *fakeExec) isLoggedIn() bool                  { return f.loggedIn }
func (f *fakeExec) backendURL() string                { return "http://backend.test" }

func (f *fakeExec) record(c string) error { f.calls = append(f.calls, c); return nil }

func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Register(context.Context) error    { return f.record("register") }
func (f *fakeExec) Toggle(context.Context) error      { return f.record("mode") }
func (f *fakeExec) SetPassword(context.Context) error { return f.record("password") }
func (f *fakeExec) Submit(context.Context) error      { return f.record("submit") }
func (f *fakeExec) Users(context.Context) error       { return f.record("users") }
func (f *fakeExec) WhoAmI(context.Context) error      { return f.record("whoami") }
func (f *fakeExec) Status(context.Context) error      { return f.record("status") }
func (f *fakeExec) SetUser(_ context.Context, name string) error {
	f.user = name
	return f.record("user")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Retry(context.Context) error {
	f.conn = state.Connectivity{Phase: state.Ready}
	return f.record("retry")
}

// captureOutput replaces printlnFn for the test and returns the collected lines.
func captureOutput(t *testing.T) func() []string {
	t.Helper()
	var (
		mu    sync.Mutex
		lines []string
	)
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), lines...)
	}
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{conn: state.Connectivity{Phase: state.Ready}}
	input := strings.Join([]string{
		"help",
		"users",
		"mode",
		"user bob",
		"password",
		"submit",
		"login",
		"help",
		"users",
		"whoami",
		"login",
		"foobar",
		"logout",
		"exit",
		"status",
	}, "\n")

	runREPL(context.Background(), exec, func() string { return "s" }, rdr(input))

	assert.Equal(t, []string{"mode", "user", "password", "submit", "login", "users", "whoami", "logout"}, exec.calls)
	assert.Equal(t, "bob", exec.user)

	lines := strings.Join(out(), "\n")
	assert.Contains(t, lines, "Not logged in; use login or register")
	assert.Contains(t, lines, "Already logged in; logout first")
	assert.Contains(t, lines, "Unknown command: foobar")
	assert.Contains(t, lines, "Bye!")
}

func TestRunREPL_GatedWhileChecking(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{conn: state.Connectivity{Phase: state.Checking}}
	runREPL(context.Background(), exec, func() string { return "s" }, rdr("login\nusers\nretry\nstatus\nhelp\n"))

	assert.Equal(t, []string{"status"}, exec.calls)
	lines := out()
	assert.Contains(t, lines, "Connecting to backend... Checking: http://backend.test")
	assert.Contains(t, lines, "Available commands: status, exit")
}

func TestRunREPL_UnavailableOffersRetry(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{conn: state.Connectivity{Phase: state.Unavailable, Reason: "Backend service unavailable"}}
	runREPL(context.Background(), exec, func() string { return "s" }, rdr("login\nretry\nlogin\n"))

	assert.Equal(t, []string{"retry", "login"}, exec.calls)
	joined := strings.Join(out(), "\n")
	assert.Contains(t, joined, "Connection Error\nBackend service unavailable")
	assert.Contains(t, joined, "Type 'retry'")
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	captureOutput(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &fakeExec{conn: state.Connectivity{Phase: state.Ready}}
	runREPL(ctx, exec, func() string { return "s" }, rdr("login\n"))

	assert.Empty(t, exec.calls)
}

func TestRenderUsers(t *testing.T) {
	assert.Equal(t, "Loading users...", renderUsers(state.UserList{}))
	assert.Equal(t, "Registered Users (0)\nNo users found", renderUsers(state.UserList{}.Fetched(nil)))
	assert.Equal(t, "Registered Users (0)\nFailed to load users: Failed to fetch users",
		renderUsers(state.UserList{}.FetchFailed("Failed to fetch users")))
}
