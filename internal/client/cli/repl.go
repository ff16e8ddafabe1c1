package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/acadcart/internal/client/state"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	connectivity() state.Connectivity
	isLoggedIn() bool
	backendURL() string

	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Toggle(ctx context.Context) error
	SetUser(ctx context.Context, name string) error
	SetPassword(ctx context.Context) error
	Submit(ctx context.Context) error

	Users(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Logout(ctx context.Context) error

	Retry(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a until EOF,
// "exit"/"quit" or cancellation of ctx.
//
// Commands are gated on connectivity:
//
//	Always:
//	  - help, status, exit | quit
//
//	Backend unavailable:
//	  - retry            reload and probe again
//
//	Not logged in:
//	  - login            prompt for credentials and log in
//	  - register         prompt for credentials and create an account
//	  - mode             toggle between login and register
//	  - user [name]      set the username field
//	  - password         set the password field
//	  - submit           submit the form as it stands
//
//	Logged in:
//	  - users            list registered users
//	  - whoami           show the signed-in user
//	  - logout           log out
//
// Errors returned by handlers are ignored here; handlers report to the
// user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("acadcart %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText(a))
			continue
		case "status":
			_ = a.Status(ctx)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		switch conn := a.connectivity(); conn.Phase {
		case state.Checking:
			printlnFn(checkingMessage(a.backendURL()))
			continue
		case state.Unavailable:
			if cmd == "retry" {
				_ = a.Retry(ctx)
			} else {
				printlnFn(unavailablePanel(conn.Reason, a.backendURL()))
			}
			continue
		}

		if a.isLoggedIn() {
			switch cmd {
			case "users", "l":
				_ = a.Users(ctx)
			case "whoami":
				_ = a.WhoAmI(ctx)
			case "logout":
				_ = a.Logout(ctx)
			case "login", "register", "mode", "user", "password", "submit":
				printlnFn("Already logged in; logout first")
			default:
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "login":
			_ = a.Login(ctx)
		case "register":
			_ = a.Register(ctx)
		case "mode":
			_ = a.Toggle(ctx)
		case "user":
			_ = a.SetUser(ctx, strings.Join(args, " "))
		case "password":
			_ = a.SetPassword(ctx)
		case "submit":
			_ = a.Submit(ctx)
		case "users", "whoami", "logout":
			printlnFn("Not logged in; use login or register")
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func helpText(a execIface) string {
	switch conn := a.connectivity(); {
	case conn.Phase == state.Checking:
		return "Available commands: status, exit"
	case conn.Phase == state.Unavailable:
		return "Available commands: retry, status, exit"
	case a.isLoggedIn():
		return "Available commands: users, whoami, logout, status, exit"
	default:
		return "Available commands: login, register, mode, user <name>, password, submit, status, exit"
	}
}
