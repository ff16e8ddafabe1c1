package state

type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// AuthForm is the login/register form.
type AuthForm struct {
	Username   string
	Password   string
	Mode       Mode
	Error      string
	Success    string
	Submitting bool
}

// WithUsername sets the username and clears a stale error.
func (f AuthForm) WithUsername(v string) AuthForm {
	f.Username = v
	f.Error = ""
	return f
}

// WithPassword sets the password and clears a stale error.
func (f AuthForm) WithPassword(v string) AuthForm {
	f.Password = v
	f.Error = ""
	return f
}

// Toggled flips the mode. The username survives; password and messages do not.
func (f AuthForm) Toggled() AuthForm {
	mode := ModeRegister
	if f.Mode == ModeRegister {
		mode = ModeLogin
	}
	return AuthForm{Username: f.Username, Mode: mode, Submitting: f.Submitting}
}

// Invalid records a local validation error.
func (f AuthForm) Invalid(msg string) AuthForm {
	f.Error = msg
	return f
}

func (f AuthForm) Submitted() AuthForm {
	f.Submitting = true
	f.Error = ""
	f.Success = ""
	return f
}

// Failed records a service-reported failure and drops the password.
func (f AuthForm) Failed(msg string) AuthForm {
	f.Submitting = false
	f.Error = msg
	f.Password = ""
	return f
}

// LoggedIn empties the form after a successful login.
func (f AuthForm) LoggedIn() AuthForm {
	return f.Reset()
}

// Registered switches to login mode with a success message and an empty form.
func (f AuthForm) Registered(msg string) AuthForm {
	return AuthForm{Mode: ModeLogin, Success: msg}
}

// Reset empties the form, keeping the mode.
func (f AuthForm) Reset() AuthForm {
	return AuthForm{Mode: f.Mode}
}
