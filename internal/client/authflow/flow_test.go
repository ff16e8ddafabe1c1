package authflow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/acadcart/internal/client/apiclient"
	"github.com/dmitrijs2005/acadcart/internal/client/migrations"
	"github.com/dmitrijs2005/acadcart/internal/client/session"
	"github.com/dmitrijs2005/acadcart/internal/client/sessionstore"
	"github.com/dmitrijs2005/acadcart/internal/client/state"
	"github.com/dmitrijs2005/acadcart/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	loginErr    error
	registerErr error
	block       chan struct{}

	loginCalls    atomic.Int32
	registerCalls atomic.Int32
	started       chan struct{}
}

func (f *fakeAuth) wait() {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeAuth) Login(context.Context, string, string) error {
	f.loginCalls.Add(1)
	f.wait()
	return f.loginErr
}

func (f *fakeAuth) Register(context.Context, string, string) error {
	f.registerCalls.Add(1)
	f.wait()
	return f.registerErr
}

func newFlow(auth Authenticator) (*Flow, *state.Store) {
	store := state.NewStore()
	return New(store, auth, nil), store
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     string
	}{
		{"empty", "", "", MsgFieldsRequired},
		{"blank username", "   ", "secret1", MsgFieldsRequired},
		{"blank password", "alice", "      ", MsgFieldsRequired},
		{"short username", "al", "secret1", MsgUsernameTooShort},
		{"long username", "abcdefghijklmnopqrstuvwxyz12345", "secret1", MsgUsernameTooLong},
		{"short password", "alice", "12345", MsgPasswordTooShort},
		{"untrimmed length counts", " al", "secret1", ""},
		{"multibyte runes", "äöü", "секрет", ""},
		{"boundaries", "abc", "123456", ""},
		{"max username", "abcdefghijklmnopqrstuvwxyz1234", "123456", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(state.AuthForm{Username: tt.username, Password: tt.password})
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.want, ve.Message)
		})
	}
}

func TestSubmit_ValidationShortCircuits(t *testing.T) {
	auth := &fakeAuth{}
	f, store := newFlow(auth)
	f.SetUsername("al")
	f.SetPassword("secret1")

	err := f.Submit(context.Background())
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	assert.Zero(t, auth.loginCalls.Load())
	assert.Equal(t, MsgUsernameTooShort, store.Form().Error)
	assert.False(t, store.Form().Submitting)
	assert.Equal(t, Failed, f.Phase())
}

// A two-character username must not reach the service at all.
func TestSubmit_ShortUsernameNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	api, err := apiclient.New(srv.URL, time.Second)
	require.NoError(t, err)
	db, err := dbx.OpenSQLite(context.Background(), ":memory:", migrations.Migrations)
	require.NoError(t, err)
	defer db.Close()

	store := state.NewStore()
	mgr := session.NewManager(api, sessionstore.New(db), store)
	f := New(store, mgr, nil)
	f.SetUsername("ab")
	f.SetPassword("secret1")

	require.Error(t, f.Submit(context.Background()))
	assert.Zero(t, hits.Load())
	assert.Equal(t, MsgUsernameTooShort, store.Form().Error)
}

func TestSubmit_LoginSuccessClearsForm(t *testing.T) {
	auth := &fakeAuth{}
	f, store := newFlow(auth)
	f.SetUsername("alice")
	f.SetPassword("secret1")

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, int32(1), auth.loginCalls.Load())
	assert.Equal(t, state.AuthForm{}, store.Form())
	assert.Equal(t, Idle, f.Phase())
}

func TestSubmit_LoginFailureKeepsUsername(t *testing.T) {
	auth := &fakeAuth{loginErr: &session.FailureError{Op: "login", Message: session.LoginFailedMessage}}
	f, store := newFlow(auth)
	f.SetUsername("alice")
	f.SetPassword("wrongpw")

	require.Error(t, f.Submit(context.Background()))
	assert.Equal(t, state.AuthForm{Username: "alice", Error: session.LoginFailedMessage}, store.Form())
	assert.Equal(t, Failed, f.Phase())
}

func TestSubmit_FailureWithoutMessageUsesModeDefault(t *testing.T) {
	auth := &fakeAuth{registerErr: errors.New("boom")}
	f, store := newFlow(auth)
	f.Toggle()
	f.SetUsername("bob")
	f.SetPassword("secret1")

	require.Error(t, f.Submit(context.Background()))
	assert.Equal(t, state.AuthForm{Username: "bob", Mode: state.ModeRegister, Error: session.RegisterFailedMessage}, store.Form())
}

func TestSubmit_RegisterSuccessSwitchesToLogin(t *testing.T) {
	auth := &fakeAuth{}
	f, store := newFlow(auth)
	require.Equal(t, state.ModeRegister, f.Toggle())
	f.SetUsername("bob")
	f.SetPassword("secret1")

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, int32(1), auth.registerCalls.Load())
	assert.Zero(t, auth.loginCalls.Load())
	assert.Equal(t, state.AuthForm{Mode: state.ModeLogin, Success: RegisteredMessage}, store.Form())
	assert.Equal(t, Succeeded, f.Phase())
	assert.False(t, store.Authenticated())
}

func TestSubmit_SecondSubmitRejectedWhilePending(t *testing.T) {
	auth := &fakeAuth{block: make(chan struct{}), started: make(chan struct{}, 1)}
	f, store := newFlow(auth)
	f.SetUsername("alice")
	f.SetPassword("secret1")

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()
	<-auth.started

	assert.Equal(t, Submitting, f.Phase())
	require.ErrorIs(t, f.Submit(context.Background()), ErrSubmitting)

	// typing stays responsive during the pending call
	f.SetUsername("alice2")
	assert.Equal(t, "alice2", store.Form().Username)

	close(auth.block)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), auth.loginCalls.Load())
}

func TestBegin_MarksSubmittingBeforeAnyCall(t *testing.T) {
	auth := &fakeAuth{}
	f, store := newFlow(auth)
	f.SetUsername("alice")
	f.SetPassword("secret1")

	sent, err := f.Begin()
	require.NoError(t, err)
	assert.Equal(t, Submitting, f.Phase())
	assert.True(t, store.Form().Submitting)
	assert.Equal(t, "alice", sent.Username)
	assert.Zero(t, auth.loginCalls.Load())

	_, err = f.Begin()
	require.ErrorIs(t, err, ErrSubmitting)

	require.NoError(t, f.Complete(context.Background(), sent))
	assert.Equal(t, int32(1), auth.loginCalls.Load())
	assert.Equal(t, Idle, f.Phase())
}

func TestBegin_InvalidFormNotMarked(t *testing.T) {
	f, store := newFlow(&fakeAuth{})
	f.SetUsername("al")
	f.SetPassword("secret1")

	_, err := f.Begin()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.False(t, store.Form().Submitting)
	assert.Equal(t, Failed, f.Phase())
}

func TestToggle_ClearsMessagesAndPassword(t *testing.T) {
	f, store := newFlow(&fakeAuth{})
	store.UpdateForm(func(state.AuthForm) state.AuthForm {
		return state.AuthForm{Username: "alice", Password: "secret1", Error: "e", Success: "s"}
	})

	assert.Equal(t, state.ModeRegister, f.Toggle())
	assert.Equal(t, state.AuthForm{Username: "alice", Mode: state.ModeRegister}, store.Form())
	assert.Equal(t, state.ModeLogin, f.Toggle())
}

func TestSetters_ClearError(t *testing.T) {
	f, store := newFlow(&fakeAuth{})
	require.Error(t, f.Submit(context.Background()))
	require.Equal(t, MsgFieldsRequired, store.Form().Error)

	f.SetUsername("a")
	assert.Empty(t, store.Form().Error)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "submitting", Submitting.String())
	assert.Equal(t, "error", Failed.String())
	assert.Equal(t, "success", Succeeded.String())
}
