// Package users loads the gated user list whenever the boot becomes
// authenticated.
package users

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/dmitrijs2005/acadcart/internal/client/apiclient"
	"github.com/dmitrijs2005/acadcart/internal/client/models"
	"github.com/dmitrijs2005/acadcart/internal/client/state"
	"github.com/dmitrijs2005/acadcart/internal/logging"
)

const FetchFailedMessage = "Failed to fetch users"

type Lister interface {
	Users(ctx context.Context) (json.RawMessage, error)
}

// Fetcher runs one fetch per false->true flip of the authenticated flag.
// A true->false flip cancels the fetch in flight; results that arrive for
// an old epoch are dropped by the store.
type Fetcher struct {
	api    Lister
	store  *state.Store
	logger logging.Logger

	mu     sync.Mutex
	parent context.Context
	cancel context.CancelFunc
	last   uint64
	wg     sync.WaitGroup
}

func New(api Lister, store *state.Store, logger logging.Logger) *Fetcher {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Fetcher{api: api, store: store, logger: logger.With("module", "users")}
}

// Attach subscribes the fetcher to authentication flips. Fetches run
// under ctx and stop when it is cancelled.
func (f *Fetcher) Attach(ctx context.Context) {
	f.mu.Lock()
	f.parent = ctx
	f.mu.Unlock()
	f.store.WatchAuth(f.onAuth)
}

func (f *Fetcher) onAuth(authenticated bool, epoch uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if epoch <= f.last {
		return
	}
	f.last = epoch

	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	if !authenticated {
		f.store.ClearUsers()
		return
	}
	if f.parent.Err() != nil {
		return
	}

	ctx, cancel := context.WithCancel(f.parent)
	f.cancel = cancel
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer cancel()
		f.Fetch(ctx, epoch)
	}()
}

// Fetch loads the list once and stores the outcome for epoch. It does not
// retry.
func (f *Fetcher) Fetch(ctx context.Context, epoch uint64) {
	raw, err := f.api.Users(ctx)
	if ctx.Err() != nil {
		return
	}

	var list state.UserList
	if err != nil {
		msg := apiclient.ServiceMessage(err)
		if msg == "" {
			msg = FetchFailedMessage
		}
		f.logger.Warn(ctx, "fetch users failed", "err", err)
		list = list.FetchFailed(msg)
	} else if users, derr := decode(raw); derr != nil {
		f.logger.Warn(ctx, "decode users failed", "err", derr)
		list = list.FetchFailed(FetchFailedMessage)
	} else {
		list = list.Fetched(users)
	}

	if !f.store.SetUsers(epoch, list) {
		f.logger.Debug(ctx, "dropped stale user list", "epoch", epoch)
	}
}

// Wait blocks until every started fetch has returned.
func (f *Fetcher) Wait() {
	f.wg.Wait()
}

// decode returns an empty list for any body that is not a JSON array.
func decode(raw json.RawMessage) ([]models.User, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []models.User{}, nil
	}
	var users []models.User
	if err := json.Unmarshal(trimmed, &users); err != nil {
		return nil, err
	}
	return users, nil
}
