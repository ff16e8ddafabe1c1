package state

import (
	"slices"
	"sync"

	"github.com/dmitrijs2005/acadcart/internal/client/models"
)

// AuthWatcher is notified whenever the authenticated flag flips.
// epoch identifies the flip; it grows by one with every flip.
type AuthWatcher func(authenticated bool, epoch uint64)

// Store owns the state slices of one client boot.
type Store struct {
	connMu   sync.RWMutex
	conn     Connectivity
	connDone chan struct{}

	// flipMu serialises session swaps with their notifications so
	// watchers see flips in epoch order
	flipMu sync.Mutex
	sessMu sync.RWMutex
	sess   models.Session
	epoch  uint64

	formMu sync.RWMutex
	form   AuthForm

	usersMu sync.RWMutex
	users   UserList

	watchMu  sync.RWMutex
	watchers []AuthWatcher
}

func NewStore() *Store {
	return &Store{connDone: make(chan struct{})}
}

// ---- connectivity ----

func (s *Store) Connectivity() Connectivity {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return s.conn
}

// Resolved is closed once connectivity leaves Checking.
func (s *Store) Resolved() <-chan struct{} {
	return s.connDone
}

func (s *Store) MarkReady() error {
	return s.resolve(func(c Connectivity) (Connectivity, error) { return c.MarkReady() })
}

func (s *Store) MarkUnavailable(reason string) error {
	return s.resolve(func(c Connectivity) (Connectivity, error) { return c.MarkUnavailable(reason) })
}

func (s *Store) resolve(fn func(Connectivity) (Connectivity, error)) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	next, err := fn(s.conn)
	if err != nil {
		return err
	}
	s.conn = next
	close(s.connDone)
	return nil
}

// ---- session ----

func (s *Store) Session() models.Session {
	s.sessMu.RLock()
	defer s.sessMu.RUnlock()
	return s.sess
}

func (s *Store) Authenticated() bool {
	s.sessMu.RLock()
	defer s.sessMu.RUnlock()
	return s.sess.Valid()
}

// Epoch is the number of authentication flips seen so far.
func (s *Store) Epoch() uint64 {
	s.sessMu.RLock()
	defer s.sessMu.RUnlock()
	return s.epoch
}

// SetSession installs sess. An incomplete pair is stored as no session.
func (s *Store) SetSession(sess models.Session) {
	if !sess.Valid() {
		sess = models.Session{}
	}
	s.swapSession(sess)
}

// ClearSession drops the credential and the profile together.
func (s *Store) ClearSession() {
	s.swapSession(models.Session{})
}

func (s *Store) swapSession(sess models.Session) {
	s.flipMu.Lock()
	defer s.flipMu.Unlock()

	s.sessMu.Lock()
	was := s.sess.Valid()
	s.sess = sess
	now := s.sess.Valid()
	if was != now {
		s.epoch++
	}
	epoch := s.epoch
	s.sessMu.Unlock()

	if was != now {
		s.notify(now, epoch)
	}
}

// WatchAuth registers w for every future flip of the authenticated flag.
// Flips are delivered one at a time in epoch order. w must not set or
// clear the session itself.
func (s *Store) WatchAuth(w AuthWatcher) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	s.watchers = append(s.watchers, w)
}

func (s *Store) notify(authenticated bool, epoch uint64) {
	s.watchMu.RLock()
	ws := slices.Clone(s.watchers)
	s.watchMu.RUnlock()

	for _, w := range ws {
		w(authenticated, epoch)
	}
}

// ---- form ----

func (s *Store) Form() AuthForm {
	s.formMu.RLock()
	defer s.formMu.RUnlock()
	return s.form
}

// UpdateForm applies fn atomically and returns the new form.
func (s *Store) UpdateForm(fn func(AuthForm) AuthForm) AuthForm {
	s.formMu.Lock()
	defer s.formMu.Unlock()
	s.form = fn(s.form)
	return s.form
}

// ---- user list ----

func (s *Store) Users() UserList {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	l := s.users
	l.Users = slices.Clone(l.Users)
	return l
}

// SetUsers stores l only if epoch is still the current authenticated
// epoch. It reports whether l was stored.
func (s *Store) SetUsers(epoch uint64, l UserList) bool {
	// the session lock is held across the write so a concurrent logout
	// cannot slip in between the check and the store
	s.sessMu.RLock()
	defer s.sessMu.RUnlock()
	if s.epoch != epoch || !s.sess.Valid() {
		return false
	}

	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	s.users = l
	return true
}

func (s *Store) ClearUsers() {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	s.users = UserList{}
}
