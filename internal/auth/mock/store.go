package authmock

import (
	"context"
	"sync"

	"github.com/dinver/appcore/internal/auth"
	"github.com/dinver/appcore/internal/serviceerr"
)

type StoreOption func(*Store)

// Store is an in-memory session store.
type Store struct {
	mu      sync.Mutex
	session auth.Session
	present bool

	loadErr  error
	saveErr  error
	clearErr error
}

func WithStored(sess auth.Session) StoreOption {
	return func(s *Store) {
		s.session = sess
		s.present = true
	}
}

func WithLoadError(err error) StoreOption {
	return func(s *Store) { s.loadErr = err }
}

func WithSaveError(err error) StoreOption {
	return func(s *Store) { s.saveErr = err }
}

func WithClearError(err error) StoreOption {
	return func(s *Store) { s.clearErr = err }
}

var _ = auth.Store(&Store{})

func NewStore(opts ...StoreOption) *Store {
	s := &Store{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) Load(_ context.Context) (auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadErr != nil {
		return auth.Session{}, s.loadErr
	}
	if !s.present {
		return auth.Session{}, serviceerr.ErrNotFound
	}
	return s.session, nil
}

func (s *Store) Save(_ context.Context, sess auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}
	s.session = sess
	s.present = true
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clearErr != nil {
		return s.clearErr
	}
	s.session = auth.Session{}
	s.present = false
	return nil
}

// Stored returns the persisted session, if any.
func (s *Store) Stored() (auth.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.present
}
