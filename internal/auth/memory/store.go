// Package authmemory keeps the session in process memory only. Nothing
// survives a restart; it backs tests and ephemeral embedding hosts.
package authmemory

import (
	"context"
	"sync"

	"github.com/dinver/appcore/internal/auth"
	"github.com/dinver/appcore/internal/serviceerr"
)

type Store struct {
	mu      sync.Mutex
	session auth.Session
	present bool
}

var _ = auth.Store(&Store{})

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Load(_ context.Context) (auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.present {
		return auth.Session{}, serviceerr.ErrNotFound
	}
	return s.session, nil
}

func (s *Store) Save(_ context.Context, sess auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = sess
	s.present = true
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = auth.Session{}
	s.present = false
	return nil
}
