// Package authvalkey persists the current session in a Valkey instance, for
// deployments where the core runs behind a backend-for-frontend rather than
// on the device.
package authvalkey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/valkey-io/valkey-go"

	"github.com/dinver/appcore/internal/auth"
	"github.com/dinver/appcore/internal/serviceerr"
)

const sessionKey = "session:current"

type Store struct {
	valkey valkey.Client
	prefix string
}

var _ = auth.Store(&Store{})

func NewStore(valkeyClient valkey.Client, prefix string) *Store {
	prefix = strings.TrimSuffix(prefix, ":")
	return &Store{
		valkey: valkeyClient,
		prefix: prefix,
	}
}

func (s *Store) Load(ctx context.Context) (auth.Session, error) {
	bytes, err := s.valkey.Do(ctx, s.valkey.B().Get().Key(s.key()).Build()).AsBytes()
	if err != nil {
		valkeyErr, ok := valkey.IsValkeyErr(err)
		if ok && valkeyErr.IsNil() {
			return auth.Session{}, errors.Join(valkeyErr, serviceerr.ErrNotFound)
		}

		return auth.Session{}, fmt.Errorf("executing get command: %w", err)
	}

	var sess auth.Session
	if err := json.Unmarshal(bytes, &sess); err != nil {
		return auth.Session{}, fmt.Errorf("unmarshaling session: %w", err)
	}

	return sess, nil
}

func (s *Store) Save(ctx context.Context, sess auth.Session) error {
	bytes, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	cmd := s.valkey.B().Set().Key(s.key()).Value(valkey.BinaryString(bytes)).Build()
	if err := s.valkey.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("executing set command: %w", err)
	}

	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.valkey.Do(ctx, s.valkey.B().Del().Key(s.key()).Build()).Error(); err != nil {
		return fmt.Errorf("executing del command: %w", err)
	}

	return nil
}

func (s *Store) key() string {
	return fmt.Sprintf("%s:%s", s.prefix, sessionKey)
}
