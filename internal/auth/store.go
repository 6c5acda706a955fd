package auth

import "context"

// Store is the durable copy of the current session. Identity and token are
// written together, read together and deleted together; implementations must
// be atomic with respect to a single process.
//
// Load returns serviceerr.ErrNotFound when no session is stored.
type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, session Session) error
	Clear(ctx context.Context) error
}
