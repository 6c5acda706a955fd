package auth

import "context"

// Client is the remote auth API consumed by the manager.
type Client interface {
	Login(ctx context.Context, creds Credentials) (Session, error)
	Register(ctx context.Context, reg Registration) error
	// ExchangeFederatedToken trades a federated identity token for an
	// application session.
	ExchangeFederatedToken(ctx context.Context, idToken string) (Session, error)
}
