package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	slogctx "github.com/veqryn/slog-context"

	"github.com/dinver/appcore/internal/serviceerr"
)

// Manager owns the in-memory session and keeps it consistent with the durable
// store: write-through on login, delete-through on logout. It is the store's
// sole writer.
//
// The password and federated login paths may race; whichever completion is
// observed last determines the final session.
type Manager struct {
	client Client
	store  Store

	mu      sync.Mutex
	state   State
	session Session
}

func NewManager(client Client, store Store) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("auth client must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("session store must not be nil")
	}
	if err := initMeters(); err != nil {
		return nil, fmt.Errorf("initialising auth meters: %w", err)
	}

	return &Manager{client: client, store: store}, nil
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns the live session, if any.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.state == StateAuthenticated
}

// Token returns the bearer token for protected requests, or the empty string
// when anonymous.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Token
}

// Login authenticates with email and password. Input is validated before any
// network call. A failed login leaves a previously established session
// untouched.
func (m *Manager) Login(ctx context.Context, creds Credentials) (Session, error) {
	if err := validateCredentials(creds); err != nil {
		return Session{}, fmt.Errorf("validating credentials: %w", err)
	}

	m.beginAuthenticating()

	sess, err := m.client.Login(ctx, creds)
	if err != nil {
		m.endAuthenticating()
		loginFailures.Add(ctx, 1, methodPassword)
		slogctx.Warn(ctx, "Login failed", "email", creds.Email, "error", err)
		return Session{}, fmt.Errorf("logging in: %w", err)
	}

	return m.commit(ctx, sess, "password", methodPassword)
}

// Register creates an account. It produces no session; the caller logs in
// separately on success.
func (m *Manager) Register(ctx context.Context, reg Registration) error {
	if err := validateRegistration(reg); err != nil {
		return fmt.Errorf("validating registration: %w", err)
	}

	if err := m.client.Register(ctx, reg); err != nil {
		return fmt.Errorf("registering: %w", err)
	}

	slogctx.Info(ctx, "Registered a new account", "email", reg.Email)

	return nil
}

// Logout always clears the in-memory session. A storage failure is returned
// for telemetry but does not undo the user-visible logout.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.state = StateAnonymous
	m.session = Session{}
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		slogctx.Error(ctx, "Failed to clear the stored session", "error", err)
		return fmt.Errorf("clearing stored session: %w", err)
	}

	return nil
}

// Restore loads the stored session on process start. A present, well-formed
// record transitions straight to authenticated; the stored token is trusted
// until first use proves it invalid. Any failure leaves the manager anonymous.
func (m *Manager) Restore(ctx context.Context) (State, error) {
	sess, err := m.store.Load(ctx)
	if errors.Is(err, serviceerr.ErrNotFound) {
		return m.State(), nil
	}
	if err != nil {
		return m.State(), fmt.Errorf("loading stored session: %w", err)
	}
	if !sess.wellFormed() {
		slogctx.Warn(ctx, "Ignoring a malformed stored session")
		return m.State(), nil
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.session = sess
	m.mu.Unlock()

	restores.Add(ctx, 1)
	slogctx.Info(ctx, "Restored a stored session", "email", sess.Identity.Email)

	return StateAuthenticated, nil
}

// BeginFederatedLogin marks the start of a federated flow and returns the
// resulting state. The completion arrives later via CompleteFederatedLogin.
func (m *Manager) BeginFederatedLogin() State {
	m.beginAuthenticating()
	return m.State()
}

// CompleteFederatedLogin consumes the completion event of a federated flow.
// It may arrive in any state — after the user navigated away or logged out —
// and still establishes the exchanged session (last-writer-wins). When the
// exchange response carries no identity, the display claims are read off the
// ID token instead.
func (m *Manager) CompleteFederatedLogin(ctx context.Context, idToken string) (Session, error) {
	sess, err := m.client.ExchangeFederatedToken(ctx, idToken)
	if err != nil {
		m.endAuthenticating()
		loginFailures.Add(ctx, 1, methodFederated)
		slogctx.Warn(ctx, "Federated token exchange failed", "error", err)
		return Session{}, fmt.Errorf("exchanging federated token: %w", err)
	}

	if sess.Identity == (Identity{}) {
		id, idErr := identityFromIDToken(idToken)
		if idErr != nil {
			slogctx.Debug(ctx, "Could not read identity claims from the federated token", "error", idErr)
		} else {
			sess.Identity = id
		}
	}

	return m.commit(ctx, sess, "federated", methodFederated)
}

// beginAuthenticating moves an anonymous manager into the authenticating
// state. An established session stays live while a new attempt runs.
func (m *Manager) beginAuthenticating() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateAnonymous {
		m.state = StateAuthenticating
	}
}

// endAuthenticating rolls a failed attempt back to anonymous without touching
// an established session.
func (m *Manager) endAuthenticating() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateAuthenticating {
		m.state = StateAnonymous
	}
}

// commit persists the session and then makes it the live one. Durability
// precedes the observable transition: a session that cannot be stored is not
// reported as established.
func (m *Manager) commit(ctx context.Context, sess Session, method string, attrs metricAttrs) (Session, error) {
	if err := m.store.Save(ctx, sess); err != nil {
		m.endAuthenticating()
		loginFailures.Add(ctx, 1, attrs)
		return Session{}, fmt.Errorf("persisting session: %w", err)
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.session = sess
	m.mu.Unlock()

	logins.Add(ctx, 1, attrs)
	slogctx.Info(ctx, "Session established", "method", method, "email", sess.Identity.Email)

	return sess, nil
}
