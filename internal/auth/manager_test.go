package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinver/appcore/internal/auth"
	authmock "github.com/dinver/appcore/internal/auth/mock"
	"github.com/dinver/appcore/internal/serviceerr"
)

var testSession = auth.Session{
	Identity: auth.Identity{Email: "ana@example.com", FirstName: "Ana", LastName: "Horvat"},
	Token:    "bearer-token",
}

func newManager(t *testing.T, client *authmock.Client, store *authmock.Store) *auth.Manager {
	t.Helper()
	m, err := auth.NewManager(client, store)
	require.NoError(t, err)
	return m
}

func TestManager_Login(t *testing.T) {
	tests := []struct {
		name       string
		client     *authmock.Client
		store      *authmock.Store
		creds      auth.Credentials
		wantState  auth.State
		wantCalls  int
		errAssert  assert.ErrorAssertionFunc
		errorCheck func(t *testing.T, err error)
	}{
		{
			name:      "success",
			client:    authmock.NewClient(authmock.WithSession(testSession)),
			store:     authmock.NewStore(),
			creds:     auth.Credentials{Email: "ana@example.com", Password: "secret-1"},
			wantState: auth.StateAuthenticated,
			wantCalls: 1,
			errAssert: assert.NoError,
		},
		{
			name:      "malformed email fails before any network call",
			client:    authmock.NewClient(authmock.WithSession(testSession)),
			store:     authmock.NewStore(),
			creds:     auth.Credentials{Email: "bad", Password: "123456"},
			wantState: auth.StateAnonymous,
			wantCalls: 0,
			errAssert: assert.Error,
			errorCheck: func(t *testing.T, err error) {
				assert.True(t, serviceerr.IsValidation(err))
			},
		},
		{
			name:      "short password fails before any network call",
			client:    authmock.NewClient(authmock.WithSession(testSession)),
			store:     authmock.NewStore(),
			creds:     auth.Credentials{Email: "ana@example.com", Password: "123"},
			wantState: auth.StateAnonymous,
			wantCalls: 0,
			errAssert: assert.Error,
			errorCheck: func(t *testing.T, err error) {
				assert.True(t, serviceerr.IsValidation(err))
			},
		},
		{
			name:      "invalid credentials",
			client:    authmock.NewClient(authmock.WithLoginError(serviceerr.ErrInvalidCredentials)),
			store:     authmock.NewStore(),
			creds:     auth.Credentials{Email: "ana@example.com", Password: "secret-1"},
			wantState: auth.StateAnonymous,
			wantCalls: 1,
			errAssert: assert.Error,
			errorCheck: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, serviceerr.ErrInvalidCredentials)
			},
		},
		{
			name:      "store save failure is not an observable success",
			client:    authmock.NewClient(authmock.WithSession(testSession)),
			store:     authmock.NewStore(authmock.WithSaveError(errors.New("disk full"))),
			creds:     auth.Credentials{Email: "ana@example.com", Password: "secret-1"},
			wantState: auth.StateAnonymous,
			wantCalls: 1,
			errAssert: assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManager(t, tt.client, tt.store)

			_, err := m.Login(context.Background(), tt.creds)

			tt.errAssert(t, err)
			if tt.errorCheck != nil {
				tt.errorCheck(t, err)
			}
			assert.Equal(t, tt.wantState, m.State())
			assert.Equal(t, tt.wantCalls, tt.client.LoginCalls())
		})
	}
}

func TestManager_LoginSuccessWritesThrough(t *testing.T) {
	store := authmock.NewStore()
	m := newManager(t, authmock.NewClient(authmock.WithSession(testSession)), store)

	sess, err := m.Login(context.Background(), auth.Credentials{Email: "ana@example.com", Password: "secret-1"})
	require.NoError(t, err)
	assert.Equal(t, testSession, sess)
	assert.Equal(t, "bearer-token", m.Token())

	stored, ok := store.Stored()
	require.True(t, ok)
	assert.Equal(t, testSession, stored)
}

func TestManager_FailedLoginKeepsEstablishedSession(t *testing.T) {
	ctx := context.Background()
	store := authmock.NewStore(authmock.WithStored(testSession))
	client := authmock.NewClient(authmock.WithLoginError(serviceerr.ErrInvalidCredentials))
	m := newManager(t, client, store)

	state, err := m.Restore(ctx)
	require.NoError(t, err)
	require.Equal(t, auth.StateAuthenticated, state)

	_, err = m.Login(ctx, auth.Credentials{Email: "other@example.com", Password: "secret-1"})
	require.Error(t, err)

	assert.Equal(t, auth.StateAuthenticated, m.State())
	current, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, testSession, current)
}

func TestManager_SessionDurability(t *testing.T) {
	ctx := context.Background()
	store := authmock.NewStore()
	first := newManager(t, authmock.NewClient(authmock.WithSession(testSession)), store)

	_, err := first.Login(ctx, auth.Credentials{Email: "ana@example.com", Password: "secret-1"})
	require.NoError(t, err)

	// A fresh manager over the same store stands in for a process restart.
	second := newManager(t, authmock.NewClient(), store)
	state, err := second.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, auth.StateAuthenticated, state)

	current, ok := second.Current()
	require.True(t, ok)
	assert.Equal(t, testSession, current)
}

func TestManager_LogoutClearsBothLayers(t *testing.T) {
	ctx := context.Background()
	store := authmock.NewStore(authmock.WithStored(testSession))
	m := newManager(t, authmock.NewClient(), store)

	_, err := m.Restore(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Logout(ctx))

	assert.Equal(t, auth.StateAnonymous, m.State())
	_, ok := store.Stored()
	assert.False(t, ok)

	fresh := newManager(t, authmock.NewClient(), store)
	state, err := fresh.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, auth.StateAnonymous, state)
}

func TestManager_LogoutSurvivesStorageFailure(t *testing.T) {
	ctx := context.Background()
	store := authmock.NewStore(
		authmock.WithStored(testSession),
		authmock.WithClearError(errors.New("storage offline")),
	)
	m := newManager(t, authmock.NewClient(), store)

	_, err := m.Restore(ctx)
	require.NoError(t, err)

	err = m.Logout(ctx)
	assert.Error(t, err)
	assert.Equal(t, auth.StateAnonymous, m.State())
	assert.Empty(t, m.Token())
}

func TestManager_Restore(t *testing.T) {
	tests := []struct {
		name      string
		store     *authmock.Store
		wantState auth.State
		errAssert assert.ErrorAssertionFunc
	}{
		{
			name:      "no stored session",
			store:     authmock.NewStore(),
			wantState: auth.StateAnonymous,
			errAssert: assert.NoError,
		},
		{
			name:      "stored session",
			store:     authmock.NewStore(authmock.WithStored(testSession)),
			wantState: auth.StateAuthenticated,
			errAssert: assert.NoError,
		},
		{
			name:      "malformed stored session is ignored",
			store:     authmock.NewStore(authmock.WithStored(auth.Session{Token: "token-without-identity"})),
			wantState: auth.StateAnonymous,
			errAssert: assert.NoError,
		},
		{
			name:      "load failure leaves the manager anonymous",
			store:     authmock.NewStore(authmock.WithLoadError(errors.New("corrupt record"))),
			wantState: auth.StateAnonymous,
			errAssert: assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManager(t, authmock.NewClient(), tt.store)

			state, err := m.Restore(context.Background())

			tt.errAssert(t, err)
			assert.Equal(t, tt.wantState, state)
			assert.Equal(t, tt.wantState, m.State())
		})
	}
}

func TestManager_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success produces no session", func(t *testing.T) {
		client := authmock.NewClient()
		m := newManager(t, client, authmock.NewStore())

		err := m.Register(ctx, auth.Registration{
			Email: "ana@example.com", FirstName: "Ana", LastName: "Horvat", Password: "secret-1",
		})

		require.NoError(t, err)
		assert.Equal(t, 1, client.RegisterCalls())
		assert.Equal(t, auth.StateAnonymous, m.State())
	})

	t.Run("missing name fails before any network call", func(t *testing.T) {
		client := authmock.NewClient()
		m := newManager(t, client, authmock.NewStore())

		err := m.Register(ctx, auth.Registration{Email: "ana@example.com", Password: "secret-1"})

		require.Error(t, err)
		assert.True(t, serviceerr.IsValidation(err))
		assert.Zero(t, client.RegisterCalls())
	})

	t.Run("duplicate registration", func(t *testing.T) {
		client := authmock.NewClient(authmock.WithRegisterError(serviceerr.ErrConflict))
		m := newManager(t, client, authmock.NewStore())

		err := m.Register(ctx, auth.Registration{
			Email: "ana@example.com", FirstName: "Ana", LastName: "Horvat", Password: "secret-1",
		})

		assert.ErrorIs(t, err, serviceerr.ErrConflict)
	})
}

func TestManager_FederatedCompletionAfterLogout(t *testing.T) {
	ctx := context.Background()
	federated := auth.Session{
		Identity: auth.Identity{Email: "ana@gmail.example", FirstName: "Ana", LastName: "Horvat"},
		Token:    "federated-token",
	}
	store := authmock.NewStore(authmock.WithStored(testSession))
	m := newManager(t, authmock.NewClient(authmock.WithSession(federated)), store)

	_, err := m.Restore(ctx)
	require.NoError(t, err)

	require.Equal(t, auth.StateAuthenticated, m.BeginFederatedLogin())
	require.NoError(t, m.Logout(ctx))

	// The completion event outlived the logout; the last writer wins.
	sess, err := m.CompleteFederatedLogin(ctx, makeIDToken(t, nil))
	require.NoError(t, err)
	assert.Equal(t, federated, sess)
	assert.Equal(t, auth.StateAuthenticated, m.State())

	stored, ok := store.Stored()
	require.True(t, ok)
	assert.Equal(t, federated, stored)
}

func TestManager_FederatedReplacesExistingSession(t *testing.T) {
	ctx := context.Background()
	federated := auth.Session{
		Identity: auth.Identity{Email: "ana@gmail.example", FirstName: "Ana", LastName: "Horvat"},
		Token:    "federated-token",
	}
	store := authmock.NewStore(authmock.WithStored(testSession))
	m := newManager(t, authmock.NewClient(authmock.WithSession(federated)), store)

	_, err := m.Restore(ctx)
	require.NoError(t, err)

	sess, err := m.CompleteFederatedLogin(ctx, makeIDToken(t, nil))
	require.NoError(t, err)
	assert.Equal(t, federated, sess)

	current, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, federated, current)
}

func TestManager_FederatedExchangeFailure(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, authmock.NewClient(authmock.WithExchangeError(serviceerr.ErrNetwork)), authmock.NewStore())

	require.Equal(t, auth.StateAuthenticating, m.BeginFederatedLogin())

	_, err := m.CompleteFederatedLogin(ctx, makeIDToken(t, nil))
	assert.ErrorIs(t, err, serviceerr.ErrNetwork)
	assert.Equal(t, auth.StateAnonymous, m.State())
}

func TestManager_FederatedIdentityFromIDToken(t *testing.T) {
	ctx := context.Background()
	// The exchange response carries only a token; the identity comes off the
	// ID token's display claims.
	client := authmock.NewClient(authmock.WithSession(auth.Session{Token: "federated-token"}))
	m := newManager(t, client, authmock.NewStore())

	idToken := makeIDToken(t, map[string]any{
		"email":       "ana@gmail.example",
		"given_name":  "Ana",
		"family_name": "Horvat",
	})

	sess, err := m.CompleteFederatedLogin(ctx, idToken)
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{Email: "ana@gmail.example", FirstName: "Ana", LastName: "Horvat"}, sess.Identity)
	assert.Equal(t, "federated-token", sess.Token)
}

// makeIDToken signs a throwaway ID token carrying the given claims.
func makeIDToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: key}, nil)
	require.NoError(t, err)

	if claims == nil {
		claims = map[string]any{"sub": "user-1"}
	}
	raw, err := jwt.Signed(signer).Claims(claims).Serialize()
	require.NoError(t, err)

	return raw
}
