// Package appcore wires the discovery engine and session manager for a
// presentation layer. The embedding app drives both from its UI events and
// renders their snapshots; nothing here renders or routes.
package appcore

import (
	"context"
	"fmt"
	"net/http"

	"github.com/valkey-io/valkey-go"

	slogctx "github.com/veqryn/slog-context"

	"github.com/dinver/appcore/internal/auth"
	authmemory "github.com/dinver/appcore/internal/auth/memory"
	authsqlite "github.com/dinver/appcore/internal/auth/sqlite"
	authvalkey "github.com/dinver/appcore/internal/auth/valkey"
	"github.com/dinver/appcore/internal/catalog"
	"github.com/dinver/appcore/internal/config"
	"github.com/dinver/appcore/internal/remote"
)

// App bundles the two engines over a shared HTTP client and session store.
type App struct {
	Discovery *catalog.Engine
	Sessions  *auth.Manager

	closeFn func() error
}

// New builds the app core from configuration. A nil cfg uses defaults.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	store, closeFn, err := newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialising the session store: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.API.Timeout}

	catalogClient, err := remote.NewCatalogClient(cfg.API, cfg.Discovery, httpClient)
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("initialising the catalog client: %w", err)
	}

	authClient, err := remote.NewAuthClient(cfg.API, httpClient)
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("initialising the auth client: %w", err)
	}

	engine, err := catalog.NewEngine(catalogClient)
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("initialising the discovery engine: %w", err)
	}

	manager, err := auth.NewManager(authClient, store)
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("initialising the session manager: %w", err)
	}

	slogctx.Info(ctx, "Initialised the app core", "storeBackend", cfg.Store.Backend)

	return &App{
		Discovery: engine,
		Sessions:  manager,
		closeFn:   closeFn,
	}, nil
}

// Close releases the session store resources.
func (a *App) Close() error {
	return a.closeFn()
}

func newStore(ctx context.Context, cfg *config.Config) (auth.Store, func() error, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		store, err := authsqlite.Open(ctx, cfg.Store.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.BackendValKey:
		client, err := valkey.NewClient(valkey.ClientOption{
			InitAddress: []string{cfg.Store.ValKey.Address},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("creating valkey client: %w", err)
		}
		closeFn := func() error {
			client.Close()
			return nil
		}
		return authvalkey.NewStore(client, cfg.Store.ValKey.Prefix), closeFn, nil

	case config.BackendMemory:
		return authmemory.NewStore(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend: %q", cfg.Store.Backend)
	}
}
