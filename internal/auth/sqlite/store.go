// Package authsqlite persists the current session in a local SQLite file,
// the durable layer that survives process restarts.
package authsqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/samber/oops"

	// Register the sqlite driver.
	_ "modernc.org/sqlite"

	"github.com/dinver/appcore/internal/auth"
	"github.com/dinver/appcore/internal/serviceerr"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Store struct {
	db *sql.DB
}

var _ = auth.Store(&Store{})

// Open opens (creating if needed) the session database at path and applies
// pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, oops.In("session store").Wrapf(err, "opening sqlite database")
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, oops.In("session store").Wrapf(err, "setting goose dialect")
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return nil, oops.In("session store").WithContext(ctx).Wrapf(err, "applying migrations")
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context) (auth.Session, error) {
	var sess auth.Session
	err := s.db.QueryRowContext(ctx,
		"SELECT email, first_name, last_name, token FROM session WHERE id = 1",
	).Scan(&sess.Identity.Email, &sess.Identity.FirstName, &sess.Identity.LastName, &sess.Token)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Session{}, serviceerr.ErrNotFound
	}
	if err != nil {
		return auth.Session{}, fmt.Errorf("loading session row: %w", err)
	}

	return sess, nil
}

// Save upserts the single session row, so identity and token always land
// together.
func (s *Store) Save(ctx context.Context, sess auth.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session (id, email, first_name, last_name, token)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email = excluded.email,
		   first_name = excluded.first_name,
		   last_name = excluded.last_name,
		   token = excluded.token`,
		sess.Identity.Email, sess.Identity.FirstName, sess.Identity.LastName, sess.Token,
	)
	if err != nil {
		return fmt.Errorf("saving session row: %w", err)
	}

	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session WHERE id = 1"); err != nil {
		return fmt.Errorf("deleting session row: %w", err)
	}

	return nil
}
