// Package sqlite implements store.Store on an embedded SQLite database. All
// queries are parameterized; no SQL is ever built from user input.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/authcore/internal/auth/domain"
	"github.com/aussiebroadwan/authcore/internal/auth/store"
	_ "modernc.org/sqlite"
)

// querier is the subset of *sql.DB / *sql.Tx the repositories need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

// NewStore opens the database at dsn and enforces foreign keys. Use
// ":memory:" for tests.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// An in-memory database exists per connection; pin the pool to one so
	// every caller sees the same schema.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Identities() store.Identities { return &identitiesRepo{q: s.db} }

func (s *Store) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{q: s.db} }

// WithTx executes fn within a transaction, automatically handling
// commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlTx.Rollback() // safe after commit
	}()

	if err := fn(&tx{t: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

type tx struct {
	t *sql.Tx
}

func (x *tx) Identities() store.Identities       { return &identitiesRepo{q: x.t} }
func (x *tx) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{q: x.t} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint translates sqlite unique-constraint failures.
func mapConstraint(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapNullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func mapIdentityRow(scan func(dest ...any) error) (domain.Identity, error) {
	var (
		id           domain.Identity
		otpSecret    sql.NullString
		otpURL       sql.NullString
		oneTimeToken sql.NullString
	)
	err := scan(
		&id.ID, &id.Email, &id.PasswordHash,
		&id.GivenName, &id.FamilyName,
		&otpSecret, &otpURL, &id.OTPEnabled,
		&oneTimeToken, &id.IsOAuth,
		&id.CreatedAt, &id.UpdatedAt,
	)
	if err != nil {
		return domain.Identity{}, err
	}

	id.OTPSecret = mapNullStringPtr(otpSecret)
	id.OTPURL = mapNullStringPtr(otpURL)
	id.OneTimeToken = mapNullStringPtr(oneTimeToken)
	id.CreatedAt = id.CreatedAt.UTC()
	id.UpdatedAt = id.UpdatedAt.UTC()
	return id, nil
}

func nowUTC() time.Time { return time.Now().UTC() }
