// Package postgres stores contacts in PostgreSQL through a pgx connection
// pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/contactbook/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	phone      TEXT,
	address    TEXT,
	email      TEXT,
	due_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	due_date   TEXT
)`

const listContacts = `
SELECT id, name, phone, address, email, due_amount, due_date
FROM contacts
ORDER BY lower(name), id`

const insertContact = `
INSERT INTO contacts (name, phone, address, email, due_amount, due_date)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

// DBTX is the subset of pgx shared by pools, connections and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

var _ core.Store = (*Store)(nil)

// Store is a core.Store backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to url, verifies the connection and ensures the contacts
// table exists.
func Open(ctx context.Context, url string, cfg PoolConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the contacts table if it does not exist.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create contacts table: %w", err)
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ListContacts returns every contact ordered by name, case-insensitively.
func (s *Store) ListContacts(ctx context.Context) ([]core.Contact, error) {
	return listAll(ctx, s.pool)
}

func listAll(ctx context.Context, db DBTX) ([]core.Contact, error) {
	rows, err := db.Query(ctx, listContacts)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []core.Contact
	for rows.Next() {
		var (
			c                            core.Contact
			phone, address, email, dueDt pgtype.Text
		)
		if err := rows.Scan(&c.ID, &c.Name, &phone, &address, &email, &c.DueAmount, &dueDt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		c.Phone = phone.String
		c.Address = address.String
		c.Email = email.String
		c.DueDate = dueDt.String
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// Begin starts the transaction an import runs inside.
func (s *Store) Begin(ctx context.Context) (core.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// Tx is one import transaction. Each insert runs under its own savepoint;
// in PostgreSQL a failed statement otherwise poisons the whole transaction.
type Tx struct {
	tx pgx.Tx
	n  int
}

// Insert adds c and returns its id.
func (t *Tx) Insert(ctx context.Context, c core.Contact) (int64, error) {
	if c.Name == "" {
		return 0, core.ErrNameRequired
	}
	t.n++
	sp := fmt.Sprintf("sp_%d", t.n)
	if _, err := t.tx.Exec(ctx, "SAVEPOINT "+sp); err != nil {
		return 0, fmt.Errorf("create savepoint: %w", err)
	}

	var id int64
	err := t.tx.QueryRow(ctx, insertContact,
		c.Name,
		toPgText(c.Phone),
		toPgText(c.Address),
		toPgText(c.Email),
		c.DueAmount,
		toPgText(c.DueDate),
	).Scan(&id)
	if err != nil {
		_, _ = t.tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+sp)
		return 0, fmt.Errorf("insert contact: %w", err)
	}

	if _, err := t.tx.Exec(ctx, "RELEASE SAVEPOINT "+sp); err != nil {
		return 0, fmt.Errorf("release savepoint: %w", err)
	}
	return id, nil
}

// Commit commits the import.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback discards the import.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// toPgText stores empty strings as NULL.
func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
