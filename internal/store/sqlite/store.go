// Package sqlite stores contacts in a single-file SQLite database using the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/contactbook/internal/core"
)

const driverName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	phone      TEXT,
	address    TEXT,
	email      TEXT,
	due_amount REAL NOT NULL DEFAULT 0,
	due_date   TEXT
)`

const listContacts = `
SELECT id, name, COALESCE(phone, ''), COALESCE(address, ''), COALESCE(email, ''),
       due_amount, COALESCE(due_date, '')
FROM contacts
ORDER BY name COLLATE NOCASE, id`

const insertContact = `
INSERT INTO contacts (name, phone, address, email, due_amount, due_date)
VALUES (?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), ?, NULLIF(?, ''))`

var _ core.Store = (*Store)(nil)

// Store is a core.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// contacts table exists. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite has one writer; a single connection also keeps :memory:
	// databases alive across calls.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.applyPragmas(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) applyPragmas(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// EnsureSchema creates the contacts table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create contacts table: %w", err)
	}
	return nil
}

// BackupPath names a timestamped backup next to the database at path.
func BackupPath(path string, now time.Time) string {
	return fmt.Sprintf("%s.%s.bak", path, now.Format("20060102_150405"))
}

// Backup writes a consistent copy of the database to dest, which must not
// already exist.
func (s *Store) Backup(ctx context.Context, dest string) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("backup to %s: %w", dest, err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ListContacts returns every contact ordered by name, case-insensitively.
func (s *Store) ListContacts(ctx context.Context) ([]core.Contact, error) {
	rows, err := s.db.QueryContext(ctx, listContacts)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []core.Contact
	for rows.Next() {
		var c core.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.Email, &c.DueAmount, &c.DueDate); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// Begin starts the transaction an import runs inside.
func (s *Store) Begin(ctx context.Context) (core.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// Tx is one import transaction. Each insert runs under its own savepoint so
// a rejected row leaves earlier rows in place.
type Tx struct {
	tx *sql.Tx
	n  int
}

// Insert adds c and returns its row id.
func (t *Tx) Insert(ctx context.Context, c core.Contact) (int64, error) {
	if c.Name == "" {
		return 0, core.ErrNameRequired
	}
	t.n++
	sp := fmt.Sprintf("sp_%d", t.n)
	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT "+sp); err != nil {
		return 0, fmt.Errorf("create savepoint: %w", err)
	}

	res, err := t.tx.ExecContext(ctx, insertContact,
		c.Name, c.Phone, c.Address, c.Email, c.DueAmount, c.DueDate)
	if err != nil {
		_, _ = t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+sp)
		_, _ = t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+sp)
		return 0, fmt.Errorf("insert contact: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+sp); err != nil {
		return 0, fmt.Errorf("release savepoint: %w", err)
	}

	return res.LastInsertId()
}

// Commit commits the import.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

// Rollback discards the import.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback()
}
