package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/contactbook/internal/config"
)

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.db")
	s, err := Open(context.Background(), config.DatabaseConfig{Driver: "SQLite", URL: path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	contacts, err := s.ListContacts(context.Background())
	if err != nil {
		t.Fatalf("ListContacts() error = %v", err)
	}
	if len(contacts) != 0 {
		t.Errorf("new database has %d contacts, want 0", len(contacts))
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "mysql", URL: "x"})
	if err == nil {
		t.Fatal("Open() expected error for unknown driver")
	}
}
