package core

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// fakeStore is an in-memory Store that records transaction calls.
type fakeStore struct {
	mu sync.Mutex

	rows   []Contact
	nextID int64

	beginErr  error
	commitErr error
	listErr   error
	insertErr func(Contact) error

	// blockBegin makes Begin wait for ctx to end before succeeding.
	blockBegin bool

	begun      int
	committed  int
	rolledBack int
}

type fakeTx struct {
	s       *fakeStore
	pending []Contact
	closed  bool
}

var errTxClosed = errors.New("tx closed")

func (s *fakeStore) Begin(ctx context.Context) (Tx, error) {
	if s.blockBegin {
		<-ctx.Done()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.begun++
	return &fakeTx{s: s}, nil
}

func (s *fakeStore) ListContacts(ctx context.Context) ([]Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := append([]Contact(nil), s.rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (tx *fakeTx) Insert(ctx context.Context, c Contact) (int64, error) {
	if tx.closed {
		return 0, errTxClosed
	}
	if c.Name == "" {
		return 0, ErrNameRequired
	}
	if tx.s.insertErr != nil {
		if err := tx.s.insertErr(c); err != nil {
			return 0, err
		}
	}
	tx.pending = append(tx.pending, c)
	return int64(len(tx.pending)), nil
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	if tx.closed {
		return errTxClosed
	}
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	if tx.s.commitErr != nil {
		return tx.s.commitErr
	}
	tx.closed = true
	for _, c := range tx.pending {
		tx.s.nextID++
		c.ID = tx.s.nextID
		tx.s.rows = append(tx.s.rows, c)
	}
	tx.s.committed++
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if tx.closed {
		return errTxClosed
	}
	tx.closed = true
	tx.pending = nil
	tx.s.mu.Lock()
	tx.s.rolledBack++
	tx.s.mu.Unlock()
	return nil
}
