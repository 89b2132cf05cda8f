package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExport(t *testing.T) {
	store := &fakeStore{rows: []Contact{
		{ID: 1, Name: "bob", Phone: "2", DueAmount: 1.5},
		{ID: 2, Name: "Alice", Address: "1 Main St, Apt 2", Email: "a@example.com", DueAmount: 10, DueDate: "2026-02-01"},
		{ID: 3, Name: `Carl "CJ"`, Address: "line1\nline2"},
	}}

	var buf bytes.Buffer
	n, err := Export(context.Background(), store, &buf)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Export() count = %d, want 3", n)
	}

	want := "Name,Phone,Address,Email,DueAmount,DueDate\n" +
		"Alice,,\"1 Main St, Apt 2\",a@example.com,10.00,2026-02-01\n" +
		"bob,2,,,1.50,\n" +
		"\"Carl \"\"CJ\"\"\",,\"line1\nline2\",,0.00,\n"
	if got := buf.String(); got != want {
		t.Errorf("Export() output =\n%q\nwant\n%q", got, want)
	}
}

func TestExport_EmptyStore(t *testing.T) {
	var buf bytes.Buffer
	n, err := Export(context.Background(), &fakeStore{}, &buf)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Export() count = %d, want 0", n)
	}
	if got := buf.String(); got != "Name,Phone,Address,Email,DueAmount,DueDate\n" {
		t.Errorf("Export() output = %q, want header only", got)
	}
}

func TestExport_ListFailure(t *testing.T) {
	boom := errors.New("no such table: contacts")
	_, err := Export(context.Background(), &fakeStore{listErr: boom}, &bytes.Buffer{})
	if !errors.Is(err, boom) {
		t.Errorf("Export() error = %v, want %v", err, boom)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestExport_WriteFailure(t *testing.T) {
	store := &fakeStore{rows: []Contact{{Name: "Ann"}}}
	_, err := Export(context.Background(), store, failingWriter{})
	if !errors.Is(err, ErrStreamIO) {
		t.Errorf("Export() error = %v, want ErrStreamIO", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := &fakeStore{rows: []Contact{
		{Name: "Ann", Phone: "555", Address: "1 Main St, Apt 2", Email: "ann@example.com", DueAmount: 12.34, DueDate: "2026-03-01"},
		{Name: `Quote "Q"`, Address: "multi\nline", DueAmount: -1},
		{Name: "Zed"},
	}}

	var buf bytes.Buffer
	if _, err := Export(context.Background(), src, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	dst := &fakeStore{}
	tally, err := Import(context.Background(), dst, strings.NewReader(buf.String()),
		ImportOptions{Tolerance: Strict, Execution: Commit})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if tally.Imported != 3 || tally.Failed != 0 {
		t.Fatalf("tally = %+v, want imported=3", tally)
	}

	want, _ := src.ListContacts(context.Background())
	got, _ := dst.ListContacts(context.Background())
	for i := range want {
		w, g := want[i], got[i]
		w.ID, g.ID = 0, 0
		if g != w {
			t.Errorf("contact %d = %+v, want %+v", i, g, w)
		}
	}
}
