package core

import "context"

// Maximum stored byte lengths for contact text fields. Longer values are
// truncated on import, never rejected.
const (
	NameMax    = 199
	PhoneMax   = 49
	AddressMax = 199
	EmailMax   = 199
	DueDateMax = 49
)

// Bounds for an imported due amount. Values outside the range import as zero.
const (
	DueAmountMin = -1e12
	DueAmountMax = 1e12
)

// Contact is a single address-book entry.
type Contact struct {
	ID        int64
	Name      string
	Phone     string
	Address   string
	Email     string
	DueAmount float64
	DueDate   string // ISO calendar date text, not validated here
}

// Source yields stored contacts for export.
type Source interface {
	// ListContacts returns every contact ordered by name, case-insensitively.
	ListContacts(ctx context.Context) ([]Contact, error)
}

// Store is the persistent contact store an import writes into.
type Store interface {
	Source
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a store transaction spanning one whole import. Insert rejects a
// contact with an empty name with ErrNameRequired and leaves the
// transaction usable.
type Tx interface {
	Insert(ctx context.Context, c Contact) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Tolerance selects how an import reacts to a bad record.
type Tolerance int

const (
	// Lenient counts bad records as failed and keeps going.
	Lenient Tolerance = iota
	// Strict rolls back and aborts on the first bad record.
	Strict
)

func (t Tolerance) String() string {
	if t == Strict {
		return "strict"
	}
	return "lenient"
}

// Execution selects whether an import persists anything.
type Execution int

const (
	// Commit inserts records inside a single transaction.
	Commit Execution = iota
	// DryRun parses and converts records without touching the store.
	DryRun
)

func (e Execution) String() string {
	if e == DryRun {
		return "dry-run"
	}
	return "commit"
}

// ImportOptions holds the two independent import policies.
type ImportOptions struct {
	Tolerance Tolerance
	Execution Execution
}

// Tally counts the outcome of one import. The header row is never counted.
type Tally struct {
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
}
