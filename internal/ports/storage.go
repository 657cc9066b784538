// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

// Mode selects how a ledger is opened.
type Mode int

const (
	// ReadIfExists opens an existing ledger read-only. An absent ledger is
	// reported as ErrStoreNotFound, never created.
	ReadIfExists Mode = iota

	// ReadWriteIfExists opens an existing ledger for mutation. An absent
	// ledger is reported as ErrStoreNotFound, never created.
	ReadWriteIfExists

	// ReadWriteCreate opens the ledger for mutation, creating an empty one
	// if the directory has none yet.
	ReadWriteCreate
)

// String returns the mode name used in logs and errors.
func (m Mode) String() string {
	switch m {
	case ReadIfExists:
		return "read-if-exists"
	case ReadWriteIfExists:
		return "read-write-if-exists"
	case ReadWriteCreate:
		return "read-write-create"
	default:
		return "unknown"
	}
}

// Writable reports whether the mode grants mutation access.
func (m Mode) Writable() bool {
	return m == ReadWriteIfExists || m == ReadWriteCreate
}

// Store opens the watched-state ledger that governs one directory.
// Each directory has at most one ledger. There is no registry of ledgers:
// a ledger is found purely from the directory it lives in.
//
// Concurrency: Open holds an advisory lock on the ledger until Close
// (shared for ReadIfExists, exclusive otherwise). Lock acquisition waits a
// bounded time and fails with ErrLockTimeout rather than stalling.
type Store interface {
	// Open returns a handle on the ledger for dir. The handle is owned
	// exclusively by the caller and must be closed when the operation ends.
	Open(dir string, mode Mode) (Ledger, error)
}

// Ledger is one open ledger and its in-memory record. Handles are never
// shared or cached across operations.
type Ledger interface {
	// Load reads the whole ledger once and materializes its entries.
	// Fails with ErrEncoding if the bytes are not valid UTF-8.
	Load() error

	// Contains reports whether name is recorded. Exact, case-sensitive match
	// on the base name. Returns false before Load.
	Contains(name string) bool

	// Entries returns a copy of the recorded names in insertion order.
	Entries() []string

	// Add records name by appending one line. Idempotent: an already recorded
	// name is a no-op without any write. The entry is durable once Add returns
	// nil; on error the in-memory record is unchanged.
	Add(name string) error

	// Remove drops every occurrence of name and rewrites the ledger.
	// Idempotent: removing an absent name performs no write.
	Remove(name string) error

	// Close releases the lock and the file handle. Safe to call multiple times.
	Close() error
}
