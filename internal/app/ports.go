// Package app defines the application layer "ports" (interfaces) and simple
// data contracts that the core use-cases of the waitlist depend upon. It
// follows a hexagonal (ports & adapters) design: this package declares what
// the core needs, while adapter packages (SQLite storage, HTTP layer,
// metrics) provide concrete implementations. No I/O, logging, SQL, or
// network concerns belong here.
package app

import (
	"context"
	"time"

	"github.com/haukened/waitlist/internal/domain"
)

// Clock abstracts time to enable deterministic testing of timestamps.
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time
}

// WaitlistStore is the storage port for waitlist entries. Implementations
// persist the raw 16-byte id and translate to and from the external id
// through a resource id column adapter.
type WaitlistStore interface {
	// Insert persists a new entry. If e.ID is empty the store mints one via
	// its column default. Returns the stored entry (with ID set) or
	// ErrAlreadyJoined when the email is already present.
	Insert(ctx context.Context, e domain.Entry) (domain.Entry, error)
	// Get returns the entry with the given external id or ErrNotFound.
	Get(ctx context.Context, id domain.EntryID) (domain.Entry, error)
	// Position returns the 1-based rank of id in signup order.
	Position(ctx context.Context, id domain.EntryID) (int64, error)
	// Count returns the total number of entries.
	Count(ctx context.Context) (int64, error)
	// Delete removes the entry with the given external id or returns ErrNotFound.
	Delete(ctx context.Context, id domain.EntryID) error
}

// Metrics is the subset of the metrics manager the service records into.
type Metrics interface {
	Inc(name string, delta int64)
}

// Counter names recorded by the service. Lookups and leaves count only
// requests that resolved to an entry.
const (
	CounterSignups    = "waitlist_signups_total"
	CounterDuplicates = "waitlist_duplicates_total"
	CounterLookups    = "waitlist_lookups_total"
	CounterLeaves     = "waitlist_leaves_total"
)

type nopMetrics struct{}

func (nopMetrics) Inc(string, int64) {}
