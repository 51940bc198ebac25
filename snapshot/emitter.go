// Package snapshot implements change-detection over a book.OrderBook's
// top-of-book view and formats it as the MBP-10 CSV line described in
// spec.md §4.3.
package snapshot

import "github.com/0x5487/mbp-reconstructor/book"

// Source is the read-only slice of book.OrderBook the Emitter needs.
// Kept as an interface so tests can fake a book without constructing a
// real one.
type Source interface {
	GetTop10Snapshot() book.Top10
}

// Snapshot is a timestamped top-10 view, ready for formatting.
type Snapshot struct {
	TimestampNS uint64
	Top10       book.Top10
}

// Emitter holds the current/previous top-10 views and decides whether a
// given (book, timestamp) pair is worth emitting. The timestamp is
// excluded from the diff: only the visible depth arrays are compared.
type Emitter struct {
	current  book.Top10
	previous book.Top10
	hasPrev  bool

	generated uint64
	skipped   uint64
}

// NewEmitter creates an Emitter with no prior state — its first call
// always emits.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Observe fetches the current top-10 from src and reports whether it
// differs from the last emitted view. On a true return, the emitter's
// internal "previous" state is updated to the new view and the caller
// should format and write it; on false nothing changes and the skip
// counter is incremented.
func (e *Emitter) Observe(src Source, timestampNS uint64) (Snapshot, bool) {
	e.current = src.GetTop10Snapshot()

	if e.hasPrev && e.current.Equal(e.previous) {
		e.skipped++
		return Snapshot{}, false
	}

	e.previous = e.current
	e.hasPrev = true
	e.generated++

	return Snapshot{TimestampNS: timestampNS, Top10: e.current}, true
}

// Generated returns the number of snapshots actually emitted.
func (e *Emitter) Generated() uint64 {
	return e.generated
}

// Skipped returns the number of times Observe found no change.
func (e *Emitter) Skipped() uint64 {
	return e.skipped
}
