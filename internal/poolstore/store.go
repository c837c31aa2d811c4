// Package poolstore defines the interface for storing the candidate
// transaction records that block template runs are computed from.
//
// # Why Pool Store Exists
//
// Selection mutates every pool entry it touches (ancestor aggregates,
// scores, admission flags). The pool store keeps the immutable input side
// apart from that: it holds the boundary records (threadtx.ThreadTx) keyed by
// uid, and each selection run builds a fresh arena of scored entries from a
// snapshot of it. Records therefore survive across runs and can be updated
// incrementally (added, replaced, removed) between them, while no mutable
// selection state ever leaks from one run into the next.
//
// # Lifecycle and Usage
//
//  1. **Populated** by a full load (Reset + Put) or incrementally by Put/Remove
//  2. **Snapshotted** with All() at the start of every selection run
//  3. **Discarded** with the generator that owns it
package poolstore

import (
	"context"

	"github.com/vk/gbtgo/internal/threadtx"
)

// Store is the interface for managing the set of candidate records.
//
// Implementations MUST be safe for concurrent use: the generator may be
// updated from one goroutine while another (for example the health check)
// reads its size.
type Store interface {
	// Put inserts or replaces the record for rec.UID. The store keeps its
	// own copy; later changes to rec are not observed.
	Put(ctx context.Context, rec *threadtx.ThreadTx) error

	// Remove deletes the record for uid and reports whether it existed.
	Remove(ctx context.Context, uid uint32) bool

	// Get returns the stored record for uid.
	Get(ctx context.Context, uid uint32) (*threadtx.ThreadTx, bool)

	// All returns a snapshot of every record in ascending uid order. The
	// records are copies and safe for the caller to mutate.
	All(ctx context.Context) []*threadtx.ThreadTx

	// Len returns the number of stored records.
	Len() int

	// Reset removes every record.
	Reset(ctx context.Context)
}
