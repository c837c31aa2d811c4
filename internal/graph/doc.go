// Package graph owns the per-run arena of scored transactions and the
// one-time ancestor discovery pass that prepares it for selection.
//
// # Why Graph Package Exists
//
// Block template selection needs, for every candidate, the full set of
// its unconfirmed transitive parents and the fee, size and sigop totals
// over that set. Computing those from the raw input edges is a graph walk;
// maintaining them afterwards is pure arithmetic on each entry (see
// audittx). This package does the walk exactly once per run and then hands
// the arena to the scheduler.
//
// # Arena, Not Object Graph
//
// Entries reference each other only by uid:
//
//	┌──────────────┐   Inputs (raw edges)    ┌──────────────┐
//	│   child uid  │ ──────────────────────▶ │  parent uid  │
//	│  Ancestors{} │ ◀────────────────────── │  Children{}  │
//	└──────────────┘   filled by discovery   └──────────────┘
//
// The Pool maps uid → *audittx.AuditTx and is the only owner of the
// entries. There are no pointer cycles, and removing an entry is a map
// delete.
//
// # Discovery Contract
//
//   - Inputs that are not in the pool are confirmed parents and ignored.
//   - Parents are resolved before children, so a child's ancestor set is
//     its parents plus each parent's (already complete) ancestor set.
//   - Every entry receives exactly one SetAncestors call.
//   - A dependency cycle aborts the pass with ErrCycle.
//
// # Thread-Safety
//
// A Pool is not safe for concurrent use. It is built, discovered and
// consumed by a single selection run.
package graph
