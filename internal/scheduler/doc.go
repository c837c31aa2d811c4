// Package scheduler builds projected block templates from a discovered
// transaction pool.
//
// # Why Scheduler Exists
//
// Given a pool whose ancestor aggregates are known (see graph), the
// scheduler decides which transactions go into which of the next few
// blocks. It is a single greedy pass: the best remaining package is
// admitted, its descendants are re-scored, and the pass moves on. Nothing
// admitted is ever taken back.
//
// # How It Works
//
// Two structures rank candidates by the ordering protocol of audittx:
//
//	primary stack   every transaction, sorted once, best at the end
//	modified queue  max-heap of transactions whose score changed
//
// Each step takes the better of the two tops, skipping stale entries
// (admitted transactions, or stack entries that have moved to the queue):
//
//  1. If the package does not fit the current block it goes to overflow.
//  2. Otherwise the package is admitted ancestors first, and every
//     descendant of every admitted member has that member retracted from
//     its aggregate. Descendants whose score moved are (re)ranked in the
//     modified queue.
//  3. When both structures drain, or too many packages in a row failed to
//     fit a nearly full block, the block is closed and overflow is
//     returned to the structures for the next block.
//
// The last block has no limits. It collects whatever remains, which makes
// the final projection cover the whole pool.
//
// # Determinism
//
// The ordering protocol is a strict total order and ties inside a package
// are broken by uid, so the same pool always yields the same templates.
//
// # Generator
//
// Generator keeps the pool in a poolstore.Store between runs, so callers
// can apply additions and removals and ask for a fresh projection. Every
// run rebuilds the arena from the stored records; no scoring state
// survives a run.
package scheduler
