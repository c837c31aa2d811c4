// Package audittx implements the scored pool entry used by block template
// selection.
//
// Each AuditTx carries its own fee and sigop-adjusted size, plus a running
// aggregate over every pending ancestor. Its score is the smaller of its own
// adjusted fee rate and the fee rate of its whole ancestor package, so a
// cheap parent drags down a generous child and a generous child lifts a
// parent it pays for.
//
// The aggregate is assigned once by the ancestor discovery pass
// (SetAncestors) and then shrinks one ancestor at a time as ancestors are
// admitted elsewhere (RemoveRoot). The totals are kept incrementally and
// the score is rederived from them on each change; the ancestor set is
// never rescanned.
//
// ComparePriority is the ordering protocol shared by every priority
// structure in the selection loop.
package audittx
