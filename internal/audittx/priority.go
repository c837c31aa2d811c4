package audittx

import "math"

// Priority is the triple the ordering protocol compares. It is a value so
// that priority structures can hold a snapshot of a transaction's rank.
type Priority struct {
	UID   uint32
	Order uint32
	Score float64
}

// ComparePriority defines a strict total order over priorities:
//
//  1. score ascending
//  2. equal scores: order descending
//  3. equal orders: uid descending
//
// A structure that wants the best candidate first takes the maximum under
// this order. It returns 0 only for identical triples, so distinct uids
// never compare equal. A NaN score is a programming error and panics.
func ComparePriority(a, b Priority) int {
	if math.IsNaN(a.Score) || math.IsNaN(b.Score) {
		panic("audittx: score will never be NaN")
	}
	switch {
	case a.Score < b.Score:
		return -1
	case a.Score > b.Score:
		return 1
	}
	if a.Order != b.Order {
		if a.Order > b.Order {
			return -1
		}
		return 1
	}
	switch {
	case a.UID > b.UID:
		return -1
	case a.UID < b.UID:
		return 1
	}
	return 0
}

// Compare applies ComparePriority to two transactions. It has the
// signature expected by slices.SortFunc.
func Compare(a, b *AuditTx) int {
	return ComparePriority(a.Priority(), b.Priority())
}
