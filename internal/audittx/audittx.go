package audittx

import (
	"math"

	"github.com/vk/gbtgo/internal/threadtx"
	"github.com/vk/gbtgo/internal/uidset"
)

// AuditTx is a single candidate in the block template pool. Its own
// metrics are fixed at construction; the ancestor aggregate and the derived
// score change only through SetAncestors and RemoveRoot.
type AuditTx struct {
	UID   uint32
	order uint32

	Fee  uint64
	Size uint32
	// SigopAdjustedSize is Size inflated so that sigop-heavy transactions
	// pay for the sigop budget they consume. Always >= 1.
	SigopAdjustedSize uint32
	Sigops            uint32

	adjustedFeePerSize float64
	// FeePerSize is the caller's rate, or the sigop-adjusted rate when the
	// transaction is sigop-bound.
	FeePerSize float64

	Inputs []uint32

	// RelativesSet is true once the ancestor aggregate has been assigned.
	RelativesSet bool
	// Ancestors holds the uids of not-yet-admitted transitive parents.
	Ancestors uidset.Set
	// Children holds the uids of direct dependents in the pool.
	Children uidset.Set

	ancestorFee               uint64
	ancestorSigopAdjustedSize uint64
	ancestorSigops            uint64

	// score must stay private: nothing outside this type may assign it,
	// which is what keeps NaN out of the ordering protocol.
	score float64

	// Used marks the transaction as admitted into a block. Terminal.
	Used bool
	// Modified is set while the transaction is ranked by the modified
	// queue instead of the primary stack.
	Modified bool
	// Dirty is set when FeePerSize differs from the caller-supplied rate.
	Dirty bool
}

// FromThreadTx converts a boundary record into a pool entry with self-only
// aggregates and a zero score. Conversion is total: there is no error path.
func FromThreadTx(tx *threadtx.ThreadTx) *AuditTx {
	fee := truncateFee(tx.Fee)
	adjustedSize := sigopAdjustedSize(tx.Size, tx.Sigops)

	// Priority deltas are not supported, so the caller's rate stands unless
	// the transaction is sigop-bound.
	feePerSize := tx.FeePerSize
	if isSigopBound(tx.Size, tx.Sigops) {
		feePerSize = calcFeeRate(fee, float64(adjustedSize))
	}

	var inputs []uint32
	if len(tx.Inputs) > 0 {
		inputs = append(inputs, tx.Inputs...)
	}

	return &AuditTx{
		UID:                       tx.UID,
		order:                     tx.Order,
		Fee:                       fee,
		Size:                      tx.Size,
		SigopAdjustedSize:         adjustedSize,
		Sigops:                    tx.Sigops,
		adjustedFeePerSize:        calcFeeRate(fee, float64(adjustedSize)),
		FeePerSize:                feePerSize,
		Inputs:                    inputs,
		Ancestors:                 uidset.New(0),
		Children:                  uidset.New(0),
		ancestorFee:               fee,
		ancestorSigopAdjustedSize: uint64(adjustedSize),
		ancestorSigops:            uint64(tx.Sigops),
		Dirty:                     feePerSize != tx.FeePerSize,
	}
}

// Score returns the admission priority.
func (tx *AuditTx) Score() float64 {
	return tx.score
}

// Order returns the tie-break key supplied by the caller.
func (tx *AuditTx) Order() uint32 {
	return tx.order
}

// AdjustedFeePerSize returns Fee / SigopAdjustedSize.
func (tx *AuditTx) AdjustedFeePerSize() float64 {
	return tx.adjustedFeePerSize
}

// AncestorFee returns the fee of the transaction plus all pending ancestors.
func (tx *AuditTx) AncestorFee() uint64 {
	return tx.ancestorFee
}

// AncestorSigopAdjustedSize returns the sigop-adjusted size of the
// transaction plus all pending ancestors.
func (tx *AuditTx) AncestorSigopAdjustedSize() uint64 {
	return tx.ancestorSigopAdjustedSize
}

// AncestorSigops returns the sigops of the transaction plus all pending
// ancestors.
func (tx *AuditTx) AncestorSigops() uint64 {
	return tx.ancestorSigops
}

// Priority returns the key used by the ordering protocol.
func (tx *AuditTx) Priority() Priority {
	return Priority{UID: tx.UID, Order: tx.order, Score: tx.score}
}

// SetAncestors installs the full ancestor aggregate computed by the
// discovery pass. The totals cover the ancestors only; the transaction's
// own metrics are added here. The set is owned by tx afterwards. A second
// call replaces the previous aggregate, it does not accumulate.
func (tx *AuditTx) SetAncestors(ancestors uidset.Set, totalFee uint64, totalSigopAdjustedSize uint64, totalSigops uint64) {
	if ancestors == nil {
		ancestors = uidset.New(0)
	}
	tx.Ancestors = ancestors
	tx.ancestorFee = addSaturating(tx.Fee, totalFee)
	tx.ancestorSigopAdjustedSize = addSaturating(uint64(tx.SigopAdjustedSize), totalSigopAdjustedSize)
	tx.ancestorSigops = addSaturating(uint64(tx.Sigops), totalSigops)
	tx.calcNewScore()
	tx.RelativesSet = true
}

// RemoveRoot retracts one admitted ancestor from the aggregate. The metrics
// passed are the ancestor's own, not its aggregate. Unknown uids are a
// no-op, which makes repeated calls for the same ancestor harmless. The
// score from before the call is returned so the caller can tell whether
// the transaction needs re-ranking.
func (tx *AuditTx) RemoveRoot(rootUID uint32, rootFee uint64, rootSigopAdjustedSize uint32, rootSigops uint32) float64 {
	oldScore := tx.score
	if tx.Ancestors.Remove(rootUID) {
		// Totals never drop below the transaction's own contribution.
		tx.ancestorFee = subFloor(tx.ancestorFee, rootFee, tx.Fee)
		tx.ancestorSigopAdjustedSize = subFloor(tx.ancestorSigopAdjustedSize, uint64(rootSigopAdjustedSize), uint64(tx.SigopAdjustedSize))
		tx.ancestorSigops = subFloor(tx.ancestorSigops, uint64(rootSigops), uint64(tx.Sigops))
		tx.calcNewScore()
	}
	return oldScore
}

// calcNewScore must never assign NaN.
func (tx *AuditTx) calcNewScore() {
	score := min(tx.adjustedFeePerSize, calcFeeRate(tx.ancestorFee, float64(tx.ancestorSigopAdjustedSize)))
	if math.IsNaN(score) {
		panic("audittx: derived score is NaN")
	}
	tx.score = score
}

func calcFeeRate(fee uint64, size float64) float64 {
	if size == 0 {
		size = 1
	}
	return float64(fee) / size
}

// sigopAdjustedSize is max(ceil(size/4), sigops*5), clamped to [1, MaxUint32].
func sigopAdjustedSize(size, sigops uint32) uint32 {
	adjusted := max((uint64(size)+3)/4, uint64(sigops)*5, 1)
	if adjusted > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(adjusted)
}

func isSigopBound(size, sigops uint32) bool {
	return uint64(size) < uint64(sigops)*20
}

// truncateFee converts a boundary decimal to an integer fee. Values that
// cannot be represented collapse to 0 (NaN, negative) or MaxUint64.
func truncateFee(fee float64) uint64 {
	switch {
	case math.IsNaN(fee) || fee <= 0:
		return 0
	case fee >= math.MaxUint64:
		return math.MaxUint64
	default:
		return uint64(fee)
	}
}

func addSaturating(a, b uint64) uint64 {
	if sum := a + b; sum >= a {
		return sum
	}
	return math.MaxUint64
}

func subFloor(total, delta, floor uint64) uint64 {
	if delta > total || total-delta < floor {
		return floor
	}
	return total - delta
}
