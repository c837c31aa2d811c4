package scheduler

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/gbtgo/internal/audittx"
	"github.com/vk/gbtgo/internal/ctxlog"
	"github.com/vk/gbtgo/internal/graph"
	"github.com/vk/gbtgo/internal/uidset"
)

// Rate records an effective fee rate that differs from the one the caller
// supplied for an admitted transaction.
type Rate struct {
	UID        uint32  `json:"uid" cbor:"uid" yaml:"uid"`
	FeePerSize float64 `json:"feePerSize" cbor:"feePerSize" yaml:"feePerSize"`
}

// Result is the outcome of one selection run.
type Result struct {
	// Blocks lists the uids of each projected block in admission order.
	Blocks [][]uint32
	// BlockWeights holds the weight of each block, reserved weight included.
	BlockWeights []uint64
	// Clusters lists every admitted package that had ancestors, ancestors
	// first.
	Clusters [][]uint32
	// Rates lists admitted transactions whose effective rate was adjusted.
	Rates []Rate
	// Overflow holds packages that never fit any bounded block.
	Overflow []uint32
	// Pool is the arena the run selected from.
	Pool *graph.Pool
}

// Select runs the admission loop over a discovered pool. Transactions are
// marked Used as they are admitted, so a pool can only be selected once.
func Select(ctx context.Context, pool *graph.Pool, limits Limits) (*Result, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx)

	s := &selection{
		pool:        pool,
		limits:      limits,
		modified:    newModifiedQueue(),
		blockWeight: limits.ReservedWeight,
		blockSigops: limits.ReservedSigops,
	}
	s.stack = make([]uint32, 0, pool.Len())
	items := pool.Items()
	for _, tx := range items {
		if !tx.RelativesSet {
			return nil, fmt.Errorf("transaction %d has no ancestor aggregate; run discovery first", tx.UID)
		}
	}
	slices.SortFunc(items, audittx.Compare)
	for _, tx := range items {
		s.stack = append(s.stack, tx.UID)
	}

	logger.Debug("Selection started.", "transactions", pool.Len(), "max_blocks", limits.MaxBlocks)

	for len(s.stack) > 0 || s.modified.len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if next := s.next(); next != nil {
			if s.bounded() && !s.fits(next) {
				s.overflow = append(s.overflow, next.UID)
				s.failures++
			} else {
				s.admit(next)
			}
		}

		exceededPackageTries := s.failures > limits.MaxFailures &&
			s.blockWeight > limits.BlockWeightUnits-limits.ReservedWeight
		drained := len(s.stack) == 0 && s.modified.len() == 0
		if (exceededPackageTries || drained) && s.bounded() {
			if len(s.block) == 0 {
				logger.Debug("Selection stopped on an empty block.", "blocks", len(s.result.Blocks), "overflow", len(s.overflow))
				break
			}
			s.closeBlock()
		}
	}

	if len(s.block) > 0 {
		s.result.Blocks = append(s.result.Blocks, s.block)
		s.result.BlockWeights = append(s.result.BlockWeights, s.blockWeight)
	}
	s.result.Overflow = s.overflow
	s.result.Pool = pool

	logger.Debug("Selection complete.",
		"blocks", len(s.result.Blocks),
		"clusters", len(s.result.Clusters),
		"rates", len(s.result.Rates),
		"overflow", len(s.result.Overflow),
	)
	return &s.result, nil
}

// selection is the mutable state of one Select call.
type selection struct {
	pool     *graph.Pool
	limits   Limits
	stack    []uint32
	modified *modifiedQueue
	overflow []uint32
	failures int

	block       []uint32
	blockWeight uint64
	blockSigops uint64

	result Result
}

// bounded reports whether the open block is subject to limits. The last
// block never is.
func (s *selection) bounded() bool {
	return len(s.result.Blocks) < s.limits.MaxBlocks-1
}

func (s *selection) fits(tx *audittx.AuditTx) bool {
	packageWeight := 4 * tx.AncestorSigopAdjustedSize()
	return s.blockWeight+packageWeight < s.limits.BlockWeightUnits &&
		s.blockSigops+tx.AncestorSigops() <= s.limits.BlockSigops
}

// next pops the best valid candidate from the stack or the modified queue,
// discarding stale entries on the way. It returns nil when both are empty.
func (s *selection) next() *audittx.AuditTx {
	var fromStack *audittx.AuditTx
	for len(s.stack) > 0 {
		tx := s.mustGet(s.stack[len(s.stack)-1])
		if tx.Used || tx.Modified {
			s.stack = s.stack[:len(s.stack)-1]
			continue
		}
		fromStack = tx
		break
	}

	var fromQueue *audittx.AuditTx
	for {
		p, ok := s.modified.peek()
		if !ok {
			break
		}
		tx := s.mustGet(p.UID)
		if tx.Used {
			s.modified.pop()
			continue
		}
		fromQueue = tx
		break
	}

	switch {
	case fromStack == nil && fromQueue == nil:
		return nil
	case fromQueue == nil || (fromStack != nil && audittx.Compare(fromStack, fromQueue) > 0):
		s.stack = s.stack[:len(s.stack)-1]
		return fromStack
	default:
		s.modified.pop()
		return fromQueue
	}
}

// admit places tx and its remaining ancestors into the open block.
func (s *selection) admit(tx *audittx.AuditTx) {
	members := make([]*audittx.AuditTx, 0, tx.Ancestors.Len()+1)
	for uid := range tx.Ancestors {
		if ancestor, ok := s.pool.Get(uid); ok {
			members = append(members, ancestor)
		}
	}
	slices.SortFunc(members, comparePackageOrder)
	members = append(members, tx)

	for _, member := range members {
		member.Used = true
		if member.Dirty {
			s.result.Rates = append(s.result.Rates, Rate{UID: member.UID, FeePerSize: member.FeePerSize})
		}
		s.block = append(s.block, member.UID)
		s.blockWeight += 4 * uint64(member.SigopAdjustedSize)
		s.blockSigops += uint64(member.Sigops)
		s.updateDescendants(member)
	}

	if len(members) > 1 {
		cluster := make([]uint32, len(members))
		for i, member := range members {
			cluster[i] = member.UID
		}
		s.result.Clusters = append(s.result.Clusters, cluster)
	}
}

// comparePackageOrder puts shallower ancestors first, so every member
// follows its own ancestors.
func comparePackageOrder(a, b *audittx.AuditTx) int {
	if c := a.Ancestors.Len() - b.Ancestors.Len(); c != 0 {
		return c
	}
	if a.Order() != b.Order() {
		if a.Order() > b.Order() {
			return -1
		}
		return 1
	}
	switch {
	case a.UID < b.UID:
		return -1
	case a.UID > b.UID:
		return 1
	}
	return 0
}

// updateDescendants retracts root from every transitive descendant and
// re-ranks the ones whose score changed.
func (s *selection) updateDescendants(root *audittx.AuditTx) {
	visited := uidset.New(root.Children.Len())
	var pending []uint32
	for _, uid := range root.Children.Sorted() {
		visited.Add(uid)
		pending = append(pending, uid)
	}

	for len(pending) > 0 {
		uid := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		descendant, ok := s.pool.Get(uid)
		if !ok {
			continue
		}
		for _, child := range descendant.Children.Sorted() {
			if visited.Add(child) {
				pending = append(pending, child)
			}
		}

		oldScore := descendant.RemoveRoot(root.UID, root.Fee, root.SigopAdjustedSize, root.Sigops)
		if descendant.Score() != oldScore {
			descendant.Modified = true
			s.modified.push(descendant.Priority())
		}
	}
}

// closeBlock finalizes the open block and returns overflow to the
// structures, most recent first.
func (s *selection) closeBlock() {
	s.result.Blocks = append(s.result.Blocks, s.block)
	s.result.BlockWeights = append(s.result.BlockWeights, s.blockWeight)
	s.block = nil
	s.blockWeight = s.limits.ReservedWeight
	s.blockSigops = s.limits.ReservedSigops
	s.failures = 0

	for i := len(s.overflow) - 1; i >= 0; i-- {
		tx := s.mustGet(s.overflow[i])
		switch {
		case tx.Used:
		case tx.Modified:
			s.modified.push(tx.Priority())
		default:
			s.stack = append(s.stack, tx.UID)
		}
	}
	s.overflow = nil
}

func (s *selection) mustGet(uid uint32) *audittx.AuditTx {
	tx, ok := s.pool.Get(uid)
	if !ok {
		panic(fmt.Sprintf("scheduler: uid %d missing from pool", uid))
	}
	return tx
}
