package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/gbtgo/internal/audittx"
	"github.com/vk/gbtgo/internal/ctxlog"
	"github.com/vk/gbtgo/internal/threadtx"
	"github.com/vk/gbtgo/internal/uidset"
)

var (
	// ErrCycle is returned when a transaction is, directly or
	// transitively, its own ancestor.
	ErrCycle = errors.New("dependency cycle detected")
	// ErrDuplicateUID is returned when two records share a uid.
	ErrDuplicateUID = errors.New("duplicate transaction uid")
)

// Pool is the arena of scored transactions for one selection run.
type Pool struct {
	txs  map[uint32]*audittx.AuditTx
	uids []uint32 // ascending
}

// New converts every record and indexes the result by uid. Records must be
// sorted by uid; poolstore.Store.All guarantees this.
func New(records []*threadtx.ThreadTx) (*Pool, error) {
	p := &Pool{
		txs:  make(map[uint32]*audittx.AuditTx, len(records)),
		uids: make([]uint32, 0, len(records)),
	}
	for _, rec := range records {
		if _, exists := p.txs[rec.UID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateUID, rec.UID)
		}
		if n := len(p.uids); n > 0 && p.uids[n-1] > rec.UID {
			return nil, fmt.Errorf("records must be sorted by uid: %d follows %d", rec.UID, p.uids[n-1])
		}
		p.txs[rec.UID] = audittx.FromThreadTx(rec)
		p.uids = append(p.uids, rec.UID)
	}
	return p, nil
}

// Get returns the entry for uid.
func (p *Pool) Get(uid uint32) (*audittx.AuditTx, bool) {
	tx, ok := p.txs[uid]
	return tx, ok
}

// Len returns the number of entries.
func (p *Pool) Len() int {
	return len(p.uids)
}

// Items returns every entry in ascending uid order.
func (p *Pool) Items() []*audittx.AuditTx {
	out := make([]*audittx.AuditTx, len(p.uids))
	for i, uid := range p.uids {
		out[i] = p.txs[uid]
	}
	return out
}

// SetRelatives runs ancestor discovery over the whole pool. It must finish
// before selection starts; entries that already have their relatives set
// are left untouched.
func (p *Pool) SetRelatives(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Ancestor discovery started.", "transactions", len(p.uids))

	visiting := uidset.New(0)
	for _, uid := range p.uids {
		if err := p.setRelatives(uid, visiting); err != nil {
			return err
		}
	}

	withAncestors := 0
	for _, tx := range p.txs {
		if tx.Ancestors.Len() > 0 {
			withAncestors++
		}
	}
	logger.Debug("Ancestor discovery complete.", "transactions", len(p.uids), "with_ancestors", withAncestors)
	return nil
}

// setRelatives resolves uid after all of its in-pool parents. visiting holds
// the uids on the current recursion path.
func (p *Pool) setRelatives(uid uint32, visiting uidset.Set) error {
	tx, ok := p.txs[uid]
	if !ok || tx.RelativesSet {
		return nil
	}
	if !visiting.Add(uid) {
		return fmt.Errorf("%w: transaction %d is its own ancestor", ErrCycle, uid)
	}

	ancestors := uidset.New(len(tx.Inputs))
	for _, parentUID := range tx.Inputs {
		parent, ok := p.txs[parentUID]
		if !ok {
			continue
		}
		if err := p.setRelatives(parentUID, visiting); err != nil {
			return err
		}
		ancestors.Add(parentUID)
		ancestors.Union(parent.Ancestors)
		parent.Children.Add(uid)
	}

	var totalFee, totalSize, totalSigops uint64
	for ancestorUID := range ancestors {
		ancestor := p.txs[ancestorUID]
		totalFee += ancestor.Fee
		totalSize += uint64(ancestor.SigopAdjustedSize)
		totalSigops += uint64(ancestor.Sigops)
	}
	tx.SetAncestors(ancestors, totalFee, totalSize, totalSigops)

	visiting.Remove(uid)
	return nil
}
