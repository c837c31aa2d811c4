package inmemorypool

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/vk/gbtgo/internal/ctxlog"
	"github.com/vk/gbtgo/internal/poolstore"
	"github.com/vk/gbtgo/internal/threadtx"
)

// Store implements the poolstore.Store interface using a map and a mutex
// for thread-safe concurrent access.
type Store struct {
	mu      sync.RWMutex
	records map[uint32]*threadtx.ThreadTx
}

// New creates a new, empty in-memory pool store.
func New() poolstore.Store {
	return &Store{
		records: make(map[uint32]*threadtx.ThreadTx),
	}
}

// Put adds or replaces a record.
func (s *Store) Put(ctx context.Context, rec *threadtx.ThreadTx) error {
	if rec == nil {
		return errors.New("cannot store a nil transaction record")
	}
	c := rec.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[c.UID]; exists {
		ctxlog.FromContext(ctx).Debug("Replacing pool record.", "uid", c.UID)
	}
	s.records[c.UID] = c
	return nil
}

// Remove deletes a record by uid.
func (s *Store) Remove(ctx context.Context, uid uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[uid]; !exists {
		return false
	}
	delete(s.records, uid)
	return true
}

// Get retrieves a copy of a single record.
func (s *Store) Get(ctx context.Context, uid uint32) (*threadtx.ThreadTx, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[uid]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// All returns copies of every record, sorted by uid.
func (s *Store) All(ctx context.Context) []*threadtx.ThreadTx {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*threadtx.ThreadTx, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	slices.SortFunc(out, func(a, b *threadtx.ThreadTx) int {
		switch {
		case a.UID < b.UID:
			return -1
		case a.UID > b.UID:
			return 1
		}
		return 0
	})
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Reset drops every record.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[uint32]*threadtx.ThreadTx)
}
