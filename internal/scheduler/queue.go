package scheduler

import (
	"container/heap"

	"github.com/vk/gbtgo/internal/audittx"
)

// modifiedQueue is a max-priority queue of transactions keyed by uid. A uid
// appears at most once; pushing it again re-ranks it in place.
type modifiedQueue struct {
	h priorityHeap
}

func newModifiedQueue() *modifiedQueue {
	return &modifiedQueue{h: priorityHeap{index: make(map[uint32]int)}}
}

// push inserts p, or updates the priority of an entry with the same uid.
func (q *modifiedQueue) push(p audittx.Priority) {
	if i, ok := q.h.index[p.UID]; ok {
		q.h.items[i] = p
		heap.Fix(&q.h, i)
		return
	}
	heap.Push(&q.h, p)
}

// peek returns the best entry without removing it.
func (q *modifiedQueue) peek() (audittx.Priority, bool) {
	if len(q.h.items) == 0 {
		return audittx.Priority{}, false
	}
	return q.h.items[0], true
}

// pop removes and returns the best entry.
func (q *modifiedQueue) pop() (audittx.Priority, bool) {
	if len(q.h.items) == 0 {
		return audittx.Priority{}, false
	}
	return heap.Pop(&q.h).(audittx.Priority), true
}

func (q *modifiedQueue) len() int {
	return len(q.h.items)
}

// priorityHeap implements heap.Interface with the best priority at the root.
type priorityHeap struct {
	items []audittx.Priority
	index map[uint32]int
}

func (h *priorityHeap) Len() int { return len(h.items) }

func (h *priorityHeap) Less(i, j int) bool {
	return audittx.ComparePriority(h.items[i], h.items[j]) > 0
}

func (h *priorityHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.index[h.items[i].UID] = i
	h.index[h.items[j].UID] = j
}

func (h *priorityHeap) Push(x any) {
	p := x.(audittx.Priority)
	h.index[p.UID] = len(h.items)
	h.items = append(h.items, p)
}

func (h *priorityHeap) Pop() any {
	n := len(h.items) - 1
	p := h.items[n]
	h.items = h.items[:n]
	delete(h.index, p.UID)
	return p
}
