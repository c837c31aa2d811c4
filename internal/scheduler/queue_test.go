package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gbtgo/internal/audittx"
)

func TestModifiedQueue_PopsBestFirst(t *testing.T) {
	q := newModifiedQueue()
	q.push(audittx.Priority{UID: 1, Order: 1, Score: 3})
	q.push(audittx.Priority{UID: 2, Order: 1, Score: 9})
	q.push(audittx.Priority{UID: 3, Order: 1, Score: 5})
	q.push(audittx.Priority{UID: 4, Order: 0, Score: 5})

	var got []uint32
	for q.len() > 0 {
		p, ok := q.pop()
		require.True(t, ok)
		got = append(got, p.UID)
	}
	// Equal scores: the smaller order ranks higher.
	assert.Equal(t, []uint32{2, 4, 3, 1}, got)
}

func TestModifiedQueue_PushExistingReranks(t *testing.T) {
	q := newModifiedQueue()
	q.push(audittx.Priority{UID: 1, Score: 10})
	q.push(audittx.Priority{UID: 2, Score: 5})

	q.push(audittx.Priority{UID: 1, Score: 1})

	assert.Equal(t, 2, q.len(), "a uid is queued at most once")
	top, ok := q.peek()
	require.True(t, ok)
	assert.Equal(t, uint32(2), top.UID)

	q.push(audittx.Priority{UID: 1, Score: 20})
	top, _ = q.peek()
	assert.Equal(t, uint32(1), top.UID)
	assert.Equal(t, 20.0, top.Score)
}

func TestModifiedQueue_Empty(t *testing.T) {
	q := newModifiedQueue()

	_, ok := q.peek()
	assert.False(t, ok)
	_, ok = q.pop()
	assert.False(t, ok)
}
