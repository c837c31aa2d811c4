package template

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gbtgo/internal/graph"
	"github.com/vk/gbtgo/internal/scheduler"
	"github.com/vk/gbtgo/internal/threadtx"
)

func selectAll(t *testing.T, limits scheduler.Limits, records ...*threadtx.ThreadTx) *scheduler.Result {
	t.Helper()
	pool, err := graph.New(records)
	require.NoError(t, err)
	require.NoError(t, pool.SetRelatives(context.Background()))
	res, err := scheduler.Select(context.Background(), pool, limits)
	require.NoError(t, err)
	return res
}

func TestSummarize_FeeStatistics(t *testing.T) {
	var records []*threadtx.ThreadTx
	for i := uint32(1); i <= 11; i++ {
		// Rates 1..11 with a 400-byte size (adjusted size 100).
		records = append(records, &threadtx.ThreadTx{UID: i, Order: i, Fee: float64(100 * i), Size: 400, FeePerSize: float64(i)})
	}
	res := selectAll(t, scheduler.DefaultLimits(), records...)

	blocks := Summarize(res)

	require.Len(t, blocks, 1)
	b := blocks[0]
	assert.Equal(t, 0, b.Index)
	assert.Equal(t, 11, b.NTx)
	assert.Equal(t, uint64(11*400), b.BlockSize)
	assert.Equal(t, uint64(4_000+11*400), b.Weight)
	assert.Equal(t, uint64(100*66), b.TotalFees)
	assert.Equal(t, 6.0, b.MedianFee)
	if diff := cmp.Diff([]float64{1, 2, 3, 6, 8, 10, 11}, b.FeeRange); diff != "" {
		t.Errorf("fee range mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, b.UIDs, 11)
}

func TestSummarize_UsesAdjustedRates(t *testing.T) {
	// Sigop-bound: adjusted size 300, rate 10, caller claimed 99.
	res := selectAll(t, scheduler.DefaultLimits(),
		&threadtx.ThreadTx{UID: 1, Fee: 3_000, Size: 400, Sigops: 60, FeePerSize: 99},
	)

	blocks := Summarize(res)

	require.Len(t, blocks, 1)
	assert.Equal(t, []float64{10, 10, 10, 10, 10, 10, 10}, blocks[0].FeeRange)
	assert.Equal(t, []scheduler.Rate{{UID: 1, FeePerSize: 10}}, res.Rates)
}

func TestNewProjection(t *testing.T) {
	res := selectAll(t, scheduler.DefaultLimits(),
		&threadtx.ThreadTx{UID: 1, Fee: 100, Size: 400, FeePerSize: 0.25},
		&threadtx.ThreadTx{UID: 2, Fee: 10_000, Size: 400, FeePerSize: 25, Inputs: []uint32{1}},
	)

	p := NewProjection(res)

	require.Len(t, p.Blocks, 1)
	assert.Equal(t, []uint32{1, 2}, p.Blocks[0].UIDs)
	assert.Equal(t, [][]uint32{{1, 2}}, p.Clusters)
	assert.NotNil(t, p.Rates)
	assert.NotNil(t, p.Overflow)
	assert.Empty(t, p.Overflow)
}

func TestNewProjection_EmptyPool(t *testing.T) {
	p := NewProjection(selectAll(t, scheduler.DefaultLimits()))

	assert.Empty(t, p.Blocks)
	assert.NotNil(t, p.Blocks)
	assert.NotNil(t, p.Clusters)
}
