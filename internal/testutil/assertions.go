package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/gbtgo/internal/template"
)

// DecodeProjection parses the JSON projection the app wrote to its output.
func DecodeProjection(t *testing.T, result *HarnessResult) *template.Projection {
	t.Helper()
	require.NoError(t, result.Err, "the run must succeed before its output can be decoded")

	var p template.Projection
	require.NoError(t, json.Unmarshal(result.Output, &p), "output is not a JSON projection: %s", result.Output)
	return &p
}

// AssertBlocks checks the uids of every projected block, in order.
func AssertBlocks(t *testing.T, result *HarnessResult, expected [][]uint32) {
	t.Helper()

	p := DecodeProjection(t, result)
	got := make([][]uint32, len(p.Blocks))
	for i, b := range p.Blocks {
		got[i] = b.UIDs
	}
	require.Equal(t, expected, got, "projected blocks differ")
}
