package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLimits_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		mutate    func(*Limits)
		expectErr bool
	}{
		{name: "defaults", mutate: func(*Limits) {}},
		{name: "single block", mutate: func(l *Limits) { l.MaxBlocks = 1 }},
		{name: "zero weight", mutate: func(l *Limits) { l.BlockWeightUnits = 0 }, expectErr: true},
		{name: "zero sigops", mutate: func(l *Limits) { l.BlockSigops = 0 }, expectErr: true},
		{name: "reserved weight fills block", mutate: func(l *Limits) { l.ReservedWeight = l.BlockWeightUnits }, expectErr: true},
		{name: "reserved sigops fill block", mutate: func(l *Limits) { l.ReservedSigops = l.BlockSigops }, expectErr: true},
		{name: "no blocks", mutate: func(l *Limits) { l.MaxBlocks = 0 }, expectErr: true},
		{name: "negative failures", mutate: func(l *Limits) { l.MaxFailures = -1 }, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			limits := DefaultLimits()
			tc.mutate(&limits)

			err := limits.Validate()
			if tc.expectErr {
				require.ErrorIs(t, err, ErrInvalidLimits)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
