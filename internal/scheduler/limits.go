package scheduler

import (
	"errors"
	"fmt"
)

// ErrInvalidLimits is returned by Limits.Validate.
var ErrInvalidLimits = errors.New("invalid block limits")

// Limits bound every projected block except the last.
type Limits struct {
	// BlockWeightUnits is the weight capacity of a block.
	BlockWeightUnits uint64
	// BlockSigops is the sigop capacity of a block.
	BlockSigops uint64
	// ReservedWeight is the weight every block starts with (coinbase and
	// header).
	ReservedWeight uint64
	// ReservedSigops is the sigop count every block starts with.
	ReservedSigops uint64
	// MaxBlocks is the number of blocks to project.
	MaxBlocks int
	// MaxFailures is how many consecutive packages may miss a nearly full
	// block before it is closed.
	MaxFailures int
}

// DefaultLimits returns the consensus-sized defaults.
func DefaultLimits() Limits {
	return Limits{
		BlockWeightUnits: 4_000_000,
		BlockSigops:      80_000,
		ReservedWeight:   4_000,
		ReservedSigops:   400,
		MaxBlocks:        8,
		MaxFailures:      1_000,
	}
}

// Validate reports limits that cannot produce a template.
func (l Limits) Validate() error {
	switch {
	case l.BlockWeightUnits == 0:
		return fmt.Errorf("%w: block weight must be positive", ErrInvalidLimits)
	case l.BlockSigops == 0:
		return fmt.Errorf("%w: block sigops must be positive", ErrInvalidLimits)
	case l.ReservedWeight >= l.BlockWeightUnits:
		return fmt.Errorf("%w: reserved weight %d must be below block weight %d", ErrInvalidLimits, l.ReservedWeight, l.BlockWeightUnits)
	case l.ReservedSigops >= l.BlockSigops:
		return fmt.Errorf("%w: reserved sigops %d must be below block sigops %d", ErrInvalidLimits, l.ReservedSigops, l.BlockSigops)
	case l.MaxBlocks < 1:
		return fmt.Errorf("%w: max blocks must be at least 1, got %d", ErrInvalidLimits, l.MaxBlocks)
	case l.MaxFailures < 0:
		return fmt.Errorf("%w: max failures must not be negative, got %d", ErrInvalidLimits, l.MaxFailures)
	}
	return nil
}
