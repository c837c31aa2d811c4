package config

import (
	"time"

	"github.com/vk/gbtgo/internal/scheduler"
	"github.com/vk/gbtgo/internal/threadtx"
)

// Model is the unified, format-agnostic representation of the entire
// application configuration.
type Model struct {
	// Limits is nil when no limits were configured.
	Limits *Limits
	// Publish is nil when publishing is disabled.
	Publish *Publish
	// Transactions declared in configuration, sorted by uid.
	Transactions []*threadtx.ThreadTx
}

// Limits holds block limit overrides. A nil field keeps the default.
type Limits struct {
	BlockWeightUnits *uint64
	BlockSigops      *uint64
	ReservedWeight   *uint64
	ReservedSigops   *uint64
	MaxBlocks        *int
	MaxFailures      *int
}

// ApplyTo returns base with every configured override applied.
func (l *Limits) ApplyTo(base scheduler.Limits) scheduler.Limits {
	if l == nil {
		return base
	}
	if l.BlockWeightUnits != nil {
		base.BlockWeightUnits = *l.BlockWeightUnits
	}
	if l.BlockSigops != nil {
		base.BlockSigops = *l.BlockSigops
	}
	if l.ReservedWeight != nil {
		base.ReservedWeight = *l.ReservedWeight
	}
	if l.ReservedSigops != nil {
		base.ReservedSigops = *l.ReservedSigops
	}
	if l.MaxBlocks != nil {
		base.MaxBlocks = *l.MaxBlocks
	}
	if l.MaxFailures != nil {
		base.MaxFailures = *l.MaxFailures
	}
	return base
}

// Publish describes the socket.io endpoint projections are sent to.
type Publish struct {
	URL       string
	Namespace string
	Event     string
	Timeout   time.Duration
}
