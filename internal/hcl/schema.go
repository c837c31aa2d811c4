package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Limits       []*limitsBlock  `hcl:"limits,block"`
	Publish      []*publishBlock `hcl:"publish,block"`
	Transactions []*txBlock      `hcl:"tx,block"`
	Remain       hcl.Body        `hcl:",remain"`
}

// limitsBlock represents a `limits` block. Every attribute is optional and
// overrides one default.
type limitsBlock struct {
	BlockWeightUnits *uint64 `hcl:"block_weight_units,optional"`
	BlockSigops      *uint64 `hcl:"block_sigops,optional"`
	ReservedWeight   *uint64 `hcl:"reserved_weight,optional"`
	ReservedSigops   *uint64 `hcl:"reserved_sigops,optional"`
	MaxBlocks        *int    `hcl:"max_blocks,optional"`
	MaxFailures      *int    `hcl:"max_failures,optional"`
}

// publishBlock represents a `publish` block.
type publishBlock struct {
	URL       string `hcl:"url"`
	Namespace string `hcl:"namespace,optional"`
	Event     string `hcl:"event,optional"`
	Timeout   string `hcl:"timeout,optional"`
}

// txBlock represents a `tx "<uid>"` block declaring one transaction.
type txBlock struct {
	UID        string         `hcl:"uid,label"`
	Order      uint32         `hcl:"order,optional"`
	Fee        float64        `hcl:"fee"`
	Size       uint32         `hcl:"size"`
	Sigops     uint32         `hcl:"sigops,optional"`
	FeePerSize *float64       `hcl:"fee_per_size,optional"`
	Inputs     hcl.Expression `hcl:"inputs,optional"`
}
