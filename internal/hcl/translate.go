// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/gbtgo/internal/config"
	"github.com/vk/gbtgo/internal/ctxlog"
	"github.com/vk/gbtgo/internal/threadtx"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

const (
	defaultNamespace = "/"
	defaultEvent     = "projected-blocks"
	defaultTimeout   = 10 * time.Second
)

// translateLimits converts a limits block into the agnostic model.
func translateLimits(b *limitsBlock) *config.Limits {
	return &config.Limits{
		BlockWeightUnits: b.BlockWeightUnits,
		BlockSigops:      b.BlockSigops,
		ReservedWeight:   b.ReservedWeight,
		ReservedSigops:   b.ReservedSigops,
		MaxBlocks:        b.MaxBlocks,
		MaxFailures:      b.MaxFailures,
	}
}

// translatePublish converts a publish block, filling in defaults.
func translatePublish(b *publishBlock) (*config.Publish, error) {
	if b.URL == "" {
		return nil, fmt.Errorf("publish: url must not be empty")
	}
	p := &config.Publish{
		URL:       b.URL,
		Namespace: b.Namespace,
		Event:     b.Event,
		Timeout:   defaultTimeout,
	}
	if p.Namespace == "" {
		p.Namespace = defaultNamespace
	}
	if p.Event == "" {
		p.Event = defaultEvent
	}
	if b.Timeout != "" {
		d, err := time.ParseDuration(b.Timeout)
		if err != nil {
			return nil, fmt.Errorf("publish: invalid timeout %q: %w", b.Timeout, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("publish: timeout must be positive, got %s", d)
		}
		p.Timeout = d
	}
	return p, nil
}

// translateTx converts a tx block into a validated record. When
// fee_per_size is omitted it is derived as fee / size.
func translateTx(ctx context.Context, b *txBlock) (*threadtx.ThreadTx, error) {
	uid, err := strconv.ParseUint(b.UID, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("tx %q: label must be an unsigned 32-bit uid: %w", b.UID, err)
	}

	inputs, err := decodeInputs(ctx, b.Inputs)
	if err != nil {
		return nil, fmt.Errorf("tx %q: %w", b.UID, err)
	}

	tx := &threadtx.ThreadTx{
		UID:    uint32(uid),
		Order:  b.Order,
		Fee:    b.Fee,
		Size:   b.Size,
		Sigops: b.Sigops,
		Inputs: inputs,
	}
	switch {
	case b.FeePerSize != nil:
		tx.FeePerSize = *b.FeePerSize
	case b.Size > 0:
		tx.FeePerSize = b.Fee / float64(b.Size)
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// decodeInputs evaluates the inputs expression and converts it to a list of
// uids. Tuples, lists and sets of whole numbers are accepted.
func decodeInputs(ctx context.Context, expr hcl.Expression) ([]uint32, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid inputs: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}

	listVal, err := convert.Convert(val, cty.List(cty.Number))
	if err != nil {
		return nil, fmt.Errorf("inputs must be a list of uids: %w", err)
	}
	// gocty truncates fractions, so every element is checked first.
	maxUID := new(big.Float).SetUint64(math.MaxUint32)
	for it := listVal.ElementIterator(); it.Next(); {
		idx, v := it.Element()
		if v.IsNull() {
			return nil, fmt.Errorf("inputs must be a list of uids: element %s is null", idx.AsBigFloat().Text('f', 0))
		}
		n := v.AsBigFloat()
		if !n.IsInt() || n.Sign() < 0 || n.Cmp(maxUID) > 0 {
			return nil, fmt.Errorf("inputs must be a list of uids: %s is not an unsigned 32-bit integer", n.Text('g', -1))
		}
	}
	var inputs []uint32
	if err := gocty.FromCtyValue(listVal, &inputs); err != nil {
		return nil, fmt.Errorf("inputs must be a list of uids: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Decoded transaction inputs.", "count", len(inputs))
	return inputs, nil
}
