// Package threadtx defines the plain record that crosses the boundary into
// the block template generator. Callers (snapshot files, HCL configuration,
// an embedding service) describe each mempool transaction with one ThreadTx;
// it is converted exactly once into an audittx.AuditTx at ingestion.
package threadtx

import (
	"errors"
	"fmt"
	"math"
)

// ThreadTx describes one candidate transaction.
type ThreadTx struct {
	// UID is the dense identity assigned by the caller. Unique per pool.
	UID uint32 `json:"uid" cbor:"uid" yaml:"uid"`
	// Order is a tie-break key, typically a truncated txid.
	Order uint32 `json:"order" cbor:"order" yaml:"order"`
	// Fee arrives as a decimal from the boundary and is truncated to an
	// unsigned integer on conversion.
	Fee    float64 `json:"fee" cbor:"fee" yaml:"fee"`
	Size   uint32  `json:"size" cbor:"size" yaml:"size"`
	Sigops uint32  `json:"sigops" cbor:"sigops" yaml:"sigops"`
	// FeePerSize is the caller's own rate for the transaction.
	FeePerSize float64 `json:"feePerSize" cbor:"feePerSize" yaml:"feePerSize"`
	// Inputs lists the uids of direct parents. Parents that are not part of
	// the pool are treated as confirmed.
	Inputs []uint32 `json:"inputs" cbor:"inputs" yaml:"inputs"`
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid transaction record")

// Validate checks the numeric fields a boundary can get wrong. Conversion
// itself is total, so this exists for loaders that want to reject bad
// input instead of silently coercing it.
func (tx *ThreadTx) Validate() error {
	if math.IsNaN(tx.Fee) || math.IsInf(tx.Fee, 0) || tx.Fee < 0 {
		return fmt.Errorf("%w: uid %d: fee %v must be a finite non-negative number", ErrInvalid, tx.UID, tx.Fee)
	}
	if math.IsNaN(tx.FeePerSize) || math.IsInf(tx.FeePerSize, 0) || tx.FeePerSize < 0 {
		return fmt.Errorf("%w: uid %d: feePerSize %v must be a finite non-negative number", ErrInvalid, tx.UID, tx.FeePerSize)
	}
	for _, in := range tx.Inputs {
		if in == tx.UID {
			return fmt.Errorf("%w: uid %d lists itself as an input", ErrInvalid, tx.UID)
		}
	}
	return nil
}

// Clone returns a deep copy so stored records never alias caller slices.
func (tx *ThreadTx) Clone() *ThreadTx {
	c := *tx
	if tx.Inputs != nil {
		c.Inputs = append([]uint32(nil), tx.Inputs...)
	}
	return &c
}
