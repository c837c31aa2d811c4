// Package template turns a selection result into per-block summaries and
// the projection document that is written and published.
package template

import (
	"slices"

	"github.com/vk/gbtgo/internal/scheduler"
)

// feePercentiles are the interior points of Block.FeeRange.
var feePercentiles = []int{10, 25, 50, 75, 90}

// Block summarizes one projected block.
type Block struct {
	Index     int       `json:"index" cbor:"index" yaml:"index"`
	NTx       int       `json:"nTx" cbor:"nTx" yaml:"nTx"`
	BlockSize uint64    `json:"blockSize" cbor:"blockSize" yaml:"blockSize"`
	Weight    uint64    `json:"weight" cbor:"weight" yaml:"weight"`
	TotalFees uint64    `json:"totalFees" cbor:"totalFees" yaml:"totalFees"`
	MedianFee float64   `json:"medianFee" cbor:"medianFee" yaml:"medianFee"`
	FeeRange  []float64 `json:"feeRange" cbor:"feeRange" yaml:"feeRange"`
	UIDs      []uint32  `json:"uids" cbor:"uids" yaml:"uids"`
}

// Projection is the full output of a run.
type Projection struct {
	Blocks   []Block          `json:"blocks" cbor:"blocks" yaml:"blocks"`
	Clusters [][]uint32       `json:"clusters" cbor:"clusters" yaml:"clusters"`
	Rates    []scheduler.Rate `json:"rates" cbor:"rates" yaml:"rates"`
	Overflow []uint32         `json:"overflow" cbor:"overflow" yaml:"overflow"`
}

// NewProjection summarizes res. Nil slices become empty so every field is
// present in the encoded document.
func NewProjection(res *scheduler.Result) *Projection {
	p := &Projection{
		Blocks:   Summarize(res),
		Clusters: res.Clusters,
		Rates:    res.Rates,
		Overflow: res.Overflow,
	}
	if p.Clusters == nil {
		p.Clusters = [][]uint32{}
	}
	if p.Rates == nil {
		p.Rates = []scheduler.Rate{}
	}
	if p.Overflow == nil {
		p.Overflow = []uint32{}
	}
	return p
}

// Summarize computes the statistics of every block in res. Fee statistics
// use the effective rate of each transaction, which is the sigop-adjusted
// rate when one was reported in res.Rates.
func Summarize(res *scheduler.Result) []Block {
	blocks := make([]Block, 0, len(res.Blocks))
	for i, uids := range res.Blocks {
		b := Block{
			Index:    i,
			NTx:      len(uids),
			UIDs:     uids,
			FeeRange: []float64{},
		}
		if i < len(res.BlockWeights) {
			b.Weight = res.BlockWeights[i]
		}

		rates := make([]float64, 0, len(uids))
		for _, uid := range uids {
			tx, ok := res.Pool.Get(uid)
			if !ok {
				continue
			}
			b.BlockSize += uint64(tx.Size)
			b.TotalFees += tx.Fee
			rates = append(rates, tx.FeePerSize)
		}
		if len(rates) > 0 {
			slices.Sort(rates)
			b.MedianFee = percentile(rates, 50)
			b.FeeRange = append(b.FeeRange, rates[0])
			for _, n := range feePercentiles {
				b.FeeRange = append(b.FeeRange, percentile(rates, n))
			}
			b.FeeRange = append(b.FeeRange, rates[len(rates)-1])
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// percentile picks the nearest-rank value from an ascending slice.
func percentile(sorted []float64, n int) float64 {
	return sorted[(len(sorted)-1)*n/100]
}
