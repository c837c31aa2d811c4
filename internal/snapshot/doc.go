// Package snapshot reads mempool record files and writes projection
// documents.
//
// A snapshot file holds a list of threadtx.ThreadTx records. The format is
// chosen by extension:
//
//	.json   JSON array
//	.cbor   CBOR array
//	.yaml   YAML sequence (also .yml)
//
// Any of these may carry an additional .zst suffix, in which case the file
// is zstd-compressed. Output documents are JSON or CBOR, optionally
// compressed the same way.
package snapshot
