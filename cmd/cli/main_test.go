package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// An HCL file with a syntax error makes app.NewApp() panic while loading.
	invalidHCL := `
		limits {
			max_blocks = 2
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "gbt.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	args := []string{"--config", filePath}
	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, logs, args)

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")

	errStr := runErr.Error()
	require.True(t, strings.Contains(errStr, "application startup panicked"), "The error message should indicate that a panic was recovered.")
	require.True(t, strings.Contains(errStr, "failed to parse"), "The error message should contain the underlying reason for the panic.")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_WritesProjection(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	pool := `[
		{"uid": 1, "order": 1, "fee": 100, "size": 400, "sigops": 0, "feePerSize": 1, "inputs": []},
		{"uid": 2, "order": 2, "fee": 10000, "size": 400, "sigops": 0, "feePerSize": 100, "inputs": [1]}
	]`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "mempool.json")
	require.NoError(t, os.WriteFile(filePath, []byte(pool), 0600))

	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}

	// --- Act ---
	err := run(out, logs, []string{"--log-level", "debug", filePath})

	// --- Assert ---
	require.NoError(t, err)

	var doc struct {
		Blocks []struct {
			UIDs []uint32 `json:"uids"`
		} `json:"blocks"`
		Clusters [][]uint32 `json:"clusters"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc), "stdout must hold only the projection document")
	require.Len(t, doc.Blocks, 1)
	require.Equal(t, []uint32{1, 2}, doc.Blocks[0].UIDs)
	require.Equal(t, [][]uint32{{1, 2}}, doc.Clusters)
	require.Contains(t, logs.String(), "Projection complete.")
}
