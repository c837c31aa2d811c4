package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gbtgo/internal/threadtx"
)

func sampleRecords() []*threadtx.ThreadTx {
	return []*threadtx.ThreadTx{
		{UID: 1, Order: 10, Fee: 1000, Size: 200, FeePerSize: 20},
		{UID: 2, Order: 20, Fee: 500, Size: 100, Sigops: 4, FeePerSize: 5, Inputs: []uint32{1}},
	}
}

func writeSnapshot(t *testing.T, dir, name string, records []*threadtx.ThreadTx) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, WriteFile(path, formatOf(t, name), records))
	return path
}

func formatOf(t *testing.T, name string) Format {
	t.Helper()
	f, _, err := DetectFormat(name)
	require.NoError(t, err)
	return f
}

func TestDetectFormat(t *testing.T) {
	testCases := []struct {
		path       string
		format     Format
		compressed bool
		expectErr  bool
	}{
		{path: "pool.json", format: FormatJSON},
		{path: "dir/pool.CBOR", format: FormatCBOR},
		{path: "pool.yml", format: FormatYAML},
		{path: "pool.yaml.zst", format: FormatYAML, compressed: true},
		{path: "pool.json.zst", format: FormatJSON, compressed: true},
		{path: "pool.zst", expectErr: true},
		{path: "pool.txt", expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			format, compressed, err := DetectFormat(tc.path)
			if tc.expectErr {
				require.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.format, format)
			assert.Equal(t, tc.compressed, compressed)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CBOR")
	require.NoError(t, err)
	assert.Equal(t, FormatCBOR, f)

	f, err = ParseFormat("yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoad_EveryFormat(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "a.cbor", "a.yaml", "a.yml", "a.json.zst", "a.cbor.zst", "a.yaml.zst"} {
		t.Run(name, func(t *testing.T) {
			path := writeSnapshot(t, dir, name, sampleRecords())

			records, err := Load(context.Background(), path)
			require.NoError(t, err)
			// YAML writes a nil slice as [], so nil and empty are equal here.
			if diff := cmp.Diff(sampleRecords(), records, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_CompressedFileIsSmallerThanPlain(t *testing.T) {
	var records []*threadtx.ThreadTx
	for i := uint32(0); i < 500; i++ {
		records = append(records, &threadtx.ThreadTx{UID: i, Fee: 100, Size: 400, FeePerSize: 1})
	}
	dir := t.TempDir()
	plain := writeSnapshot(t, dir, "pool.json", records)
	packed := writeSnapshot(t, dir, "pool.json.zst", records)

	plainInfo, err := os.Stat(plain)
	require.NoError(t, err)
	packedInfo, err := os.Stat(packed)
	require.NoError(t, err)
	assert.Less(t, packedInfo.Size(), plainInfo.Size())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	testCases := []struct {
		name        string
		path        string
		errContains string
		errIs       error
	}{
		{name: "unknown extension", path: write("pool.txt", "[]"), errIs: ErrUnknownFormat},
		{name: "missing file", path: filepath.Join(dir, "missing.json"), errContains: "failed to read"},
		{name: "malformed json", path: write("bad.json", "{"), errContains: "failed to decode"},
		{name: "negative fee", path: write("neg.json", `[{"uid":1,"fee":-1,"size":10}]`), errIs: threadtx.ErrInvalid},
		{name: "null record", path: write("null.json", `[null]`), errContains: "empty"},
		{name: "corrupt zstd", path: write("bad.json.zst", "not zstd"), errContains: "decompress"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(context.Background(), tc.path)
			require.Error(t, err)
			if tc.errIs != nil {
				require.ErrorIs(t, err, tc.errIs)
			}
			if tc.errContains != "" {
				assert.Contains(t, err.Error(), tc.errContains)
			}
		})
	}
}

func TestLoadAll_MergesAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "b.json", []*threadtx.ThreadTx{{UID: 7, Size: 4}, {UID: 3, Size: 4}})
	writeSnapshot(t, dir, "nested/a.cbor.zst", []*threadtx.ThreadTx{{UID: 5, Size: 4}})
	extra := writeSnapshot(t, t.TempDir(), "c.yaml", []*threadtx.ThreadTx{{UID: 1, Size: 4}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0644))

	records, err := LoadAll(context.Background(), dir, extra)
	require.NoError(t, err)

	var uids []uint32
	for _, rec := range records {
		uids = append(uids, rec.UID)
	}
	assert.Equal(t, []uint32{1, 3, 5, 7}, uids)
}

func TestLoadAll_ExplicitFileWithUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.txt")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))

	_, err := LoadAll(context.Background(), path)
	require.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, err.Error(), "pool.txt")
}

func TestLoadAll_UpperCaseExtension(t *testing.T) {
	path := writeSnapshot(t, t.TempDir(), "POOL.JSON", []*threadtx.ThreadTx{{UID: 2, Size: 4}})

	records, err := LoadAll(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint32(2), records[0].UID)
}

func TestLoadAll_DuplicateUID(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "a.json", []*threadtx.ThreadTx{{UID: 1, Size: 4}})
	writeSnapshot(t, dir, "b.yaml", []*threadtx.ThreadTx{{UID: 1, Size: 8}})

	_, err := LoadAll(context.Background(), dir)
	require.ErrorIs(t, err, ErrDuplicateUID)
}

func TestLoadAll_PropagatesFileErrors(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "a.json", sampleRecords())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte("nope"), 0644))

	_, err := LoadAll(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.json")
}

func TestWrite(t *testing.T) {
	doc := map[string]any{"blocks": []int{1, 2}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, doc))
	assert.Contains(t, buf.String(), "\n  \"blocks\"", "json output is indented")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	first, err := Encode(FormatCBOR, doc)
	require.NoError(t, err)
	second, err := Encode(FormatCBOR, map[string]any{"blocks": []int{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, first, second, "cbor output is deterministic")

	require.ErrorIs(t, Write(&buf, Format("xml"), doc), ErrUnknownFormat)
}
