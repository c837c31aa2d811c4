package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
	FormatYAML Format = "yaml"
)

const zstdSuffix = ".zst"

// ErrUnknownFormat is returned for unsupported formats and extensions.
var ErrUnknownFormat = errors.New("unknown snapshot format")

// ParseFormat accepts the names used on the command line.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatJSON, FormatCBOR, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Extensions lists every file suffix Load understands.
func Extensions() []string {
	base := []string{".json", ".cbor", ".yaml", ".yml"}
	out := make([]string, 0, 2*len(base))
	for _, ext := range base {
		out = append(out, ext, ext+zstdSuffix)
	}
	return out
}

// DetectFormat derives the format of path from its extension and reports
// whether the file is zstd-compressed.
func DetectFormat(path string) (Format, bool, error) {
	name := strings.ToLower(filepath.Base(path))
	compressed := strings.HasSuffix(name, zstdSuffix)
	name = strings.TrimSuffix(name, zstdSuffix)

	switch filepath.Ext(name) {
	case ".json":
		return FormatJSON, compressed, nil
	case ".cbor":
		return FormatCBOR, compressed, nil
	case ".yaml", ".yml":
		return FormatYAML, compressed, nil
	}
	return "", false, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode

	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error

	// Same logical document always produces identical bytes.
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("snapshot: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("snapshot: CBOR decoder initialization failed: " + err.Error())
	}

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("snapshot: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("snapshot: zstd decoder initialization failed: " + err.Error())
	}
}

// decode unmarshals data in format f into v.
func decode(data []byte, f Format, v any) error {
	switch f {
	case FormatJSON:
		return json.Unmarshal(data, v)
	case FormatCBOR:
		return cborDec.Unmarshal(data, v)
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Encode marshals v in format f. JSON output is indented.
func Encode(f Format, v any) ([]byte, error) {
	switch f {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatCBOR:
		return cborEnc.Marshal(v)
	case FormatYAML:
		return yaml.Marshal(v)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Write encodes v in format f to w.
func Write(w io.Writer, f Format, v any) error {
	data, err := Encode(f, v)
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", f, err)
	}
	_, err = w.Write(data)
	return err
}

// Compress returns data zstd-compressed.
func Compress(data []byte) []byte {
	return zstdEncoder.EncodeAll(data, nil)
}

func decompress(data []byte) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return out, nil
}
