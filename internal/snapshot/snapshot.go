package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vk/gbtgo/internal/ctxlog"
	"github.com/vk/gbtgo/internal/fsutil"
	"github.com/vk/gbtgo/internal/threadtx"
)

// ErrDuplicateUID is returned when the same uid appears twice across the
// loaded files.
var ErrDuplicateUID = errors.New("duplicate transaction uid")

// Load reads and validates the records in a single snapshot file.
func Load(ctx context.Context, path string) ([]*threadtx.ThreadTx, error) {
	format, compressed, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if compressed {
		if data, err = decompress(data); err != nil {
			return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
		}
	}

	var records []*threadtx.ThreadTx
	if err := decode(data, format, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s as %s: %w", path, format, err)
	}
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("%s: record %d is empty", path, i)
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("%s: record %d: %w", path, i, err)
		}
	}

	ctxlog.FromContext(ctx).Debug("Snapshot loaded.", "path", path, "format", format, "compressed", compressed, "records", len(records))
	return records, nil
}

// LoadAll loads every snapshot under paths. Directories are searched
// recursively for known extensions and other files in them are ignored; a
// path naming a file directly must have a known extension. Files are
// decoded concurrently. The merged result is sorted by uid.
func LoadAll(ctx context.Context, paths ...string) ([]*threadtx.ThreadTx, error) {
	var files []string
	for _, p := range paths {
		found, err := fsutil.FindFilesByExtension(p, Extensions()...)
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", p, err)
		}
		if len(found) == 0 {
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, p)
			}
		}
		files = append(files, found...)
	}

	loaded := make([][]*threadtx.ThreadTx, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := Load(gctx, file)
			if err != nil {
				return err
			}
			loaded[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[uint32]string)
	var out []*threadtx.ThreadTx
	for i, records := range loaded {
		for _, rec := range records {
			if prev, ok := seen[rec.UID]; ok {
				return nil, fmt.Errorf("%w: %d in %s and %s", ErrDuplicateUID, rec.UID, prev, files[i])
			}
			seen[rec.UID] = files[i]
			out = append(out, rec)
		}
	}
	slices.SortFunc(out, func(a, b *threadtx.ThreadTx) int {
		switch {
		case a.UID < b.UID:
			return -1
		case a.UID > b.UID:
			return 1
		}
		return 0
	})

	ctxlog.FromContext(ctx).Debug("Snapshots merged.", "files", len(files), "records", len(out))
	return out, nil
}

// WriteFile encodes v in format f to path, compressing it when path ends
// in .zst.
func WriteFile(path string, f Format, v any) error {
	data, err := Encode(f, v)
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", f, err)
	}
	if strings.HasSuffix(strings.ToLower(path), zstdSuffix) {
		data = Compress(data)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
