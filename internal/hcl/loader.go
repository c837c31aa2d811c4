package hcl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/gbtgo/internal/config"
	"github.com/vk/gbtgo/internal/ctxlog"
	"github.com/vk/gbtgo/internal/fsutil"
	"github.com/vk/gbtgo/internal/threadtx"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load orchestrates the entire HCL configuration loading process. Every
// block may appear in any file, but limits and publish may be declared only
// once across all files, and every tx uid must be unique.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := &config.Model{}
	parser := hclparse.NewParser()
	seenTx := make(map[uint32]string)

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, b := range root.Limits {
			if model.Limits != nil {
				return nil, fmt.Errorf("%s: duplicate limits block", file)
			}
			model.Limits = translateLimits(b)
		}
		for _, b := range root.Publish {
			if model.Publish != nil {
				return nil, fmt.Errorf("%s: duplicate publish block", file)
			}
			p, err := translatePublish(b)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Publish = p
		}
		for _, b := range root.Transactions {
			tx, err := translateTx(ctx, b)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			if prev, ok := seenTx[tx.UID]; ok {
				return nil, fmt.Errorf("%s: duplicate tx %d, first declared in %s", file, tx.UID, prev)
			}
			seenTx[tx.UID] = file
			model.Transactions = append(model.Transactions, tx)
		}
	}

	slices.SortFunc(model.Transactions, func(a, b *threadtx.ThreadTx) int {
		switch {
		case a.UID < b.UID:
			return -1
		case a.UID > b.UID:
			return 1
		}
		return 0
	})

	logger.Debug("HCL loading complete.",
		"limits", model.Limits != nil,
		"publish", model.Publish != nil,
		"transactions", len(model.Transactions),
	)
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(ctx context.Context, paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// It's not an error if a configured path doesn't exist.
				ctxlog.FromContext(ctx).Debug("Config path does not exist, skipping.", "path", path)
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if _, wasSeen := seen[f]; !wasSeen {
				allFiles = append(allFiles, f)
				seen[f] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
