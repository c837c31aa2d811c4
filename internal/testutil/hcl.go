package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/gbtgo/internal/config"
	"github.com/vk/gbtgo/internal/hcl"
)

// LoadHCLConfig writes a single HCL document to a temporary directory and
// loads it through the real loader.
func LoadHCLConfig(t *testing.T, configHCL string) (*config.Model, error) {
	t.Helper()

	dir := t.TempDir()
	writeFile(t, dir, "gbt.hcl", configHCL)
	return hcl.NewLoader().Load(context.Background(), dir)
}

// MustLoadHCLConfig is LoadHCLConfig for documents that must be valid.
func MustLoadHCLConfig(t *testing.T, configHCL string) *config.Model {
	t.Helper()
	m, err := LoadHCLConfig(t, configHCL)
	require.NoError(t, err)
	return m
}
