package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gbtgo/internal/app"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name       string
		args       []string
		expected   *app.Config
		shouldExit bool
		exitCode   int
	}{
		{
			name: "snapshots with defaults",
			args: []string{"a.json", "dir"},
			expected: &app.Config{
				SnapshotPaths: []string{"a.json", "dir"},
				OutputFormat:  "json",
				LogFormat:     "json",
				LogLevel:      "info",
			},
		},
		{
			name: "every option",
			args: []string{"-c", "gbt.hcl", "--format", "cbor", "-o", "out.cbor.zst", "--log-format", "TEXT", "--log-level", "debug", "--healthcheck-port", "8080", "--max-blocks", "3", "pool"},
			expected: &app.Config{
				SnapshotPaths:   []string{"pool"},
				ConfigPath:      "gbt.hcl",
				OutputPath:      "out.cbor.zst",
				OutputFormat:    "cbor",
				LogFormat:       "text",
				LogLevel:        "debug",
				HealthcheckPort: 8080,
				MaxBlocks:       3,
			},
		},
		{
			name: "long flags win over shorthand",
			args: []string{"--config", "long.hcl", "-c", "short.hcl", "--output", "long.json", "-o", "short.json"},
			expected: &app.Config{
				SnapshotPaths: []string{},
				ConfigPath:    "long.hcl",
				OutputPath:    "long.json",
				OutputFormat:  "json",
				LogFormat:     "json",
				LogLevel:      "info",
			},
		},
		{name: "help", args: []string{"-h"}, shouldExit: true},
		{name: "no input prints usage", args: nil, shouldExit: true},
		{name: "unknown flag", args: []string{"--nope"}, exitCode: 2},
		{name: "bad log format", args: []string{"--log-format", "xml", "a.json"}, exitCode: 2},
		{name: "bad log level", args: []string{"--log-level", "loud", "a.json"}, exitCode: 2},
		{name: "bad output format", args: []string{"--format", "xml", "a.json"}, exitCode: 2},
		{name: "negative max blocks", args: []string{"--max-blocks", "-1", "a.json"}, exitCode: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			cfg, shouldExit, err := Parse(tc.args, &out)

			if tc.exitCode != 0 {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tc.exitCode, exitErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.shouldExit, shouldExit)
			if tc.shouldExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			assert.Equal(t, tc.expected, cfg)
		})
	}
}
