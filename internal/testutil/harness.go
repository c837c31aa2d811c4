package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/gbtgo/internal/app"
	"github.com/vk/gbtgo/internal/hcl"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Bytes returns a copy of the buffered data.
func (b *SafeBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.b.Bytes())
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	// Output is whatever the app wrote to its output writer, normally the
	// projection document.
	Output []byte
	Dir    string
	Err    error
	App    *app.App
}

// Option adjusts a harness run.
type Option func(*harnessOptions)

type harnessOptions struct {
	configure func(*app.Config)
	publisher app.PublisherFactory
}

// WithConfig lets a test adjust the app configuration after the harness has
// filled in its defaults. Paths are relative to the temporary directory.
func WithConfig(fn func(cfg *app.Config)) Option {
	return func(o *harnessOptions) { o.configure = fn }
}

// WithPublisher injects a publisher factory in place of the socket.io client.
func WithPublisher(f app.PublisherFactory) Option {
	return func(o *harnessOptions) { o.publisher = f }
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, opts ...Option) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, opts...)
}

// RunIntegrationTestWithContext writes files into a temporary directory and
// runs the app against it. Files under "mempool/" are loaded as snapshots and
// files under "config/" as HCL configuration.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, opts ...Option) *HarnessResult {
	t.Helper()

	var o harnessOptions
	for _, opt := range opts {
		opt(&o)
	}

	// 1. Create a temporary root directory for the test.
	tmpDir := t.TempDir()
	mempoolDir := filepath.Join(tmpDir, "mempool")
	configDir := filepath.Join(tmpDir, "config")
	require.NoError(t, os.Mkdir(mempoolDir, 0755))
	require.NoError(t, os.Mkdir(configDir, 0755))

	// 2. Write all files, creating subdirectories as needed.
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	// 3. Configure the app to use the dedicated subdirectories.
	appConfig := app.Config{
		SnapshotPaths: []string{mempoolDir},
		ConfigPath:    configDir,
		OutputFormat:  "json",
		LogLevel:      "debug",
		LogFormat:     "text",
	}
	if o.configure != nil {
		o.configure(&appConfig)
		if appConfig.OutputPath != "" && !filepath.IsAbs(appConfig.OutputPath) {
			appConfig.OutputPath = filepath.Join(tmpDir, appConfig.OutputPath)
		}
	}
	cfg, err := app.NewConfig(appConfig)
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	outBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				if os.Getenv("GBTGO_TEST_LOGS") == "true" {
					t.Logf("--- HARNESS RECOVERED PANIC ---\n%q", fmt.Sprintf("%v", r))
				}
				panicErr = r
			}
		}()
		testApp = app.NewApp(outBuffer, logBuffer, cfg, hcl.NewLoader())
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Dir:       tmpDir,
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	if o.publisher != nil {
		testApp.SetPublisherFactory(o.publisher)
	}
	runErr := testApp.Run(ctx)

	if os.Getenv("GBTGO_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Output:    outBuffer.Bytes(),
		Dir:       tmpDir,
		Err:       runErr,
		App:       testApp,
	}
}
