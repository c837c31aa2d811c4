package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/gbtgo/internal/app"
	"github.com/vk/gbtgo/internal/config"
	"github.com/vk/gbtgo/internal/publish"
	"github.com/vk/gbtgo/internal/template"
)

// RecordingPublisher is an in-memory publish.Publisher that keeps every
// projection and the target it was opened for.
type RecordingPublisher struct {
	mu        sync.Mutex
	Target    *config.Publish
	Published []*template.Projection
	Closed    bool
}

var _ publish.Publisher = (*RecordingPublisher)(nil)

// Publish implements publish.Publisher.
func (p *RecordingPublisher) Publish(_ context.Context, proj *template.Projection) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Published = append(p.Published, proj)
	return nil
}

// Close implements publish.Publisher.
func (p *RecordingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// Factory returns an app.PublisherFactory that always hands out p.
func (p *RecordingPublisher) Factory() app.PublisherFactory {
	return func(_ context.Context, cfg *config.Publish) (publish.Publisher, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.Target = cfg
		return p, nil
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}
