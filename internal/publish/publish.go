// Package publish delivers projections to external consumers.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/vk/gbtgo/internal/config"
	"github.com/vk/gbtgo/internal/ctxlog"
	"github.com/vk/gbtgo/internal/template"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Publisher sends projections somewhere.
type Publisher interface {
	// Publish delivers one projection.
	Publish(ctx context.Context, p *template.Projection) error
	// Close releases the underlying connection.
	Close() error
}

// ErrNotConnected is returned when publishing on a closed connection.
var ErrNotConnected = errors.New("socket.io client is not connected")

// SocketIO publishes projections as a socket.io event.
type SocketIO struct {
	client *socket.Socket
	event  string
	logger *slog.Logger
}

var _ Publisher = (*SocketIO)(nil)

// NewSocketIO connects to the endpoint in cfg over the websocket transport
// and waits until the connection is established, refused, cfg.Timeout
// elapses or ctx is done.
func NewSocketIO(ctx context.Context, cfg *config.Publish) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("publisher", "socketio", "url", cfg.URL)
	logger.Debug("Connecting publisher.")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("publish URL %q must include scheme and host", cfg.URL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Publisher connected.", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("Publisher connection error.", "error", err)
		select {
		case connectChan <- err:
		default:
		}
	})

	io.Connect()

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIO{client: io, event: cfg.Event, logger: logger}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Publish emits p as a JSON object on the configured event.
func (s *SocketIO) Publish(ctx context.Context, p *template.Projection) error {
	if !s.client.Connected() {
		return ErrNotConnected
	}
	payload, err := encodePayload(p)
	if err != nil {
		return err
	}
	s.logger.Debug("Emitting projection.", "event", s.event, "blocks", len(p.Blocks))
	s.client.Emit(s.event, payload)
	return nil
}

// Close disconnects the client.
func (s *SocketIO) Close() error {
	s.logger.Debug("Disconnecting publisher.", "sid", s.client.Id())
	s.client.Disconnect()
	return nil
}

// encodePayload converts p into the generic JSON shape sent on the wire, so
// the event carries exactly the document the json output format produces.
func encodePayload(p *template.Projection) (map[string]any, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode projection: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to encode projection: %w", err)
	}
	return payload, nil
}
