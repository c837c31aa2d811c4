package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/vk/gbtgo/internal/ctxlog"
)

// healthHandler reports liveness and the size of the current pool.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK pool=%d\n", a.store.Len())
}

// startHealthCheckServer binds the health check listener and serves it in
// the background. It returns the bound address.
func (a *App) startHealthCheckServer(port int) (string, error) {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Configuring health check server.")

	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return "", fmt.Errorf("failed to start health check server: %w", err)
	}
	a.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://%s/health", ln.Addr()))
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
	return ln.Addr().String(), nil
}

func (a *App) closeHealthCheckServer() error {
	logger := ctxlog.FromContext(a.ctx)

	if a.httpServer == nil {
		logger.Debug("Health check server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("🩺 Shutting down health check server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Health check server shutdown failed", "error", err)
		return err
	}
	a.httpServer = nil

	logger.Debug("Health check server shut down gracefully.")
	return nil
}
