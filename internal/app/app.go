package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/gbtgo/internal/config"
	"github.com/vk/gbtgo/internal/ctxlog"
	"github.com/vk/gbtgo/internal/inmemorypool"
	"github.com/vk/gbtgo/internal/poolstore"
	"github.com/vk/gbtgo/internal/publish"
	"github.com/vk/gbtgo/internal/scheduler"
)

// PublisherFactory opens a publisher for a configured target.
type PublisherFactory func(ctx context.Context, cfg *config.Publish) (publish.Publisher, error)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	ctx        context.Context
	config     *Config
	model      *config.Model
	limits     scheduler.Limits
	store      poolstore.Store
	generator  *scheduler.Generator
	publisher  PublisherFactory
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Logs go to logW and
// the projection document to outW. A configuration that cannot be loaded or
// yields unusable limits is a fatal startup error and panics.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfgModel := &config.Model{}
	if appConfig.ConfigPath != "" {
		var err error
		cfgModel, err = loader.Load(ctx, appConfig.ConfigPath)
		if err != nil {
			// A failure to load config is a fatal startup error.
			panic(fmt.Errorf("failed to load configuration: %w", err))
		}
		logger.Debug("Configuration loaded and translated into unified model.")
	}

	limits := cfgModel.Limits.ApplyTo(scheduler.DefaultLimits())
	if appConfig.MaxBlocks > 0 {
		limits.MaxBlocks = appConfig.MaxBlocks
	}
	if err := limits.Validate(); err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Block limits resolved.", "weight", limits.BlockWeightUnits, "sigops", limits.BlockSigops, "max_blocks", limits.MaxBlocks)

	store := inmemorypool.New()
	return &App{
		outW:      outW,
		logger:    logger,
		ctx:       ctx,
		config:    appConfig,
		model:     cfgModel,
		limits:    limits,
		store:     store,
		generator: scheduler.NewGenerator(store, limits),
		publisher: func(ctx context.Context, cfg *config.Publish) (publish.Publisher, error) {
			return publish.NewSocketIO(ctx, cfg)
		},
	}
}

// Limits returns the resolved block limits.
func (a *App) Limits() scheduler.Limits {
	return a.limits
}

// Store returns the pool store. This is primarily for testing.
func (a *App) Store() poolstore.Store {
	return a.store
}

// SetPublisherFactory replaces how publishers are opened. This is primarily
// for testing.
func (a *App) SetPublisherFactory(f PublisherFactory) {
	a.publisher = f
}
