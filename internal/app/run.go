package app

import (
	"context"
	"fmt"

	"github.com/vk/gbtgo/internal/ctxlog"
	"github.com/vk/gbtgo/internal/snapshot"
	"github.com/vk/gbtgo/internal/template"
	"github.com/vk/gbtgo/internal/threadtx"
)

// Run executes one projection: load the pool, select block templates,
// write the projection and publish it when a target is configured.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		if _, err := a.startHealthCheckServer(a.config.HealthcheckPort); err != nil {
			return err
		}
		defer a.closeHealthCheckServer()
	}

	records, err := a.loadRecords(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.logger.Warn("Mempool is empty, projection will have no blocks.")
	}

	res, err := a.generator.Make(ctx, records)
	if err != nil {
		return fmt.Errorf("block template selection failed: %w", err)
	}
	projection := template.NewProjection(res)

	a.logger.Info("🏁 Projection complete.",
		"transactions", len(records),
		"blocks", len(projection.Blocks),
		"clusters", len(projection.Clusters),
		"adjusted_rates", len(projection.Rates),
		"overflow", len(projection.Overflow),
	)

	if err := a.writeProjection(projection); err != nil {
		return err
	}
	if err := a.publishProjection(ctx, projection); err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// loadRecords merges snapshot files with transactions declared in
// configuration. A uid may only be declared once across both.
func (a *App) loadRecords(ctx context.Context) ([]*threadtx.ThreadTx, error) {
	var records []*threadtx.ThreadTx
	if len(a.config.SnapshotPaths) > 0 {
		loaded, err := snapshot.LoadAll(ctx, a.config.SnapshotPaths...)
		if err != nil {
			return nil, fmt.Errorf("failed to load mempool: %w", err)
		}
		records = loaded
	}

	if len(a.model.Transactions) > 0 {
		seen := make(map[uint32]struct{}, len(records))
		for _, rec := range records {
			seen[rec.UID] = struct{}{}
		}
		for _, rec := range a.model.Transactions {
			if _, ok := seen[rec.UID]; ok {
				return nil, fmt.Errorf("%w: %d declared in both snapshot and config", snapshot.ErrDuplicateUID, rec.UID)
			}
			records = append(records, rec)
		}
		a.logger.Debug("Merged configured transactions.", "count", len(a.model.Transactions))
	}
	return records, nil
}

func (a *App) writeProjection(p *template.Projection) error {
	format := snapshot.Format(a.config.OutputFormat)
	if a.config.OutputPath == "" {
		return snapshot.Write(a.outW, format, p)
	}
	if err := snapshot.WriteFile(a.config.OutputPath, format, p); err != nil {
		return err
	}
	a.logger.Info("Projection written.", "path", a.config.OutputPath, "format", format)
	return nil
}

func (a *App) publishProjection(ctx context.Context, p *template.Projection) error {
	if a.model.Publish == nil {
		return nil
	}
	publisher, err := a.publisher(ctx, a.model.Publish)
	if err != nil {
		return fmt.Errorf("failed to open publisher: %w", err)
	}
	defer publisher.Close()

	if err := publisher.Publish(ctx, p); err != nil {
		return fmt.Errorf("failed to publish projection: %w", err)
	}
	a.logger.Info("Projection published.", "url", a.model.Publish.URL, "event", a.model.Publish.Event)
	return nil
}
