package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wabisaby/toolrank/internal/model"
)

// ErrEmptySnapshot marks a snapshot with nothing to serve.
var ErrEmptySnapshot = errors.New("no tools available, check backend setup")

// SnapshotObserver is told the size of each built snapshot.
type SnapshotObserver interface {
	SetSnapshotSize(n int)
}

// Pipeline runs load, enrich, rank and cache once and freezes the result.
type Pipeline struct {
	Loader   *CatalogLoader
	Fetcher  *PopularityFetcher
	Cache    *CacheWriter
	Observer SnapshotObserver
	Logger   *zap.Logger
}

// Run returns a snapshot, empty when the catalog was missing. It fails only
// when ctx is cancelled during enrichment.
func (p *Pipeline) Run(ctx context.Context) (*model.Snapshot, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tools := p.Loader.Load(ctx)
	ranked := []model.Tool{}
	if len(tools) > 0 {
		enriched := p.Fetcher.Enrich(ctx, tools)
		// Lookups after a cancellation all fell back to "N/A"; keep the
		// previous cache rather than overwrite it with that.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scrape interrupted: %w", err)
		}
		ranked = Rank(enriched)
		if p.Cache != nil {
			// Cache failures are already logged by the writer.
			_ = p.Cache.Write(ranked)
		}
	}

	snap, err := model.NewSnapshot(ranked)
	if err != nil {
		return nil, err
	}
	if p.Observer != nil {
		p.Observer.SetSnapshotSize(snap.Len())
	}
	logger.Info("snapshot ready", zap.Int("tools", snap.Len()), zap.Int("ranked", snap.RankedCount()))
	return snap, nil
}
