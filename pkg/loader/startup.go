package loader

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/casedesk/pkg/collection"
	"github.com/vanderheijden86/casedesk/pkg/debug"
	"github.com/vanderheijden86/casedesk/pkg/metrics"
	"github.com/vanderheijden86/casedesk/pkg/model"
)

// Sources are the three collections fetched together.
type Sources struct {
	Cases     collection.Sync[string, model.Case]
	Watchlist collection.Sync[string, model.WatchlistEntry]
	Keywords  collection.Sync[int, model.Keyword]
}

// Snapshot is one consistent fetch of every collection.
type Snapshot struct {
	Cases     []model.Case
	Watchlist []model.WatchlistEntry
	Keywords  []model.Keyword
	LoadedAt  time.Time
}

// LoadAll lists the three collections concurrently. The first failure
// cancels the other requests and is returned, naming the collection.
// A nil source is skipped.
func LoadAll(ctx context.Context, src Sources) (*Snapshot, error) {
	defer metrics.Timer(metrics.StartupLoad)()
	start := time.Now()

	snap := &Snapshot{}
	g, ctx := errgroup.WithContext(ctx)
	if src.Cases != nil {
		g.Go(func() error {
			out, err := src.Cases.List(ctx)
			if err != nil {
				return fmt.Errorf("loading cases: %w", err)
			}
			snap.Cases = out
			return nil
		})
	}
	if src.Watchlist != nil {
		g.Go(func() error {
			out, err := src.Watchlist.List(ctx)
			if err != nil {
				return fmt.Errorf("loading watchlist: %w", err)
			}
			snap.Watchlist = out
			return nil
		})
	}
	if src.Keywords != nil {
		g.Go(func() error {
			out, err := src.Keywords.List(ctx)
			if err != nil {
				return fmt.Errorf("loading keywords: %w", err)
			}
			snap.Keywords = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		debug.Log("loader: %v", err)
		return nil, err
	}

	snap.LoadedAt = time.Now()
	debug.LogTiming("loader: all collections", time.Since(start))
	return snap, nil
}
