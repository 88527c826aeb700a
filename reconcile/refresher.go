package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/library-occupancy/metrics"
	"github.com/theoremus-urban-solutions/library-occupancy/occupancy"
)

// Loader fetches and parses feeds, normally a *series.Loader
type Loader interface {
	Load(ctx context.Context, source string) (occupancy.Series, error)
	LoadComparison(ctx context.Context, source string) (occupancy.Comparison, error)
}

// Sources are the feed locations, URLs or local paths
type Sources struct {
	Today      string
	Tomorrow   string
	Comparison string
}

// Refresher reloads the feeds into an Engine
type Refresher struct {
	engine  *Engine
	loader  Loader
	sources Sources
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRefresher creates a refresher. m may be nil.
func NewRefresher(engine *Engine, loader Loader, sources Sources, m *metrics.Metrics, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		engine:  engine,
		loader:  loader,
		sources: sources,
		metrics: m,
		logger:  logger.With("component", "refresher"),
	}
}

// Refresh loads the three feeds concurrently and waits for all of them.
// A failing feed keeps its previous data and never affects the others.
func (r *Refresher) Refresh(ctx context.Context) map[Feed]error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs = make(map[Feed]error)
	)
	run := func(feed Feed, load func() (int, error)) {
		defer wg.Done()
		rows, err := load()
		r.engine.RecordLoad(feed, rows, r.engine.Now(), err)
		r.metrics.ObserveFeedLoad(string(feed), rows, err)
		if err != nil {
			r.logger.Warn("feed load failed", "feed", feed, "error", err)
			mu.Lock()
			errs[feed] = err
			mu.Unlock()
			return
		}
		r.logger.Debug("feed loaded", "feed", feed, "rows", rows)
	}

	wg.Add(3)
	go run(FeedToday, func() (int, error) { return r.loadSeries(ctx, occupancy.Today, r.sources.Today) })
	go run(FeedTomorrow, func() (int, error) { return r.loadSeries(ctx, occupancy.Tomorrow, r.sources.Tomorrow) })
	go run(FeedComparison, func() (int, error) {
		c, err := r.loader.LoadComparison(ctx, r.sources.Comparison)
		if err != nil {
			return 0, err
		}
		r.engine.SetComparison(c)
		return c.Real.Len(), nil
	})
	wg.Wait()

	return errs
}

func (r *Refresher) loadSeries(ctx context.Context, day occupancy.Day, source string) (int, error) {
	s, err := r.loader.Load(ctx, source)
	if err != nil {
		return 0, err
	}
	r.engine.SetSeries(day, s)
	return s.Len(), nil
}

// Run refreshes immediately and then every interval until ctx is done
func (r *Refresher) Run(ctx context.Context, interval time.Duration) {
	r.Refresh(ctx)
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}
