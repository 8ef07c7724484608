package ingestion

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mr1hm/go-relief-coordinator/internal/cache"
	"github.com/mr1hm/go-relief-coordinator/internal/geocode"
	"github.com/mr1hm/go-relief-coordinator/internal/metrics"
	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

const (
	DefaultCacheTTL      = 30 * time.Minute
	DefaultSourceTimeout = 15 * time.Second

	allDisastersQuery = "all"
)

type Options struct {
	TTL           time.Duration
	SourceTimeout time.Duration
	Geocoder      geocode.Geocoder // nil skips the geocoding pass
	Now           func() time.Time
}

// Aggregator merges its sources into a single snapshot kept in the cache.
type Aggregator struct {
	sources  []Source
	cache    cache.Cache
	geocoder geocode.Geocoder
	ttl      time.Duration
	timeout  time.Duration
	now      func() time.Time
	key      string
	group    singleflight.Group
}

func NewAggregator(c cache.Cache, sources []Source, opts Options) *Aggregator {
	if opts.TTL <= 0 {
		opts.TTL = DefaultCacheTTL
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = DefaultSourceTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name())
	}

	return &Aggregator{
		sources:  sources,
		cache:    c,
		geocoder: opts.Geocoder,
		ttl:      opts.TTL,
		timeout:  opts.SourceTimeout,
		now:      opts.Now,
		key:      cache.Key(names, allDisastersQuery),
	}
}

// GetDisasterData returns the cached snapshot while it is younger than the
// TTL, otherwise fetches every source. It always returns a non-nil slice.
func (a *Aggregator) GetDisasterData(ctx context.Context, forceRefresh bool) []models.DisasterRecord {
	if !forceRefresh {
		if entry := a.lookup(ctx); entry != nil && entry.Age(a.now()) < a.ttl {
			metrics.FeedCache.WithLabelValues("hit").Inc()
			return entry.Records
		}
	}
	metrics.FeedCache.WithLabelValues("miss").Inc()

	// Concurrent callers share one upstream fetch. The fetch outlives any
	// single caller's cancellation; source timeouts bound it instead.
	v, _, shared := a.group.Do(a.key, func() (any, error) {
		return a.refresh(context.WithoutCancel(ctx)), nil
	})
	if shared {
		slog.Debug("joined in-flight disaster fetch")
	}
	return slices.Clone(v.([]models.DisasterRecord))
}

// GetActiveDisasters returns records whose status is ongoing or alert.
func (a *Aggregator) GetActiveDisasters(ctx context.Context) []models.DisasterRecord {
	records := a.GetDisasterData(ctx, false)
	active := make([]models.DisasterRecord, 0, len(records))
	for _, r := range records {
		if r.Active() {
			active = append(active, r)
		}
	}
	return active
}

func (a *Aggregator) GetDisasterByID(ctx context.Context, id string) (*models.DisasterRecord, bool) {
	for _, r := range a.GetDisasterData(ctx, false) {
		if r.ID == id {
			return &r, true
		}
	}
	return nil, false
}

// ClearCache evicts the snapshot so the next read refetches.
func (a *Aggregator) ClearCache(ctx context.Context) {
	if err := a.cache.Delete(ctx, a.key); err != nil {
		slog.Error("failed to clear disaster cache", "error", err)
		return
	}
	slog.Info("disaster cache cleared")
}

func (a *Aggregator) lookup(ctx context.Context) *cache.Entry {
	entry, ok, err := a.cache.Get(ctx, a.key)
	if err != nil {
		slog.Error("failed to read disaster cache", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	return entry
}

func (a *Aggregator) refresh(ctx context.Context) []models.DisasterRecord {
	results, failed := a.fetchAll(ctx)

	if len(a.sources) > 0 && failed == len(a.sources) {
		if entry := a.lookup(ctx); entry != nil {
			metrics.FeedCache.WithLabelValues("stale").Inc()
			slog.Warn("all disaster sources failed, serving cached snapshot",
				"age", entry.Age(a.now()).Round(time.Second), "count", len(entry.Records))
			return entry.Records
		}
		slog.Warn("all disaster sources failed and no snapshot is cached")
		return []models.DisasterRecord{}
	}

	merged := dedupe(results)
	merged = withCurated(merged)

	gctx, cancel := context.WithTimeout(ctx, a.timeout)
	a.geocodeMissing(gctx, merged)
	cancel()

	entry := &cache.Entry{Records: merged, Timestamp: a.now()}
	if err := a.cache.Set(ctx, a.key, entry); err != nil {
		slog.Error("failed to write disaster cache", "error", err)
	}
	metrics.DisasterRecords.Set(float64(len(merged)))

	slog.Info("disaster data refreshed", "count", len(merged), "failed_sources", failed)
	return merged
}

// fetchAll queries every source concurrently. Results keep source order and
// a failed source contributes nothing.
func (a *Aggregator) fetchAll(ctx context.Context) ([][]models.DisasterRecord, int) {
	results := make([][]models.DisasterRecord, len(a.sources))
	errs := make([]error, len(a.sources))

	var wg sync.WaitGroup
	for i, src := range a.sources {
		i, src := i, src
		wg.Add(1)
		go func() {
			defer wg.Done()

			fctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			start := time.Now()
			records, err := src.Fetch(fctx)
			if err != nil {
				errs[i] = err
				metrics.FeedFetches.WithLabelValues(src.Name(), "error").Inc()
				slog.Error("disaster source fetch failed", "source", src.Name(), "error", err)
				return
			}
			results[i] = records
			metrics.FeedFetches.WithLabelValues(src.Name(), "ok").Inc()
			slog.Debug("disaster source fetched", "source", src.Name(), "count", len(records),
				"duration", time.Since(start))
		}()
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	return results, failed
}

// dedupe flattens per-source results, keeping the first record for each ID.
func dedupe(results [][]models.DisasterRecord) []models.DisasterRecord {
	seen := make(map[string]struct{})
	merged := make([]models.DisasterRecord, 0)
	for _, records := range results {
		for _, r := range records {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			merged = append(merged, r)
		}
	}
	return merged
}

// geocodeMissing fills in coordinates until ctx expires. Records left over
// keep nil coordinates.
func (a *Aggregator) geocodeMissing(ctx context.Context, records []models.DisasterRecord) {
	if a.geocoder == nil {
		return
	}
	for i := range records {
		if records[i].Location.Coordinates != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			slog.Warn("geocoding pass cut short", "error", err, "remaining", len(records)-i)
			return
		}
		records[i].Location.Coordinates = geocode.Locate(ctx, a.geocoder,
			records[i].Location.Region, records[i].Location.Country)
	}
}
