package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"rentdash/internal/cache"
	"rentdash/internal/core"
	"rentdash/internal/dataset"
	applog "rentdash/internal/log"
	"rentdash/internal/source"
)

const datasetKey = "dataset"

// Options tune the DashboardService caches and source timeout
type Options struct {
	DatasetTTL      time.Duration // 0 reloads the source on every request
	RenderCacheSize int           // 0 disables the dashboard cache
	SourceTimeout   time.Duration
	Logger          *applog.Logger
}

// DashboardService loads the dataset and builds dashboards for a selection
type DashboardService struct {
	src     source.RecordReader
	name    string
	timeout time.Duration

	datasets   *cache.LRUCache[core.Listings]
	dashboards *cache.LRUCache[core.Dashboard]
	group      singleflight.Group

	mu         sync.Mutex
	generation uint64

	logger *applog.StructuredLogger
}

type loaded struct {
	listings   core.Listings
	generation uint64
}

func NewDashboardService(src source.RecordReader, opts Options) *DashboardService {
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	s := &DashboardService{
		src:     src,
		name:    source.Name(src),
		timeout: opts.SourceTimeout,
		logger:  applog.NewStructuredLogger(opts.Logger),
	}
	if opts.DatasetTTL > 0 {
		s.datasets = cache.NewLRUCache[core.Listings](1, opts.DatasetTTL)
		if opts.RenderCacheSize > 0 {
			s.dashboards = cache.NewLRUCache[core.Dashboard](opts.RenderCacheSize, opts.DatasetTTL)
		}
	}
	return s
}

// Source describes where listings are read from
func (s *DashboardService) Source() string { return s.name }

// Caches returns the caches in use, for registration with a cache.Manager
func (s *DashboardService) Caches() []cache.Cleaner {
	var out []cache.Cleaner
	if s.datasets != nil {
		out = append(out, s.datasets)
	}
	if s.dashboards != nil {
		out = append(out, s.dashboards)
	}
	return out
}

// Listings returns the normalized dataset, from cache when fresh.
// Concurrent misses share a single load.
func (s *DashboardService) Listings(ctx context.Context) (core.Listings, error) {
	l, err := s.listings(ctx)
	return l.listings, err
}

func (s *DashboardService) listings(ctx context.Context) (loaded, error) {
	if s.datasets != nil {
		if ls, ok := s.datasets.Get(datasetKey); ok {
			s.mu.Lock()
			gen := s.generation
			s.mu.Unlock()
			return loaded{listings: ls, generation: gen}, nil
		}
	}

	v, err, _ := s.group.Do(datasetKey, func() (interface{}, error) {
		return s.load(ctx)
	})
	if err != nil {
		return loaded{}, err
	}
	return v.(loaded), nil
}

func (s *DashboardService) load(ctx context.Context) (loaded, error) {
	s.mu.Lock()
	startGen := s.generation
	s.mu.Unlock()

	// The load is shared, so one caller going away must not cancel it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	start := time.Now()
	ls, err := dataset.Load(ctx, s.src)
	if err != nil {
		op := applog.OpLoad
		if errors.Is(err, core.ErrParse) || errors.Is(err, core.ErrMissingColumn) {
			op = applog.OpNormalize
		}
		s.logger.LogError(ctx, "Dataset load failed", err, applog.ComponentDataset, op,
			applog.NewFields().WithDataset(s.name, 0))
		return loaded{}, fmt.Errorf("load %s: %w", s.name, err)
	}
	s.logger.LogDatasetLoaded(ctx, s.name, len(ls), len(ls.Cities()), time.Since(start))

	s.mu.Lock()
	defer s.mu.Unlock()
	// An invalidation during the load makes this result stale for caching.
	if s.generation == startGen {
		s.generation++
		if s.datasets != nil {
			s.datasets.Set(datasetKey, ls)
		}
	}
	return loaded{listings: ls, generation: s.generation}, nil
}

// Dashboard builds the page model for sel
func (s *DashboardService) Dashboard(ctx context.Context, sel Selection) (core.Dashboard, error) {
	l, err := s.listings(ctx)
	if err != nil {
		return core.Dashboard{}, err
	}

	selected := sel.Resolve(l.listings.Cities())
	if !sel.All && len(selected) < len(sel.Cities) {
		s.logger.LogSelectionFiltered(ctx, sel.Cities, selected)
	}
	key := fmt.Sprintf("%d|%s", l.generation, strings.Join(selected, "\x1f"))
	if s.dashboards != nil {
		if d, ok := s.dashboards.Get(key); ok {
			s.logger.LogDashboardRendered(ctx, selected, d.Rows, true)
			return d, nil
		}
	}

	d := BuildDashboard(l.listings, selected)
	if s.dashboards != nil {
		s.dashboards.Set(key, d)
	}
	s.logger.LogDashboardRendered(ctx, selected, d.Rows, false)
	return d, nil
}

// Invalidate drops the cached dataset and dashboards
func (s *DashboardService) Invalidate(ctx context.Context, reason string) {
	s.mu.Lock()
	s.generation++
	if s.datasets != nil {
		s.datasets.Clear()
	}
	if s.dashboards != nil {
		s.dashboards.Clear()
	}
	s.mu.Unlock()

	applog.FromContext(ctx).WithComponent(applog.ComponentCache).InfoContext(ctx, "Dataset cache invalidated",
		applog.FieldOperation, applog.OpInvalidate,
		"reason", reason)
}
