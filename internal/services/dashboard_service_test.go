package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rentdash/internal/core"
	applog "rentdash/internal/log"
	"rentdash/internal/source/memory"
)

// countingSource wraps the sample store and counts reads
type countingSource struct {
	inner *memory.Store
	reads atomic.Int32
	err   error
}

func (c *countingSource) ReadRecords(ctx context.Context) ([][]string, error) {
	c.reads.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.ReadRecords(ctx)
}

func (c *countingSource) Describe() string { return "counting" }

func newCountingSource(t *testing.T) *countingSource {
	t.Helper()
	store, err := memory.NewSample()
	if err != nil {
		t.Fatalf("NewSample: %v", err)
	}
	return &countingSource{inner: store}
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Level: slog.LevelError, Output: &bytes.Buffer{}})
}

func TestDashboardServiceCachesDataset(t *testing.T) {
	src := newCountingSource(t)
	svc := NewDashboardService(src, Options{DatasetTTL: time.Minute, RenderCacheSize: 8, Logger: quietLogger()})
	ctx := context.Background()

	first, err := svc.Dashboard(ctx, AllCities())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if first.Rows != 20 || len(first.Cities) != 6 {
		t.Fatalf("unexpected dashboard rows=%d cities=%v", first.Rows, first.Cities)
	}
	if _, err := svc.Dashboard(ctx, Selection{Cities: []string{"Campinas"}}); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if got := src.reads.Load(); got != 1 {
		t.Errorf("source read %d times, want 1", got)
	}
	if len(svc.Caches()) != 2 {
		t.Errorf("expected dataset and dashboard caches")
	}
}

func TestDashboardServiceWithoutCache(t *testing.T) {
	src := newCountingSource(t)
	svc := NewDashboardService(src, Options{DatasetTTL: 0, RenderCacheSize: 8, Logger: quietLogger()})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Dashboard(ctx, AllCities()); err != nil {
			t.Fatalf("Dashboard: %v", err)
		}
	}
	if got := src.reads.Load(); got != 2 {
		t.Errorf("source read %d times, want 2", got)
	}
	if len(svc.Caches()) != 0 {
		t.Errorf("no caches expected with zero TTL")
	}
}

func TestDashboardServiceInvalidate(t *testing.T) {
	src := newCountingSource(t)
	svc := NewDashboardService(src, Options{DatasetTTL: time.Hour, RenderCacheSize: 8, Logger: quietLogger()})
	ctx := context.Background()

	if _, err := svc.Dashboard(ctx, AllCities()); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	records, _ := src.inner.ReadRecords(ctx)
	src.inner.Replace(records[:3])
	svc.Invalidate(ctx, "test")

	d, err := svc.Dashboard(ctx, AllCities())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Rows != 2 {
		t.Errorf("rows after refresh = %d, want 2", d.Rows)
	}
	if got := src.reads.Load(); got != 2 {
		t.Errorf("source read %d times, want 2", got)
	}
}

func TestDashboardServiceSourceError(t *testing.T) {
	src := newCountingSource(t)
	src.err = core.ErrFileNotFound
	svc := NewDashboardService(src, Options{DatasetTTL: time.Minute, Logger: quietLogger()})

	_, err := svc.Dashboard(context.Background(), AllCities())
	if !errors.Is(err, core.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}

	src.err = nil
	if _, err := svc.Listings(context.Background()); err != nil {
		t.Fatalf("failed loads must not be cached: %v", err)
	}
}

func TestDashboardServiceParseError(t *testing.T) {
	bad := memory.New("bad", [][]string{
		core.RequiredColumns(),
		{"Campinas", "Incluso", "R$1,500", "R$200", "R$50", "R$20", "2", "not furnished", "acept"},
	})
	var buf bytes.Buffer
	svc := NewDashboardService(bad, Options{Logger: applog.New(applog.Config{Level: slog.LevelError, Output: &buf})})

	_, err := svc.Dashboard(context.Background(), AllCities())
	var pe *core.ParseError
	if !errors.As(err, &pe) || pe.Column != core.ColRent {
		t.Fatalf("expected parse error on rent column, got %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "operation=normalize") || !strings.Contains(out, "component=dataset") {
		t.Errorf("parse failure should be logged as a normalize error: %s", out)
	}
}

func TestDashboardServiceConcurrentRequests(t *testing.T) {
	src := newCountingSource(t)
	svc := NewDashboardService(src, Options{DatasetTTL: time.Minute, RenderCacheSize: 4, Logger: quietLogger()})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sel := AllCities()
			if i%2 == 0 {
				sel = Selection{Cities: []string{"São Paulo"}}
			}
			if _, err := svc.Dashboard(context.Background(), sel); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Dashboard: %v", err)
	}
	if got := src.reads.Load(); got < 1 || got > 8 {
		t.Errorf("unexpected read count %d", got)
	}
}
