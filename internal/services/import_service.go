package services

import (
	"context"
	"fmt"
	"log/slog"

	"rentdash/internal/amqp"
	"rentdash/internal/dataset"
	applog "rentdash/internal/log"
	"rentdash/internal/source"
)

// ListingWriter stores a raw listing snapshot
type ListingWriter interface {
	ReplaceListings(ctx context.Context, sourceName string, records [][]string) (int, error)
}

// RefreshPublisher announces a new snapshot to running servers
type RefreshPublisher interface {
	PublishDatasetRefresh(ctx context.Context, msg *amqp.DatasetRefreshMessage) error
}

// ImportResult summarizes a successful import
type ImportResult struct {
	Source    string
	Rows      int
	Cities    int
	Published bool
}

// ImportService validates a dataset, stores it and publishes a refresh
type ImportService struct {
	storage   ListingWriter
	publisher RefreshPublisher
}

// NewImportService creates the service. publisher may be nil when AMQP is
// not configured.
func NewImportService(storage ListingWriter, publisher RefreshPublisher) *ImportService {
	return &ImportService{
		storage:   storage,
		publisher: publisher,
	}
}

// Import reads src, checks that it would load as a dashboard dataset and
// replaces the stored snapshot with its raw records. Nothing is written when
// validation fails.
func (s *ImportService) Import(ctx context.Context, src source.RecordReader) (ImportResult, error) {
	name := source.Name(src)

	records, err := src.ReadRecords(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read %s: %w", name, err)
	}

	t, err := dataset.FromRecords(records)
	if err != nil {
		return ImportResult{}, fmt.Errorf("validate %s: %w", name, err)
	}
	if t, err = dataset.NormalizeCurrencyColumns(t); err != nil {
		return ImportResult{}, fmt.Errorf("validate %s: %w", name, err)
	}
	ls, err := t.Listings()
	if err != nil {
		return ImportResult{}, fmt.Errorf("validate %s: %w", name, err)
	}

	rows, err := s.storage.ReplaceListings(ctx, name, records)
	if err != nil {
		return ImportResult{}, fmt.Errorf("store %s: %w", name, err)
	}

	res := ImportResult{Source: name, Rows: rows, Cities: len(ls.Cities())}

	// The snapshot is stored; a failed notification only delays the refresh
	// until the servers' cache TTL runs out.
	if err := s.publishRefresh(ctx, name, rows); err != nil {
		slog.ErrorContext(ctx, "Failed to publish dataset refresh",
			applog.FieldComponent, applog.ComponentImport,
			applog.FieldOperation, applog.OpImport,
			applog.FieldSource, name,
			applog.FieldError, err)
		return res, nil
	}
	res.Published = s.publisher != nil
	return res, nil
}

func (s *ImportService) publishRefresh(ctx context.Context, name string, rows int) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping refresh message")
		return nil
	}
	return s.publisher.PublishDatasetRefresh(ctx, amqp.NewDatasetRefreshMessage(name, rows))
}
