package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"rentdash/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "rentdash.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

var snapshotRecords = [][]string{
	{"city", "area", "rooms", "bathroom", "parking spaces", "floor", "animal", "furniture",
		"hoa (R$)", "rent amount (R$)", "property tax (R$)", "fire insurance (R$)", "total (R$)"},
	{"São Paulo", "70", "2", "1", "1", "7", "acept", "furnished", "R$2,065", "R$3,300", "R$211", "R$42", "R$5,618"},
	{"Porto Alegre", "80", "1", "1", "1", "-", "not acept", "not furnished", "R$0", "R$800", "R$25", "R$11", "R$836"},
}

func TestReplaceAndReadListings(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.ReplaceListings(ctx, "csv:test.csv", snapshotRecords)
	if err != nil {
		t.Fatalf("ReplaceListings: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}

	got, err := repo.ReadRecords(ctx)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if !reflect.DeepEqual(got, snapshotRecords) {
		t.Fatalf("round trip mismatch\ngot  %v\nwant %v", got, snapshotRecords)
	}
}

func TestReplaceListingsReplacesPreviousSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.ReplaceListings(ctx, "first", snapshotRecords); err != nil {
		t.Fatalf("first import: %v", err)
	}
	if _, err := repo.ReplaceListings(ctx, "second", snapshotRecords[:2]); err != nil {
		t.Fatalf("second import: %v", err)
	}

	count, err := repo.CountListings(ctx)
	if err != nil {
		t.Fatalf("CountListings: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 listing after replace, got %d", count)
	}

	imp, err := repo.LatestImport(ctx)
	if err != nil {
		t.Fatalf("LatestImport: %v", err)
	}
	if imp.Source != "second" || imp.Rows != 1 {
		t.Fatalf("unexpected import %+v", imp)
	}
}

func TestReplaceListingsOptionalColumns(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	records := [][]string{
		core.RequiredColumns(),
		{"Campinas", "R$1,200", "R$1,500", "R$200", "R$50", "R$20", "2", "not furnished", "acept"},
	}
	if _, err := repo.ReplaceListings(ctx, "minimal", records); err != nil {
		t.Fatalf("ReplaceListings: %v", err)
	}
	got, err := repo.ReadRecords(ctx)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	row := map[string]string{}
	for i, h := range got[0] {
		row[h] = got[1][i]
	}
	if row[core.ColRent] != "R$1,200" || row[core.ColBathroom] != "2" || row["area"] != "" {
		t.Fatalf("unexpected row %v", row)
	}
}

func TestReplaceListingsRejectsInvalidInput(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		records [][]string
		want    error
	}{
		{"header only", snapshotRecords[:1], core.ErrEmptyDataset},
		{"missing column", [][]string{{"city"}, {"Campinas"}}, core.ErrMissingColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := repo.ReplaceListings(ctx, "bad", tt.records); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := repo.LatestImport(ctx); !errors.Is(err, ErrNoImport) {
		t.Fatalf("expected ErrNoImport, got %v", err)
	}
}

func TestEmptySnapshotReadsHeaderOnly(t *testing.T) {
	repo := newTestRepo(t)
	got, err := repo.ReadRecords(context.Background())
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(got) != 1 || len(got[0]) != 13 {
		t.Fatalf("expected a lone 13-column header, got %v", got)
	}
}
