// Package storage keeps a SQLite snapshot of the raw listing records.
//
// Values are stored exactly as imported, text included, so the dashboard
// normalizes them on every load just like it does for the CSV file.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rentdash/internal/core"
	applog "rentdash/internal/log"
	"rentdash/internal/source"

	_ "modernc.org/sqlite"
)

// ErrNoImport is returned by LatestImport on a snapshot that was never filled.
var ErrNoImport = errors.New("no import recorded")

// columnMap pairs the dataset header with the snapshot columns, in the
// order of the source CSV.
var columnMap = []struct {
	header string
	column string
}{
	{core.ColCity, "city"},
	{"area", "area"},
	{"rooms", "rooms"},
	{core.ColBathroom, "bathroom"},
	{"parking spaces", "parking_spaces"},
	{"floor", "floor"},
	{core.ColAnimal, "animal"},
	{core.ColFurniture, "furniture"},
	{core.ColHOA, "hoa"},
	{core.ColRent, "rent_amount"},
	{core.ColPropertyTax, "property_tax"},
	{core.ColFireInsurance, "fire_insurance"},
	{core.ColTotal, "total"},
}

const (
	insertListing = `INSERT INTO listings (city, area, rooms, bathroom, parking_spaces, floor,
	animal, furniture, hoa, rent_amount, property_tax, fire_insurance, total)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	selectListings = `SELECT city, area, rooms, bathroom, parking_spaces, floor,
	animal, furniture, hoa, rent_amount, property_tax, fire_insurance, total
	FROM listings ORDER BY id`
)

// Import describes one completed snapshot replacement.
type Import struct {
	ID         int64
	Source     string
	Rows       int
	ImportedAt time.Time
}

type SQLiteRepository struct {
	db   *sql.DB
	path string
}

var _ source.RecordReader = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Describe implements source.Describer.
func (r *SQLiteRepository) Describe() string {
	return "sqlite:" + r.path
}

// ReplaceListings swaps the stored snapshot for records (header first) in a
// single transaction and records the import. Only the required columns must
// be present; optional ones are stored empty when absent.
func (r *SQLiteRepository) ReplaceListings(ctx context.Context, sourceName string, records [][]string) (int, error) {
	if len(records) < 2 {
		return 0, core.ErrEmptyDataset
	}
	header := records[0]
	if missing := core.MissingColumns(header); len(missing) > 0 {
		return 0, core.MissingColumnError(missing)
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[h] = i
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM listings`); err != nil {
		return 0, fmt.Errorf("clear listings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertListing)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(columnMap))
	for n, rec := range records[1:] {
		for i, c := range columnMap {
			args[i] = ""
			if j, ok := pos[c.header]; ok && j < len(rec) {
				args[i] = rec[j]
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", n, err)
		}
	}

	rows := len(records) - 1
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (source, row_count, imported_at) VALUES (?, ?, ?)`,
		sourceName, rows, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Listings snapshot replaced",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldSource, sourceName,
		applog.FieldRows, rows,
		"db", r.path)

	return rows, nil
}

// ReadRecords implements source.RecordReader, returning the snapshot in the
// dataset's header layout.
func (r *SQLiteRepository) ReadRecords(ctx context.Context) ([][]string, error) {
	rows, err := r.db.QueryContext(ctx, selectListings)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	header := make([]string, len(columnMap))
	for i, c := range columnMap {
		header[i] = c.header
	}
	out := [][]string{header}

	for rows.Next() {
		rec := make([]string, len(columnMap))
		dest := make([]any, len(rec))
		for i := range rec {
			dest[i] = &rec[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}

	slog.DebugContext(ctx, "Listings read from SQLite", applog.FieldComponent, applog.ComponentStorage, applog.FieldRows, len(out)-1)
	return out, nil
}

// CountListings returns the number of stored listings.
func (r *SQLiteRepository) CountListings(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return n, nil
}

// LatestImport returns the most recent import, or ErrNoImport.
func (r *SQLiteRepository) LatestImport(ctx context.Context) (Import, error) {
	var imp Import
	err := r.db.QueryRowContext(ctx,
		`SELECT id, source, row_count, imported_at FROM imports ORDER BY id DESC LIMIT 1`).
		Scan(&imp.ID, &imp.Source, &imp.Rows, &imp.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Import{}, ErrNoImport
	}
	if err != nil {
		return Import{}, fmt.Errorf("latest import: %w", err)
	}
	return imp, nil
}
