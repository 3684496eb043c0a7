// Package sheets reads the dataset from a Google Sheets range.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	applog "rentdash/internal/log"
	"rentdash/internal/source"
)

// DefaultRange covers the dataset's thirteen columns with room to spare.
const DefaultRange = "Listings!A:Z"

// Config selects the spreadsheet range and the service account credentials.
type Config struct {
	SpreadsheetID      string
	Range              string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Source struct {
	svc           *gsheet.Service
	spreadsheetID string
	rng           string
}

var _ source.RecordReader = (*Source)(nil)

// New wraps an existing Sheets service.
func New(svc *gsheet.Service, spreadsheetID, rng string) *Source {
	if strings.TrimSpace(rng) == "" {
		rng = DefaultRange
	}
	return &Source{svc: svc, spreadsheetID: spreadsheetID, rng: rng}
}

// NewFromConfig creates a read-only Sheets client authenticated with a
// service account.
func NewFromConfig(ctx context.Context, cfg Config) (*Source, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return New(svc, cfg.SpreadsheetID, cfg.Range), nil
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		credentialsJSON = []byte(cfg.ServiceAccountJSON)
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		b, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service",
		applog.FieldComponent, applog.ComponentSheets,
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsReadonlyScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// Describe implements source.Describer.
func (s *Source) Describe() string {
	return "sheets:" + s.spreadsheetID + "/" + s.rng
}

// ReadRecords implements source.RecordReader. Cells are read as displayed,
// so currency cells keep their R$ formatting.
func (s *Source) ReadRecords(ctx context.Context) ([][]string, error) {
	if s.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.rng).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.rng, err)
	}
	return toRecords(resp.Values), nil
}

// toRecords converts a Sheets value matrix to text records. The API drops
// trailing empty cells, so rows are padded to the header width; blank rows
// are skipped.
func toRecords(values [][]interface{}) [][]string {
	if len(values) == 0 {
		return nil
	}
	header := toStrings(values[0])
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}
	out := [][]string{header}
	for _, row := range values[1:] {
		rec := toStrings(row)
		if isBlank(rec) {
			continue
		}
		if len(rec) > len(header) {
			rec = rec[:len(header)]
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		out = append(out, rec)
	}
	return out
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if v != "" {
			return false
		}
	}
	return true
}
