package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"rentdash/internal/config"
	"rentdash/internal/source"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "csv", DatasetPath: "x.csv"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != CSVBackend || cfg.DatasetPath != "x.csv" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"csv ok", Config{Type: CSVBackend, DatasetPath: "a.csv"}, ""},
		{"csv missing path", Config{Type: CSVBackend}, "dataset path is required"},
		{"sqlite missing path", Config{Type: SQLiteBackend}, "SQLite database path is required"},
		{"sheets missing id", Config{Type: SheetsBackend, GoogleServiceAccountJSON: "{}"}, "Spreadsheet ID is required"},
		{"sheets missing credentials", Config{Type: SheetsBackend, GoogleSpreadsheetID: "id"}, "GoogleServiceAccountFile or GoogleServiceAccountJSON"},
		{"memory ok", Config{Type: MemoryBackend}, ""},
		{"invalid", Config{Type: "x"}, "invalid backend type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	tests := []struct {
		name     string
		config   Config
		wantName string
	}{
		{"csv", Config{Type: CSVBackend, DatasetPath: "houses.csv"}, "csv:houses.csv"},
		{"memory", Config{Type: MemoryBackend}, "memory:sample"},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "r.db")}, "sqlite:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateBackend(ctx, tt.config)
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			if res.Cleanup != nil {
				defer res.Cleanup()
			}
			if got := source.Name(res.Source); !strings.HasPrefix(got, tt.wantName) {
				t.Errorf("source = %q, want prefix %q", got, tt.wantName)
			}
		})
	}

	if _, err := f.CreateBackend(ctx, Config{Type: SheetsBackend, GoogleSpreadsheetID: "id", GoogleServiceAccountFile: "/missing.json"}); err == nil {
		t.Error("expected sheets error for unreadable credentials")
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	if got := strings.Join(GetBackendTypeStrings(), ","); got != "csv,sqlite,sheets,memory" {
		t.Errorf("got %s", got)
	}
}
