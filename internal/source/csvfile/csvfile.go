// Package csvfile reads the dataset from a local comma-separated file.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"rentdash/internal/core"
)

// Source reads the whole file on every call.
type Source struct {
	path string
}

func New(path string) *Source {
	return &Source{path: path}
}

// Describe implements source.Describer.
func (s *Source) Describe() string { return "csv:" + s.path }

// ReadRecords implements source.RecordReader.
func (s *Source) ReadRecords(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrFileNotFound, s.path)
		}
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads CSV records, dropping a UTF-8 byte order mark on the header.
func Parse(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}
