// Package memory serves the dataset from records held in memory.
package memory

import (
	"bytes"
	"context"
	_ "embed"
	"sync"

	"rentdash/internal/source/csvfile"
)

//go:embed sample.csv
var sampleCSV []byte

// Store keeps the dataset records in memory.
type Store struct {
	mu      sync.Mutex
	name    string
	records [][]string
}

// New returns a store serving a copy of records.
func New(name string, records [][]string) *Store {
	return &Store{name: name, records: copyRecords(records)}
}

// NewSample returns a store seeded with the built-in sample listings.
func NewSample() (*Store, error) {
	records, err := csvfile.Parse(bytes.NewReader(sampleCSV))
	if err != nil {
		return nil, err
	}
	return New("sample", records), nil
}

// Describe implements source.Describer.
func (s *Store) Describe() string { return "memory:" + s.name }

// ReadRecords implements source.RecordReader. Callers get their own copy.
func (s *Store) ReadRecords(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRecords(s.records), nil
}

// Replace swaps the stored records.
func (s *Store) Replace(records [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = copyRecords(records)
}

func copyRecords(in [][]string) [][]string {
	out := make([][]string, len(in))
	for i, r := range in {
		out[i] = append([]string(nil), r...)
	}
	return out
}
