package source

import (
	"context"
)

// Ports for the dataset sources.
type (
	// RecordReader returns the raw dataset as text: the header first, then
	// one record per listing. Values are returned exactly as stored, so
	// currency columns may still carry the R$ formatting.
	RecordReader interface {
		ReadRecords(ctx context.Context) ([][]string, error)
	}

	// Describer names a source for logs and cache keys.
	Describer interface {
		Describe() string
	}
)

// Name returns the source description when available.
func Name(r RecordReader) string {
	if d, ok := r.(Describer); ok {
		return d.Describe()
	}
	return "unknown"
}
