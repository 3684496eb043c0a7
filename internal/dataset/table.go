// Package dataset loads raw listing records into a typed dataframe and
// normalizes its currency columns.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"rentdash/internal/core"
	"rentdash/internal/source"
)

// Table is an immutable view over the dataset. Operations return new tables.
type Table struct {
	df  dataframe.DataFrame
	raw [][]string // source records, header first, for error reporting
}

// textColumns are never type-detected.
var textColumns = map[string]series.Type{
	core.ColCity:      series.String,
	core.ColFurniture: series.String,
	core.ColAnimal:    series.String,
}

// FromRecords builds a table from a header record followed by data records.
// Column representations are detected from the values.
func FromRecords(records [][]string) (Table, error) {
	if len(records) < 2 || len(records[0]) == 0 {
		return Table{}, core.ErrEmptyDataset
	}
	if missing := core.MissingColumns(records[0]); len(missing) > 0 {
		return Table{}, core.MissingColumnError(missing)
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.WithTypes(textColumns),
	)
	if df.Err != nil {
		return Table{}, fmt.Errorf("load records: %w", df.Err)
	}
	return Table{df: df, raw: records}, nil
}

// Nrow returns the number of data rows.
func (t Table) Nrow() int { return t.df.Nrow() }

// Has reports whether the table has the named column.
func (t Table) Has(column string) bool {
	for _, n := range t.df.Names() {
		if n == column {
			return true
		}
	}
	return false
}

// Kind returns the declared representation of a column.
func (t Table) Kind(column string) series.Type {
	return t.df.Col(column).Type()
}

// cell returns the source text of a data cell, so errors quote the file and
// not gota's NaN placeholder.
func (t Table) cell(column string, row int) string {
	if len(t.raw) == 0 || row < 0 || row+1 >= len(t.raw) {
		return ""
	}
	for j, name := range t.raw[0] {
		if name == column {
			if j < len(t.raw[row+1]) {
				return t.raw[row+1][j]
			}
			return ""
		}
	}
	return ""
}

// Records returns the column values as text.
func (t Table) Records(column string) []string {
	return t.df.Col(column).Records()
}

// Floats returns the column values as numbers.
func (t Table) Floats(column string) []float64 {
	return t.df.Col(column).Float()
}

// NormalizeColumn returns a copy of t where the named currency column holds
// numbers. A textual column is stripped of the R$ symbol and thousands
// separators and parsed; a column already declared numeric is returned as is.
// The input table is never modified.
func NormalizeColumn(t Table, column string) (Table, error) {
	if !t.Has(column) {
		return t, core.MissingColumnError([]string{column})
	}
	col := t.df.Col(column)
	switch col.Type() {
	case series.Int, series.Float:
		return t, nil
	case series.String:
		raw := col.Records()
		values := make([]float64, len(raw))
		for i, r := range raw {
			v, err := core.ParseCurrency(r)
			if err != nil {
				var pe *core.ParseError
				if errors.As(err, &pe) {
					pe.Column, pe.Row = column, i
					return t, pe
				}
				return t, err
			}
			values[i] = v
		}
		df := t.df.Mutate(series.New(values, series.Float, column))
		if df.Err != nil {
			return t, fmt.Errorf("replace column %q: %w", column, df.Err)
		}
		return Table{df: df, raw: t.raw}, nil
	default:
		return t, &core.ParseError{
			Column: column,
			Row:    -1,
			Value:  string(col.Type()),
			Err:    errors.New("unsupported column representation"),
		}
	}
}

// NormalizeCurrencyColumns normalizes every currency column.
func NormalizeCurrencyColumns(t Table) (Table, error) {
	var err error
	for _, c := range core.CurrencyColumns() {
		if t, err = NormalizeColumn(t, c); err != nil {
			return t, err
		}
	}
	return t, nil
}

// Listings materializes the typed rows. Currency columns must already be
// numeric and finite.
func (t Table) Listings() (core.Listings, error) {
	n := t.df.Nrow()
	amounts := make(map[string][]float64, len(core.CurrencyColumns()))
	for _, c := range core.CurrencyColumns() {
		col := t.df.Col(c)
		if col.Type() == series.String {
			return nil, &core.ParseError{Column: c, Row: -1, Value: "text", Err: errors.New("column not normalized")}
		}
		values := col.Float()
		for i, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &core.ParseError{Column: c, Row: i, Value: t.cell(c, i), Err: errors.New("not a finite number")}
			}
		}
		amounts[c] = values
	}

	baths, err := t.bathrooms()
	if err != nil {
		return nil, err
	}
	cities := t.df.Col(core.ColCity).Records()
	furniture := t.df.Col(core.ColFurniture).Records()
	animals := t.df.Col(core.ColAnimal).Records()

	out := make(core.Listings, n)
	for i := 0; i < n; i++ {
		out[i] = core.Listing{
			City:          cities[i],
			Rent:          amounts[core.ColRent][i],
			Total:         amounts[core.ColTotal][i],
			HOA:           amounts[core.ColHOA][i],
			PropertyTax:   amounts[core.ColPropertyTax][i],
			FireInsurance: amounts[core.ColFireInsurance][i],
			Bathrooms:     baths[i],
			Furniture:     furniture[i],
			Animal:        animals[i],
		}
	}
	return out, nil
}

// bathrooms returns the bathroom counts. Fractional, blank or infinite
// counts are parse errors; gota would otherwise truncate them.
func (t Table) bathrooms() ([]int, error) {
	col := t.df.Col(core.ColBathroom)
	switch col.Type() {
	case series.Int, series.Float:
	default:
		return nil, &core.ParseError{
			Column: core.ColBathroom,
			Row:    -1,
			Value:  string(col.Type()),
			Err:    errors.New("bathroom column is not numeric"),
		}
	}
	values := col.Float()
	out := make([]int, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return nil, &core.ParseError{
				Column: core.ColBathroom,
				Row:    i,
				Value:  t.cell(core.ColBathroom, i),
				Err:    errors.New("bathroom count is not an integer"),
			}
		}
		out[i] = int(v)
	}
	return out, nil
}

// Load reads the source, normalizes the currency columns and returns the
// listings.
func Load(ctx context.Context, src source.RecordReader) (core.Listings, error) {
	records, err := src.ReadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	t, err := FromRecords(records)
	if err != nil {
		return nil, err
	}
	if t, err = NormalizeCurrencyColumns(t); err != nil {
		return nil, err
	}
	return t.Listings()
}
