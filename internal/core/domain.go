package core

import (
	"errors"
	"fmt"
)

// Source column names of the rental listings dataset.
const (
	ColCity          = "city"
	ColRent          = "rent amount (R$)"
	ColTotal         = "total (R$)"
	ColHOA           = "hoa (R$)"
	ColPropertyTax   = "property tax (R$)"
	ColFireInsurance = "fire insurance (R$)"
	ColBathroom      = "bathroom"
	ColFurniture     = "furniture"
	ColAnimal        = "animal"
)

const (
	Furnished    = "furnished"
	NotFurnished = "not furnished"
)

type (
	// Listing is one rental property with its normalized price fields.
	Listing struct {
		City          string
		Rent          float64
		Total         float64
		HOA           float64 // condominium fee
		PropertyTax   float64 // IPTU
		FireInsurance float64
		Bathrooms     int
		Furniture     string
		Animal        string
	}

	Listings []Listing
)

var (
	ErrFileNotFound  = errors.New("dataset file not found")
	ErrMissingColumn = errors.New("missing column")
	ErrParse         = errors.New("parse error")
	ErrEmptyDataset  = errors.New("empty dataset")
)

// RequiredColumns lists the header entries every source must provide.
func RequiredColumns() []string {
	return []string{
		ColCity, ColRent, ColTotal, ColHOA, ColPropertyTax,
		ColFireInsurance, ColBathroom, ColFurniture, ColAnimal,
	}
}

// CurrencyColumns lists the columns holding R$ amounts.
func CurrencyColumns() []string {
	return []string{ColRent, ColTotal, ColHOA, ColPropertyTax, ColFireInsurance}
}

// MissingColumns returns the required columns absent from header, in
// RequiredColumns order.
func MissingColumns(header []string) []string {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, c := range RequiredColumns() {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// MissingColumnError wraps ErrMissingColumn with the offending column names.
func MissingColumnError(cols []string) error {
	return fmt.Errorf("%w: %q", ErrMissingColumn, cols)
}

// IsFurnished reports whether the listing is marked as furnished.
func (l Listing) IsFurnished() bool {
	return l.Furniture == Furnished
}
