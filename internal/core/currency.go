// Package core provides the listing model, currency parsing and the
// aggregations behind the dashboard panels.
//
// This file contains the parsing of R$ currency text into plain numbers.
package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CurrencySymbol is the prefix used by the dataset's textual amounts.
const CurrencySymbol = "R$"

// ParseError reports a value that could not be converted to a number.
// It matches ErrParse with errors.Is.
type ParseError struct {
	Column string
	Row    int // zero-based data row, -1 when unknown
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse ")
	if e.Column != "" {
		fmt.Fprintf(&b, "column %q ", e.Column)
	}
	if e.Row >= 0 {
		fmt.Fprintf(&b, "row %d ", e.Row)
	}
	fmt.Fprintf(&b, "value %q", e.Value)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ParseCurrency converts an R$ amount to a float64.
//
// The currency symbol and every comma are stripped; the remainder is parsed
// with a dot as decimal separator. The dataset writes thousands with commas
// and carries no cents, so "R$1,200" is 1200.
//
// Examples:
//
//	ParseCurrency("R$1,200")   -> 1200, nil
//	ParseCurrency("R$1200")    -> 1200, nil
//	ParseCurrency(" R$ 850 ")  -> 850, nil
//	ParseCurrency("1500")      -> 1500, nil
//	ParseCurrency("Incluso")   -> 0, *ParseError
func ParseCurrency(raw string) (float64, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " "))
	s = strings.ReplaceAll(s, CurrencySymbol, "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ParseError{Row: -1, Value: raw, Err: errors.New("no digits")}
	}
	// ParseFloat also takes hex floats, underscores and named values.
	if i := strings.IndexFunc(s, notDecimal); i >= 0 {
		return 0, &ParseError{Row: -1, Value: raw, Err: fmt.Errorf("unexpected character %q", s[i:i+1])}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseError{Row: -1, Value: raw, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Row: -1, Value: raw, Err: errors.New("not a finite number")}
	}
	return v, nil
}

func notDecimal(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return false
	case r == '.', r == '+', r == '-', r == 'e', r == 'E':
		return false
	}
	return true
}

// FormatBRL formats an amount as Brazilian reais for display, e.g. "R$ 1.234".
// Fractions are rounded to whole reais.
func FormatBRL(v float64) string {
	neg := v < 0
	n := int64(math.Round(math.Abs(v)))
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-R$ " + b.String()
	}
	return "R$ " + b.String()
}
