// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for reading the dashboard's query string.

package http

import (
	"net/http"
	"net/url"
	"strings"

	"rentdash/internal/services"
)

const (
	// ParamFilter marks a submitted filter form. Without it every city is shown.
	ParamFilter = "filter"
	// ParamCity repeats once per selected city.
	ParamCity = "city"

	maxCityLength = 128
	maxCities     = 256
)

// ParseSelection extracts the city selection from query parameters.
//
// A query without ParamFilter selects every city. A submitted filter with no
// ParamCity values is an explicit empty selection. Blank and duplicate
// values are dropped; cities the dataset does not know are left for
// services.Selection.Resolve to ignore.
func ParseSelection(query url.Values) services.Selection {
	if _, submitted := query[ParamFilter]; !submitted {
		return services.AllCities()
	}

	seen := make(map[string]struct{})
	cities := []string{}
	for _, raw := range query[ParamCity] {
		c := sanitizeInput(raw)
		if c == "" || len(c) > maxCityLength {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		cities = append(cities, c)
		if len(cities) == maxCities {
			break
		}
	}
	return services.Selection{Cities: cities}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *ResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET accepts GET and HEAD.
func RequireGET(r *http.Request) *ResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
