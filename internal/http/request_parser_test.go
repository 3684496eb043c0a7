package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantAll    bool
		wantCities []string
	}{
		{
			name:    "no filter selects every city",
			query:   "",
			wantAll: true,
		},
		{
			name:    "cities without filter flag are ignored",
			query:   "city=Campinas",
			wantAll: true,
		},
		{
			name:       "filter without cities is an empty selection",
			query:      "filter=1",
			wantCities: []string{},
		},
		{
			name:       "filter with cities keeps submitted order",
			query:      "filter=1&city=Campinas&city=S%C3%A3o+Paulo",
			wantCities: []string{"Campinas", "São Paulo"},
		},
		{
			name:       "blank and duplicate cities are dropped",
			query:      "filter=1&city=+&city=Campinas&city=Campinas&city=%20Campinas%20",
			wantCities: []string{"Campinas"},
		},
		{
			name:       "control characters are stripped",
			query:      "filter=1&city=Cam%00pinas",
			wantCities: []string{"Campinas"},
		},
		{
			name:       "empty filter value still counts as submitted",
			query:      "filter=&city=Campinas",
			wantCities: []string{"Campinas"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery: %v", err)
			}
			sel := ParseSelection(q)
			if sel.All != tt.wantAll {
				t.Fatalf("All = %v, want %v", sel.All, tt.wantAll)
			}
			if !tt.wantAll && !reflect.DeepEqual(sel.Cities, tt.wantCities) {
				t.Errorf("Cities = %#v, want %#v", sel.Cities, tt.wantCities)
			}
		})
	}
}

func TestParseSelectionBounds(t *testing.T) {
	q := url.Values{ParamFilter: {"1"}}
	q.Add(ParamCity, strings.Repeat("x", maxCityLength+1))
	for i := 0; i < maxCities+10; i++ {
		q.Add(ParamCity, "c"+strings.Repeat("y", i))
	}
	sel := ParseSelection(q)
	if len(sel.Cities) != maxCities {
		t.Fatalf("kept %d cities, want %d", len(sel.Cities), maxCities)
	}
	if sel.Cities[0] != "c" {
		t.Errorf("overlong city should be skipped, first = %q", sel.Cities[0])
	}
}

func TestRequireGET(t *testing.T) {
	if resp := RequireGET(httptest.NewRequest(http.MethodGet, "/", nil)); resp != nil {
		t.Error("GET should be accepted")
	}
	if resp := RequireGET(httptest.NewRequest(http.MethodHead, "/", nil)); resp != nil {
		t.Error("HEAD should be accepted")
	}

	resp := RequireGET(httptest.NewRequest(http.MethodDelete, "/", nil))
	if resp == nil {
		t.Fatal("DELETE should be rejected")
	}
	rr := httptest.NewRecorder()
	resp.Write(rr)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rr.Code)
	}
	if rr.Header().Get("Allow") != "GET, HEAD" {
		t.Errorf("Allow = %q", rr.Header().Get("Allow"))
	}
}

func TestResponseBuilder(t *testing.T) {
	rr := httptest.NewRecorder()
	NewResponse().Status(http.StatusAccepted).Header("X-Test", "1").JSON(map[string]int{"n": 1}).Write(rr)
	if rr.Code != http.StatusAccepted {
		t.Errorf("status = %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" || rr.Header().Get("X-Test") != "1" {
		t.Errorf("headers = %v", rr.Header())
	}
	if strings.TrimSpace(rr.Body.String()) != `{"n":1}` {
		t.Errorf("body = %q", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	b := NewResponse().Page(nil, "dashboard.html", nil)
	if b.Err() == nil {
		t.Fatal("missing templates should be an error")
	}
	b.Write(rr)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}

	rr = httptest.NewRecorder()
	NewResponse().JSON(func() {}).Write(rr)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("unencodable body status = %d, want 500", rr.Code)
	}
}
