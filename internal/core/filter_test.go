package core

import (
	"reflect"
	"testing"
)

func sampleListings() Listings {
	return Listings{
		{City: "São Paulo", Rent: 3300, Total: 5618, HOA: 2065, PropertyTax: 211, FireInsurance: 42, Bathrooms: 1, Furniture: Furnished, Animal: "acept"},
		{City: "Porto Alegre", Rent: 4960, Total: 7973, HOA: 1200, PropertyTax: 1750, FireInsurance: 63, Bathrooms: 2, Furniture: NotFurnished, Animal: "acept"},
		{City: "São Paulo", Rent: 2800, Total: 3841, HOA: 1000, PropertyTax: 0, FireInsurance: 41, Bathrooms: 3, Furniture: NotFurnished, Animal: "not acept"},
		{City: "Campinas", Rent: 1112, Total: 1421, HOA: 270, PropertyTax: 22, FireInsurance: 17, Bathrooms: 1, Furniture: NotFurnished, Animal: "acept"},
		{City: "Rio de Janeiro", Rent: 4500, Total: 6880, HOA: 1650, PropertyTax: 500, FireInsurance: 58, Bathrooms: 2, Furniture: Furnished, Animal: "not acept"},
	}
}

func TestCities(t *testing.T) {
	got := sampleListings().Cities()
	want := []string{"São Paulo", "Porto Alegre", "Campinas", "Rio de Janeiro"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestFilterByCity(t *testing.T) {
	all := sampleListings()
	before := append(Listings(nil), all...)

	tests := []struct {
		name     string
		selected []string
		wantRows int
	}{
		{"all cities", all.Cities(), len(all)},
		{"single city", []string{"São Paulo"}, 2},
		{"two cities", []string{"Campinas", "Porto Alegre"}, 2},
		{"empty selection", nil, 0},
		{"unknown city", []string{"Curitiba"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := all.FilterByCity(tt.selected)
			if len(got) != tt.wantRows {
				t.Fatalf("rows: got %d want %d", len(got), tt.wantRows)
			}
			set := map[string]bool{}
			for _, c := range tt.selected {
				set[c] = true
			}
			for _, l := range got {
				if !set[l.City] {
					t.Fatalf("row with unselected city %q", l.City)
				}
			}
			// every selected row of the original is present, unchanged and in order
			j := 0
			for _, l := range all {
				if !set[l.City] {
					continue
				}
				if got[j] != l {
					t.Fatalf("row %d differs: %+v vs %+v", j, got[j], l)
				}
				j++
			}
		})
	}
	if !reflect.DeepEqual(all, before) {
		t.Fatalf("filter mutated its input")
	}
}

func TestFilterReturnsCopy(t *testing.T) {
	all := sampleListings()
	got := all.FilterByCity(all.Cities())
	got[0].Rent = -1
	if all[0].Rent == -1 {
		t.Fatalf("filtered view shares storage with the original")
	}
}

func TestCountBySumsToRows(t *testing.T) {
	all := sampleListings()
	for _, sel := range [][]string{all.Cities(), {"São Paulo"}, {"Campinas", "Rio de Janeiro"}, nil} {
		f := all.FilterByCity(sel)
		sum := 0
		for _, c := range f.CountBy(Furniture) {
			sum += c.Count
		}
		if sum != len(f) {
			t.Fatalf("furniture counts sum to %d, want %d", sum, len(f))
		}
	}
	got := all.CountBy(Furniture)
	want := []Count{{Furnished, 2}, {NotFurnished, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestGroupValues(t *testing.T) {
	keys, vals := sampleListings().GroupValues(City, Rent)
	if len(keys) != 4 || keys[0] != "São Paulo" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if !reflect.DeepEqual(vals[0], []float64{3300, 2800}) {
		t.Fatalf("unexpected São Paulo rents %v", vals[0])
	}
}
