package core

// Count is the number of listings sharing a key.
type Count struct {
	Key   string
	Count int
}

// Cities returns the distinct cities in order of first appearance.
func (ls Listings) Cities() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, l := range ls {
		if _, ok := seen[l.City]; ok {
			continue
		}
		seen[l.City] = struct{}{}
		out = append(out, l.City)
	}
	return out
}

// FilterByCity returns the listings whose city is in selected, keeping their
// relative order. The receiver is left untouched; an empty selection yields
// an empty result.
func (ls Listings) FilterByCity(selected []string) Listings {
	want := make(map[string]struct{}, len(selected))
	for _, c := range selected {
		want[c] = struct{}{}
	}
	out := make(Listings, 0, len(ls))
	for _, l := range ls {
		if _, ok := want[l.City]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Where returns the listings matching keep.
func (ls Listings) Where(keep func(Listing) bool) Listings {
	var out Listings
	for _, l := range ls {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

// CountBy groups listings by key. Groups appear in order of first
// appearance and their counts sum to len(ls).
func (ls Listings) CountBy(key func(Listing) string) []Count {
	idx := make(map[string]int)
	var out []Count
	for _, l := range ls {
		k := key(l)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Count{Key: k})
		}
		out[i].Count++
	}
	return out
}

// Values extracts one numeric field per listing.
func (ls Listings) Values(field func(Listing) float64) []float64 {
	out := make([]float64, len(ls))
	for i, l := range ls {
		out[i] = field(l)
	}
	return out
}

// GroupValues extracts field per group, groups in order of first appearance.
func (ls Listings) GroupValues(key func(Listing) string, field func(Listing) float64) (keys []string, values [][]float64) {
	idx := make(map[string]int)
	for _, l := range ls {
		k := key(l)
		i, ok := idx[k]
		if !ok {
			i = len(keys)
			idx[k] = i
			keys = append(keys, k)
			values = append(values, nil)
		}
		values[i] = append(values[i], field(l))
	}
	return keys, values
}

// Field accessors shared by the panel builders.
func City(l Listing) string           { return l.City }
func Animal(l Listing) string         { return l.Animal }
func Furniture(l Listing) string      { return l.Furniture }
func Rent(l Listing) float64          { return l.Rent }
func Total(l Listing) float64         { return l.Total }
func HOA(l Listing) float64           { return l.HOA }
func PropertyTax(l Listing) float64   { return l.PropertyTax }
func FireInsurance(l Listing) float64 { return l.FireInsurance }
