package core

import (
	"reflect"
	"testing"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want BoxSummary
	}{
		{
			name: "one to five",
			in:   []float64{5, 3, 1, 4, 2},
			want: BoxSummary{Count: 5, Min: 1, Q1: 2, Median: 3, Q3: 4, Max: 5, Mean: 3, LowerWhisker: 1, UpperWhisker: 5, Outliers: []float64{}},
		},
		{
			name: "high outlier",
			in:   []float64{1, 2, 3, 4, 100},
			want: BoxSummary{Count: 5, Min: 1, Q1: 2, Median: 3, Q3: 4, Max: 100, Mean: 22, LowerWhisker: 1, UpperWhisker: 4, Outliers: []float64{100}},
		},
		{
			name: "single value",
			in:   []float64{7},
			want: BoxSummary{Count: 1, Min: 7, Q1: 7, Median: 7, Q3: 7, Max: 7, Mean: 7, LowerWhisker: 7, UpperWhisker: 7, Outliers: []float64{}},
		},
		{
			name: "empty",
			in:   nil,
			want: BoxSummary{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %+v\nwant %+v", got, tt.want)
			}
		})
	}
}

func TestSummarizeDoesNotSortInput(t *testing.T) {
	in := []float64{3, 1, 2}
	_ = Summarize(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Fatalf("input reordered: %v", in)
	}
}
