package core

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// whiskerSpan is the Tukey fence distance in IQRs.
const whiskerSpan = 1.5

// BoxSummary is the five-number summary of a sample plus Tukey whiskers.
type BoxSummary struct {
	Count        int       `json:"count"`
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	Mean         float64   `json:"mean"`
	LowerWhisker float64   `json:"whiskerMin"`
	UpperWhisker float64   `json:"whiskerMax"`
	Outliers     []float64 `json:"outliers"`
}

// IQR returns the interquartile range.
func (b BoxSummary) IQR() float64 { return b.Q3 - b.Q1 }

// Summarize computes a BoxSummary. Quartiles are empirical (inverse CDF), so
// every reported quartile is an observed value. The input is not modified.
func Summarize(values []float64) BoxSummary {
	if len(values) == 0 {
		return BoxSummary{}
	}
	x := append([]float64(nil), values...)
	sort.Float64s(x)

	b := BoxSummary{
		Count:  len(x),
		Min:    floats.Min(x),
		Max:    floats.Max(x),
		Mean:   stat.Mean(x, nil),
		Q1:     stat.Quantile(0.25, stat.Empirical, x, nil),
		Median: stat.Quantile(0.5, stat.Empirical, x, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, x, nil),
	}

	lo := b.Q1 - whiskerSpan*b.IQR()
	hi := b.Q3 + whiskerSpan*b.IQR()
	b.LowerWhisker, b.UpperWhisker = b.Max, b.Min
	b.Outliers = []float64{}
	for _, v := range x {
		if v < lo || v > hi {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		if v < b.LowerWhisker {
			b.LowerWhisker = v
		}
		if v > b.UpperWhisker {
			b.UpperWhisker = v
		}
	}
	return b
}
