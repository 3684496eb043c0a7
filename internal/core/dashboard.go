package core

// PanelKind selects how a panel is drawn.
type PanelKind string

const (
	PanelBox        PanelKind = "box"
	PanelScatter    PanelKind = "scatter"
	PanelPie        PanelKind = "pie"
	PanelStackedBar PanelKind = "stacked_bar"
	PanelBar        PanelKind = "bar"
)

type (
	// BoxGroup is one box of a box plot.
	BoxGroup struct {
		Label   string     `json:"label"`
		Summary BoxSummary `json:"summary"`
	}

	Point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}

	// ScatterSeries is one colored group of a scatter plot.
	ScatterSeries struct {
		Label  string  `json:"label"`
		Points []Point `json:"points"`
	}

	// Slice is one wedge of a pie chart.
	Slice struct {
		Label   string  `json:"label"`
		Count   int     `json:"count"`
		Percent float64 `json:"percent"`
	}

	// BarSeries holds one value per category of the owning panel.
	BarSeries struct {
		Label  string    `json:"label"`
		Values []float64 `json:"values"`
	}

	// Panel is the data behind one chart of the dashboard.
	Panel struct {
		ID      string    `json:"id"`
		Heading string    `json:"heading"`
		Title   string    `json:"title"`
		Kind    PanelKind `json:"kind"`
		XLabel  string    `json:"xLabel,omitempty"`
		YLabel  string    `json:"yLabel,omitempty"`

		Boxes      []BoxGroup      `json:"boxes,omitempty"`
		Series     []ScatterSeries `json:"series,omitempty"`
		Slices     []Slice         `json:"slices,omitempty"`
		Categories []string        `json:"categories,omitempty"`
		Bars       []BarSeries     `json:"bars,omitempty"`
	}

	// Insight is a short finding shown under the charts.
	Insight struct {
		Label string
		Text  string
	}

	// Dashboard is everything the page renders for one city selection.
	Dashboard struct {
		Cities    []string // every distinct city, the multiselect options
		Selected  []string // selected cities, in Cities order
		Rows      int      // listings after filtering
		TotalRows int      // listings before filtering
		Panels    []Panel
		Insights  []Insight
	}
)

// Empty reports whether the panel has nothing to draw.
func (p Panel) Empty() bool {
	return len(p.Boxes) == 0 && len(p.Series) == 0 && len(p.Slices) == 0 && len(p.Bars) == 0
}

// IsSelected reports whether city is part of the selection.
func (d Dashboard) IsSelected(city string) bool {
	for _, c := range d.Selected {
		if c == city {
			return true
		}
	}
	return false
}
