// Package charts turns aggregates and slices into render-ready payloads.
// Every builder is pure: same input, same payload.
package charts

import (
	"fmt"
	"strings"

	"dashboards/internal/engine"
	"dashboards/internal/models"
)

// Style is the fixed figure configuration of the pollution dashboard.
type Style struct {
	XTitle      string
	YTitle      string
	Mode        string
	Height      int
	PieLabels   []string
	PieColors   []string
	PieTextInfo string
	PieHole     float64
}

var DefaultStyle = Style{
	XTitle:      "Year",
	YTitle:      "Mean Value",
	Mode:        "lines+markers",
	Height:      300,
	PieLabels:   []string{"NO2", "O3", "SO2", "CO"},
	PieColors:   []string{"red", "green", "blue", "orange"},
	PieTextInfo: "label+percent",
	PieHole:     0.3,
}

// EmptyScatter is the figure shown before any region is selected.
func EmptyScatter() models.Figure {
	return models.Figure{Data: []models.Trace{}}
}

// EmptyPie is the pie figure with no slices.
func EmptyPie() models.Figure {
	return models.Figure{Data: []models.Trace{}}
}

func yValues(means []engine.Mean) []*float64 {
	out := make([]*float64, len(means))
	for i, m := range means {
		out[i] = m.Ptr()
	}
	return out
}

// LineSeries plots one measure per year. Undefined means are emitted as
// null, which the chart draws as a gap.
func LineSeries(agg engine.YearlyAggregate, measure, title string, st Style) (models.Figure, error) {
	means, err := agg.Series(measure)
	if err != nil {
		return models.Figure{}, err
	}
	return models.Figure{
		Data: []models.Trace{{
			Type: "scatter",
			Mode: st.Mode,
			Name: measure,
			X:    agg.Years(),
			Y:    yValues(means),
		}},
		Layout: models.Layout{
			Title:  title,
			XAxis:  &models.Axis{Title: st.XTitle},
			YAxis:  &models.Axis{Title: st.YTitle},
			Height: st.Height,
		},
	}, nil
}

// ComboChart overlays a line of the second measure on bars of the first,
// sharing the year axis with independent y scales.
func ComboChart(agg engine.YearlyAggregate, bar, line string, st Style) (models.Figure, error) {
	bars, err := agg.Series(bar)
	if err != nil {
		return models.Figure{}, err
	}
	lines, err := agg.Series(line)
	if err != nil {
		return models.Figure{}, err
	}
	years := agg.Years()
	return models.Figure{
		Data: []models.Trace{
			{Type: "bar", Name: bar, X: years, Y: yValues(bars)},
			{Type: "scatter", Name: line, X: years, Y: yValues(lines), YAxis: "y2"},
		},
		Layout: models.Layout{
			Title:  fmt.Sprintf("%s Bar-Line Graph", agg.Region.Name),
			XAxis:  &models.Axis{Title: st.XTitle},
			YAxis:  &models.Axis{Title: bar},
			YAxis2: &models.Axis{Title: line, Overlaying: "y", Side: "right"},
		},
	}, nil
}

// PieChart shows the whole-slice mean of each measure. A measure with no
// data gets a zero slice; an empty slice gets EmptyPie.
func PieChart(s engine.Slice, measures []string, st Style) (models.Figure, error) {
	if s.Len() == 0 {
		return EmptyPie(), nil
	}
	means, err := engine.MeasureMeans(s, measures)
	if err != nil {
		return models.Figure{}, err
	}
	values := make([]float64, len(means))
	for i, m := range means {
		if m.Valid {
			values[i] = m.Value
		}
	}
	labels := st.PieLabels
	if len(labels) != len(measures) {
		labels = measures
	}
	return models.Figure{
		Data: []models.Trace{{
			Type:     "pie",
			Labels:   labels,
			Values:   values,
			Marker:   &models.Marker{Colors: st.PieColors},
			TextInfo: st.PieTextInfo,
			Hole:     st.PieHole,
		}},
		Layout: models.Layout{Title: fmt.Sprintf("%s Pollution Distribution", s.Region().Name)},
	}, nil
}

// Effects is the static markdown panel shown beside the charts.
const Effects = `### Pollution Types and Effects

- **NO2 (Nitrogen Dioxide):**
  - Effects: Irritates the respiratory system, can lead to respiratory infections.

- **O3 (Ozone):**
  - Effects: Causes respiratory problems, aggravates asthma, and reduces lung function.

- **SO2 (Sulfur Dioxide):**
  - Effects: Irritates the respiratory system, can worsen asthma, and contributes to acid rain.

- **CO (Carbon Monoxide):**
  - Effects: Reduces the blood's ability to carry oxygen, leading to headaches and dizziness.
`

// Summary is a markdown digest of the whole-slice measure means.
func Summary(s engine.Slice, measures []string) (string, error) {
	if !s.Selected() {
		return "", nil
	}
	means, err := engine.MeasureMeans(s, measures)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**%s Pollution Levels:**\n", s.Region().Name)
	for i, m := range means {
		if m.Valid {
			fmt.Fprintf(&b, "- %s: %.2f\n", measures[i], m.Value)
		} else {
			fmt.Fprintf(&b, "- %s: n/a\n", measures[i])
		}
	}
	return b.String(), nil
}
