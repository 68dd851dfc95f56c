package charts

import (
	"errors"
	"io"
	"strconv"

	"dashboards/internal/engine"

	chart "github.com/wcharczuk/go-chart/v2"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data points")

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(f))
	}
	return ""
}

// RenderLinePNG draws the same series as LineSeries as a PNG. Undefined
// means are skipped since the renderer has no notion of gaps.
func RenderLinePNG(agg engine.YearlyAggregate, measure, title string, width, height int, st Style, w io.Writer) error {
	means, err := agg.Series(measure)
	if err != nil {
		return err
	}
	var xs, ys []float64
	for i, m := range means {
		if m.Valid {
			xs = append(xs, float64(agg.Rows[i].Year))
			ys = append(ys, m.Value)
		}
	}
	if len(xs) == 0 {
		return ErrNoData
	}
	// go-chart needs two x values to build a range.
	if len(xs) == 1 {
		xs = append(xs, xs[0]+1)
		ys = append(ys, ys[0])
	}

	yAxis := chart.YAxis{Name: st.YTitle}
	lo, hi := ys[0], ys[0]
	for _, y := range ys {
		lo, hi = min(lo, y), max(hi, y)
	}
	if lo == hi {
		yAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	ch := chart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: st.XTitle, ValueFormatter: yearFormatter},
		YAxis:      yAxis,
		Series: []chart.Series{
			chart.ContinuousSeries{Name: measure, XValues: xs, YValues: ys},
		},
	}
	return ch.Render(chart.PNG, w)
}
