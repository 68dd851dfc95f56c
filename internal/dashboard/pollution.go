package dashboard

import (
	"fmt"
	"io"
	"time"

	"dashboards/internal/charts"
	"dashboards/internal/engine"
	"dashboards/internal/geo"
	"dashboards/internal/models"

	"github.com/labstack/gommon/log"
	"github.com/patrickmn/go-cache"
	"golang.org/x/text/cases"
)

// Column names of the pollution dataset.
const (
	StateColumn = "State"
	DateColumn  = "Date Local"
	NO2         = "NO2 Mean"
	O3          = "O3 Mean"
	SO2         = "SO2 Mean"
	CO          = "CO Mean"
)

// Measures are the only columns the pollution charts average.
var Measures = []string{NO2, O3, SO2, CO}

var lineTitles = map[string]string{
	NO2: "NO2 Pollution",
	O3:  "O3 Pollution",
	SO2: "SO2 Pollution",
	CO:  "CO Pollution",
}

// LoadPollution reads the pollution CSV, forcing the measures numeric,
// and appends the Year column derived from Date Local.
func LoadPollution(path string) (*engine.Dataset, error) {
	ds, err := engine.Load(path, engine.WithNumeric(Measures...))
	if err != nil {
		return nil, err
	}
	return engine.DeriveYear(ds, DateColumn)
}

// Transition applies a map click. A click without a location leaves the
// state unchanged, so Selected never returns to Unselected.
func Transition(state models.PollutionState, ev models.ClickEvent) models.PollutionState {
	if len(ev.Points) == 0 || ev.Points[0].Location == "" {
		return state
	}
	return models.PollutionState{Region: ev.Points[0].Location}
}

// Pollution renders the pollution dashboard over an immutable dataset.
type Pollution struct {
	ds     *engine.Dataset
	geo    *geo.Reference
	base   models.MapPayload
	folded map[string]string
	known  map[string]bool
	views  *cache.Cache
	style  charts.Style
}

// NewPollution validates the dataset and precomputes the choropleth base.
// A ttl of zero disables view caching.
func NewPollution(ds *engine.Dataset, ref *geo.Reference, ttl time.Duration) (*Pollution, error) {
	if _, ok := ds.Column(engine.YearColumn); !ok {
		return nil, engine.ErrNoYear
	}
	regions, err := ds.Categories(StateColumn)
	if err != nil {
		return nil, err
	}
	base, err := charts.ChoroplethBase(ds, StateColumn, NO2, ref, charts.DefaultMapStyle)
	if err != nil {
		return nil, err
	}

	p := &Pollution{
		ds:     ds,
		geo:    ref,
		base:   base,
		folded: make(map[string]string, len(regions)),
		known:  make(map[string]bool, len(regions)),
		style:  charts.DefaultStyle,
	}
	fold := cases.Fold()
	for _, r := range regions {
		p.folded[fold.String(r)] = r
		p.known[r] = true
	}
	if ttl > 0 {
		p.views = cache.New(ttl, 2*ttl)
	}
	log.Infof("Pollution dashboard ready: %d regions, %d drawn on map", len(regions), len(base.Locations))
	return p, nil
}

// Dataset returns the underlying dataset.
func (p *Pollution) Dataset() *engine.Dataset { return p.ds }

// Map returns the choropleth base payload.
func (p *Pollution) Map() models.MapPayload { return p.base }

// GeoJSON returns the boundary reference the map is joined against.
func (p *Pollution) GeoJSON() []byte { return p.geo.Raw() }

// ResolveRegion maps free-form input onto a region name present in the
// dataset, ignoring case. Unknown input is returned unchanged.
func (p *Pollution) ResolveRegion(input string) string {
	// Casers are stateful; one per call.
	if name, ok := p.folded[cases.Fold().String(input)]; ok {
		return name
	}
	return input
}

func regionOf(state models.PollutionState) engine.Region {
	if state.Region == "" {
		return engine.NoRegion
	}
	return engine.SelectRegion(state.Region)
}

// Handle applies ev to state and renders the resulting view.
func (p *Pollution) Handle(state models.PollutionState, ev models.ClickEvent) (models.PollutionState, models.PollutionView, error) {
	next := Transition(state, ev)
	view, err := p.Render(next)
	return next, view, err
}

// Render builds all six figures for state. Only views of regions present
// in the dataset are cached, so client input cannot grow the cache.
func (p *Pollution) Render(state models.PollutionState) (models.PollutionView, error) {
	key := state.Region
	cacheable := p.views != nil && (key == "" || p.known[key])
	if cacheable {
		if v, ok := p.views.Get(key); ok {
			return v.(models.PollutionView), nil
		}
	}
	view, err := p.render(regionOf(state))
	if err != nil {
		return models.PollutionView{}, err
	}
	if cacheable {
		p.views.SetDefault(key, view)
	}
	return view, nil
}

func (p *Pollution) render(region engine.Region) (models.PollutionView, error) {
	if !region.Selected {
		return models.PollutionView{
			NO2:     charts.EmptyScatter(),
			O3:      charts.EmptyScatter(),
			SO2:     charts.EmptyScatter(),
			CO:      charts.EmptyScatter(),
			BarLine: charts.EmptyScatter(),
			Pie:     charts.EmptyPie(),
			Effects: charts.Effects,
		}, nil
	}

	s, agg, err := p.aggregate(region)
	if err != nil {
		return models.PollutionView{}, err
	}
	view := models.PollutionView{Region: region.Name, Selected: true, Effects: charts.Effects}
	lines := []*models.Figure{&view.NO2, &view.O3, &view.SO2, &view.CO}
	for i, m := range Measures {
		if *lines[i], err = charts.LineSeries(agg, m, lineTitles[m], p.style); err != nil {
			return models.PollutionView{}, err
		}
	}
	if view.BarLine, err = charts.ComboChart(agg, NO2, O3, p.style); err != nil {
		return models.PollutionView{}, err
	}
	if view.Pie, err = charts.PieChart(s, Measures, p.style); err != nil {
		return models.PollutionView{}, err
	}
	if view.Summary, err = charts.Summary(s, Measures); err != nil {
		return models.PollutionView{}, err
	}
	log.Debugf("Rendered %s: %d rows, %d years", region, s.Len(), len(agg.Rows))
	return view, nil
}

func (p *Pollution) aggregate(region engine.Region) (engine.Slice, engine.YearlyAggregate, error) {
	s, err := engine.ProjectRegion(p.ds, StateColumn, region)
	if err != nil {
		return engine.Slice{}, engine.YearlyAggregate{}, err
	}
	agg, err := engine.AggregateYearly(s, Measures)
	if err != nil {
		return engine.Slice{}, engine.YearlyAggregate{}, err
	}
	return s, agg, nil
}

// IsMeasure reports whether name is one of Measures.
func IsMeasure(name string) bool {
	_, ok := lineTitles[name]
	return ok
}

// RenderPNG draws the yearly line chart of one measure for state.
func (p *Pollution) RenderPNG(state models.PollutionState, measure string, width, height int, w io.Writer) error {
	if !IsMeasure(measure) {
		return fmt.Errorf("%w: %q", engine.ErrUnknownColumn, measure)
	}
	region := regionOf(state)
	if !region.Selected {
		return charts.ErrNoData
	}
	_, agg, err := p.aggregate(region)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("%s %s", region.Name, lineTitles[measure])
	return charts.RenderLinePNG(agg, measure, title, width, height, p.style, w)
}
