package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dashboards/internal/charts"
	"dashboards/internal/engine"
	"dashboards/internal/geo"
	"dashboards/internal/models"
)

const pollutionCSV = `State,Date Local,NO2 Mean,O3 Mean,SO2 Mean,CO Mean
CA,2015-01-01,10,20,5,1
CA,2015-06-01,20,30,15,3
CA,2016-01-01,30,40,25,5
AZ,2016-02-02,8,9,1,0.5
`

const statesJSON = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"name":"CA"}},
{"type":"Feature","properties":{"name":"AZ"}}]}`

func newPollution(t *testing.T, ttl time.Duration) *Pollution {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pollution_data.csv")
	if err := os.WriteFile(path, []byte(pollutionCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	ds, err := LoadPollution(path)
	if err != nil {
		t.Fatal(err)
	}
	ref, err := geo.Parse([]byte(statesJSON))
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewPollution(ds, ref, ttl)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func click(loc string) models.ClickEvent {
	return models.ClickEvent{Points: []models.ClickPoint{{Location: loc}}}
}

func TestTransition(t *testing.T) {
	var s models.PollutionState

	s = Transition(s, models.ClickEvent{})
	if s.Region != "" {
		t.Fatalf("empty click must keep Unselected, got %q", s.Region)
	}
	s = Transition(s, click("CA"))
	if s.Region != "CA" {
		t.Fatalf("expected Selected(CA), got %q", s.Region)
	}
	s = Transition(s, click("AZ"))
	if s.Region != "AZ" {
		t.Fatalf("expected Selected(AZ), got %q", s.Region)
	}
	s = Transition(s, models.ClickEvent{Points: []models.ClickPoint{{}}})
	if s.Region != "AZ" {
		t.Fatalf("Selected must never return to Unselected, got %q", s.Region)
	}
}

func TestRenderUnselected(t *testing.T) {
	p := newPollution(t, 0)

	view, err := p.Render(models.PollutionState{})
	if err != nil {
		t.Fatal(err)
	}
	if view.Selected {
		t.Error("expected unselected view")
	}
	if view.Effects != charts.Effects {
		t.Error("effects panel missing")
	}
	for name, fig := range map[string]models.Figure{"no2": view.NO2, "o3": view.O3, "so2": view.SO2, "co": view.CO, "bar_line": view.BarLine, "pie": view.Pie} {
		if fig.Data == nil || len(fig.Data) != 0 {
			t.Errorf("%s: expected empty figure, got %+v", name, fig.Data)
		}
	}
}

func TestHandleClick(t *testing.T) {
	p := newPollution(t, time.Minute)

	state, view, err := p.Handle(models.PollutionState{}, click("CA"))
	if err != nil {
		t.Fatal(err)
	}
	if state.Region != "CA" || !view.Selected || view.Region != "CA" {
		t.Fatalf("state %+v view region %q", state, view.Region)
	}
	if got := view.NO2.Data[0].X; len(got) != 2 || got[0] != 2015 || got[1] != 2016 {
		t.Errorf("NO2 years = %v", got)
	}
	if *view.NO2.Data[0].Y[0] != 15 || *view.O3.Data[0].Y[0] != 25 || *view.SO2.Data[0].Y[0] != 10 || *view.CO.Data[0].Y[0] != 2 {
		t.Error("2015 means incorrect")
	}
	if view.CO.Layout.Title != "CO Pollution" {
		t.Errorf("CO title = %q", view.CO.Layout.Title)
	}
	if len(view.BarLine.Data) != 2 || len(view.Pie.Data) != 1 {
		t.Error("combo or pie figure missing")
	}
	if view.Summary == "" {
		t.Error("expected summary")
	}
	if !strings.HasPrefix(view.Effects, "### Pollution Types and Effects") {
		t.Errorf("effects = %q", view.Effects)
	}

	// Cached second render is identical.
	again, err := p.Render(state)
	if err != nil {
		t.Fatal(err)
	}
	if again.Summary != view.Summary || len(again.NO2.Data) != 1 {
		t.Error("cached view differs")
	}
}

func TestHandleUnknownRegion(t *testing.T) {
	p := newPollution(t, 0)

	_, view, err := p.Handle(models.PollutionState{}, click("TX"))
	if err != nil {
		t.Fatal(err)
	}
	if !view.Selected {
		t.Error("TX is a selection even without rows")
	}
	if len(view.NO2.Data[0].X) != 0 {
		t.Errorf("expected no years, got %v", view.NO2.Data[0].X)
	}
	if len(view.Pie.Data) != 0 {
		t.Error("expected empty pie")
	}
}

func TestRenderCacheBounded(t *testing.T) {
	p := newPollution(t, time.Minute)

	for i := 0; i < 200; i++ {
		if _, _, err := p.Handle(models.PollutionState{}, click(fmt.Sprintf("nowhere-%d", i))); err != nil {
			t.Fatal(err)
		}
	}
	for _, r := range []string{"CA", "AZ", "CA"} {
		if _, _, err := p.Handle(models.PollutionState{}, click(r)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := p.Render(models.PollutionState{}); err != nil {
		t.Fatal(err)
	}

	regions, err := p.Dataset().Categories(StateColumn)
	if err != nil {
		t.Fatal(err)
	}
	// Every dataset region plus the unselected view.
	if n := p.views.ItemCount(); n > len(regions)+1 {
		t.Errorf("cached views = %d, want at most %d", n, len(regions)+1)
	}
	if _, ok := p.views.Get("nowhere-0"); ok {
		t.Error("unknown region was cached")
	}
}

func TestMap(t *testing.T) {
	p := newPollution(t, 0)

	m := p.Map()
	if len(m.Locations) != 2 || m.Locations[0] != "AZ" || m.Z[1] != 20 {
		t.Errorf("map = %+v", m)
	}
}

func TestResolveRegion(t *testing.T) {
	p := newPollution(t, 0)

	if got := p.ResolveRegion("ca"); got != "CA" {
		t.Errorf("ResolveRegion(ca) = %q", got)
	}
	if got := p.ResolveRegion("Ohio"); got != "Ohio" {
		t.Errorf("ResolveRegion(Ohio) = %q", got)
	}
}

func TestRenderPNG(t *testing.T) {
	p := newPollution(t, 0)

	var buf bytes.Buffer
	if err := p.RenderPNG(models.PollutionState{Region: "CA"}, NO2, 320, 240, &buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("not a PNG")
	}
	if err := p.RenderPNG(models.PollutionState{}, NO2, 320, 240, &buf); !errors.Is(err, charts.ErrNoData) {
		t.Errorf("unselected: expected ErrNoData, got %v", err)
	}
	if err := p.RenderPNG(models.PollutionState{Region: "CA"}, "PM10", 320, 240, &buf); !errors.Is(err, engine.ErrUnknownColumn) {
		t.Errorf("unknown measure: expected ErrUnknownColumn, got %v", err)
	}
}

func TestLoadPollutionBadDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	csv := "State,Date Local,NO2 Mean,O3 Mean,SO2 Mean,CO Mean\nCA,someday,1,2,3,4\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadPollution(path)
	var de *engine.DateParseError
	if !errors.As(err, &de) {
		t.Fatalf("expected DateParseError, got %v", err)
	}
}

func TestTable(t *testing.T) {
	ds, _ := engine.NewDataset(
		engine.NewCategorical("a", "x", "y", "z"),
		engine.NewNumeric("b", 1, 2, 3),
		engine.NewNumeric("c", 1, 2, 3),
		engine.NewNumeric("d", 1, 2, 3),
		engine.NewNumeric("e", 1, 2, 3),
		engine.NewNumeric("f", 1, 2, 3),
	)
	tbl := NewTable(ds)

	cl := tbl.Columns()
	if len(cl.Columns) != 6 || len(cl.Default) != 5 || cl.Default[4] != "e" {
		t.Errorf("columns = %+v", cl)
	}

	view, err := tbl.Render(models.TableState{Columns: []string{"f", "a"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Rows) != 3 || view.Columns[0].Name != "f" {
		t.Errorf("view = %+v", view)
	}

	view, _ = tbl.Render(models.TableState{Columns: []string{"a"}, Offset: 2, Limit: 10})
	if len(view.Rows) != 1 || view.Rows[0]["a"] != "z" {
		t.Errorf("page = %+v", view.Rows)
	}

	view, _ = tbl.Render(models.TableState{})
	if len(view.Columns) != 0 || len(view.Rows) != 0 {
		t.Errorf("empty selection = %+v", view)
	}

	var buf bytes.Buffer
	if err := tbl.Export([]string{"a"}, &buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("empty export")
	}
	if err := tbl.Export([]string{"zzz"}, &buf); !errors.Is(err, engine.ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}
