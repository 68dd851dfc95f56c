package models

// --- TABLE VIEWER ---

type TableColumn struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Record is one table row keyed by column id. Values are nil, float64,
// int64 or string.
type Record map[string]any

type TableView struct {
	Columns []TableColumn `json:"columns"`
	Rows    []Record      `json:"data"`
	Total   int           `json:"total"`
	Offset  int           `json:"offset"`
	Limit   int           `json:"limit"`
}

type TableState struct {
	Columns []string `json:"columns"`
	Offset  int      `json:"offset"`
	Limit   int      `json:"limit"`
}

type ColumnList struct {
	Columns []string `json:"columns"`
	Default []string `json:"default"`
}

// --- FIGURES ---

type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type     string     `json:"type"`
	Name     string     `json:"name,omitempty"`
	Mode     string     `json:"mode,omitempty"`
	X        []int64    `json:"x,omitempty"`
	Y        []*float64 `json:"y,omitempty"`
	YAxis    string     `json:"yaxis,omitempty"`
	Labels   []string   `json:"labels,omitempty"`
	Values   []float64  `json:"values,omitempty"`
	Marker   *Marker    `json:"marker,omitempty"`
	TextInfo string     `json:"textinfo,omitempty"`
	Hole     float64    `json:"hole,omitempty"`
}

type Marker struct {
	Colors []string `json:"colors,omitempty"`
}

type Axis struct {
	Title      string `json:"title,omitempty"`
	Overlaying string `json:"overlaying,omitempty"`
	Side       string `json:"side,omitempty"`
}

type Layout struct {
	Title  string `json:"title,omitempty"`
	XAxis  *Axis  `json:"xaxis,omitempty"`
	YAxis  *Axis  `json:"yaxis,omitempty"`
	YAxis2 *Axis  `json:"yaxis2,omitempty"`
	Height int    `json:"height,omitempty"`
}

// --- MAP ---

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type MapPayload struct {
	Locations    []string  `json:"locations"`
	Z            []float64 `json:"z"`
	FeatureIDKey string    `json:"featureidkey"`
	ColorLabel   string    `json:"color_label"`
	ColorScale   string    `json:"colorscale"`
	MapStyle     string    `json:"mapbox_style"`
	Center       LatLon    `json:"center"`
	Zoom         float64   `json:"zoom"`
	Opacity      float64   `json:"opacity"`
}

// --- POLLUTION DASHBOARD ---

// PollutionState is the whole UI state. An empty Region is the
// Unselected state.
type PollutionState struct {
	Region string `json:"region,omitempty"`
}

type ClickPoint struct {
	Location string `json:"location"`
}

// ClickEvent mirrors the map's click data.
type ClickEvent struct {
	Points []ClickPoint `json:"points"`
}

type PollutionView struct {
	Region   string `json:"region,omitempty"`
	Selected bool   `json:"selected"`
	NO2      Figure `json:"no2"`
	O3       Figure `json:"o3"`
	SO2      Figure `json:"so2"`
	CO       Figure `json:"co"`
	BarLine  Figure `json:"bar_line"`
	Pie      Figure `json:"pie"`
	Summary  string `json:"summary,omitempty"`
	Effects  string `json:"effects"`
}

type EventRequest struct {
	State PollutionState `json:"state"`
	Event ClickEvent     `json:"event"`
}

type EventResponse struct {
	State PollutionState `json:"state"`
	View  PollutionView  `json:"view"`
}

type Health struct {
	Status      string `json:"status"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
	Fingerprint string `json:"fingerprint"`
}
