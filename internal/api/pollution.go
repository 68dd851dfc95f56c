package api

import (
	"bytes"
	"net/http"
	"strconv"

	"dashboards/internal/dashboard"
	"dashboards/internal/models"

	"github.com/labstack/echo/v4"
)

// measureKeys maps URL-safe chart names to measure columns.
var measureKeys = map[string]string{
	"no2": dashboard.NO2,
	"o3":  dashboard.O3,
	"so2": dashboard.SO2,
	"co":  dashboard.CO,
}

// PollutionHandler serves the pollution dashboard.
type PollutionHandler struct {
	p *dashboard.Pollution
}

func NewPollutionHandler(p *dashboard.Pollution) *PollutionHandler {
	return &PollutionHandler{p: p}
}

func (h *PollutionHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/pollution")
	api.GET("/map", h.GetMap)
	api.GET("/geojson", h.GetGeoJSON)
	api.GET("/view", h.GetView)
	api.POST("/events", h.PostEvent)
	api.GET("/charts/:measure", h.GetChartPNG)
}

// state reads ?region=, resolving it against the dataset's regions.
func (h *PollutionHandler) state(c echo.Context) models.PollutionState {
	region := c.QueryParam("region")
	if region == "" {
		return models.PollutionState{}
	}
	return models.PollutionState{Region: h.p.ResolveRegion(region)}
}

// choropleth base
func (h *PollutionHandler) GetMap(c echo.Context) error {
	if notModified(c, etag(h.p.Dataset(), "map")) {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSON(http.StatusOK, h.p.Map())
}

func (h *PollutionHandler) GetGeoJSON(c echo.Context) error {
	return c.Blob(http.StatusOK, "application/geo+json", h.p.GeoJSON())
}

// all six figures for ?region= (none selected when absent)
func (h *PollutionHandler) GetView(c echo.Context) error {
	state := h.state(c)
	if notModified(c, etag(h.p.Dataset(), "view:"+state.Region)) {
		return c.NoContent(http.StatusNotModified)
	}
	view, err := h.p.Render(state)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// applies a map click to the posted state
func (h *PollutionHandler) PostEvent(c echo.Context) error {
	var req models.EventRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.State.Region != "" {
		req.State.Region = h.p.ResolveRegion(req.State.Region)
	}
	for i := range req.Event.Points {
		if loc := req.Event.Points[i].Location; loc != "" {
			req.Event.Points[i].Location = h.p.ResolveRegion(loc)
		}
	}
	state, view, err := h.p.Handle(req.State, req.Event)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, models.EventResponse{State: state, View: view})
}

// PNG line chart of one measure
func (h *PollutionHandler) GetChartPNG(c echo.Context) error {
	measure, ok := measureKeys[c.Param("measure")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown chart "+strconv.Quote(c.Param("measure")))
	}
	width := queryInt(c, "width", 640)
	height := queryInt(c, "height", 300)

	var buf bytes.Buffer
	if err := h.p.RenderPNG(h.state(c), measure, width, height, &buf); err != nil {
		return httpError(err)
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v <= 0 || v > 4096 {
		return def
	}
	return v
}
