package charts

import (
	"dashboards/internal/engine"
	"dashboards/internal/geo"
	"dashboards/internal/models"

	"github.com/labstack/gommon/log"
)

// MapStyle is the fixed configuration of the choropleth.
type MapStyle struct {
	ColorScale string
	MapStyle   string
	Center     models.LatLon
	Zoom       float64
	Opacity    float64
}

var DefaultMapStyle = MapStyle{
	ColorScale: "Viridis",
	MapStyle:   "carto-positron",
	Center:     models.LatLon{Lat: 37.0902, Lon: -95.7129},
	Zoom:       3,
	Opacity:    0.5,
}

// ChoroplethBase colours each region by the whole-dataset mean of measure.
// Regions missing from the boundary reference, or without any value, are
// dropped from the map.
func ChoroplethBase(ds *engine.Dataset, regionColumn, measure string, ref *geo.Reference, st MapStyle) (models.MapPayload, error) {
	means, err := engine.RegionMeans(ds, regionColumn, measure)
	if err != nil {
		return models.MapPayload{}, err
	}
	out := models.MapPayload{
		Locations:    []string{},
		Z:            []float64{},
		FeatureIDKey: geo.FeatureIDKey,
		ColorLabel:   measure,
		ColorScale:   st.ColorScale,
		MapStyle:     st.MapStyle,
		Center:       st.Center,
		Zoom:         st.Zoom,
		Opacity:      st.Opacity,
	}
	dropped := 0
	for _, rm := range means {
		if !ref.Has(rm.Region) || !rm.Mean.Valid {
			log.Debugf("choropleth: dropping region %q (%d rows)", rm.Region, rm.Rows)
			dropped++
			continue
		}
		out.Locations = append(out.Locations, rm.Region)
		out.Z = append(out.Z, rm.Mean.Value)
	}
	if dropped > 0 {
		log.Debugf("choropleth: %d of %d regions not drawn", dropped, len(means))
	}
	return out, nil
}
