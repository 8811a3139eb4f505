package geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"boothmap/internal/models"
)

// ParseMarkersGeoJSON reads markers from a Feature or FeatureCollection.
// Each feature is one marker; properties carry id, name, angle, rectangle
// and locked. Features without a Point geometry become unplaced markers.
func ParseMarkersGeoJSON(data []byte) ([]models.Marker, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var features []any
	t, _ := raw["type"].(string)
	switch t {
	case "FeatureCollection":
		features, _ = raw["features"].([]any)
	case "Feature":
		features = []any{raw}
	case "":
		return nil, errors.New("invalid geojson: missing type")
	default:
		return nil, errors.New("unsupported geojson type: " + t)
	}

	parsePoint := func(v any) (pt LatLng, ok bool) {
		if a, ok := v.([]any); ok && len(a) >= 2 {
			lon, lok := a[0].(float64)
			lat, aok := a[1].(float64)
			if lok && aok {
				return LatLng{Lat: lat, Lng: lon}, true
			}
		}
		return LatLng{}, false
	}

	markers := make([]models.Marker, 0, len(features))
	for _, f := range features {
		fm, ok := f.(map[string]any)
		if !ok {
			continue
		}
		props, _ := fm["properties"].(map[string]any)
		if props == nil {
			props = map[string]any{}
		}
		m := models.Marker{ID: ensureID(propString(props["id"], fm["id"]))}
		m.Name, _ = props["name"].(string)
		if a, ok := props["angle"].(float64); ok && !math.IsNaN(a) && !math.IsInf(a, 0) {
			m.Angle = a
		}
		m.Rectangle = ParseRectangle(props["rectangle"])
		m.Locked, _ = props["locked"].(bool)
		if g, ok := fm["geometry"].(map[string]any); ok {
			if gt, _ := g["type"].(string); gt == "Point" {
				if pt, ok := parsePoint(g["coordinates"]); ok {
					m.Lat = models.Coord(pt.Lat)
					m.Lng = models.Coord(pt.Lng)
				}
			}
		}
		markers = append(markers, m)
	}
	if len(markers) == 0 {
		return nil, errors.New("no features found in geojson")
	}
	return markers, nil
}

// propString picks the first usable id: a string, or a number printed plainly.
func propString(vals ...any) string {
	for _, v := range vals {
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return fmt.Sprintf("%g", t)
		}
	}
	return ""
}

// MarshalMarkersGeoJSON is the inverse of ParseMarkersGeoJSON.
func MarshalMarkersGeoJSON(markers []models.Marker) ([]byte, error) {
	features := make([]map[string]any, 0, len(markers))
	for _, m := range markers {
		props := map[string]any{"id": m.ID, "angle": m.Angle, "locked": m.Locked}
		if m.Name != "" {
			props["name"] = m.Name
		}
		if len(m.Rectangle) == 2 {
			props["rectangle"] = m.Rectangle
		}
		var geometry any
		if m.HasCoords() {
			geometry = map[string]any{"type": "Point", "coordinates": []float64{*m.Lng, *m.Lat}}
		}
		features = append(features, map[string]any{
			"type":       "Feature",
			"geometry":   geometry,
			"properties": props,
		})
	}
	return json.MarshalIndent(map[string]any{"type": "FeatureCollection", "features": features}, "", "  ")
}
