package geom

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"boothmap/internal/models"
)

// LoadMarkers reads markers from a GeoJSON, CSV or KML file.
func LoadMarkers(path string) ([]models.Marker, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ParseMarkersGeoJSON(data)
	case ".csv":
		return LoadMarkersCSV(path)
	case ".kml":
		return LoadMarkersKML(path)
	default:
		return nil, errors.New("unsupported marker file: " + filepath.Ext(path))
	}
}

// Bounds returns the extent of all placed markers. ok is false when none are placed.
func Bounds(markers []models.Marker) (bb BBox, ok bool) {
	n := 0
	for _, m := range markers {
		if !m.HasCoords() {
			continue
		}
		bb = bb.Extend(LatLng{Lat: *m.Lat, Lng: *m.Lng}, n)
		n++
	}
	return bb, n > 0
}

// ParseRectangle accepts a decoded [width, height] value and returns nil for
// anything else so callers fall back to their default size.
func ParseRectangle(v any) []float64 {
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		return nil
	}
	out := make([]float64, 2)
	for i, el := range arr {
		f, ok := el.(float64)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
			return nil
		}
		out[i] = f
	}
	return out
}

// rectangleFromStrings is ParseRectangle for text columns.
func rectangleFromStrings(w, h string) []float64 {
	if strings.TrimSpace(w) == "" && strings.TrimSpace(h) == "" {
		return nil
	}
	fw, err1 := strconv.ParseFloat(strings.TrimSpace(w), 64)
	fh, err2 := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return ParseRectangle([]any{fw, fh})
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

func parseAngle(s string) float64 {
	a, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	return a
}

func ensureID(id string) string {
	if strings.TrimSpace(id) == "" {
		return uuid.NewString()
	}
	return id
}
