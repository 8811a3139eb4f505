package geom

import (
	"encoding/csv"
	"errors"
	"os"
	"strconv"
	"strings"

	"boothmap/internal/models"
)

// LoadMarkersCSV reads markers from a CSV file with a header row.
// Column detection (case-insensitive): id, name, lat|latitude,
// lng|lon|long|longitude, angle, width, height, locked.
// Rows with unparsable coordinates are kept as unplaced markers.
func LoadMarkersCSV(path string) ([]models.Marker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, errors.New("empty csv")
	}
	idx := map[string]int{}
	for i, h := range recs[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		switch key {
		case "latitude", "y":
			key = "lat"
		case "lon", "long", "longitude", "x":
			key = "lng"
		}
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	if _, ok := idx["lat"]; !ok {
		return nil, errors.New("csv: latitude/longitude columns not found")
	}
	if _, ok := idx["lng"]; !ok {
		return nil, errors.New("csv: latitude/longitude columns not found")
	}
	col := func(row []string, key string) string {
		i, ok := idx[key]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	var markers []models.Marker
	for _, row := range recs[1:] {
		m := models.Marker{
			ID:        ensureID(col(row, "id")),
			Name:      col(row, "name"),
			Angle:     parseAngle(col(row, "angle")),
			Rectangle: rectangleFromStrings(col(row, "width"), col(row, "height")),
			Locked:    parseBool(col(row, "locked")),
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(col(row, "lat")), 64)
		lng, err2 := strconv.ParseFloat(strings.TrimSpace(col(row, "lng")), 64)
		if err1 == nil && err2 == nil {
			m.Lat = models.Coord(lat)
			m.Lng = models.Coord(lng)
		}
		markers = append(markers, m)
	}
	if len(markers) == 0 {
		return nil, errors.New("csv: no rows")
	}
	return markers, nil
}
