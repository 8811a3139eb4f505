package geom

import (
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"boothmap/internal/models"
)

// LoadMarkersKML extracts one marker per Placemark. The Placemark name is the
// marker id; ExtendedData may carry angle, width, height and locked.
// KML coordinates are "lon,lat[,alt]"; altitude is ignored.
func LoadMarkersKML(path string) ([]models.Marker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	type kmlData struct {
		Name  string `xml:"name,attr"`
		Value string `xml:"value"`
	}
	type kmlPoint struct {
		Coordinates string `xml:"coordinates"`
	}
	type kmlPlacemark struct {
		Name     string    `xml:"name"`
		Point    *kmlPoint `xml:"Point"`
		Extended []kmlData `xml:"ExtendedData>Data"`
	}
	type kmlDoc struct {
		Placemarks []kmlPlacemark `xml:"Placemark"`
		Document   struct {
			Placemarks []kmlPlacemark `xml:"Placemark"`
		} `xml:"Document"`
	}

	var doc kmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	var markers []models.Marker
	for _, pm := range append(doc.Placemarks, doc.Document.Placemarks...) {
		ext := map[string]string{}
		for _, d := range pm.Extended {
			ext[strings.ToLower(d.Name)] = d.Value
		}
		m := models.Marker{
			ID:        ensureID(strings.TrimSpace(pm.Name)),
			Name:      strings.TrimSpace(pm.Name),
			Angle:     parseAngle(ext["angle"]),
			Rectangle: rectangleFromStrings(ext["width"], ext["height"]),
			Locked:    parseBool(ext["locked"]),
		}
		if pm.Point != nil {
			// only the first tuple is meaningful for a marker
			if parts := strings.Fields(pm.Point.Coordinates); len(parts) > 0 {
				vals := strings.Split(parts[0], ",")
				if len(vals) >= 2 {
					lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
					lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
					if err1 == nil && err2 == nil {
						m.Lat = models.Coord(lat)
						m.Lng = models.Coord(lon)
					}
				}
			}
		}
		markers = append(markers, m)
	}
	if len(markers) == 0 {
		return nil, errors.New("kml: no placemarks found")
	}
	return markers, nil
}
