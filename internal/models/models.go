package models

import "math"

// Marker is a booth marker as supplied by the host application.
// Lat/Lng are nil when the marker has not been placed yet.
type Marker struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
	Angle     float64   `json:"angle,omitempty"`
	Rectangle []float64 `json:"rectangle,omitempty"` // [width, height] in meters
	Locked    bool      `json:"locked,omitempty"`
}

// HasCoords reports whether the marker can be placed on the map.
func (m Marker) HasCoords() bool {
	if m.Lat == nil || m.Lng == nil {
		return false
	}
	return finite(*m.Lat) && finite(*m.Lng)
}

// Coord returns a pointer to v, for building markers in code.
func Coord(v float64) *float64 { return &v }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
