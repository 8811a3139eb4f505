package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// MetersPerDegreeLat is the flat-earth scale used for every conversion in
// this package. It is only accurate for offsets of a few tens of meters and
// degrades toward the poles; booth footprints are small enough for that.
const MetersPerDegreeLat = 111320.0

// RotatePoint rotates (x, y) counter-clockwise around the origin.
func RotatePoint(x, y, angleDeg float64) (float64, float64) {
	v := r2.Rotate(r2.Vec{X: x, Y: y}, angleDeg*math.Pi/180, r2.Vec{})
	return v.X, v.Y
}

// MetersToLat converts a north offset in meters to degrees of latitude.
func MetersToLat(m float64) float64 {
	return m / MetersPerDegreeLat
}

// MetersToLatInv converts degrees of latitude back to meters.
func MetersToLatInv(dLat float64) float64 {
	return dLat * MetersPerDegreeLat
}

// MetersToLng converts an east offset in meters to degrees of longitude at lat.
func MetersToLng(m, lat float64) float64 {
	return m / (MetersPerDegreeLat * math.Cos(lat*math.Pi/180))
}

// MetersToLngInv converts degrees of longitude at lat back to meters.
func MetersToLngInv(dLng, lat float64) float64 {
	return dLng * MetersPerDegreeLat * math.Cos(lat*math.Pi/180)
}

// Translate moves center by an east/north offset in meters.
func Translate(center LatLng, east, north float64) LatLng {
	return LatLng{
		Lat: center.Lat + MetersToLat(north),
		Lng: center.Lng + MetersToLng(east, center.Lat),
	}
}

// Offset is the inverse of Translate: the east/north meters from center to p.
func Offset(center, p LatLng) (east, north float64) {
	return MetersToLngInv(p.Lng-center.Lng, center.Lat), MetersToLatInv(p.Lat - center.Lat)
}

// Footprint returns the corners of a halfW x halfH rectangle rotated by
// angleDeg around center, counter-clockwise from the local south-west corner.
// Index 2 is the far corner.
func Footprint(center LatLng, halfW, halfH, angleDeg float64) [4]LatLng {
	local := [4][2]float64{
		{-halfW, -halfH},
		{halfW, -halfH},
		{halfW, halfH},
		{-halfW, halfH},
	}
	var out [4]LatLng
	for i, c := range local {
		x, y := RotatePoint(c[0], c[1], angleDeg)
		out[i] = Translate(center, x, y)
	}
	return out
}

// FarCorner is Footprint(...)[2] without computing the other corners.
func FarCorner(center LatLng, halfW, halfH, angleDeg float64) LatLng {
	x, y := RotatePoint(halfW, halfH, angleDeg)
	return Translate(center, x, y)
}

// NormalizeDegrees maps a into [0, 360).
func NormalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}
