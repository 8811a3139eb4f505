package geom

// LatLng is a geographic position in degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

// BBox is a lon/lat extent: X is longitude, Y is latitude.
type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Valid reports whether the box has a non-zero area.
func (b BBox) Valid() bool {
	return b.MaxX > b.MinX && b.MaxY > b.MinY
}

// Extend grows b to cover p. The first call on an empty box (n == 0) seeds it.
func (b BBox) Extend(p LatLng, n int) BBox {
	if n == 0 {
		return BBox{MinX: p.Lng, MinY: p.Lat, MaxX: p.Lng, MaxY: p.Lat}
	}
	if p.Lng < b.MinX {
		b.MinX = p.Lng
	}
	if p.Lat < b.MinY {
		b.MinY = p.Lat
	}
	if p.Lng > b.MaxX {
		b.MaxX = p.Lng
	}
	if p.Lat > b.MaxY {
		b.MaxY = p.Lat
	}
	return b
}

// Pad widens the box by meters on every side, so single-marker plans still
// have an extent to project onto.
func (b BBox) Pad(meters float64) BBox {
	midLat := (b.MinY + b.MaxY) / 2
	dLat := MetersToLat(meters)
	dLng := MetersToLng(meters, midLat)
	return BBox{
		MinX: b.MinX - dLng,
		MinY: b.MinY - dLat,
		MaxX: b.MaxX + dLng,
		MaxY: b.MaxY + dLat,
	}
}
