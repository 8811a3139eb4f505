package tui

import (
	"math"
	"strings"

	"boothmap/internal/geom"
	"boothmap/internal/overlay"
)

// viewport maps lon/lat onto the map pane. bb is widened to the pane's
// aspect so footprints keep their shape; braille micro-pixels are close to
// square on common terminal fonts.
type viewport struct {
	bb         geom.BBox
	w, h       int // cells
	zoom       float64
	offX, offY int // cells
}

// viewport returns the projection for a w x h pane, or false when there is
// nothing placed to frame.
func (m Model) viewport(w, h int) (viewport, bool) {
	if w < 1 || h < 1 {
		return viewport{}, false
	}
	bb, ok := m.s.bounds()
	if !ok {
		return viewport{}, false
	}
	return viewport{bb: fitAspect(bb, 2*w, 4*h), w: w, h: h, zoom: m.zoom, offX: m.offsetX, offY: m.offsetY}, true
}

// fitAspect grows bb around its center until its meter extent has the
// ratio wMic:hMic.
func fitAspect(bb geom.BBox, wMic, hMic int) geom.BBox {
	midLat := (bb.MinY + bb.MaxY) / 2
	spanX := geom.MetersToLngInv(bb.MaxX-bb.MinX, midLat)
	spanY := geom.MetersToLatInv(bb.MaxY - bb.MinY)
	want := float64(wMic) / float64(hMic)
	if spanY == 0 || spanX/spanY < want {
		grow := geom.MetersToLng((spanY*want-spanX)/2, midLat)
		bb.MinX -= grow
		bb.MaxX += grow
	} else {
		grow := geom.MetersToLat((spanX/want - spanY) / 2)
		bb.MinY -= grow
		bb.MaxY += grow
	}
	return bb
}

// micro maps lon/lat into the 2x4 microgrid per cell used for braille.
func (v viewport) micro(p geom.LatLng) (int, int) {
	nx := (p.Lng - v.bb.MinX) / (v.bb.MaxX - v.bb.MinX)
	ny := (p.Lat - v.bb.MinY) / (v.bb.MaxY - v.bb.MinY)
	zx := 0.5 + (nx-0.5)*v.zoom
	zy := 0.5 + (ny-0.5)*v.zoom
	wMic := v.w * 2
	hMic := v.h * 4
	sx := int(math.Round(zx*float64(wMic-1))) + v.offX*2
	sy := int(math.Round((1.0-zy)*float64(hMic-1))) + v.offY*4
	return sx, sy
}

// cell is the pane cell containing p.
func (v viewport) cell(p geom.LatLng) (int, int) {
	mx, my := v.micro(p)
	return floorDiv(mx, 2), floorDiv(my, 4)
}

// cellLatLng converts a pane cell back to lon/lat at the cell's center.
func (v viewport) cellLatLng(cx, cy int) geom.LatLng {
	wMic := v.w * 2
	hMic := v.h * 4
	mx := float64(cx*2) + 0.5 - float64(v.offX*2)
	my := float64(cy*4) + 1.5 - float64(v.offY*4)
	zx := mx / float64(max(1, wMic-1))
	zy := 1.0 - my/float64(max(1, hMic-1))
	nx := 0.5 + (zx-0.5)/v.zoom
	ny := 0.5 + (zy-0.5)/v.zoom
	return geom.LatLng{
		Lat: v.bb.MinY + ny*(v.bb.MaxY-v.bb.MinY),
		Lng: v.bb.MinX + nx*(v.bb.MaxX-v.bb.MinX),
	}
}

// renderMap draws marker centers, attached footprints and handles.
func (m Model) renderMap(w, h int) string {
	grid := make([][]string, h)
	for y := range grid {
		grid[y] = make([]string, w)
	}
	vp, ok := m.viewport(w, h)
	if ok {
		br := newBrailleBuf(w, h)
		for _, mk := range m.s.markers {
			if !mk.HasCoords() {
				continue
			}
			br.setPixel(vp.micro(geom.LatLng{Lat: *mk.Lat, Lng: *mk.Lng}))
		}
		for _, o := range m.s.surface.byKind(overlay.KindRectangle) {
			ring := make([][2]int, 0, len(o.Points))
			for _, p := range o.Points {
				x, y := vp.micro(p)
				ring = append(ring, [2]int{x, y})
			}
			br.drawRing(ring)
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if g := br.cell(x, y); g != "" {
					grid[y][x] = outlineStyle.Render(g)
				}
			}
		}

		active, dragging := m.s.rec.Active()
		for _, o := range m.s.surface.byKind(overlay.KindHandle) {
			cx, cy := vp.cell(o.Points[0])
			if cx < 0 || cy < 0 || cx >= w || cy >= h {
				continue
			}
			switch {
			case dragging && active.MarkerID() == o.MarkerID, m.hoverID == o.MarkerID:
				grid[cy][cx] = hoverStyle.Render(glyphHover)
			case o.Muted:
				grid[cy][cx] = mutedStyle.Render(glyphMuted)
			default:
				grid[cy][cx] = handleStyle.Render(glyphHandle)
			}
		}
	}

	var sb strings.Builder
	for y, row := range grid {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, c := range row {
			if c == "" {
				c = " "
			}
			sb.WriteString(c)
		}
	}
	return sb.String()
}
