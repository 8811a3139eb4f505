// Package snapshot is an overlay.Surface that renders attached booth
// footprints onto a single PDF page via github.com/tdewolff/canvas.
package snapshot

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"boothmap/internal/geom"
	"boothmap/internal/overlay"
)

const (
	strokeWidth  = 0.3 // mm
	handleRadius = 1.2 // mm
)

var (
	rectStroke   = canvas.Hex("#7C3AED")
	rectFill     = canvas.RGBA(0x7C/255.0, 0x3A/255.0, 0xED/255.0, 0.2)
	handleActive = canvas.Hex("#FFA500")
	handleMuted  = canvas.Hex("#6B7280")
)

// Surface collects attached overlays. Overlays are read at Render time, so
// in-place geometry updates need no bookkeeping.
type Surface struct {
	attached map[*overlay.Overlay]struct{}
}

var _ overlay.Surface = (*Surface)(nil)

// New returns an empty surface.
func New() *Surface {
	return &Surface{attached: map[*overlay.Overlay]struct{}{}}
}

func (s *Surface) AddOverlay(o *overlay.Overlay)    { s.attached[o] = struct{}{} }
func (s *Surface) RemoveOverlay(o *overlay.Overlay) { delete(s.attached, o) }
func (s *Surface) UpdateOverlay(*overlay.Overlay)   {}

// Len is the number of attached overlays.
func (s *Surface) Len() int { return len(s.attached) }

// Options sizes the output page, in millimetres.
type Options struct {
	WidthMM  float64
	HeightMM float64
	MarginMM float64
}

// Render writes a one-page PDF of every attached overlay to w.
func (s *Surface) Render(w io.Writer, opts Options) error {
	if opts.WidthMM <= 0 || opts.HeightMM <= 0 {
		return fmt.Errorf("invalid page size %gx%g mm", opts.WidthMM, opts.HeightMM)
	}
	c := canvas.New(opts.WidthMM, opts.HeightMM)
	ctx := canvas.NewContext(c)

	rects, handles := s.sorted()
	if proj, ok := s.projection(opts); ok {
		ctx.SetStrokeWidth(strokeWidth)
		for _, o := range rects {
			ctx.SetFillColor(rectFill)
			ctx.SetStrokeColor(rectStroke)
			p := &canvas.Path{}
			for i, pt := range o.Points {
				x, y := proj(pt)
				if i == 0 {
					p.MoveTo(x, y)
				} else {
					p.LineTo(x, y)
				}
			}
			p.Close()
			ctx.DrawPath(0, 0, p)
		}
		for _, o := range handles {
			col := handleActive
			if o.Muted {
				col = handleMuted
			}
			ctx.SetFillColor(col)
			ctx.SetStrokeColor(col)
			x, y := proj(o.Points[0])
			ctx.DrawPath(x, y, canvas.Circle(handleRadius))
		}
	}

	writer := pdf.New(w, opts.WidthMM, opts.HeightMM, nil)
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func (s *Surface) sorted() (rects, handles []*overlay.Overlay) {
	for o := range s.attached {
		if len(o.Points) == 0 {
			continue
		}
		if o.Kind == overlay.KindHandle {
			handles = append(handles, o)
		} else {
			rects = append(rects, o)
		}
	}
	byID := func(list []*overlay.Overlay) {
		sort.Slice(list, func(i, j int) bool { return list[i].MarkerID < list[j].MarkerID })
	}
	byID(rects)
	byID(handles)
	return rects, handles
}

// projection maps lon/lat to page millimetres through local meters, so
// footprints keep their proportions. ok is false with nothing to draw.
func (s *Surface) projection(opts Options) (func(geom.LatLng) (float64, float64), bool) {
	var bb geom.BBox
	n := 0
	for o := range s.attached {
		for _, p := range o.Points {
			bb = bb.Extend(p, n)
			n++
		}
	}
	if n == 0 {
		return nil, false
	}
	bb = bb.Pad(2)
	midLat := (bb.MinY + bb.MaxY) / 2
	spanX := geom.MetersToLngInv(bb.MaxX-bb.MinX, midLat)
	spanY := geom.MetersToLatInv(bb.MaxY - bb.MinY)
	availW := opts.WidthMM - 2*opts.MarginMM
	availH := opts.HeightMM - 2*opts.MarginMM
	if availW <= 0 || availH <= 0 {
		return nil, false
	}
	scale := math.Min(availW/spanX, availH/spanY)
	offX := opts.MarginMM + (availW-spanX*scale)/2
	offY := opts.MarginMM + (availH-spanY*scale)/2
	return func(p geom.LatLng) (float64, float64) {
		x := geom.MetersToLngInv(p.Lng-bb.MinX, midLat)
		y := geom.MetersToLatInv(p.Lat - bb.MinY)
		return offX + x*scale, offY + y*scale
	}, true
}
