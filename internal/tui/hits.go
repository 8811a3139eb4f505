package tui

import (
	"github.com/dhconnelly/rtreego"

	"boothmap/internal/overlay"
)

// handleTolerance is how many cells a press may miss a handle by.
const handleTolerance = 1

// handleHit is an interactive handle positioned in micro-pixel space.
type handleHit struct {
	o  *overlay.Overlay
	pt rtreego.Point
}

func (h *handleHit) Bounds() rtreego.Rect { return h.pt.ToRect(0.5) }

type hitKey struct {
	vp      viewport
	version int
}

// hitIndex is an R-tree over the attached interactive handles, rebuilt
// lazily whenever the surface or the viewport changed.
type hitIndex struct {
	key  hitKey
	tree *rtreego.Rtree
}

func (x *hitIndex) rebuild(s *mapSurface, vp viewport) {
	var objs []rtreego.Spatial
	for _, o := range s.byKind(overlay.KindHandle) {
		if !o.Interactive {
			continue
		}
		mx, my := vp.micro(o.Points[0])
		objs = append(objs, &handleHit{o: o, pt: rtreego.Point{float64(mx), float64(my)}})
	}
	x.tree = rtreego.NewTree(2, 2, 8, objs...)
	x.key = hitKey{vp: vp, version: s.version}
}

// lookup returns the interactive handle drawn at or next to cell (cx, cy).
func (x *hitIndex) lookup(s *mapSurface, vp viewport, cx, cy int) (*overlay.Overlay, bool) {
	if key := (hitKey{vp: vp, version: s.version}); x.tree == nil || x.key != key {
		x.rebuild(s, vp)
	}
	if x.tree.Size() == 0 {
		return nil, false
	}
	p := rtreego.Point{float64(cx*2) + 0.5, float64(cy*4) + 1.5}
	h, ok := x.tree.NearestNeighbor(p).(*handleHit)
	if !ok || !h.o.Interactive {
		return nil, false
	}
	hx, hy := floorDiv(int(h.pt[0]), 2), floorDiv(int(h.pt[1]), 4)
	if abs(hx-cx) > handleTolerance || abs(hy-cy) > handleTolerance {
		return nil, false
	}
	return h.o, true
}
