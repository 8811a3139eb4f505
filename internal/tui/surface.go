package tui

import "boothmap/internal/overlay"

// mapSurface is the map pane as the overlay engine sees it. It is shared by
// pointer between copies of Model.
type mapSurface struct {
	attached  map[*overlay.Overlay]struct{}
	panLocked bool
	version   int // bumped on every change; invalidates the hit index
}

var (
	_ overlay.Surface   = (*mapSurface)(nil)
	_ overlay.PanLocker = (*mapSurface)(nil)
)

func newMapSurface() *mapSurface {
	return &mapSurface{attached: map[*overlay.Overlay]struct{}{}}
}

func (s *mapSurface) AddOverlay(o *overlay.Overlay) {
	s.attached[o] = struct{}{}
	s.version++
}

func (s *mapSurface) RemoveOverlay(o *overlay.Overlay) {
	delete(s.attached, o)
	s.version++
}

func (s *mapSurface) UpdateOverlay(o *overlay.Overlay) { s.version++ }

func (s *mapSurface) DisablePan() { s.panLocked = true }
func (s *mapSurface) EnablePan()  { s.panLocked = false }

// byKind returns the attached overlays of kind k.
func (s *mapSurface) byKind(k overlay.Kind) []*overlay.Overlay {
	var out []*overlay.Overlay
	for o := range s.attached {
		if o.Kind == k && len(o.Points) > 0 {
			out = append(out, o)
		}
	}
	return out
}
