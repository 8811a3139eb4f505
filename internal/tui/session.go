package tui

import (
	"context"
	"fmt"

	"boothmap/internal/geom"
	"boothmap/internal/models"
	"boothmap/internal/monitoring"
	"boothmap/internal/overlay"
	"boothmap/internal/store"
)

// session is the host side of the overlay engine: it owns the marker list
// and answers angle commits.
type session struct {
	markers []models.Marker
	cfg     overlay.Config
	surface *mapSurface
	rec     *overlay.Reconciler
	store   *store.Store
	hits    hitIndex

	commits    int
	lastCommit string
}

func newSession(cfg overlay.Config, st *store.Store) *session {
	s := &session{cfg: cfg, surface: newMapSurface(), store: st}
	s.rec = overlay.NewReconciler(s.surface, s.commit)
	return s
}

// setMarkers replaces the marker list and reconciles.
func (s *session) setMarkers(markers []models.Marker) {
	s.markers = markers
	s.reconcile()
}

func (s *session) reconcile() {
	s.rec.Reconcile(s.markers, s.cfg)
}

func (s *session) bounds() (geom.BBox, bool) {
	bb, ok := geom.Bounds(s.markers)
	if !ok {
		return bb, false
	}
	var half float64
	for _, m := range s.markers {
		if len(m.Rectangle) == 2 {
			half = max(half, m.Rectangle[0], m.Rectangle[1])
		}
	}
	half = max(half, s.cfg.DefaultSize[0], s.cfg.DefaultSize[1], overlay.DefaultRectangle[0])
	return bb.Pad(half), true
}

func (s *session) setVisible(show bool) {
	s.cfg.ShowOverlays = show
	s.rec.SetVisible(show)
}

func (s *session) setEditable(editable bool) {
	s.cfg.Editable = editable
	s.reconcile()
}

func (s *session) commit(id string, u overlay.AngleUpdate) {
	for i := range s.markers {
		if s.markers[i].ID == id {
			s.markers[i].Angle = u.Angle
		}
	}
	s.commits++
	s.lastCommit = fmt.Sprintf("rotated %s to %.1f°", id, u.Angle)
	if s.store != nil {
		if err := s.store.UpdateAngle(context.Background(), id, u.Angle); err != nil {
			monitoring.Logf("[tui] persist angle for %q: %v", id, err)
			s.lastCommit += " (not saved: " + err.Error() + ")"
		}
	}
	s.reconcile()
}

// takeCommit returns the status of the last commit once.
func (s *session) takeCommit() (string, bool) {
	if s.lastCommit == "" {
		return "", false
	}
	msg := s.lastCommit
	s.lastCommit = ""
	return msg, true
}
