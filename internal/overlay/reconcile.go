package overlay

import (
	"math"
	"sort"

	"boothmap/internal/geom"
	"boothmap/internal/models"
	"boothmap/internal/monitoring"
)

// entry is one cached overlay pair plus the marker fields its geometry was
// last derived from.
type entry struct {
	rect     *Overlay
	handle   *Overlay
	center   geom.LatLng
	halfW    float64
	halfH    float64
	angle    float64
	attached bool
	ctrl     *RotationController
}

// Reconciler owns the render cache. It is not safe for concurrent use.
type Reconciler struct {
	surface Surface
	pan     PanLocker
	commit  CommitFunc
	cfg     Config
	cache   map[string]*entry
}

// NewReconciler returns an empty Reconciler drawing on s. commit may be nil.
func NewReconciler(s Surface, commit CommitFunc, opts ...Option) *Reconciler {
	r := &Reconciler{
		surface: s,
		pan:     noPan{},
		commit:  commit,
		cache:   map[string]*entry{},
	}
	if pl, ok := s.(PanLocker); ok {
		r.pan = pl
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile makes the cache mirror the placed markers, then applies visibility.
// Markers without coordinates are skipped; with duplicate ids the last one wins.
func (r *Reconciler) Reconcile(markers []models.Marker, cfg Config) {
	r.cfg = cfg

	// last occurrence of every id
	latest := make(map[string]int, len(markers))
	for i, m := range markers {
		latest[m.ID] = i
	}

	// removal pass
	for id, e := range r.cache {
		i, ok := latest[id]
		if ok && markers[i].HasCoords() {
			continue
		}
		r.teardown(e)
		delete(r.cache, id)
	}

	// upsert pass
	for i, m := range markers {
		if latest[m.ID] != i || !m.HasCoords() {
			continue
		}
		r.upsert(m)
	}

	r.SetVisible(cfg.ShowOverlays)
}

func (r *Reconciler) upsert(m models.Marker) {
	w, h := r.size(m)
	interactive := !m.Locked && r.cfg.Editable

	e, ok := r.cache[m.ID]
	if !ok {
		e = &entry{
			rect:   &Overlay{MarkerID: m.ID, Kind: KindRectangle, Points: make([]geom.LatLng, 4)},
			handle: &Overlay{MarkerID: m.ID, Kind: KindHandle, Points: make([]geom.LatLng, 1)},
		}
		r.cache[m.ID] = e
	}
	e.center = geom.LatLng{Lat: *m.Lat, Lng: *m.Lng}
	e.halfW, e.halfH = w/2, h/2
	e.angle = m.Angle
	e.handle.Interactive = interactive
	e.handle.Muted = !interactive

	switch {
	case interactive && e.ctrl == nil:
		e.ctrl = &RotationController{markerID: m.ID, r: r, e: e}
	case !interactive && e.ctrl != nil:
		e.ctrl.abort()
		e.ctrl = nil
	}

	r.place(e, e.angle)
	if ok && e.attached {
		r.surface.UpdateOverlay(e.rect)
		r.surface.UpdateOverlay(e.handle)
	}
}

// place writes corners and handle for angleDeg into the existing overlays.
func (r *Reconciler) place(e *entry, angleDeg float64) {
	corners := geom.Footprint(e.center, e.halfW, e.halfH, angleDeg)
	copy(e.rect.Points, corners[:])
	e.handle.Points[0] = geom.FarCorner(e.center, e.halfW, e.halfH, angleDeg)
}

// size resolves width and height: the marker override when well formed,
// else the configured default, else DefaultRectangle.
func (r *Reconciler) size(m models.Marker) (float64, float64) {
	if validSize(m.Rectangle) {
		return m.Rectangle[0], m.Rectangle[1]
	}
	def := r.cfg.DefaultSize[:]
	if !validSize(def) {
		def = DefaultRectangle[:]
	}
	if m.Rectangle != nil {
		monitoring.Logf("[overlay] marker %q: malformed rectangle %v, using %gx%g m", m.ID, m.Rectangle, def[0], def[1])
	}
	return def[0], def[1]
}

func validSize(s []float64) bool {
	if len(s) != 2 {
		return false
	}
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return false
		}
	}
	return true
}

func (r *Reconciler) teardown(e *entry) {
	if e.ctrl != nil {
		e.ctrl.abort()
		e.ctrl = nil
	}
	if e.attached {
		r.surface.RemoveOverlay(e.rect)
		r.surface.RemoveOverlay(e.handle)
		e.attached = false
	}
}

// Len is the number of cached pairs.
func (r *Reconciler) Len() int { return len(r.cache) }

// Overlays returns copies of the pair cached for id.
func (r *Reconciler) Overlays(id string) (rect, handle Overlay, ok bool) {
	e, ok := r.cache[id]
	if !ok {
		return Overlay{}, Overlay{}, false
	}
	return snapshot(e.rect), snapshot(e.handle), true
}

// Each calls fn with copies of every cached pair, in id order.
func (r *Reconciler) Each(fn func(rect, handle Overlay)) {
	ids := make([]string, 0, len(r.cache))
	for id := range r.cache {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		e := r.cache[id]
		fn(snapshot(e.rect), snapshot(e.handle))
	}
}

// Controller returns the rotation controller of an interactive handle.
func (r *Reconciler) Controller(id string) (*RotationController, bool) {
	e, ok := r.cache[id]
	if !ok || e.ctrl == nil {
		return nil, false
	}
	return e.ctrl, true
}

// Active returns the controller currently dragging, if any.
func (r *Reconciler) Active() (*RotationController, bool) {
	for _, e := range r.cache {
		if e.ctrl != nil && e.ctrl.Dragging() {
			return e.ctrl, true
		}
	}
	return nil, false
}

func snapshot(o *Overlay) Overlay {
	c := *o
	c.Points = append([]geom.LatLng(nil), o.Points...)
	return c
}
