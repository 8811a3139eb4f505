// Package overlay keeps rotatable booth footprints on a map surface in sync
// with a list of markers.
//
// A Reconciler owns a cache of one rectangle and one rotation handle per
// placed marker. Every call to Reconcile diffs that cache against the marker
// list: stale pairs are torn down, existing pairs are updated in place and new
// pairs are created. Handles of unlocked markers in an editable context get a
// RotationController, which previews a drag locally and commits the final
// angle back to the host exactly once, on release.
//
// Everything here runs synchronously on the caller's event loop.
package overlay

import "boothmap/internal/geom"

// DefaultRectangle is the footprint used when neither the marker nor the
// Config supplies a usable size, in meters.
var DefaultRectangle = [2]float64{3, 3}

// Kind tells rectangles and handles apart.
type Kind int

const (
	KindRectangle Kind = iota
	KindHandle
)

func (k Kind) String() string {
	if k == KindHandle {
		return "handle"
	}
	return "rectangle"
}

// Overlay is one rendered shape. Rectangles have four corners,
// counter-clockwise from the local south-west corner; handles have one point.
// The Reconciler keeps the same *Overlay for the lifetime of a marker and
// rewrites Points in place. Surfaces must treat it as read-only.
type Overlay struct {
	MarkerID    string
	Kind        Kind
	Points      []geom.LatLng
	Interactive bool
	Muted       bool
}

// Surface is the render target the engine draws on.
type Surface interface {
	AddOverlay(o *Overlay)
	RemoveOverlay(o *Overlay)
	UpdateOverlay(o *Overlay)
}

// PanLocker suspends the surface's own pan gesture while a handle is dragged.
type PanLocker interface {
	DisablePan()
	EnablePan()
}

// Config is the per-pass input besides the marker list.
type Config struct {
	DefaultSize  [2]float64 // width, height in meters
	Editable     bool
	ShowOverlays bool
}

// AngleUpdate is the only change the engine ever asks the host to make.
type AngleUpdate struct {
	Angle float64
}

// CommitFunc receives the final angle of a finished drag.
type CommitFunc func(markerID string, u AngleUpdate)

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithPanLocker overrides the pan locker, which otherwise is the surface
// itself when it implements PanLocker.
func WithPanLocker(p PanLocker) Option {
	return func(r *Reconciler) {
		if p != nil {
			r.pan = p
		}
	}
}

type noPan struct{}

func (noPan) DisablePan() {}
func (noPan) EnablePan()  {}
