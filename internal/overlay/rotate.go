package overlay

import (
	"math"

	"boothmap/internal/geom"
)

// dragState is the ephemeral state of one drag. It never reaches the host
// until End copies angle into the commit.
type dragState struct {
	active bool
	pivot  geom.LatLng
	angle  float64
}

// RotationController turns pointer drags on a handle into a rotation of its
// marker: Idle -> Dragging -> Idle, committing once on the way back to Idle.
type RotationController struct {
	markerID string
	r        *Reconciler
	e        *entry
	state    dragState
}

// MarkerID is the marker this controller rotates.
func (c *RotationController) MarkerID() string { return c.markerID }

// Dragging reports whether a drag is in progress.
func (c *RotationController) Dragging() bool { return c.state.active }

// Angle is the live angle while dragging, and the marker's angle otherwise.
func (c *RotationController) Angle() float64 {
	if c.state.active {
		return c.state.angle
	}
	return c.e.angle
}

// Start begins a drag. The map's pan gesture stays disabled until End or Cancel.
func (c *RotationController) Start() {
	if c.state.active {
		return
	}
	c.r.pan.DisablePan()
	c.state = dragState{active: true, pivot: c.e.center, angle: c.e.angle}
}

// Move rotates the footprint to the bearing of p from the pivot, counter-
// clockwise from east. Only the rendered overlays change; the host is not told.
func (c *RotationController) Move(p geom.LatLng) {
	if !c.state.active {
		return
	}
	dx, dy := geom.Offset(c.state.pivot, p)
	if dx == 0 && dy == 0 {
		return
	}
	c.state.angle = geom.NormalizeDegrees(math.Atan2(dy, dx) * 180 / math.Pi)

	c.r.place(c.e, c.state.angle)
	if c.e.attached {
		c.r.surface.UpdateOverlay(c.e.rect)
		c.r.surface.UpdateOverlay(c.e.handle)
	}
}

// End finishes the drag: panning is restored and the final angle is
// committed. It does nothing when no drag is active.
func (c *RotationController) End() {
	if !c.state.active {
		return
	}
	angle := c.state.angle
	c.state = dragState{}
	c.r.pan.EnablePan()
	if c.r.commit != nil {
		c.r.commit(c.markerID, AngleUpdate{Angle: angle})
	}
}

// Cancel handles a lost pointer capture or a drop outside the map. The drag
// still ends normally, committing the last previewed angle.
func (c *RotationController) Cancel() { c.End() }

// abort ends a drag whose marker went away or became locked: panning is
// restored but there is nothing to commit to.
func (c *RotationController) abort() {
	if !c.state.active {
		return
	}
	c.state = dragState{}
	c.r.pan.EnablePan()
}
