package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boothmap/internal/geom"
	"boothmap/internal/models"
)

func TestRotateEndToEnd(t *testing.T) {
	s := newRecordingSurface()
	log := &commitLog{}
	r := NewReconciler(s, log.commit)
	m := models.Marker{ID: "m1", Lat: models.Coord(52.0), Lng: models.Coord(5.0), Angle: 0, Rectangle: []float64{6, 6}}
	center := geom.LatLng{Lat: 52.0, Lng: 5.0}

	r.Reconcile([]models.Marker{m}, editable)

	rect, _, ok := r.Overlays("m1")
	require.True(t, ok)
	want := [4][2]float64{{-3, -3}, {3, -3}, {3, 3}, {-3, 3}}
	for i, w := range want {
		east, north := geom.Offset(center, rect.Points[i])
		assert.InDelta(t, w[0], east, 1e-6, "corner %d east", i)
		assert.InDelta(t, w[1], north, 1e-6, "corner %d north", i)
	}

	ctrl, ok := r.Controller("m1")
	require.True(t, ok)
	ctrl.Start()
	assert.True(t, s.panLocked())

	// due north of the pivot is a quarter turn
	ctrl.Move(geom.Translate(center, 3, 1))
	ctrl.Move(geom.Translate(center, 0, 3))
	assert.Empty(t, log.calls, "moves never reach the host")
	assert.InDelta(t, 90, ctrl.Angle(), 1e-6)

	_, handle, _ := r.Overlays("m1")
	want90 := geom.FarCorner(center, 3, 3, 90)
	assert.InDelta(t, want90.Lat, handle.Points[0].Lat, 1e-12)
	assert.InDelta(t, want90.Lng, handle.Points[0].Lng, 1e-12)

	ctrl.End()
	assert.False(t, s.panLocked())
	require.Len(t, log.calls, 1)
	assert.Equal(t, "m1", log.calls[0].id)
	assert.InDelta(t, 90, log.calls[0].angle, 1e-6)
}

func TestAngleIsPointerBearing(t *testing.T) {
	center := geom.LatLng{Lat: 52, Lng: 5}
	cases := []struct {
		name        string
		rect        []float64
		east, north float64
		want        float64
	}{
		{"north", []float64{6, 6}, 0, 3, 90},
		{"east", []float64{6, 6}, 3, 0, 0},
		{"west", []float64{6, 6}, -3, 0, 180},
		{"north of a long booth", []float64{10, 2}, 0, 3, 90},
		{"north-east of a long booth", []float64{10, 2}, 2, 2, 45},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log := &commitLog{}
			r := NewReconciler(newRecordingSurface(), log.commit)
			m := marker("m1", center.Lat, center.Lng)
			m.Rectangle = tc.rect
			r.Reconcile([]models.Marker{m}, editable)
			ctrl, ok := r.Controller("m1")
			require.True(t, ok)

			ctrl.Start()
			ctrl.Move(geom.Translate(center, tc.east, tc.north))
			ctrl.End()

			require.Len(t, log.calls, 1)
			assert.InDelta(t, tc.want, log.calls[0].angle, 1e-6)
			_, handle, _ := r.Overlays("m1")
			far := geom.FarCorner(center, tc.rect[0]/2, tc.rect[1]/2, log.calls[0].angle)
			assert.Equal(t, far, handle.Points[0])
		})
	}
}

func TestMoveUpdatesSurfaceWithoutCommit(t *testing.T) {
	s := newRecordingSurface()
	log := &commitLog{}
	r := NewReconciler(s, log.commit)
	r.Reconcile([]models.Marker{marker("a", 52, 5)}, editable)
	rect := r.cache["a"].rect
	ctrl, _ := r.Controller("a")

	ctrl.Start()
	for i := 0; i < 10; i++ {
		ctrl.Move(geom.Translate(geom.LatLng{Lat: 52, Lng: 5}, float64(i)-5, 4))
	}
	assert.Equal(t, 20, s.updates)
	assert.Same(t, rect, r.cache["a"].rect)
	assert.Empty(t, log.calls)
	assert.Equal(t, 0.0, r.cache["a"].angle, "durable angle untouched while dragging")
}

func TestMoveNormalizesAngle(t *testing.T) {
	r := NewReconciler(newRecordingSurface(), nil)
	r.Reconcile([]models.Marker{marker("a", 52, 5)}, editable)
	ctrl, _ := r.Controller("a")
	center := geom.LatLng{Lat: 52, Lng: 5}

	ctrl.Start()
	// south-east of the center is -45 degrees
	ctrl.Move(geom.Translate(center, 3, -3))
	assert.InDelta(t, 315, ctrl.Angle(), 1e-6)

	// pointer on the pivot carries no direction
	ctrl.Move(center)
	assert.InDelta(t, 315, ctrl.Angle(), 1e-6)
	ctrl.End()
}

func TestEndWithoutMoveCommitsCurrentAngle(t *testing.T) {
	log := &commitLog{}
	r := NewReconciler(newRecordingSurface(), log.commit)
	m := marker("a", 52, 5)
	m.Angle = 33
	r.Reconcile([]models.Marker{m}, editable)
	ctrl, _ := r.Controller("a")

	ctrl.Start()
	ctrl.End()
	require.Len(t, log.calls, 1)
	assert.Equal(t, 33.0, log.calls[0].angle)
}

func TestPanLockPairsWithDrag(t *testing.T) {
	s := newRecordingSurface()
	log := &commitLog{}
	r := NewReconciler(s, log.commit)
	r.Reconcile([]models.Marker{marker("a", 52, 5)}, editable)
	ctrl, _ := r.Controller("a")

	ctrl.End()
	assert.Zero(t, s.panOn, "ending an idle controller does nothing")
	assert.Empty(t, log.calls)

	ctrl.Start()
	ctrl.Start()
	assert.Equal(t, 1, s.panOff)

	ctrl.Cancel()
	ctrl.Cancel()
	assert.Equal(t, 1, s.panOn)
	assert.Len(t, log.calls, 1, "cancel commits exactly once")
	assert.False(t, ctrl.Dragging())
}

func TestLockingDuringDragAbortsIt(t *testing.T) {
	s := newRecordingSurface()
	log := &commitLog{}
	r := NewReconciler(s, log.commit)
	m := marker("a", 52, 5)
	r.Reconcile([]models.Marker{m}, editable)
	ctrl, _ := r.Controller("a")
	ctrl.Start()
	ctrl.Move(geom.Translate(geom.LatLng{Lat: 52, Lng: 5}, -3, 3))

	m.Locked = true
	r.Reconcile([]models.Marker{m}, editable)

	assert.False(t, s.panLocked())
	assert.False(t, ctrl.Dragging())
	assert.Empty(t, log.calls)
	_, ok := r.Controller("a")
	assert.False(t, ok)
}

func TestRemovingMarkerDuringDragRestoresPan(t *testing.T) {
	s := newRecordingSurface()
	log := &commitLog{}
	r := NewReconciler(s, log.commit)
	r.Reconcile([]models.Marker{marker("a", 52, 5)}, editable)
	ctrl, _ := r.Controller("a")
	ctrl.Start()

	r.Reconcile(nil, editable)

	assert.False(t, s.panLocked())
	assert.Empty(t, log.calls)
}

func TestActiveController(t *testing.T) {
	r := NewReconciler(newRecordingSurface(), nil)
	r.Reconcile([]models.Marker{marker("a", 52, 5), marker("b", 52.001, 5.001)}, editable)
	_, ok := r.Active()
	assert.False(t, ok)

	ctrl, _ := r.Controller("b")
	ctrl.Start()
	active, ok := r.Active()
	require.True(t, ok)
	assert.Equal(t, "b", active.MarkerID())
	ctrl.End()
}

type countingPan struct{ off, on int }

func (p *countingPan) DisablePan() { p.off++ }
func (p *countingPan) EnablePan()  { p.on++ }

func TestWithPanLockerOverridesSurface(t *testing.T) {
	s := newRecordingSurface()
	pan := &countingPan{}
	r := NewReconciler(s, nil, WithPanLocker(pan))
	r.Reconcile([]models.Marker{marker("a", 52, 5)}, editable)
	ctrl, _ := r.Controller("a")

	ctrl.Start()
	ctrl.End()
	assert.Equal(t, 1, pan.off)
	assert.Equal(t, 1, pan.on)
	assert.Zero(t, s.panOff)
}
