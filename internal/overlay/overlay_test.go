package overlay

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boothmap/internal/geom"
	"boothmap/internal/models"
	"boothmap/internal/monitoring"
)

// recordingSurface is a Surface and PanLocker that remembers what is attached.
type recordingSurface struct {
	attached map[*Overlay]bool
	adds     int
	removes  int
	updates  int
	panOff   int
	panOn    int
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{attached: map[*Overlay]bool{}}
}

func (s *recordingSurface) AddOverlay(o *Overlay) {
	s.adds++
	s.attached[o] = true
}

func (s *recordingSurface) RemoveOverlay(o *Overlay) {
	s.removes++
	delete(s.attached, o)
}

func (s *recordingSurface) UpdateOverlay(o *Overlay) {
	s.updates++
}

func (s *recordingSurface) DisablePan() { s.panOff++ }
func (s *recordingSurface) EnablePan()  { s.panOn++ }

func (s *recordingSurface) panLocked() bool { return s.panOff > s.panOn }

type commitCall struct {
	id    string
	angle float64
}

type commitLog struct {
	calls []commitCall
}

func (c *commitLog) commit(id string, u AngleUpdate) {
	c.calls = append(c.calls, commitCall{id: id, angle: u.Angle})
}

func marker(id string, lat, lng float64) models.Marker {
	return models.Marker{ID: id, Lat: models.Coord(lat), Lng: models.Coord(lng)}
}

var editable = Config{DefaultSize: [2]float64{4, 4}, Editable: true, ShowOverlays: true}

func TestReconcileCreatesPairs(t *testing.T) {
	s := newRecordingSurface()
	r := NewReconciler(s, nil)

	r.Reconcile([]models.Marker{marker("a", 52, 5), marker("b", 52.001, 5.001)}, editable)

	assert.Equal(t, 2, r.Len())
	assert.Len(t, s.attached, 4)
	rect, handle, ok := r.Overlays("a")
	require.True(t, ok)
	assert.Equal(t, KindRectangle, rect.Kind)
	assert.Len(t, rect.Points, 4)
	assert.Equal(t, KindHandle, handle.Kind)
	require.Len(t, handle.Points, 1)
	assert.Equal(t, rect.Points[2], handle.Points[0], "handle sits on the far corner")
}

func TestReconcileEmptyListTearsDownEverything(t *testing.T) {
	s := newRecordingSurface()
	r := NewReconciler(s, nil)
	r.Reconcile([]models.Marker{marker("a", 52, 5), marker("b", 52.001, 5.001)}, editable)

	r.Reconcile(nil, editable)

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, s.attached)
	assert.Equal(t, 4, s.removes)
}

func TestReconcileIsIdempotent(t *testing.T) {
	s := newRecordingSurface()
	r := NewReconciler(s, nil)
	markers := []models.Marker{marker("a", 52, 5)}

	r.Reconcile(markers, editable)
	first := r.cache["a"]
	rect, handle, ctrl := first.rect, first.handle, first.ctrl
	adds := s.adds

	r.Reconcile(markers, editable)

	second := r.cache["a"]
	assert.Same(t, rect, second.rect)
	assert.Same(t, handle, second.handle)
	assert.Same(t, ctrl, second.ctrl)
	assert.Equal(t, adds, s.adds, "no new overlays on an unchanged list")
	assert.Zero(t, s.removes)
}

func TestReconcileUpdatesGeometryInPlace(t *testing.T) {
	s := newRecordingSurface()
	r := NewReconciler(s, nil)
	m := marker("a", 52, 5)
	r.Reconcile([]models.Marker{m}, editable)
	rect := r.cache["a"].rect
	before := append([]geom.LatLng(nil), rect.Points...)

	m.Angle = 30
	m.Rectangle = []float64{10, 2}
	r.Reconcile([]models.Marker{m}, editable)

	assert.Same(t, rect, r.cache["a"].rect)
	assert.NotEqual(t, before, rect.Points)
	want := geom.Footprint(geom.LatLng{Lat: 52, Lng: 5}, 5, 1, 30)
	assert.Equal(t, want[:], rect.Points)
	assert.Equal(t, 2, s.updates, "rectangle and handle pushed to the surface")
}

func TestReconcileDropsMarkerThatLostCoordinates(t *testing.T) {
	s := newRecordingSurface()
	r := NewReconciler(s, nil)
	r.Reconcile([]models.Marker{marker("a", 52, 5), marker("b", 52.001, 5.001)}, editable)

	r.Reconcile([]models.Marker{marker("a", 52, 5), {ID: "b"}}, editable)

	assert.Equal(t, 1, r.Len())
	_, _, ok := r.Overlays("b")
	assert.False(t, ok)
	assert.Len(t, s.attached, 2)
}

func TestReconcileSkipsUnplacedMarkers(t *testing.T) {
	s := newRecordingSurface()
	r := NewReconciler(s, nil)
	lat := 52.0
	r.Reconcile([]models.Marker{{ID: "x"}, {ID: "y", Lat: &lat}}, editable)
	assert.Zero(t, r.Len())
	assert.Zero(t, s.adds)
}

func TestReconcileDuplicateIDsLastWriteWins(t *testing.T) {
	s := newRecordingSurface()
	r := NewReconciler(s, nil)
	first := marker("a", 52, 5)
	last := marker("a", 10, 20)

	r.Reconcile([]models.Marker{first, last}, editable)
	require.Equal(t, 1, r.Len())
	assert.Equal(t, geom.LatLng{Lat: 10, Lng: 20}, r.cache["a"].center)

	r.Reconcile([]models.Marker{first, {ID: "a"}}, editable)
	assert.Zero(t, r.Len(), "a later unplaced duplicate removes the pair")
}

func TestMalformedRectangleFallsBackToDefault(t *testing.T) {
	prev := monitoring.Logf
	defer func() { monitoring.Logf = prev }()
	var logged []string
	monitoring.SetLogger(func(format string, v ...any) { logged = append(logged, fmt.Sprintf(format, v...)) })

	r := NewReconciler(newRecordingSurface(), nil)
	cases := [][]float64{{6}, {6, 4, 2}, {0, 4}, {-1, 4}}
	for i, rect := range cases {
		m := marker(fmt.Sprint(i), 52, 5)
		m.Rectangle = rect
		r.Reconcile([]models.Marker{m}, editable)
		e := r.cache[m.ID]
		require.NotNil(t, e)
		assert.Equal(t, 2.0, e.halfW, "case %v", rect)
		assert.Equal(t, 2.0, e.halfH, "case %v", rect)
	}
	assert.Len(t, logged, len(cases))
}

func TestInvalidDefaultSizeUsesBuiltin(t *testing.T) {
	r := NewReconciler(newRecordingSurface(), nil)
	r.Reconcile([]models.Marker{marker("a", 52, 5)}, Config{ShowOverlays: true})
	e := r.cache["a"]
	assert.Equal(t, DefaultRectangle[0]/2, e.halfW)
	assert.Equal(t, DefaultRectangle[1]/2, e.halfH)
}

func TestLockedMarkerHasStaticHandle(t *testing.T) {
	r := NewReconciler(newRecordingSurface(), nil)
	locked := marker("locked", 52, 5)
	locked.Locked = true
	free := marker("free", 52.001, 5.001)

	r.Reconcile([]models.Marker{locked, free}, editable)

	_, h, _ := r.Overlays("locked")
	assert.False(t, h.Interactive)
	assert.True(t, h.Muted)
	_, ok := r.Controller("locked")
	assert.False(t, ok)

	_, h, _ = r.Overlays("free")
	assert.True(t, h.Interactive)
	assert.False(t, h.Muted)
	_, ok = r.Controller("free")
	assert.True(t, ok)
}

func TestNonEditableContextHasStaticHandles(t *testing.T) {
	r := NewReconciler(newRecordingSurface(), nil)
	cfg := editable
	cfg.Editable = false
	r.Reconcile([]models.Marker{marker("a", 52, 5)}, cfg)

	_, h, _ := r.Overlays("a")
	assert.False(t, h.Interactive)
	_, ok := r.Controller("a")
	assert.False(t, ok)

	cfg.Editable = true
	r.Reconcile([]models.Marker{marker("a", 52, 5)}, cfg)
	_, h, _ = r.Overlays("a")
	assert.True(t, h.Interactive)
	_, ok = r.Controller("a")
	assert.True(t, ok)
}

func TestVisibilityToggleKeepsCache(t *testing.T) {
	s := newRecordingSurface()
	r := NewReconciler(s, nil)
	r.Reconcile([]models.Marker{marker("a", 52, 5), marker("b", 52.001, 5.001)}, editable)
	rect := r.cache["a"].rect
	points := append([]geom.LatLng(nil), rect.Points...)
	updates := s.updates

	r.SetVisible(false)
	assert.Empty(t, s.attached)
	assert.Equal(t, 2, r.Len())
	assert.False(t, r.Visible())

	r.SetVisible(false)
	assert.Equal(t, 4, s.removes, "detaching twice is a no-op")

	r.SetVisible(true)
	assert.Len(t, s.attached, 4)
	assert.True(t, s.attached[rect])
	assert.Equal(t, points, rect.Points)
	assert.Equal(t, updates, s.updates, "no geometry recomputed")
}

func TestReconcileWithOverlaysHidden(t *testing.T) {
	s := newRecordingSurface()
	r := NewReconciler(s, nil)
	hidden := editable
	hidden.ShowOverlays = false

	m := marker("a", 52, 5)
	r.Reconcile([]models.Marker{m}, hidden)
	assert.Equal(t, 1, r.Len())
	assert.Zero(t, s.adds)

	m.Angle = 45
	r.Reconcile([]models.Marker{m}, hidden)
	assert.Zero(t, s.updates, "detached overlays are not pushed to the surface")

	r.Reconcile([]models.Marker{m}, editable)
	rect, _, _ := r.Overlays("a")
	want := geom.Footprint(geom.LatLng{Lat: 52, Lng: 5}, 2, 2, 45)
	assert.Equal(t, want[:], rect.Points)
	assert.Len(t, s.attached, 2)
}

func TestEachIsSortedCopies(t *testing.T) {
	r := NewReconciler(newRecordingSurface(), nil)
	r.Reconcile([]models.Marker{marker("b", 52, 5), marker("a", 52.001, 5.001)}, editable)

	var ids []string
	r.Each(func(rect, handle Overlay) {
		ids = append(ids, rect.MarkerID)
		rect.Points[0] = geom.LatLng{}
	})
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.NotEqual(t, geom.LatLng{}, r.cache["a"].rect.Points[0])
}
