package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"

	"boothmap/internal/geom"
	"boothmap/internal/models"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

func supportedExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".geojson", ".json", ".csv", ".kml":
		return true
	}
	return false
}

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !supportedExt(filepath.Ext(name)) {
			continue
		}
		items = append(items, fileItem{title: name, desc: strings.ToLower(filepath.Ext(name)), path: filepath.Join(m.cwd, name)})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.l.SetItems(items)
}

// loadPath loads a marker file and hands it to the overlay engine.
func (m *Model) loadPath(p string) {
	markers, err := geom.LoadMarkers(p)
	if err != nil {
		m.status = "load error: " + err.Error()
		return
	}
	m.selPath = p
	m.setMarkers(markers)
	m.status = m.markerSummary("loaded: " + filepath.Base(p))
	m.storeMarkers(markers)
}

// storeMarkers upserts newly loaded markers so later commits can persist.
func (m *Model) storeMarkers(markers []models.Marker) {
	if m.s.store == nil {
		return
	}
	if err := m.s.store.Upsert(context.Background(), markers); err != nil {
		m.status = "store error: " + err.Error()
	}
}

func (m *Model) setMarkers(markers []models.Marker) {
	m.s.setMarkers(markers)
	m.zoom = 1.0
	m.offsetX, m.offsetY = 0, 0
	if m.showAttrs {
		m.refreshAttrs()
	}
}

// saveMarkers writes the markers back: to the store when there is one,
// else as GeoJSON next to the file they came from.
func (m *Model) saveMarkers() {
	if m.s.store != nil {
		if err := m.s.store.Upsert(context.Background(), m.s.markers); err != nil {
			m.status = "store error: " + err.Error()
			return
		}
		m.status = fmt.Sprintf("saved %d markers to store", len(m.s.markers))
		return
	}
	if m.selPath == "" {
		m.status = "nothing to save to: open a file or pass --db"
		return
	}
	out := strings.TrimSuffix(m.selPath, filepath.Ext(m.selPath)) + ".geojson"
	b, err := geom.MarshalMarkersGeoJSON(m.s.markers)
	if err != nil {
		m.status = "save error: " + err.Error()
		return
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		m.status = "save error: " + err.Error()
		return
	}
	m.status = "saved: " + filepath.Base(out)
}

func (m Model) markerSummary(prefix string) string {
	placed := 0
	for _, mk := range m.s.markers {
		if mk.HasCoords() {
			placed++
		}
	}
	return fmt.Sprintf("%s  markers=%d placed=%d", prefix, len(m.s.markers), placed)
}
