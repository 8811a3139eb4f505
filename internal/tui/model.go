package tui

import (
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"boothmap/internal/models"
	"boothmap/internal/overlay"
	"boothmap/internal/store"
)

const sidebarWidth = 28

// Options configures a new Model.
type Options struct {
	Overlay overlay.Config
	// Store persists committed angles and saved markers. Optional.
	Store *store.Store
	// Path is a marker file loaded at launch. It wins over Markers.
	Path    string
	Markers []models.Marker
}

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	zoom    float64
	offsetX int
	offsetY int

	status string

	// File explorer
	cwd     string
	l       list.Model
	selPath string

	// markers, overlay engine and map surface; shared across copies
	s *session

	// mouse pan
	panning    bool
	panX, panY int

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// hover state
	hoverID     string
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64

	// marker table
	showAttrs bool
	tbl       table.Model
}

func New(opts Options) Model {
	m := Model{
		helpVisible: true,
		zoom:        1.0,
		status:      "boothmap ready",
		s:           newSession(opts.Overlay, opts.Store),
	}
	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Marker files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste a GeoJSON Feature or FeatureCollection of booth markers. Press Enter to load; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()

	switch {
	case opts.Path != "":
		m.loadPath(opts.Path)
	case len(opts.Markers) > 0:
		m.s.setMarkers(opts.Markers)
		m.status = m.markerSummary("loaded from store")
	}
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// Markers returns the host's current marker list.
func (m Model) Markers() []models.Marker {
	return append([]models.Marker(nil), m.s.markers...)
}

// mapArea returns the map pane's origin and size in terminal cells. It must
// match the layout in View.
func (m Model) mapArea() (x, y, w, h int) {
	headerHeight := 1
	footerHeight := 2
	h = max(4, m.height-headerHeight-footerHeight)
	contentWidth := max(10, m.width)
	if m.showSidebar {
		x = sidebarWidth + 1
	}
	w = max(10, contentWidth-x)
	return x, headerHeight, w, h
}
