package tui

import (
	"fmt"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"boothmap/internal/geom"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.showSidebar {
			_, _, _, h := m.mapArea()
			m.l.SetSize(sidebarWidth-2, h-2)
		}
	case tea.BlurMsg:
		// focus lost mid-gesture: the release will never arrive
		if ctrl, ok := m.s.rec.Active(); ok {
			ctrl.Cancel()
		}
		m.panning = false
		m.takeCommitStatus()
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			return m.updatePaste(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "o":
			m.s.setVisible(!m.s.rec.Visible())
			m.status = fmt.Sprintf("overlays: %v", m.s.rec.Visible())
		case "e":
			m.s.setEditable(!m.s.cfg.Editable)
			m.status = fmt.Sprintf("editable: %v", m.s.cfg.Editable)
		case "+", "=":
			if m.zoom < 64 {
				m.zoom *= 1.2
				m.status = fmt.Sprintf("zoom: %.2fx", m.zoom)
			}
		case "-", "_":
			if m.zoom > 0.05 {
				m.zoom /= 1.2
				m.status = fmt.Sprintf("zoom: %.2fx", m.zoom)
			}
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshDir()
				_, _, _, h := m.mapArea()
				m.l.SetSize(sidebarWidth-2, h-2)
			}
		case "p":
			m.pasteMode = true
			m.ta.SetValue("")
			m.status = "paste mode"
			m.ta.Focus()
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showAttrs = !m.showAttrs
			if m.showAttrs {
				m.refreshAttrs()
			}
		case "w":
			m.saveMarkers()
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					m.loadPath(it.path)
				}
			}
		case "up", "down", "left", "right":
			if m.s.surface.panLocked {
				break
			}
			switch msg.String() {
			case "up":
				m.offsetY -= 1
			case "down":
				m.offsetY += 1
			case "left":
				m.offsetX -= 2
			case "right":
				m.offsetX += 2
			}
		}
		if m.showAttrs {
			var cmd tea.Cmd
			m.tbl, cmd = m.tbl.Update(msg)
			return m, cmd
		}
	case tea.MouseMsg:
		m.updateMouse(msg)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pasteMode = false
		m.ta.Blur()
		m.status = "view mode"
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.ta.Value())
		if text == "" {
			m.status = "paste: empty"
			return m, nil
		}
		markers, err := geom.ParseMarkersGeoJSON([]byte(text))
		if err != nil {
			m.status = "geojson error: " + err.Error()
			return m, nil
		}
		m.selPath = ""
		m.setMarkers(markers)
		m.status = m.markerSummary("pasted")
		m.storeMarkers(markers)
		m.pasteMode = false
		m.ta.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

// updateMouse routes pointer events: a press on an interactive handle starts
// a rotation, anything else on the map pans.
func (m *Model) updateMouse(msg tea.MouseMsg) {
	ox, oy, w, h := m.mapArea()
	cx, cy := msg.X-ox, msg.Y-oy
	inMap := cx >= 0 && cx < w && cy >= 0 && cy < h && !m.pasteMode && !m.showAttrs
	vp, haveVP := m.viewport(w, h)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inMap || !haveVP {
			break
		}
		if o, ok := m.s.hits.lookup(m.s.surface, vp, cx, cy); ok {
			if ctrl, ok := m.s.rec.Controller(o.MarkerID); ok {
				ctrl.Start()
				m.status = "rotating " + o.MarkerID
				break
			}
		}
		if !m.s.surface.panLocked {
			m.panning = true
			m.panX, m.panY = msg.X, msg.Y
		}
	case tea.MouseActionMotion:
		if ctrl, ok := m.s.rec.Active(); ok {
			if haveVP {
				ctrl.Move(vp.cellLatLng(cx, cy))
				m.status = fmt.Sprintf("rotating %s: %.1f°", ctrl.MarkerID(), ctrl.Angle())
			}
		} else if m.panning && !m.s.surface.panLocked {
			m.offsetX += msg.X - m.panX
			m.offsetY += msg.Y - m.panY
			m.panX, m.panY = msg.X, msg.Y
		}
	case tea.MouseActionRelease:
		if ctrl, ok := m.s.rec.Active(); ok {
			ctrl.End()
		}
		m.panning = false
		m.takeCommitStatus()
	}

	// hover: footer coordinates and handle highlight
	m.hoverID = ""
	m.hoverHasGeo = false
	if !inMap || !haveVP {
		return
	}
	ll := vp.cellLatLng(cx, cy)
	m.hoverHasGeo = true
	m.hoverLon, m.hoverLat = ll.Lng, ll.Lat
	if _, dragging := m.s.rec.Active(); !dragging {
		if o, ok := m.s.hits.lookup(m.s.surface, vp, cx, cy); ok {
			m.hoverID = o.MarkerID
		}
	}
}

func (m *Model) takeCommitStatus() {
	if msg, ok := m.s.takeCommit(); ok {
		m.status = msg
	}
}
