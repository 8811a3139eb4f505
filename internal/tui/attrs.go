package tui

import (
	"fmt"

	table "github.com/charmbracelet/bubbles/table"
)

var markerColumns = []table.Column{
	{Title: "#", Width: 4},
	{Title: "id", Width: 12},
	{Title: "name", Width: 16},
	{Title: "lat", Width: 11},
	{Title: "lng", Width: 11},
	{Title: "angle", Width: 7},
	{Title: "size", Width: 9},
	{Title: "locked", Width: 6},
}

// refreshAttrs rebuilds the marker table from the current markers.
func (m *Model) refreshAttrs() {
	if len(m.s.markers) == 0 {
		m.showAttrs = false
		m.status = "no markers loaded"
		return
	}
	rows := make([]table.Row, 0, len(m.s.markers))
	for i, mk := range m.s.markers {
		lat, lng := "", ""
		if mk.HasCoords() {
			lat = fmt.Sprintf("%.6f", *mk.Lat)
			lng = fmt.Sprintf("%.6f", *mk.Lng)
		}
		size := "default"
		if len(mk.Rectangle) == 2 {
			size = fmt.Sprintf("%gx%g", mk.Rectangle[0], mk.Rectangle[1])
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1), mk.ID, mk.Name, lat, lng,
			fmt.Sprintf("%.1f", mk.Angle), size, fmt.Sprintf("%v", mk.Locked),
		})
	}
	// clear rows before columns so the table never sees a mismatch
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(markerColumns)
	m.tbl.SetRows(rows)
}
