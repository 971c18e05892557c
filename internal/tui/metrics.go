package tui

import (
	"fmt"

	table "github.com/charmbracelet/bubbles/table"

	"propmap/internal/i18n"
)

// summary is the one-line status for the current parcel.
func (m Model) summary() string {
	if m.report == nil {
		return ""
	}
	s, mt := m.report.Strings, m.report.Metrics
	return fmt.Sprintf("%s  %s: %s  %s: %.2f  %s: %s",
		m.report.PropertyName,
		s.AreaM2, i18n.Thousands(mt.AreaM2),
		s.AreaHa, mt.AreaHa,
		s.Perimeter, i18n.Thousands(mt.PerimeterM))
}

// metricRows lists the measured values and provenance of the current parcel.
func (m Model) metricRows() []table.Row {
	if m.report == nil {
		return nil
	}
	rep := m.report
	s, mt, pc := rep.Strings, rep.Metrics, rep.Parcel
	src := pc.SourceCRS
	if pc.CRSDefaulted {
		src += " (default)"
	}
	layer := rep.Layer
	if layer == "" {
		layer = "-"
	}
	return []table.Row{
		{s.PropNameLabel, rep.PropertyName},
		{s.AreaM2, i18n.Thousands(mt.AreaM2)},
		{s.AreaHa, fmt.Sprintf("%.2f", mt.AreaHa)},
		{s.Perimeter, i18n.Thousands(mt.PerimeterM)},
		{"CRS", pc.CRS},
		{"Source CRS", src},
		{"Format", string(rep.Format)},
		{"Layer", layer},
		{"Load", rep.Outcome.String()},
		{"Parts", fmt.Sprintf("%d", len(pc.Shape))},
	}
}

// refreshMetrics rebuilds the table for the current report and language.
func (m *Model) refreshMetrics() {
	rows := m.metricRows()
	keyW, valW := 8, 8
	for _, r := range rows {
		keyW = max(keyW, len([]rune(r[0]))+2)
		valW = max(valW, len([]rune(r[1]))+2)
	}
	m.tbl.SetRows(nil)
	m.tbl.SetColumns([]table.Column{
		{Title: "Field", Width: min(keyW, 42)},
		{Title: "Value", Width: min(valW, 32)},
	})
	m.tbl.SetRows(rows)
}
