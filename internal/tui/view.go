package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	s := m.strings()
	contentWidth := max(10, m.width)
	_, _, mapWidth, mapHeight := m.mapRect()
	m.mapW, m.mapH = max(8, mapWidth), max(4, mapHeight)

	// Header
	title := titleStyle.Render(" propmap ─ " + s.Title + " ")
	var field string
	if m.editName {
		field = m.name.View()
	} else {
		field = dimStyle.Render(fmt.Sprintf("  %s  [%s]", s.PropertyName(m.name.Value()), m.lang))
	}
	header := lipgloss.NewStyle().Width(contentWidth).MaxHeight(1).Render(title + field)

	var sidebar string
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, m.contentHeight()-2)
		sidebar = lipgloss.NewStyle().Width(sidebarWidth).Render(m.l.View())
	}

	var mapView string
	switch {
	case m.showAttrs:
		m.tbl.SetHeight(min(mapHeight-2, 12))
		box := boxStyle.Render(m.tbl.View())
		mapView = lipgloss.Place(mapWidth, mapHeight, lipgloss.Center, lipgloss.Center, box)
	case m.showExport:
		mapView = lipgloss.Place(mapWidth, mapHeight, lipgloss.Center, lipgloss.Center, m.renderExport())
	case m.pasteMode:
		m.ta.SetWidth(m.mapW)
		m.ta.SetHeight(min(m.mapH, 12))
		mapView = lipgloss.NewStyle().Width(mapWidth).Height(mapHeight).Render(m.ta.View())
	default:
		preview := parcelStyle.Render(m.renderAsciiMap(m.mapW, m.mapH))
		mapView = lipgloss.NewStyle().Width(mapWidth).Height(mapHeight).Render(preview)
	}

	popup := ""
	if m.inspectPopup != "" && !m.showAttrs {
		box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MaxWidth(max(20, min(56, contentWidth/2))).Render(m.inspectPopup)
		popup = lipgloss.Place(contentWidth, m.contentHeight(), lipgloss.Left, lipgloss.Center, box)
	}

	body := mapView
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	}

	// Footer / help
	statusStyle := dimStyle
	if strings.HasPrefix(m.status, "Erro / Error:") {
		statusStyle = errStyle
	}
	msg := m.status
	if m.exporting > 0 {
		msg = s.Processing + "  " + msg
	}
	status := statusStyle.Render(" " + msg + " ")
	coords := ""
	if m.hoverHasGeo {
		coords = dimStyle.Render(fmt.Sprintf("  x=%.1f y=%.1f (PT-TM06)  ", m.hoverX, m.hoverY))
	}
	left := lipgloss.JoinVertical(lipgloss.Left, status, m.renderHelp())
	spacerW := max(0, contentWidth-lipgloss.Width(left)-lipgloss.Width(coords))
	right := lipgloss.Place(spacerW+lipgloss.Width(coords), 1, lipgloss.Right, lipgloss.Center, coords)
	footer := lipgloss.NewStyle().Width(contentWidth).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, left, right))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, popup, body, footer)
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

// renderExport is the export panel: sample PNG, premium PDF and the purchase link.
func (m Model) renderExport() string {
	s := m.strings()
	free := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(s.FreeVersion),
		s.FreeDesc,
		dimStyle.Render("e  "+s.BtnPNG),
	)
	premium := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(s.PremiumVersion),
		s.PremiumDesc,
		dimStyle.Render("E  "+s.BtnPremiumPDF),
		dimStyle.Render(s.BtnBuyPDF+": "+m.purchaseURL),
	)
	body := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(s.ExportTitle), "", free, "", premium)
	if m.report != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", dimStyle.Render(m.summary()))
	}
	return boxStyle.Render(body)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"↑↓←→ pan",
		"+/- zoom",
		"Tab files",
		"Enter open",
		"n name",
		"l PT/UK",
		"p paste",
		"a metrics",
		"x export",
		"e png",
		"E pdf",
		"i inspect",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
