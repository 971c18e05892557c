package tui

import (
	"fmt"
	"os"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"propmap/internal/geom"
	"propmap/internal/pipeline"
	"propmap/internal/render"
)

const sidebarWidth = 28

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.showSidebar {
			m.l.SetSize(sidebarWidth-2, m.contentHeight()-2)
		}
	case exportedMsg:
		m.exporting--
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.status = "→ " + msg.path
		if msg.variant == render.Free {
			m.status += "  " + m.strings().BtnBuyPDF + ": " + m.purchaseURL
		}
		return m, nil
	case tea.KeyMsg:
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.editName {
			return m.updateName(msg)
		}
		if m.pasteMode {
			return m.updatePaste(msg)
		}
		return m.updateKeys(msg)
	case tea.MouseMsg:
		m.updateHover(msg)
	}
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateName(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.name.SetValue(m.prevName)
		m.editName = false
		m.name.Blur()
		return m, nil
	case "enter":
		m.editName = false
		m.name.Blur()
		m.relabel()
		if m.report != nil {
			m.status = m.summary()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

func (m Model) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pasteMode = false
		m.ta.Blur()
		return m, nil
	case "enter":
		w := strings.TrimSpace(m.ta.Value())
		if w == "" {
			m.status = "paste: empty"
			return m, nil
		}
		m.pasteMode = false
		m.ta.Blur()
		m.applyWKT(w)
		return m, nil
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
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
	case "0":
		m.zoom = 1.0
		m.offsetX, m.offsetY = 0, 0
	case "tab":
		m.showSidebar = !m.showSidebar
		if m.showSidebar {
			m.refreshDir()
			m.l.SetSize(sidebarWidth-2, m.contentHeight()-2)
		}
	case "p":
		m.pasteMode = true
		m.ta.SetValue("")
		m.status = "paste mode"
		return m, m.ta.Focus()
	case "n":
		m.editName = true
		m.prevName = m.name.Value()
		m.status = m.strings().PropNameLabel
		return m, m.name.Focus()
	case "l":
		m.lang = m.lang.Next()
		m.relabel()
		m.status = fmt.Sprintf("lang: %s  %s", m.lang, m.strings().Title)
	case "h":
		m.helpVisible = !m.helpVisible
	case "a":
		m.showAttrs = !m.showAttrs && m.report != nil
	case "x":
		m.showExport = !m.showExport
	case "e", "E":
		if m.report == nil {
			m.status = m.strings().UploadLabel
			return m, nil
		}
		v := render.Free
		if msg.String() == "E" {
			v = render.Premium
		}
		m.exporting++
		m.status = m.strings().Processing
		return m, m.exportCmd(v)
	case "u":
		m.status = m.strings().BtnBuyPDF + ": " + m.purchaseURL
	case "i":
		if m.report == nil {
			m.inspectPopup = ""
			m.status = "nothing loaded"
			break
		}
		if m.inspectPopup != "" {
			m.inspectPopup = ""
			break
		}
		m.inspectPopup = m.inspect()
		m.status = "inspect popup"
	case "enter":
		if m.showSidebar {
			if it, ok := m.l.SelectedItem().(fileItem); ok {
				m.open(it)
			}
		}
	case "up":
		m.offsetY--
	case "down":
		m.offsetY++
	case "left":
		m.offsetX -= 2
	case "right":
		m.offsetX += 2
	}
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) inspect() string {
	rep := m.report
	name := "WKT"
	if m.selPath != "" {
		name = m.selPath
	}
	lines := []string{
		"source: " + name,
		fmt.Sprintf("features: %d polygons, %d lines, %d points", rep.Features.Polygons, rep.Features.Lines, rep.Features.Points),
	}
	if layers := kmlLayers(m.selPath, rep.Format); len(layers) > 0 {
		lines = append(lines, "layers: "+strings.Join(layers, ", ")+" (using "+rep.Layer+")")
	}
	return strings.Join(append(lines,
		fmt.Sprintf("bbox: [%.1f, %.1f, %.1f, %.1f]", m.bbox.MinX, m.bbox.MinY, m.bbox.MaxX, m.bbox.MaxY),
		fmt.Sprintf("parts: %d", len(rep.Parcel.Shape)),
		"crs: " + rep.Parcel.CRS,
		"source crs: " + rep.Parcel.SourceCRS,
		"loaded: " + rep.At.Format("02/01/2006 15:04"),
		"free: " + pipeline.ArtifactName(render.Free, rep.PropertyName),
		"premium: " + pipeline.ArtifactName(render.Premium, rep.PropertyName),
	), "\n")
}

// kmlLayers lists every layer of a KML file on disk.
func kmlLayers(path string, f geom.Format) []string {
	if path == "" || f != geom.FormatKML {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	names, _ := geom.ListKMLLayers(data)
	return names
}

// updateHover tracks the parcel vertex nearest the mouse.
func (m *Model) updateHover(msg tea.MouseMsg) {
	ox, oy, w, h := m.mapRect()
	cx, cy := msg.X-ox, msg.Y-oy
	if cx < 0 || cx >= w || cy < 0 || cy >= h {
		m.hovering = false
		m.hoverHasGeo = false
		return
	}
	if p, ok := m.cellToXY(cx, cy, w, h); ok {
		m.hoverHasGeo = true
		m.hoverX, m.hoverY = p[0], p[1]
	}
	mx, my, _, ok := m.nearestVertex(cx*2, cy*4, w, h)
	m.hovering = ok
	m.hoverMicX, m.hoverMicY = mx, my
}

func (m Model) contentHeight() int {
	return max(4, m.height-3)
}

// mapRect returns the map origin and size in cells; it must match View.
func (m Model) mapRect() (x, y, w, h int) {
	contentWidth := max(10, m.width)
	w = contentWidth - 1
	if m.showSidebar {
		w -= sidebarWidth
		x = sidebarWidth + 1
	}
	return x, 1, max(10, w), m.contentHeight()
}
