package tui

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"propmap/internal/geom"
	"propmap/internal/i18n"
	"propmap/internal/observability"
	"propmap/internal/pipeline"
	"propmap/internal/render"
)

const squareWKT = "SRID=3763;POLYGON((1000 2000, 1100 2000, 1100 2100, 1000 2100, 1000 2000))"

func newModel(t *testing.T) Model {
	t.Helper()
	log := zerolog.New(io.Discard)
	r, err := render.NewRenderer(nil, log)
	if err != nil {
		t.Fatal(err)
	}
	pipe := pipeline.New(geom.NewLoader(geom.AllDrivers()).WithTempDir(t.TempDir()), r, observability.New("test"), log)
	m := New(Options{Pipeline: pipe, Lang: i18n.PT, PurchaseURL: "https://example.test/buy", OutDir: t.TempDir()})
	m.width, m.height = 80, 30
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPasteMeasuresParcel(t *testing.T) {
	m := newModel(t)
	m.applyWKT(squareWKT)
	if m.report == nil {
		t.Fatalf("no report, status=%q", m.status)
	}
	if math.Abs(m.report.Metrics.AreaM2-10000) > 1e-6 {
		t.Fatalf("area=%v", m.report.Metrics.AreaM2)
	}
	if !strings.Contains(m.status, "10,000") {
		t.Fatalf("status=%q", m.status)
	}
	rows := m.metricRows()
	if rows[1][1] != "10,000" || rows[2][1] != "1.00" || rows[3][1] != "400" {
		t.Fatalf("rows=%v", rows)
	}
}

func TestPasteErrorsUseNotice(t *testing.T) {
	tests := []struct {
		name string
		wkt  string
	}{
		{"garbage", "not wkt"},
		{"points only", "POINT(-8.1 39.6)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel(t)
			m.applyWKT(tt.wkt)
			if m.report != nil {
				t.Fatal("report should stay empty")
			}
			if !strings.HasPrefix(m.status, "Erro / Error: ") {
				t.Fatalf("status=%q", m.status)
			}
		})
	}
}

func TestLanguageToggleRelabels(t *testing.T) {
	m := newModel(t)
	m.applyWKT(squareWKT)
	if m.report.PropertyName != "Minha Propriedade" {
		t.Fatalf("name=%q", m.report.PropertyName)
	}
	next, _ := m.Update(key("l"))
	m = next.(Model)
	if m.lang != i18n.UK || m.report.PropertyName != "My Property" {
		t.Fatalf("lang=%s name=%q", m.lang, m.report.PropertyName)
	}
	if got := m.metricRows()[1][0]; got != "Area (sqm)" {
		t.Fatalf("label=%q", got)
	}
}

func TestNameInput(t *testing.T) {
	m := newModel(t)
	m.applyWKT(squareWKT)
	next, _ := m.Update(key("n"))
	m = next.(Model)
	if !m.editName {
		t.Fatal("n should start editing")
	}
	next, _ = m.Update(key("Quinta"))
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.editName || m.report.PropertyName != "Quinta" {
		t.Fatalf("editing=%v name=%q", m.editName, m.report.PropertyName)
	}
}

func TestExportWritesArtifacts(t *testing.T) {
	tests := []struct {
		key   string
		file  string
		magic string
	}{
		{"e", "amostra_Minha Propriedade.png", "\x89PNG"},
		{"E", "Relatorio_Minha Propriedade.pdf", "%PDF-"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := newModel(t)
			m.applyWKT(squareWKT)
			next, cmd := m.Update(key(tt.key))
			m = next.(Model)
			if cmd == nil {
				t.Fatal("export should return a command")
			}
			msg := cmd()
			next, _ = m.Update(msg)
			m = next.(Model)

			path := filepath.Join(m.outDir, tt.file)
			b, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read export: %v (status %q)", err, m.status)
			}
			if !strings.HasPrefix(string(b), tt.magic) {
				t.Fatalf("%s has wrong magic", tt.file)
			}
			if !strings.Contains(m.status, path) {
				t.Fatalf("status=%q", m.status)
			}
			if tt.key == "e" && !strings.Contains(m.status, "https://example.test/buy") {
				t.Fatalf("free export should point at the purchase url: %q", m.status)
			}
		})
	}
}

func TestExportWithoutParcel(t *testing.T) {
	m := newModel(t)
	_, cmd := m.Update(key("e"))
	if cmd != nil {
		t.Fatal("no export without a parcel")
	}
}

func TestLoadPath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "parcel.wkt")
	if err := os.WriteFile(p, []byte(squareWKT), 0o644); err != nil {
		t.Fatal(err)
	}
	m := newModel(t)
	m.loadPath(p)
	if m.report == nil || m.selPath != p {
		t.Fatalf("load failed: %q", m.status)
	}

	m.cwd = dir
	m.refreshDir()
	var titles []string
	for _, it := range m.l.Items() {
		titles = append(titles, it.(fileItem).title)
	}
	if strings.Join(titles, ",") != "../,parcel.wkt" {
		t.Fatalf("items=%v", titles)
	}
}

func TestPreviewDrawsParcel(t *testing.T) {
	m := newModel(t)
	if strings.TrimSpace(m.renderAsciiMap(20, 10)) != "" {
		t.Fatal("empty model should render blank")
	}
	m.applyWKT(squareWKT)
	out := m.renderAsciiMap(20, 10)
	lines := strings.Split(out, "\n")
	if len(lines) != 10 {
		t.Fatalf("lines=%d", len(lines))
	}
	var dots int
	for _, r := range out {
		if r > 0x2800 && r <= 0x28FF {
			dots++
		}
	}
	if dots < 20 {
		t.Fatalf("only %d braille cells drawn", dots)
	}
	if mid := []rune(lines[5]); mid[10] == ' ' {
		t.Fatal("centre of the parcel is not filled")
	}
	if m.View() == "" {
		t.Fatal("empty view")
	}
}

func TestCellToXYRoundTrip(t *testing.T) {
	m := newModel(t)
	m.applyWKT(squareWKT)
	v, ok := m.viewport(40, 20)
	if !ok {
		t.Fatal("no viewport")
	}
	mx, my := v.toMicro([2]float64{1050, 2050})
	p := v.fromMicro(mx, my)
	if math.Abs(p[0]-1050) > 2 || math.Abs(p[1]-2050) > 2 {
		t.Fatalf("round trip=%v", p)
	}
}

func TestBrailleSetPixel(t *testing.T) {
	b := newBrailleBuf(2, 1)
	b.setPixel(0, 0)
	b.setPixel(3, 3)
	b.setPixel(-1, 0)
	b.setPixel(4, 0)
	if got := b.toLines()[0]; got != "⠁⢀" {
		t.Fatalf("got %q", got)
	}
}

const twoLayerKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Folder>
      <name>boundary</name>
      <Placemark>
        <Polygon><outerBoundaryIs><LinearRing><coordinates>
          -8.10,39.60 -8.09,39.60 -8.09,39.61 -8.10,39.61 -8.10,39.60
        </coordinates></LinearRing></outerBoundaryIs></Polygon>
      </Placemark>
    </Folder>
    <Folder>
      <name>wells</name>
      <Placemark><Point><coordinates>-8.095,39.605</coordinates></Point></Placemark>
    </Folder>
  </Document>
</kml>`

func TestInspectListsLayers(t *testing.T) {
	p := filepath.Join(t.TempDir(), "farm.kml")
	if err := os.WriteFile(p, []byte(twoLayerKML), 0o644); err != nil {
		t.Fatal(err)
	}
	m := newModel(t)
	m.loadPath(p)
	if m.report == nil {
		t.Fatalf("load failed: %q", m.status)
	}
	next, _ := m.Update(key("i"))
	m = next.(Model)
	for _, want := range []string{
		"features: 1 polygons, 0 lines, 0 points",
		"layers: boundary, wells (using boundary)",
		"free: amostra_Minha Propriedade.png",
	} {
		if !strings.Contains(m.inspectPopup, want) {
			t.Errorf("popup missing %q:\n%s", want, m.inspectPopup)
		}
	}
}
