package tui

import (
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"propmap/internal/geom"
	"propmap/internal/i18n"
	"propmap/internal/pipeline"
)

// Options configures a Model.
type Options struct {
	Pipeline    *pipeline.Pipeline
	Lang        i18n.Lang
	PurchaseURL string
	OutDir      string // where exports are written; "" is the working directory
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

	pipe        *pipeline.Pipeline
	purchaseURL string
	outDir      string
	lang        i18n.Lang
	exporting   int

	// File explorer
	cwd     string
	l       list.Model
	selPath string

	// property name input
	editName bool
	name     textinput.Model
	prevName string

	// current parcel
	report *pipeline.Report
	bbox   geom.BBox

	// last rendered map size (for inspect)
	mapW int
	mapH int

	// paste mode
	pasteMode bool
	ta        textarea.Model

	inspectPopup string
	showExport   bool

	// hover state
	hovering    bool
	hoverMicX   int
	hoverMicY   int
	hoverHasGeo bool
	hoverX      float64
	hoverY      float64

	// metrics table
	showAttrs bool
	tbl       table.Model
}

func New(opts Options) Model {
	m := Model{
		helpVisible: true,
		zoom:        1.0,
		pipe:        opts.Pipeline,
		purchaseURL: opts.PurchaseURL,
		outDir:      opts.OutDir,
		lang:        opts.Lang,
	}
	if m.lang == "" {
		m.lang = i18n.PT
	}
	m.status = m.strings().UploadLabel
	m.cwd, _ = os.Getwd()

	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)

	m.name = textinput.New()
	m.name.CharLimit = 80
	m.name.Width = 40
	m.name.Placeholder = m.strings().PropNameLabel

	m.ta = textarea.New()
	m.ta.Placeholder = "Paste WKT (POLYGON, MULTIPOLYGON, LINESTRING). Prefix SRID=3763; for PT-TM06 metres. Enter to measure; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)

	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	return m
}

// NewWithPath loads a file at launch.
func NewWithPath(opts Options, path string) Model {
	m := New(opts)
	m.loadPath(path)
	return m
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) strings() i18n.Strings { return i18n.For(m.lang) }

// setReport installs a fresh pipeline result and resets the viewport.
func (m *Model) setReport(rep *pipeline.Report, source string) {
	m.report = rep
	m.bbox = geom.BBoxOf(rep.Parcel.Shape)
	m.zoom = 1.0
	m.offsetX, m.offsetY = 0, 0
	m.inspectPopup = ""
	m.refreshMetrics()
	m.status = source + "  " + m.summary()
}

// relabel re-applies the language and property name to the current report.
func (m *Model) relabel() {
	m.name.Placeholder = m.strings().PropNameLabel
	if m.report == nil {
		return
	}
	s := m.strings()
	m.report.Lang = m.lang
	m.report.Strings = s
	m.report.PropertyName = s.PropertyName(m.name.Value())
	m.refreshMetrics()
}

func (m *Model) fail(err error) {
	m.status = pipeline.Notice(err)
}
