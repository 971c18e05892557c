package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"propmap/internal/geom"
	"propmap/internal/pipeline"
	"propmap/internal/render"
)

type fileItem struct {
	title, desc string
	path        string
	isDir       bool
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

// refreshDir lists sub-directories and the files an enabled driver accepts.
func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	accept := map[string]bool{}
	if m.pipe != nil {
		for _, ext := range m.pipe.Drivers().Extensions() {
			accept[ext] = true
		}
	}

	var dirs, files []list.Item
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		p := filepath.Join(m.cwd, name)
		if e.IsDir() {
			dirs = append(dirs, fileItem{title: name + "/", desc: "dir", path: p, isDir: true})
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if accept[ext] {
			files = append(files, fileItem{title: name, desc: ext, path: p})
		}
	}
	byTitle := func(items []list.Item) {
		sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).title < items[j].(fileItem).title })
	}
	byTitle(dirs)
	byTitle(files)

	items := []list.Item{fileItem{title: "../", desc: "dir", path: filepath.Dir(m.cwd), isDir: true}}
	items = append(items, dirs...)
	items = append(items, files...)
	m.l.SetItems(items)
	m.l.Title = filepath.Base(m.cwd)
	if len(files) == 0 {
		m.status = "no supported files in " + m.cwd
	}
}

// open enters a directory or loads a file picked in the sidebar.
func (m *Model) open(it fileItem) {
	if it.isDir {
		m.cwd = it.path
		m.refreshDir()
		m.l.ResetSelected()
		return
	}
	m.loadPath(it.path)
}

// loadPath runs the pipeline on a file from disk.
func (m *Model) loadPath(p string) {
	m.selPath = p
	m.status = m.strings().Processing
	rep, err := m.pipe.RunFile(context.Background(), pipeline.Request{Name: m.name.Value(), Lang: m.lang}, p)
	if err != nil {
		m.fail(err)
		return
	}
	m.setReport(rep, filepath.Base(p))
}

// applyWKT measures pasted WKT.
func (m *Model) applyWKT(s string) {
	fs, err := geom.ParseWKT(s)
	if err != nil {
		m.fail(&geom.UnreadableFileError{Format: geom.FormatWKT, Err: err})
		return
	}
	rep, err := m.pipe.RunFeatures(context.Background(), pipeline.Request{Name: m.name.Value(), Lang: m.lang}, fs)
	if err != nil {
		m.fail(err)
		return
	}
	m.selPath = ""
	m.setReport(rep, "WKT")
}

type exportedMsg struct {
	variant render.Variant
	path    string
	err     error
}

// exportCmd renders and writes one artifact off the UI goroutine.
func (m Model) exportCmd(v render.Variant) tea.Cmd {
	if m.report == nil {
		return nil
	}
	rep := *m.report
	pipe, dir := m.pipe, m.outDir
	return func() tea.Msg {
		art, err := pipe.Export(context.Background(), &rep, v)
		if err != nil {
			return exportedMsg{variant: v, err: err}
		}
		path := filepath.Join(dir, art.Name)
		if err := os.WriteFile(path, art.Data, 0o644); err != nil {
			return exportedMsg{variant: v, err: fmt.Errorf("write %s: %w", art.Name, err)}
		}
		return exportedMsg{variant: v, path: path}
	}
}
