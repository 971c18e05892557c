package geom

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const squareGeoJSON = `{"type":"Feature","properties":{"name":"plot"},"geometry":{"type":"Polygon","coordinates":[[[-8.1,39.6],[-8.09,39.6],[-8.09,39.61],[-8.1,39.61],[-8.1,39.6]]]}}`

const trackGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk><name>walk</name>
    <trkseg>
      <trkpt lat="39.60" lon="-8.10"></trkpt>
      <trkpt lat="39.60" lon="-8.09"></trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="39.60" lon="-8.09"></trkpt>
      <trkpt lat="39.61" lon="-8.09"></trkpt>
    </trkseg>
  </trk>
</gpx>`

const waypointGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <wpt lat="39.60" lon="-8.10"><name>gate</name></wpt>
  <wpt lat="39.61" lon="-8.09"><name>well</name></wpt>
</gpx>`

func entries(t *testing.T, dir string) int {
	t.Helper()
	es, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	return len(es)
}

func TestLoaderRemovesTempFile(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		body    string
		wantErr bool
	}{
		{"geojson ok", "geojson", squareGeoJSON, false},
		{"gpx ok", ".gpx", trackGPX, false},
		{"geojson corrupt", "geojson", `{"type":`, true},
		{"kml corrupt", "kml", `<kml><Document>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			l := NewLoader(AllDrivers()).WithTempDir(dir)
			_, err := l.Load(strings.NewReader(tt.body), tt.ext)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load err=%v; wantErr=%v", err, tt.wantErr)
			}
			if n := entries(t, dir); n != 0 {
				t.Fatalf("%d files left in temp dir", n)
			}
		})
	}
}

func TestLoaderUnreadable(t *testing.T) {
	l := NewLoader(AllDrivers()).WithTempDir(t.TempDir())
	_, err := l.Load(strings.NewReader("definitely not xml"), "gpx")
	var ue *UnreadableFileError
	if !errors.As(err, &ue) {
		t.Fatalf("err=%v; want UnreadableFileError", err)
	}
	if ue.Format != FormatGPX {
		t.Fatalf("Format=%q; want gpx", ue.Format)
	}
	if ue.Unwrap() == nil {
		t.Fatal("UnreadableFileError should wrap the decoder error")
	}
}

func TestLoaderDrivers(t *testing.T) {
	l := NewLoader(ParseDrivers("gpx,kml"))
	tests := []struct {
		ext string
		ok  bool
	}{
		{"gpx", true},
		{".KML", true},
		{"geojson", false},
		{"shp", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			_, err := l.Drivers().FormatFor(tt.ext)
			if tt.ok && err != nil {
				t.Fatalf("FormatFor(%q): %v", tt.ext, err)
			}
			if !tt.ok {
				var fe *UnsupportedFormatError
				if !errors.As(err, &fe) {
					t.Fatalf("FormatFor(%q) err=%v; want UnsupportedFormatError", tt.ext, err)
				}
			}
		})
	}
	if got := l.Drivers().String(); got != "gpx,kml" {
		t.Fatalf("String()=%q", got)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plot.json")
	if err := os.WriteFile(path, []byte(squareGeoJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	fs, err := NewLoader(AllDrivers()).LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if fs.Format != FormatGeoJSON || len(fs.Features) != 1 {
		t.Fatalf("got format=%q features=%d", fs.Format, len(fs.Features))
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("LoadFile must not remove the caller's file: %v", err)
	}
}

func TestGPXTracks(t *testing.T) {
	fs, err := ParseGPX([]byte(trackGPX))
	if err != nil {
		t.Fatalf("ParseGPX: %v", err)
	}
	if fs.Layer != LayerTracks || fs.Outcome != OutcomeClean {
		t.Fatalf("layer=%q outcome=%s", fs.Layer, fs.Outcome)
	}
	if len(fs.Features) != 1 || fs.Features[0].Kind() != KindMultiLineString {
		t.Fatalf("features=%+v; want one MultiLineString", fs.Features)
	}
	if fs.CRS != "EPSG:4326" {
		t.Fatalf("CRS=%q", fs.CRS)
	}
}

func TestGPXFallbackToPoints(t *testing.T) {
	fs, err := ParseGPX([]byte(waypointGPX))
	if err != nil {
		t.Fatalf("ParseGPX: %v", err)
	}
	if fs.Layer != LayerTrackPoints || fs.Outcome != OutcomeFallback {
		t.Fatalf("layer=%q outcome=%s; want track_points fallback", fs.Layer, fs.Outcome)
	}
	pts, lines, polys := fs.Counts()
	if pts != 2 || lines != 0 || polys != 0 {
		t.Fatalf("counts=%d/%d/%d", pts, lines, polys)
	}
}
