package geom

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is a declared upload format.
type Format string

const (
	FormatGeoJSON Format = "geojson"
	FormatGPX     Format = "gpx"
	FormatKML     Format = "kml"
	FormatWKT     Format = "wkt"
)

// Drivers lists which format decoders a Loader may use.
type Drivers struct {
	GeoJSON bool
	GPX     bool
	KML     bool
	WKT     bool
}

// AllDrivers enables every decoder.
func AllDrivers() Drivers {
	return Drivers{GeoJSON: true, GPX: true, KML: true, WKT: true}
}

// ParseDrivers reads a comma-separated list such as "gpx,kml,geojson".
// Unknown names are ignored.
func ParseDrivers(s string) Drivers {
	var d Drivers
	for _, p := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "geojson", "json":
			d.GeoJSON = true
		case "gpx":
			d.GPX = true
		case "kml":
			d.KML = true
		case "wkt":
			d.WKT = true
		}
	}
	return d
}

func (d Drivers) String() string {
	var out []string
	if d.GeoJSON {
		out = append(out, "geojson")
	}
	if d.GPX {
		out = append(out, "gpx")
	}
	if d.KML {
		out = append(out, "kml")
	}
	if d.WKT {
		out = append(out, "wkt")
	}
	return strings.Join(out, ",")
}

// Extensions returns the lower-case file extensions (with dot) the drivers accept.
func (d Drivers) Extensions() []string {
	var out []string
	if d.GeoJSON {
		out = append(out, ".geojson", ".json")
	}
	if d.GPX {
		out = append(out, ".gpx")
	}
	if d.KML {
		out = append(out, ".kml")
	}
	if d.WKT {
		out = append(out, ".wkt")
	}
	return out
}

// FormatFor resolves an extension ("kml", ".KML") to an enabled format.
func (d Drivers) FormatFor(ext string) (Format, error) {
	e := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	switch {
	case (e == "geojson" || e == "json") && d.GeoJSON:
		return FormatGeoJSON, nil
	case e == "gpx" && d.GPX:
		return FormatGPX, nil
	case e == "kml" && d.KML:
		return FormatKML, nil
	case e == "wkt" && d.WKT:
		return FormatWKT, nil
	}
	return "", &UnsupportedFormatError{Ext: e}
}

// Loader decodes uploads into feature sets.
type Loader struct {
	drivers Drivers
	tempDir string
}

func NewLoader(d Drivers) *Loader {
	return &Loader{drivers: d}
}

// WithTempDir sets the directory used for scoped upload files ("" = os.TempDir).
func (l *Loader) WithTempDir(dir string) *Loader {
	l.tempDir = dir
	return l
}

func (l *Loader) Drivers() Drivers { return l.drivers }

// Load spools r to a temporary file carrying the declared extension and decodes
// it. The temporary file is removed before Load returns, on success or failure.
func (l *Loader) Load(r io.Reader, ext string) (FeatureSet, error) {
	format, err := l.drivers.FormatFor(ext)
	if err != nil {
		return FeatureSet{}, err
	}
	tmp, err := os.CreateTemp(l.tempDir, "propmap-*."+string(format))
	if err != nil {
		return FeatureSet{}, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return FeatureSet{}, fmt.Errorf("spool upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return FeatureSet{}, fmt.Errorf("spool upload: %w", err)
	}
	return l.decode(path, format)
}

// LoadFile decodes a file already on disk, picking the format from its extension.
func (l *Loader) LoadFile(path string) (FeatureSet, error) {
	format, err := l.drivers.FormatFor(filepath.Ext(path))
	if err != nil {
		return FeatureSet{}, err
	}
	return l.decode(path, format)
}

func (l *Loader) decode(path string, format Format) (FeatureSet, error) {
	var (
		fs  FeatureSet
		err error
	)
	switch format {
	case FormatGeoJSON:
		fs, err = LoadGeoJSON(path)
	case FormatGPX:
		fs, err = LoadGPX(path)
	case FormatKML:
		fs, err = LoadKML(path)
	case FormatWKT:
		fs, err = LoadWKT(path)
	default:
		return FeatureSet{}, &UnsupportedFormatError{Ext: string(format)}
	}
	if err != nil {
		return FeatureSet{}, &UnreadableFileError{Format: format, Err: err}
	}
	fs.Format = format
	return fs, nil
}
