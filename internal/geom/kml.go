package geom

import (
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlBoundary struct {
	LinearRing kmlCoords `xml:"LinearRing"`
}

type kmlPolygon struct {
	Outer kmlBoundary   `xml:"outerBoundaryIs"`
	Inner []kmlBoundary `xml:"innerBoundaryIs"`
}

type kmlMulti struct {
	Points   []kmlCoords  `xml:"Point"`
	Lines    []kmlCoords  `xml:"LineString"`
	Rings    []kmlCoords  `xml:"LinearRing"`
	Polygons []kmlPolygon `xml:"Polygon"`
	Multi    []kmlMulti   `xml:"MultiGeometry"`
}

type kmlPlacemark struct {
	Name          string      `xml:"name"`
	Description   string      `xml:"description"`
	Point         *kmlCoords  `xml:"Point"`
	LineString    *kmlCoords  `xml:"LineString"`
	LinearRing    *kmlCoords  `xml:"LinearRing"`
	Polygon       *kmlPolygon `xml:"Polygon"`
	MultiGeometry *kmlMulti   `xml:"MultiGeometry"`
}

type kmlContainer struct {
	Name       string         `xml:"name"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
	Folders    []kmlContainer `xml:"Folder"`
	Documents  []kmlContainer `xml:"Document"`
}

// KMLLayer is one readable layer of a KML document.
type KMLLayer struct {
	Name       string
	placemarks []kmlPlacemark
}

// LoadKML reads the first layer of a KML file. Layers are the Folders (and the
// Document itself when it holds placemarks directly), in document order. When
// there are no layers every top-level placemark is read.
func LoadKML(path string) (FeatureSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return FeatureSet{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return FeatureSet{}, err
	}
	return ParseKML(data)
}

// ParseKML decodes KML bytes.
func ParseKML(data []byte) (FeatureSet, error) {
	var doc kmlContainer
	if err := xml.Unmarshal(data, &doc); err != nil {
		return FeatureSet{}, err
	}
	fs := FeatureSet{Format: FormatKML, CRS: "EPSG:4326"}
	placemarks := doc.Placemarks
	if layers := kmlLayers(doc); len(layers) > 0 {
		fs.Layer = layers[0].Name
		placemarks = layers[0].placemarks
	}
	for _, pm := range placemarks {
		g := pm.geometry()
		if g == nil {
			continue
		}
		props := map[string]any{"name": pm.Name}
		if pm.Description != "" {
			props["description"] = pm.Description
		}
		fs.Features = append(fs.Features, Feature{Geometry: g, Properties: props})
	}
	return fs, nil
}

// ListKMLLayers returns the layer names of a KML document.
func ListKMLLayers(data []byte) ([]string, error) {
	var doc kmlContainer
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	var names []string
	for _, l := range kmlLayers(doc) {
		names = append(names, l.Name)
	}
	return names, nil
}

func kmlLayers(root kmlContainer) []KMLLayer {
	var out []KMLLayer
	var walk func(c kmlContainer)
	walk = func(c kmlContainer) {
		if len(c.Placemarks) > 0 {
			name := c.Name
			if name == "" {
				name = "Layer #" + strconv.Itoa(len(out))
			}
			out = append(out, KMLLayer{Name: name, placemarks: c.Placemarks})
		}
		for _, d := range c.Documents {
			walk(d)
		}
		for _, f := range c.Folders {
			walk(f)
		}
	}
	// the root <kml> element itself is not a layer
	for _, d := range root.Documents {
		walk(d)
	}
	for _, f := range root.Folders {
		walk(f)
	}
	return out
}

func (pm kmlPlacemark) geometry() orb.Geometry {
	switch {
	case pm.Point != nil:
		if pts := parseKMLCoords(pm.Point.Coordinates); len(pts) > 0 {
			return pts[0]
		}
	case pm.LineString != nil:
		if ls := orb.LineString(parseKMLCoords(pm.LineString.Coordinates)); len(ls) > 0 {
			return ls
		}
	case pm.LinearRing != nil:
		if ls := orb.LineString(parseKMLCoords(pm.LinearRing.Coordinates)); len(ls) > 0 {
			return ls
		}
	case pm.Polygon != nil:
		if p := pm.Polygon.polygon(); len(p) > 0 {
			return p
		}
	case pm.MultiGeometry != nil:
		return pm.MultiGeometry.geometry()
	}
	return nil
}

func (p kmlPolygon) polygon() orb.Polygon {
	outer := orb.Ring(parseKMLCoords(p.Outer.LinearRing.Coordinates))
	if len(outer) == 0 {
		return nil
	}
	poly := orb.Polygon{outer}
	for _, in := range p.Inner {
		if r := orb.Ring(parseKMLCoords(in.LinearRing.Coordinates)); len(r) > 0 {
			poly = append(poly, r)
		}
	}
	return poly
}

// geometry flattens a MultiGeometry. Homogeneous content becomes the matching
// Multi* type; anything mixed becomes a Collection.
func (m kmlMulti) geometry() orb.Geometry {
	var parts []orb.Geometry
	m.collect(&parts)
	if len(parts) == 0 {
		return nil
	}
	var (
		mp  orb.MultiPoint
		mls orb.MultiLineString
		mpg orb.MultiPolygon
	)
	for _, g := range parts {
		switch v := g.(type) {
		case orb.Point:
			mp = append(mp, v)
		case orb.LineString:
			mls = append(mls, v)
		case orb.Polygon:
			mpg = append(mpg, v)
		}
	}
	switch len(parts) {
	case len(mp):
		return mp
	case len(mls):
		return mls
	case len(mpg):
		return mpg
	}
	return orb.Collection(parts)
}

func (m kmlMulti) collect(out *[]orb.Geometry) {
	for _, p := range m.Points {
		if pts := parseKMLCoords(p.Coordinates); len(pts) > 0 {
			*out = append(*out, pts[0])
		}
	}
	for _, l := range m.Lines {
		if ls := orb.LineString(parseKMLCoords(l.Coordinates)); len(ls) > 0 {
			*out = append(*out, ls)
		}
	}
	for _, r := range m.Rings {
		if ls := orb.LineString(parseKMLCoords(r.Coordinates)); len(ls) > 0 {
			*out = append(*out, ls)
		}
	}
	for _, pg := range m.Polygons {
		if p := pg.polygon(); len(p) > 0 {
			*out = append(*out, p)
		}
	}
	for _, sub := range m.Multi {
		sub.collect(out)
	}
}

// parseKMLCoords parses "lon,lat[,alt] lon,lat[,alt] ..."; altitude is ignored
// and malformed tuples are skipped.
func parseKMLCoords(s string) []orb.Point {
	var pts []orb.Point
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		pts = append(pts, orb.Point{lon, lat})
	}
	return pts
}
