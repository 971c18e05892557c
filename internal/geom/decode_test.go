package geom

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestParseGeoJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		crs   string
		kinds []Kind
	}{
		{
			name:  "feature collection",
			input: `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1,2]}},{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[1,2],[3,4]]}}]}`,
			kinds: []Kind{KindPoint, KindLineString},
		},
		{
			name:  "feature with legacy crs",
			input: `{"type":"Feature","crs":{"type":"name","properties":{"name":"urn:ogc:def:crs:EPSG::3763"}},"properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}`,
			crs:   "urn:ogc:def:crs:EPSG::3763",
			kinds: []Kind{KindPolygon},
		},
		{
			name:  "bare geometry",
			input: `{"type":"MultiLineString","coordinates":[[[0,0],[1,0]],[[1,0],[1,1]]]}`,
			kinds: []Kind{KindMultiLineString},
		},
		{
			name:  "null geometry skipped",
			input: `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":null}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, err := ParseGeoJSON([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseGeoJSON: %v", err)
			}
			if fs.CRS != tt.crs {
				t.Errorf("CRS=%q; want %q", fs.CRS, tt.crs)
			}
			if len(fs.Features) != len(tt.kinds) {
				t.Fatalf("features=%d; want %d", len(fs.Features), len(tt.kinds))
			}
			for i, k := range tt.kinds {
				if got := fs.Features[i].Kind(); got != k {
					t.Errorf("feature %d kind=%s; want %s", i, got, k)
				}
			}
		})
	}
}

func TestParseGeoJSONErrors(t *testing.T) {
	for _, in := range []string{`{}`, `{"type":"Topology"}`, `not json`} {
		if _, err := ParseGeoJSON([]byte(in)); err == nil {
			t.Errorf("ParseGeoJSON(%q) succeeded; want error", in)
		}
	}
}

const layeredKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <name>farm</name>
    <Folder>
      <name>boundary</name>
      <Placemark>
        <name>plot</name>
        <Polygon>
          <outerBoundaryIs><LinearRing><coordinates>
            -8.10,39.60,0 -8.09,39.60,0 -8.09,39.61,0 -8.10,39.61,0 -8.10,39.60,0
          </coordinates></LinearRing></outerBoundaryIs>
          <innerBoundaryIs><LinearRing><coordinates>
            -8.098,39.602 -8.097,39.602 -8.097,39.603 -8.098,39.602
          </coordinates></LinearRing></innerBoundaryIs>
        </Polygon>
      </Placemark>
    </Folder>
    <Folder>
      <name>wells</name>
      <Placemark><name>w1</name><Point><coordinates>-8.095,39.605</coordinates></Point></Placemark>
    </Folder>
  </Document>
</kml>`

func TestParseKMLFirstLayer(t *testing.T) {
	fs, err := ParseKML([]byte(layeredKML))
	if err != nil {
		t.Fatalf("ParseKML: %v", err)
	}
	if fs.Layer != "boundary" {
		t.Fatalf("Layer=%q; want boundary", fs.Layer)
	}
	if len(fs.Features) != 1 {
		t.Fatalf("features=%d; want 1", len(fs.Features))
	}
	poly, ok := fs.Features[0].Geometry.(orb.Polygon)
	if !ok || len(poly) != 2 {
		t.Fatalf("geometry=%#v; want polygon with one hole", fs.Features[0].Geometry)
	}
	if poly[0][0] != (orb.Point{-8.10, 39.60}) {
		t.Fatalf("first vertex=%v", poly[0][0])
	}

	names, err := ListKMLLayers([]byte(layeredKML))
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "boundary" || names[1] != "wells" {
		t.Fatalf("layers=%v", names)
	}
}

func TestParseKMLNoLayers(t *testing.T) {
	in := `<kml xmlns="http://www.opengis.net/kml/2.2">
  <Placemark><LineString><coordinates>0,0 1,0 1,1</coordinates></LineString></Placemark>
</kml>`
	fs, err := ParseKML([]byte(in))
	if err != nil {
		t.Fatalf("ParseKML: %v", err)
	}
	if fs.Layer != "" || len(fs.Features) != 1 || fs.Features[0].Kind() != KindLineString {
		t.Fatalf("got layer=%q features=%+v", fs.Layer, fs.Features)
	}
}

func TestParseKMLMultiGeometry(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Kind
	}{
		{"lines", `<LineString><coordinates>0,0 1,0</coordinates></LineString><LineString><coordinates>1,0 1,1</coordinates></LineString>`, KindMultiLineString},
		{"points", `<Point><coordinates>0,0</coordinates></Point><Point><coordinates>1,1</coordinates></Point>`, KindMultiPoint},
		{"mixed", `<Point><coordinates>0,0</coordinates></Point><LineString><coordinates>0,0 1,1</coordinates></LineString>`, KindCollection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := `<kml><Document><Placemark><MultiGeometry>` + tt.body + `</MultiGeometry></Placemark></Document></kml>`
			fs, err := ParseKML([]byte(in))
			if err != nil {
				t.Fatalf("ParseKML: %v", err)
			}
			if len(fs.Features) != 1 {
				t.Fatalf("features=%d", len(fs.Features))
			}
			if got := fs.Features[0].Kind(); got != tt.want {
				t.Fatalf("kind=%s; want %s", got, tt.want)
			}
		})
	}
}

func TestParseWKT(t *testing.T) {
	fs, err := ParseWKT("POLYGON((0 0, 100 0, 100 100, 0 100, 0 0))")
	if err != nil {
		t.Fatalf("ParseWKT: %v", err)
	}
	if fs.CRS != "" || len(fs.Features) != 1 || fs.Features[0].Kind() != KindPolygon {
		t.Fatalf("got %+v", fs)
	}
	if _, err := ParseWKT("   "); err == nil {
		t.Fatal("empty WKT should fail")
	}
	if _, err := ParseWKT("CIRCLE(1 2)"); err == nil {
		t.Fatal("unknown WKT type should fail")
	}

	fs, err = ParseWKT("SRID=3763;LINESTRING(0 0, 10 0, 10 10)")
	if err != nil {
		t.Fatalf("ParseWKT ewkt: %v", err)
	}
	if fs.CRS != "EPSG:3763" || fs.Features[0].Kind() != KindLineString {
		t.Fatalf("ewkt got crs=%q kind=%v", fs.CRS, fs.Features[0].Kind())
	}
	if _, err := ParseWKT("SRID=abc;POINT(1 2)"); err == nil {
		t.Fatal("bad srid should fail")
	}
}

func TestBBoxOf(t *testing.T) {
	b := BBoxOf(orb.LineString{{1, 5}, {-2, 3}, {4, -1}})
	if b != (BBox{MinX: -2, MinY: -1, MaxX: 4, MaxY: 5}) {
		t.Fatalf("bbox=%+v", b)
	}
	if BBoxOf(nil) != (BBox{}) {
		t.Fatal("nil geometry should have zero bbox")
	}
}
