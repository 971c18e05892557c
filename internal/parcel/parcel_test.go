package parcel

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"

	"propmap/internal/crs"
	"propmap/internal/geom"
)

func square(x, y, side float64) orb.LineString {
	return orb.LineString{{x, y}, {x + side, y}, {x + side, y + side}, {x, y + side}}
}

func set(crsName string, gs ...orb.Geometry) geom.FeatureSet {
	fs := geom.FeatureSet{CRS: crsName}
	for _, g := range gs {
		fs.Features = append(fs.Features, geom.Feature{Geometry: g})
	}
	return fs
}

func TestNormalizeClosesOpenLine(t *testing.T) {
	p, err := Normalize(set("EPSG:3763", square(0, 0, 100)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(p.Shape) != 1 || len(p.Shape[0]) != 1 {
		t.Fatalf("shape=%v; want one single-ring polygon", p.Shape)
	}
	ring := p.Shape[0][0]
	if len(ring) != 5 {
		t.Fatalf("ring has %d positions; want 5", len(ring))
	}
	if !ring[0].Equal(ring[len(ring)-1]) {
		t.Fatalf("ring not closed: %v", ring)
	}
}

func TestNormalizeKeepsClosedLine(t *testing.T) {
	ls := append(square(0, 0, 10), orb.Point{0, 0})
	p, err := Normalize(set("EPSG:3763", ls))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if n := len(p.Shape[0][0]); n != 5 {
		t.Fatalf("ring has %d positions; want 5 (no duplicate closing vertex)", n)
	}
}

func TestNormalizeNoSupportedGeometry(t *testing.T) {
	tests := []struct {
		name string
		fs   geom.FeatureSet
	}{
		{"empty", geom.FeatureSet{}},
		{"points only", set("", orb.Point{1, 2}, orb.MultiPoint{{1, 2}, {3, 4}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.fs)
			var ge *InvalidGeometryError
			if !errors.As(err, &ge) {
				t.Fatalf("err=%v; want InvalidGeometryError", err)
			}
		})
	}
}

func TestNormalizeUsesFirstSupportedFeature(t *testing.T) {
	fs := set("EPSG:3763", orb.Point{5, 5}, square(0, 0, 10), square(0, 0, 1000))
	p, err := Normalize(fs)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if m := Measure(p); math.Abs(m.AreaM2-100) > 1e-9 {
		t.Fatalf("area=%v; want 100 from the first line", m.AreaM2)
	}
}

func TestNormalizeOutputCRS(t *testing.T) {
	poly := orb.Polygon{{{-8.1, 39.6}, {-8.09, 39.6}, {-8.09, 39.61}, {-8.1, 39.61}, {-8.1, 39.6}}}
	for _, src := range []string{"EPSG:4326", "", "urn:ogc:def:crs:OGC:1.3:CRS84"} {
		p, err := Normalize(set(src, poly))
		if err != nil {
			t.Fatalf("Normalize(%q): %v", src, err)
		}
		if p.CRS != "EPSG:3763" {
			t.Fatalf("CRS=%q; want EPSG:3763", p.CRS)
		}
		if p.CRSDefaulted != (src == "") {
			t.Fatalf("CRSDefaulted=%v for source %q", p.CRSDefaulted, src)
		}
		// projected coordinates are metres near the TM06 origin
		if b := p.Bound(); math.Abs(b.Min[0]) > 50000 || math.Abs(b.Min[1]) > 50000 {
			t.Fatalf("bound %v does not look like PT-TM06 metres", b)
		}
	}
}

func TestNormalizeUnsupportedCRS(t *testing.T) {
	_, err := Normalize(set("EPSG:27700", square(0, 0, 10)))
	var ce *crs.UnsupportedCRSError
	if !errors.As(err, &ce) {
		t.Fatalf("err=%v; want UnsupportedCRSError", err)
	}
}

func TestNormalizeMergesTrackSegments(t *testing.T) {
	mls := orb.MultiLineString{
		{{0, 0}, {100, 0}, {100, 100}},
		{{100, 100}, {0, 100}},
	}
	p, err := Normalize(set("EPSG:3763", mls))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	m := Measure(p)
	if math.Abs(m.AreaM2-10000) > 1e-9 || math.Abs(m.PerimeterM-400) > 1e-9 {
		t.Fatalf("metrics=%+v; want 10000 m2 / 400 m", m)
	}
}

func TestNormalizeDisjointSegments(t *testing.T) {
	mls := orb.MultiLineString{
		{{0, 0}, {10, 0}, {10, 10}},
		{{50, 50}, {60, 50}, {60, 60}},
	}
	_, err := Normalize(set("EPSG:3763", mls))
	var ge *InvalidGeometryError
	if !errors.As(err, &ge) {
		t.Fatalf("err=%v; want InvalidGeometryError", err)
	}
}

func TestNormalizeDegenerateRing(t *testing.T) {
	_, err := Normalize(set("EPSG:3763", orb.LineString{{0, 0}, {10, 0}}))
	var ge *InvalidGeometryError
	if !errors.As(err, &ge) {
		t.Fatalf("err=%v; want InvalidGeometryError", err)
	}
}

func TestLineMerge(t *testing.T) {
	tests := []struct {
		name   string
		input  orb.MultiLineString
		groups int
		first  orb.LineString
	}{
		{
			name:   "tail to head",
			input:  orb.MultiLineString{{{0, 0}, {1, 0}}, {{1, 0}, {1, 1}}},
			groups: 1,
			first:  orb.LineString{{0, 0}, {1, 0}, {1, 1}},
		},
		{
			name:   "tail to tail",
			input:  orb.MultiLineString{{{0, 0}, {1, 0}}, {{1, 1}, {1, 0}}},
			groups: 1,
			first:  orb.LineString{{0, 0}, {1, 0}, {1, 1}},
		},
		{
			name:   "head to tail",
			input:  orb.MultiLineString{{{1, 0}, {1, 1}}, {{0, 0}, {1, 0}}},
			groups: 1,
			first:  orb.LineString{{0, 0}, {1, 0}, {1, 1}},
		},
		{
			name:   "out of order chain",
			input:  orb.MultiLineString{{{0, 0}, {1, 0}}, {{2, 0}, {3, 0}}, {{1, 0}, {2, 0}}},
			groups: 1,
			first:  orb.LineString{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		},
		{
			name:   "disjoint",
			input:  orb.MultiLineString{{{0, 0}, {1, 0}}, {{5, 5}, {6, 6}}},
			groups: 2,
			first:  orb.LineString{{0, 0}, {1, 0}},
		},
		{
			name:   "empty parts dropped",
			input:  orb.MultiLineString{{}, {{0, 0}, {1, 0}}},
			groups: 1,
			first:  orb.LineString{{0, 0}, {1, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineMerge(tt.input)
			if len(got) != tt.groups {
				t.Fatalf("groups=%d; want %d (%v)", len(got), tt.groups, got)
			}
			if !got[0].Equal(tt.first) {
				t.Fatalf("first=%v; want %v", got[0], tt.first)
			}
		})
	}
}

func TestMeasure(t *testing.T) {
	outer := orb.Ring{{0, 0}, {200, 0}, {200, 100}, {0, 100}, {0, 0}}
	hole := orb.Ring{{10, 10}, {10, 20}, {20, 20}, {20, 10}, {10, 10}}
	tests := []struct {
		name      string
		shape     orb.MultiPolygon
		area      float64
		perimeter float64
	}{
		{"rectangle", orb.MultiPolygon{{outer}}, 20000, 600},
		{"with hole", orb.MultiPolygon{{outer, hole}}, 19900, 640},
		{"two parts", orb.MultiPolygon{{outer}, {hole}}, 20100, 640},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Measure(Parcel{Shape: tt.shape})
			if math.Abs(m.AreaM2-tt.area) > 1e-9 {
				t.Errorf("area=%v; want %v", m.AreaM2, tt.area)
			}
			if math.Abs(m.PerimeterM-tt.perimeter) > 1e-9 {
				t.Errorf("perimeter=%v; want %v", m.PerimeterM, tt.perimeter)
			}
			if math.Abs(m.AreaHa-m.AreaM2/10000) > 1e-12 {
				t.Errorf("ha=%v; want %v", m.AreaHa, m.AreaM2/10000)
			}
		})
	}
}
