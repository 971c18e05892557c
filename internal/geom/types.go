package geom

import (
	"github.com/paulmach/orb"
)

type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// BBoxOf returns the bounding box of g, or the zero BBox for nil/empty geometry.
func BBoxOf(g orb.Geometry) BBox {
	if g == nil {
		return BBox{}
	}
	b := g.Bound()
	return BBox{MinX: b.Min[0], MinY: b.Min[1], MaxX: b.Max[0], MaxY: b.Max[1]}
}

// Kind is the geometry kind of a decoded feature.
type Kind int

const (
	KindUnknown Kind = iota
	KindPoint
	KindMultiPoint
	KindLineString
	KindMultiLineString
	KindPolygon
	KindMultiPolygon
	KindCollection
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindMultiPoint:
		return "MultiPoint"
	case KindLineString:
		return "LineString"
	case KindMultiLineString:
		return "MultiLineString"
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	case KindCollection:
		return "GeometryCollection"
	}
	return "Unknown"
}

// KindOf maps an orb geometry to its Kind. A closed orb.Ring is reported as a
// LineString, matching how KML LinearRings are treated outside a Polygon.
func KindOf(g orb.Geometry) Kind {
	switch g.(type) {
	case orb.Point:
		return KindPoint
	case orb.MultiPoint:
		return KindMultiPoint
	case orb.LineString, orb.Ring:
		return KindLineString
	case orb.MultiLineString:
		return KindMultiLineString
	case orb.Polygon:
		return KindPolygon
	case orb.MultiPolygon:
		return KindMultiPolygon
	case orb.Collection:
		return KindCollection
	}
	return KindUnknown
}

// Feature is a single decoded geometry with its source attributes.
type Feature struct {
	Geometry   orb.Geometry
	Properties map[string]any
}

func (f Feature) Kind() Kind { return KindOf(f.Geometry) }

// Outcome tells whether a load used the preferred layer or a degraded one.
type Outcome int

const (
	OutcomeClean Outcome = iota
	OutcomeFallback
)

func (o Outcome) String() string {
	if o == OutcomeFallback {
		return "fallback"
	}
	return "clean"
}

// FeatureSet is everything read from one upload. CRS is empty when the source
// did not declare one.
type FeatureSet struct {
	Format   Format
	Layer    string
	CRS      string
	Outcome  Outcome
	Features []Feature
}

// Counts returns point, line and polygon feature counts for status lines.
func (fs FeatureSet) Counts() (pts, lines, polys int) {
	for _, f := range fs.Features {
		switch f.Kind() {
		case KindPoint, KindMultiPoint:
			pts++
		case KindLineString, KindMultiLineString:
			lines++
		case KindPolygon, KindMultiPolygon:
			polys++
		}
	}
	return pts, lines, polys
}
