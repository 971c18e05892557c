// Package parcel turns a decoded feature set into a single closed polygon in
// PT-TM06 and measures it.
package parcel

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"propmap/internal/crs"
	"propmap/internal/geom"
)

// DefaultSourceCRS is assumed for uploads that do not declare a CRS.
const DefaultSourceCRS = "EPSG:4326"

// InvalidGeometryError means no usable polygon could be built from an upload.
type InvalidGeometryError struct {
	Reason string
}

func (e *InvalidGeometryError) Error() string {
	return "invalid geometry: " + e.Reason
}

// Parcel is the normalized property boundary. Shape is always in EPSG:3763
// and every ring in it is closed.
type Parcel struct {
	Shape        orb.MultiPolygon
	CRS          string
	SourceCRS    string
	CRSDefaulted bool
	SourceKind   geom.Kind
}

func (p Parcel) Bound() orb.Bound { return p.Shape.Bound() }

// Metrics are derived from a Parcel and never rounded.
type Metrics struct {
	AreaM2     float64
	AreaHa     float64
	PerimeterM float64
}

func supported(k geom.Kind) bool {
	switch k {
	case geom.KindLineString, geom.KindMultiLineString, geom.KindPolygon, geom.KindMultiPolygon:
		return true
	}
	return false
}

// Normalize keeps the first line or polygon feature of fs, merges and closes
// it into a polygon and reprojects it into PT-TM06. Remaining features are
// ignored.
func Normalize(fs geom.FeatureSet) (Parcel, error) {
	var first *geom.Feature
	for i := range fs.Features {
		if supported(fs.Features[i].Kind()) {
			first = &fs.Features[i]
			break
		}
	}
	if first == nil {
		return Parcel{}, &InvalidGeometryError{Reason: "no line or polygon geometry found"}
	}

	shape, err := toMultiPolygon(first.Geometry)
	if err != nil {
		return Parcel{}, err
	}

	p := Parcel{CRS: crs.Name(crs.PTTM06), SourceCRS: fs.CRS, SourceKind: first.Kind()}
	if p.SourceCRS == "" {
		p.SourceCRS = DefaultSourceCRS
		p.CRSDefaulted = true
	}
	projected, err := crs.Reproject(shape, p.SourceCRS)
	if err != nil {
		return Parcel{}, fmt.Errorf("reproject from %s: %w", p.SourceCRS, err)
	}
	p.Shape = projected.(orb.MultiPolygon)
	return p, nil
}

func toMultiPolygon(g orb.Geometry) (orb.MultiPolygon, error) {
	switch v := g.(type) {
	case orb.MultiLineString:
		merged := LineMerge(v)
		switch len(merged) {
		case 0:
			return nil, &InvalidGeometryError{Reason: "empty track"}
		case 1:
			return ringFromLine(merged[0])
		}
		return nil, &InvalidGeometryError{Reason: fmt.Sprintf("disjoint track segments (%d groups)", len(merged))}
	case orb.LineString:
		return ringFromLine(v)
	case orb.Ring:
		return ringFromLine(orb.LineString(v))
	case orb.Polygon:
		poly, err := closePolygon(v)
		if err != nil {
			return nil, err
		}
		return orb.MultiPolygon{poly}, nil
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, 0, len(v))
		for _, p := range v {
			poly, err := closePolygon(p)
			if err != nil {
				return nil, err
			}
			out = append(out, poly)
		}
		if len(out) == 0 {
			return nil, &InvalidGeometryError{Reason: "empty multipolygon"}
		}
		return out, nil
	}
	return nil, &InvalidGeometryError{Reason: fmt.Sprintf("unsupported geometry %s", geom.KindOf(g))}
}

func ringFromLine(ls orb.LineString) (orb.MultiPolygon, error) {
	r, err := CloseRing(ls)
	if err != nil {
		return nil, err
	}
	return orb.MultiPolygon{orb.Polygon{r}}, nil
}

func closePolygon(p orb.Polygon) (orb.Polygon, error) {
	if len(p) == 0 {
		return nil, &InvalidGeometryError{Reason: "empty polygon"}
	}
	out := make(orb.Polygon, 0, len(p))
	for _, r := range p {
		closed, err := CloseRing(orb.LineString(r))
		if err != nil {
			return nil, err
		}
		out = append(out, closed)
	}
	return out, nil
}

// CloseRing returns ls as a ring, appending its first vertex when the last
// one differs. A ring needs at least four positions once closed.
func CloseRing(ls orb.LineString) (orb.Ring, error) {
	r := make(orb.Ring, len(ls), len(ls)+1)
	copy(r, ls)
	if len(r) > 0 && !r[0].Equal(r[len(r)-1]) {
		r = append(r, r[0])
	}
	if len(r) < 4 {
		return nil, &InvalidGeometryError{Reason: fmt.Sprintf("degenerate ring with %d positions", len(r))}
	}
	return r, nil
}

// Measure computes planar area and boundary length of p. Holes are subtracted
// from the area and included in the perimeter.
func Measure(p Parcel) Metrics {
	area := planar.Area(p.Shape)
	return Metrics{
		AreaM2:     area,
		AreaHa:     area / 10000,
		PerimeterM: planar.Length(p.Shape),
	}
}
