// Package crs resolves coordinate reference system names and reprojects
// geometries into ETRS89 / Portugal TM06 (EPSG:3763).
package crs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	WGS84       = 4326
	WebMercator = 3857
	PTTM06      = 3763
	ETRS89      = 4258
	ETRS89Geo3D = 4937
)

// UTM north zone codes: 326zz on WGS84, 258zz on ETRS89.
const (
	utmWGS84Base  = 32600
	utmETRS89Base = 25800
)

// UnsupportedCRSError is returned for a source CRS that cannot be reprojected
// into PT-TM06.
type UnsupportedCRSError struct {
	Name string
}

func (e *UnsupportedCRSError) Error() string {
	return fmt.Sprintf("unsupported coordinate reference system %q", e.Name)
}

// Name formats an EPSG code as "EPSG:n".
func Name(code int) string {
	return "EPSG:" + strconv.Itoa(code)
}

// Parse resolves a CRS name to an EPSG code. It understands "EPSG:n", a bare
// "n", OGC URNs ("urn:ogc:def:crs:EPSG::n", "urn:ogc:def:crs:OGC:1.3:CRS84")
// and "CRS84", which maps to 4326.
func Parse(name string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	if s == "" {
		return 0, &UnsupportedCRSError{Name: name}
	}
	if strings.HasSuffix(s, "CRS84") {
		return WGS84, nil
	}
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	code, err := strconv.Atoi(s)
	if err != nil || code <= 0 {
		return 0, &UnsupportedCRSError{Name: name}
	}
	return code, nil
}

// ToPTTM06 returns the projection that maps coordinates in the given EPSG code
// to PT-TM06 metres.
func ToPTTM06(code int) (orb.Projection, error) {
	switch code {
	case WGS84, ETRS89, ETRS89Geo3D:
		return PortugalTM06.Forward, nil
	case WebMercator:
		return func(p orb.Point) orb.Point {
			return PortugalTM06.Forward(project.Mercator.ToWGS84(p))
		}, nil
	case PTTM06:
		return func(p orb.Point) orb.Point { return p }, nil
	}
	if utm := utmNorth(code); utm != nil {
		return func(p orb.Point) orb.Point {
			return PortugalTM06.Forward(utm.Inverse(p))
		}, nil
	}
	return nil, &UnsupportedCRSError{Name: Name(code)}
}

// utmNorth returns the UTM projection for a northern zone code, or nil.
func utmNorth(code int) *TransverseMercator {
	var a, f float64
	zone := 0
	switch {
	case code > utmWGS84Base && code <= utmWGS84Base+60:
		zone, a, f = code-utmWGS84Base, 6378137, 1/298.257223563
	case code > utmETRS89Base+27 && code <= utmETRS89Base+38:
		zone, a, f = code-utmETRS89Base, 6378137, 1/298.257222101
	default:
		return nil
	}
	return NewTransverseMercator(a, f, 0, float64(6*zone-183), 0.9996, 500000, 0)
}

// Reproject converts g from the named source CRS into PT-TM06. The input is
// left untouched.
func Reproject(g orb.Geometry, source string) (orb.Geometry, error) {
	code, err := Parse(source)
	if err != nil {
		return nil, err
	}
	proj, err := ToPTTM06(code)
	if err != nil {
		return nil, err
	}
	return project.Geometry(orb.Clone(g), proj), nil
}

// ToWGS84 converts a PT-TM06 geometry back to lon/lat. The input is left
// untouched.
func ToWGS84(g orb.Geometry) orb.Geometry {
	return project.Geometry(orb.Clone(g), PortugalTM06.Inverse)
}
