package geom

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"
)

// LoadWKT reads a file holding a single WKT geometry.
func LoadWKT(path string) (FeatureSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return FeatureSet{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return FeatureSet{}, err
	}
	return ParseWKT(string(data))
}

// ParseWKT decodes one WKT geometry (POINT, LINESTRING, POLYGON, their MULTI
// forms or GEOMETRYCOLLECTION). Plain WKT carries no CRS, so CRS is left
// empty; an EWKT "SRID=n;" prefix sets it to "EPSG:n".
func ParseWKT(s string) (FeatureSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FeatureSet{}, errors.New("empty wkt")
	}
	var crsName string
	if head, rest, ok := strings.Cut(s, ";"); ok && strings.HasPrefix(strings.ToUpper(head), "SRID=") {
		srid, err := strconv.Atoi(strings.TrimSpace(head[len("SRID="):]))
		if err != nil || srid <= 0 {
			return FeatureSet{}, fmt.Errorf("bad srid %q", head)
		}
		crsName = "EPSG:" + strconv.Itoa(srid)
		s = strings.TrimSpace(rest)
	}
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return FeatureSet{}, err
	}
	return FeatureSet{
		Format:   FormatWKT,
		CRS:      crsName,
		Features: []Feature{{Geometry: g}},
	}, nil
}
