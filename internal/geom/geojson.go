package geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb/geojson"
)

// LoadGeoJSON reads a GeoJSON file: a FeatureCollection, a single Feature or a
// bare geometry. The legacy "crs" member, when present, is reported as the
// set's CRS name; otherwise CRS is left empty.
func LoadGeoJSON(path string) (FeatureSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return FeatureSet{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return FeatureSet{}, err
	}
	return ParseGeoJSON(data)
}

type geojsonHead struct {
	Type string `json:"type"`
	CRS  *struct {
		Type       string `json:"type"`
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`
}

// ParseGeoJSON decodes GeoJSON bytes.
func ParseGeoJSON(data []byte) (FeatureSet, error) {
	var head geojsonHead
	if err := json.Unmarshal(data, &head); err != nil {
		return FeatureSet{}, err
	}
	if head.Type == "" {
		return FeatureSet{}, errors.New("invalid geojson: missing type")
	}
	fs := FeatureSet{Format: FormatGeoJSON}
	if head.CRS != nil {
		fs.CRS = head.CRS.Properties.Name
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return FeatureSet{}, err
		}
		for _, feat := range fc.Features {
			if feat == nil || feat.Geometry == nil {
				continue
			}
			fs.Features = append(fs.Features, Feature{Geometry: feat.Geometry, Properties: feat.Properties})
		}
	case "Feature":
		feat, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return FeatureSet{}, err
		}
		if feat.Geometry != nil {
			fs.Features = append(fs.Features, Feature{Geometry: feat.Geometry, Properties: feat.Properties})
		}
	case "Point", "MultiPoint", "LineString", "MultiLineString", "Polygon", "MultiPolygon", "GeometryCollection":
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return FeatureSet{}, err
		}
		if geometry := g.Geometry(); geometry != nil {
			fs.Features = append(fs.Features, Feature{Geometry: geometry})
		}
	default:
		return FeatureSet{}, fmt.Errorf("unsupported geojson type: %s", head.Type)
	}
	return fs, nil
}
