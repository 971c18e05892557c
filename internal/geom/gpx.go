package geom

import (
	"os"

	"github.com/paulmach/orb"
	"github.com/tkrajina/gpxgo/gpx"
)

const (
	LayerTracks      = "tracks"
	LayerTrackPoints = "track_points"
)

// LoadGPX reads the "tracks" layer of a GPX file: one MultiLineString per <trk>.
// When the file has no track with points it falls back to the "track_points"
// layer (track points and waypoints as Points) and marks the set as a fallback.
func LoadGPX(path string) (FeatureSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FeatureSet{}, err
	}
	return ParseGPX(data)
}

// ParseGPX decodes GPX bytes.
func ParseGPX(data []byte) (FeatureSet, error) {
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return FeatureSet{}, err
	}
	return fromGPX(g), nil
}

func fromGPX(g *gpx.GPX) FeatureSet {
	fs := FeatureSet{Format: FormatGPX, CRS: "EPSG:4326", Layer: LayerTracks}
	for _, trk := range g.Tracks {
		var mls orb.MultiLineString
		for _, seg := range trk.Segments {
			if len(seg.Points) == 0 {
				continue
			}
			ls := make(orb.LineString, 0, len(seg.Points))
			for _, p := range seg.Points {
				ls = append(ls, orb.Point{p.Longitude, p.Latitude})
			}
			mls = append(mls, ls)
		}
		if len(mls) == 0 {
			continue
		}
		fs.Features = append(fs.Features, Feature{
			Geometry:   mls,
			Properties: map[string]any{"name": trk.Name},
		})
	}
	if len(fs.Features) > 0 {
		return fs
	}

	fs.Layer = LayerTrackPoints
	fs.Outcome = OutcomeFallback
	for _, trk := range g.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				fs.Features = append(fs.Features, Feature{Geometry: orb.Point{p.Longitude, p.Latitude}})
			}
		}
	}
	for _, w := range g.Waypoints {
		fs.Features = append(fs.Features, Feature{
			Geometry:   orb.Point{w.Longitude, w.Latitude},
			Properties: map[string]any{"name": w.Name},
		})
	}
	return fs
}
