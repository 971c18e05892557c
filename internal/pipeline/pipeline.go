// Package pipeline runs one upload through load, normalize, measure and
// render. Each run is synchronous and keeps no state between calls.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"propmap/internal/crs"
	"propmap/internal/geom"
	"propmap/internal/i18n"
	"propmap/internal/logger"
	"propmap/internal/observability"
	"propmap/internal/parcel"
	"propmap/internal/render"
)

// Request is one upload.
type Request struct {
	Name string // property name; blank uses the localized default
	Lang i18n.Lang
	Ext  string
	Body io.Reader
}

// Report is the outcome of a successful run.
type Report struct {
	PropertyName string
	Lang         i18n.Lang
	Strings      i18n.Strings
	Format       geom.Format
	Layer        string
	Outcome      geom.Outcome
	Parcel       parcel.Parcel
	Metrics      parcel.Metrics
	Features     FeatureCounts
	At           time.Time // load time; the legend date is taken at export
}

// FeatureCounts tallies the decoded features by geometry family.
type FeatureCounts struct {
	Points, Lines, Polygons int
}

// Artifact is a downloadable rendering.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
	Map         *render.Map
}

type Pipeline struct {
	loader   *geom.Loader
	renderer *render.Renderer
	metrics  *observability.Metrics
	log      zerolog.Logger
	now      func() time.Time
}

func New(loader *geom.Loader, renderer *render.Renderer, metrics *observability.Metrics, log zerolog.Logger) *Pipeline {
	return &Pipeline{loader: loader, renderer: renderer, metrics: metrics, log: log, now: time.Now}
}

// WithClock overrides the render-time clock.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

func (p *Pipeline) Drivers() geom.Drivers { return p.loader.Drivers() }

// Run loads, normalizes and measures the upload.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Report, error) {
	log := logger.FromContext(ctx, &p.log)
	fs, err := p.loader.Load(req.Body, req.Ext)
	if err != nil {
		return nil, p.fail(log, "load", err)
	}
	return p.finish(log, req, fs)
}

// RunFile is Run for a file already on disk; req.Ext and req.Body are ignored.
func (p *Pipeline) RunFile(ctx context.Context, req Request, path string) (*Report, error) {
	log := logger.FromContext(ctx, &p.log)
	fs, err := p.loader.LoadFile(path)
	if err != nil {
		return nil, p.fail(log, "load", err)
	}
	return p.finish(log, req, fs)
}

// RunFeatures is Run for an already decoded feature set, e.g. pasted WKT.
func (p *Pipeline) RunFeatures(ctx context.Context, req Request, fs geom.FeatureSet) (*Report, error) {
	return p.finish(logger.FromContext(ctx, &p.log), req, fs)
}

func (p *Pipeline) finish(log *zerolog.Logger, req Request, fs geom.FeatureSet) (*Report, error) {
	if fs.Outcome == geom.OutcomeFallback {
		log.Warn().Str("format", string(fs.Format)).Str("layer", fs.Layer).Msg("preferred layer unavailable, using fallback")
	}
	pc, err := parcel.Normalize(fs)
	if err != nil {
		return nil, p.fail(log, "normalize", err)
	}
	if pc.CRSDefaulted {
		log.Info().Str("crs", pc.SourceCRS).Msg("source has no CRS, assuming WGS84")
	}

	s := i18n.For(req.Lang)
	var fc FeatureCounts
	fc.Points, fc.Lines, fc.Polygons = fs.Counts()
	rep := &Report{
		PropertyName: s.PropertyName(req.Name),
		Lang:         req.Lang,
		Strings:      s,
		Format:       fs.Format,
		Layer:        fs.Layer,
		Outcome:      fs.Outcome,
		Parcel:       pc,
		Metrics:      parcel.Measure(pc),
		Features:     fc,
		At:           p.now(),
	}
	p.metrics.ObserveRun(fs.Outcome.String())
	log.Info().
		Str("format", string(fs.Format)).
		Str("source_crs", pc.SourceCRS).
		Int("polygons", fc.Polygons).
		Int("lines", fc.Lines).
		Float64("area_m2", rep.Metrics.AreaM2).
		Float64("perimeter_m", rep.Metrics.PerimeterM).
		Msg("parcel measured")
	return rep, nil
}

func (p *Pipeline) fail(log *zerolog.Logger, stage string, err error) error {
	kind := Kind(err)
	p.metrics.ObserveRun("error")
	p.metrics.ObserveError(kind)
	log.Warn().Err(err).Str("stage", stage).Str("kind", kind).Msg("pipeline failed")
	return err
}

// Export renders rep for v and encodes it: PNG for Free, PDF for Premium.
func (p *Pipeline) Export(ctx context.Context, rep *Report, v render.Variant) (*Artifact, error) {
	start := time.Now()
	ctx = logger.WithVariant(ctx, v.String())
	log := logger.FromContext(ctx, &p.log)

	m, err := p.renderer.Render(ctx, render.Figure{
		Parcel:       rep.Parcel,
		Metrics:      rep.Metrics,
		Strings:      rep.Strings,
		PropertyName: rep.PropertyName,
		Date:         p.now(),
	}, v)
	if err != nil {
		return nil, p.fail(log, "render", err)
	}
	p.metrics.ObserveBasemap(m.Basemap.Status.String())

	var buf bytes.Buffer
	a := &Artifact{Name: ArtifactName(v, rep.PropertyName), Map: m}
	if v == render.Premium {
		a.ContentType = "application/pdf"
		err = render.EncodePDF(&buf, m)
	} else {
		a.ContentType = "image/png"
		err = render.EncodePNG(&buf, m)
	}
	if err != nil {
		return nil, p.fail(log, "encode", err)
	}
	a.Data = buf.Bytes()

	d := time.Since(start)
	p.metrics.ObserveRender(v.String(), d)
	log.Info().Str("artifact", a.Name).Int("bytes", len(a.Data)).Dur("took", d).Msg("map exported")
	return a, nil
}

// ArtifactName is "amostra_{name}.png" for Free and "Relatorio_{name}.pdf"
// for Premium. Path separators in name are replaced.
func ArtifactName(v render.Variant, name string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
	if v == render.Premium {
		return "Relatorio_" + safe + ".pdf"
	}
	return "amostra_" + safe + ".png"
}

// Notice is the user-facing message for any pipeline failure.
func Notice(err error) string {
	return fmt.Sprintf("Erro / Error: %v", err)
}

// Kind classifies err for metrics and status codes.
func Kind(err error) string {
	var (
		unreadable  *geom.UnreadableFileError
		unsupported *geom.UnsupportedFormatError
		invalid     *parcel.InvalidGeometryError
		badCRS      *crs.UnsupportedCRSError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &unreadable):
		return "unreadable_file"
	case errors.As(err, &unsupported):
		return "unsupported_format"
	case errors.As(err, &invalid):
		return "invalid_geometry"
	case errors.As(err, &badCRS):
		return "unsupported_crs"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "internal"
}

// IsUserError reports whether err was caused by the upload rather than by
// the service.
func IsUserError(err error) bool {
	switch Kind(err) {
	case "unreadable_file", "unsupported_format", "invalid_geometry", "unsupported_crs":
		return true
	}
	return false
}
