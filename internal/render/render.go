// Package render draws the property map figure and encodes it as PNG or PDF.
package render

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"math"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"propmap/internal/basemap"
	"propmap/internal/i18n"
	"propmap/internal/parcel"
)

// Figure size in inches.
const (
	FigWidthIn  = 10.0
	FigHeightIn = 12.0
)

// Axes placement as figure fractions (left, bottom, right, top).
var axesBox = [4]float64{0.125, 0.11, 0.9, 0.88}

type Variant int

const (
	Free Variant = iota
	Premium
)

func (v Variant) String() string {
	if v == Premium {
		return "premium"
	}
	return "free"
}

// DPI is the output resolution of the variant.
func (v Variant) DPI() float64 {
	if v == Premium {
		return 300
	}
	return 100
}

// ParseVariant accepts "free" or "premium".
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "free":
		return Free, nil
	case "premium":
		return Premium, nil
	}
	return Free, fmt.Errorf("unknown map variant %q", s)
}

// Figure is everything drawn on a map besides the basemap.
type Figure struct {
	Parcel       parcel.Parcel
	Metrics      parcel.Metrics
	Strings      i18n.Strings
	PropertyName string
	Date         time.Time
}

// Element names a decoration present on a rendered map.
type Element string

const (
	ElementBasemap     Element = "basemap"
	ElementAttribution Element = "attribution"
	ElementParcel      Element = "parcel"
	ElementTitle       Element = "title"
	ElementWatermark   Element = "watermark"
	ElementScaleBar    Element = "scalebar"
	ElementNorthArrow  Element = "north-arrow"
	ElementFooter      Element = "footer"
	ElementLegend      Element = "legend"
)

// Layout records what was drawn and where.
type Layout struct {
	Width, Height  int
	DPI            float64
	Axes           image.Rectangle
	MetersPerPixel float64
	ScaleBarMeters float64
	Elements       []Element
	Texts          []string
}

func (l Layout) Has(e Element) bool {
	for _, x := range l.Elements {
		if x == e {
			return true
		}
	}
	return false
}

// Map is a rendered figure.
type Map struct {
	Variant Variant
	Image   image.Image
	Layout  Layout
	Basemap basemap.Result
	Title   string
}

type Renderer struct {
	tiles   *basemap.Fetcher
	regular *truetype.Font
	bold    *truetype.Font
	log     zerolog.Logger
}

// NewRenderer builds a renderer. tiles may be nil to render without basemap.
func NewRenderer(tiles *basemap.Fetcher, log zerolog.Logger) (*Renderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &Renderer{tiles: tiles, regular: regular, bold: bold, log: log.With().Str("component", "render").Logger()}, nil
}

// canvas carries per-render state for the draw helpers.
type canvas struct {
	dc     *gg.Context
	dpi    float64
	axes   image.Rectangle
	layout *Layout
	r      *Renderer
}

// pt converts typographic points to pixels.
func (c *canvas) pt(v float64) float64 { return v * c.dpi / 72 }

func (c *canvas) face(bold bool, size float64) font.Face {
	f := c.r.regular
	if bold {
		f = c.r.bold
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: c.dpi, Hinting: font.HintingNone})
}

// axesPoint maps an axes fraction (0,0 bottom-left) to pixels.
func (c *canvas) axesPoint(fx, fy float64) (float64, float64) {
	a := c.axes
	return float64(a.Min.X) + fx*float64(a.Dx()), float64(a.Max.Y) - fy*float64(a.Dy())
}

func (c *canvas) mark(e Element, texts ...string) {
	c.layout.Elements = append(c.layout.Elements, e)
	c.layout.Texts = append(c.layout.Texts, texts...)
}

// Render draws fig for the given variant. Basemap problems are reported in
// Map.Basemap and never returned as errors.
func (r *Renderer) Render(ctx context.Context, fig Figure, v Variant) (*Map, error) {
	if len(fig.Parcel.Shape) == 0 {
		return nil, &parcel.InvalidGeometryError{Reason: "nothing to render"}
	}
	dpi := v.DPI()
	w, h := int(math.Round(FigWidthIn*dpi)), int(math.Round(FigHeightIn*dpi))
	axes := image.Rect(
		int(axesBox[0]*float64(w)), int((1-axesBox[3])*float64(h)),
		int(axesBox[2]*float64(w)), int((1-axesBox[1])*float64(h)),
	)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	layout := Layout{Width: w, Height: h, DPI: dpi, Axes: axes}
	frame := fitFrame(fig.Parcel, axes)
	layout.MetersPerPixel = frame.MetersPer

	m := &Map{Variant: v, Image: img}
	c := &canvas{dpi: dpi, axes: axes, layout: &layout, r: r}

	m.Basemap = r.tiles.Draw(ctx, img, frame)
	switch m.Basemap.Status {
	case basemap.StatusLoaded, basemap.StatusPartial:
		c.mark(ElementBasemap)
	case basemap.StatusFailed:
		r.log.Warn().Err(m.Basemap.Err).Str("variant", v.String()).Msg("basemap unavailable, rendering without it")
	}

	c.dc = gg.NewContextForRGBA(img)
	c.drawParcel(fig.Parcel, frame)
	if layout.Has(ElementBasemap) {
		c.drawAttribution()
	}
	m.Title = c.drawTitle(fig)

	if v == Premium {
		c.drawScaleBar(frame.MetersPer)
		c.drawNorthArrow()
		c.drawFooter(fig.Strings.FooterCRS)
	} else {
		c.drawWatermark(fig.Strings.Watermark)
	}
	c.drawLegend(fig)

	m.Layout = layout
	r.log.Debug().
		Str("variant", v.String()).
		Int("width", w).Int("height", h).
		Str("basemap", m.Basemap.Status.String()).
		Msg("map rendered")
	return m, nil
}

// fitFrame centres the parcel in the axes with a 5% margin, keeping a 1:1
// aspect ratio.
func fitFrame(p parcel.Parcel, axes image.Rectangle) basemap.Frame {
	b := p.Bound()
	bw, bh := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	aw, ah := float64(axes.Dx()), float64(axes.Dy())
	mpp := math.Max(bw/aw, bh/ah) * 1.1
	if mpp <= 0 {
		mpp = 1
	}
	cx, cy := (b.Min[0]+b.Max[0])/2, (b.Min[1]+b.Max[1])/2
	return basemap.Frame{
		Rect:      axes,
		Origin:    orb.Point{cx - aw/2*mpp, cy + ah/2*mpp},
		MetersPer: mpp,
	}
}
