package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"

	"propmap/internal/basemap"
	"propmap/internal/i18n"
	"propmap/internal/parcel"
)

// #4CAF50 at alpha 0.4.
var parcelFill = color.NRGBA{R: 0x4C, G: 0xAF, B: 0x50, A: 102}

const (
	edgeWidthPt = 2

	titlePt       = 16
	titlePadPt    = 20
	legendPt      = 10
	watermarkPt   = 22
	footerPt      = 8
	northPt       = 15
	attributionPt = 6

	watermarkRotation = 35
)

func (c *canvas) drawParcel(p parcel.Parcel, fr basemap.Frame) {
	dc := c.dc
	dc.Push()
	defer dc.Pop()

	a := c.axes
	dc.DrawRectangle(float64(a.Min.X), float64(a.Min.Y), float64(a.Dx()), float64(a.Dy()))
	dc.Clip()

	toPx := func(x, y float64) (float64, float64) {
		return float64(a.Min.X) + (x-fr.Origin[0])/fr.MetersPer, float64(a.Min.Y) + (fr.Origin[1]-y)/fr.MetersPer
	}
	for _, poly := range p.Shape {
		for _, ring := range poly {
			for i, pt := range ring {
				x, y := toPx(pt[0], pt[1])
				if i == 0 {
					dc.MoveTo(x, y)
				} else {
					dc.LineTo(x, y)
				}
			}
			dc.ClosePath()
			dc.NewSubPath()
		}
	}
	dc.SetFillRuleEvenOdd()
	dc.SetColor(parcelFill)
	dc.FillPreserve()
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(c.pt(edgeWidthPt))
	dc.SetLineJoinRound()
	dc.Stroke()
	dc.ResetClip()
	c.mark(ElementParcel)
}

func (c *canvas) drawAttribution() {
	const text = "© OpenStreetMap contributors"
	dc := c.dc
	dc.SetFontFace(c.face(false, attributionPt))
	x, y := c.axesPoint(0.5, 0.005)
	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawStringAnchored(text, x, y, 0.5, 0)
	c.mark(ElementAttribution, text)
}

func (c *canvas) drawTitle(fig Figure) string {
	dc := c.dc
	dc.SetFontFace(c.face(true, titlePt))
	dc.SetRGB(0, 0, 0)
	lines := []string{fig.PropertyName, "(" + fig.Strings.MapTitle + ")"}
	lh := c.pt(titlePt) * 1.2
	cx := float64(c.axes.Min.X) + float64(c.axes.Dx())/2
	base := float64(c.axes.Min.Y) - c.pt(titlePadPt)
	for i := range lines {
		line := lines[len(lines)-1-i]
		dc.DrawStringAnchored(line, cx, base-float64(i)*lh, 0.5, 0)
	}
	title := strings.Join(lines, "\n")
	c.mark(ElementTitle, title)
	return title
}

func (c *canvas) drawWatermark(text string) {
	dc := c.dc
	dc.Push()
	defer dc.Pop()

	cx, cy := c.axesPoint(0.5, 0.5)
	dc.RotateAbout(gg.Radians(-watermarkRotation), cx, cy)
	dc.SetFontFace(c.face(true, watermarkPt))
	dc.SetRGBA(1, 0, 0, 0.25)
	lines := strings.Split(text, "\n")
	lh := c.pt(watermarkPt) * 1.2
	top := cy - lh*float64(len(lines)-1)/2
	for i, line := range lines {
		dc.DrawStringAnchored(line, cx, top+float64(i)*lh, 0.5, 0.5)
	}
	c.mark(ElementWatermark, text)
}

// niceLength rounds v down to 1, 2 or 5 times a power of ten.
func niceLength(v float64) float64 {
	if v <= 0 {
		return 0
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	f := v / exp
	switch {
	case f >= 5:
		return 5 * exp
	case f >= 2:
		return 2 * exp
	}
	return exp
}

func formatMeters(m float64) string {
	if m >= 1000 {
		return fmt.Sprintf("%g km", m/1000)
	}
	return fmt.Sprintf("%g m", m)
}

func (c *canvas) drawScaleBar(metersPer float64) {
	dc := c.dc
	length := niceLength(float64(c.axes.Dx()) * metersPer * 0.2)
	barPx := length / metersPer
	label := formatMeters(length)

	pad := c.pt(4)
	barH := c.pt(3)
	dc.SetFontFace(c.face(false, legendPt))
	tw, th := dc.MeasureString(label)
	boxW := math.Max(barPx, tw) + 2*pad
	boxH := barH + th + 3*pad

	right, bottom := c.axesPoint(1, 0)
	right -= c.pt(6)
	bottom -= c.pt(6)
	x0, y0 := right-boxW, bottom-boxH

	dc.SetRGBA(1, 1, 1, 0.7)
	dc.DrawRectangle(x0, y0, boxW, boxH)
	dc.Fill()

	cx := x0 + boxW/2
	dc.SetRGB(0, 0, 0)
	dc.DrawRectangle(cx-barPx/2, y0+pad, barPx, barH)
	dc.Fill()
	dc.DrawStringAnchored(label, cx, y0+2*pad+barH, 0.5, 1)

	c.layout.ScaleBarMeters = length
	c.mark(ElementScaleBar, label)
}

func (c *canvas) drawNorthArrow() {
	dc := c.dc
	tx, ty := c.axesPoint(0.95, 0.87)
	hx, hy := c.axesPoint(0.95, 0.95)

	dc.SetFontFace(c.face(true, northPt))
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored("N", tx, ty, 0.5, 0.5)

	headW, headL := c.pt(10), c.pt(10)
	shaftW := c.pt(3)
	start := ty - c.pt(northPt)*0.6
	neck := hy + headL
	if start > neck {
		dc.DrawRectangle(tx-shaftW/2, neck, shaftW, start-neck)
		dc.Fill()
	}
	dc.MoveTo(hx, hy)
	dc.LineTo(hx-headW/2, neck)
	dc.LineTo(hx+headW/2, neck)
	dc.ClosePath()
	dc.Fill()
	c.mark(ElementNorthArrow, "N")
}

func (c *canvas) drawFooter(text string) {
	dc := c.dc
	dc.SetFontFace(c.face(false, footerPt))
	dc.SetRGB(0.5, 0.5, 0.5)
	x, y := c.axesPoint(0.5, -0.02)
	dc.DrawStringAnchored(text, x, y, 0.5, 1)
	c.mark(ElementFooter, text)
}

// LegendText is the three-line legend: area, perimeter and date.
func LegendText(s i18n.Strings, m parcel.Metrics, date string) string {
	return fmt.Sprintf("%s: %s m² (%.2f ha)\n%s: %s m\n%s: %s",
		s.LegendArea, i18n.Thousands(m.AreaM2), m.AreaHa,
		s.Perimeter, i18n.Thousands(m.PerimeterM),
		s.LegendDate, date)
}

func (c *canvas) drawLegend(fig Figure) {
	dc := c.dc
	text := LegendText(fig.Strings, fig.Metrics, fig.Date.Format("02/01/2006"))
	lines := strings.Split(text, "\n")

	dc.SetFontFace(c.face(false, legendPt))
	lh := c.pt(legendPt) * 1.25
	var tw float64
	for _, l := range lines {
		if w, _ := dc.MeasureString(l); w > tw {
			tw = w
		}
	}
	pad := c.pt(legendPt) * 0.3
	boxW := tw + 2*pad
	boxH := lh*float64(len(lines)) + 2*pad

	x0, bottom := c.axesPoint(0.02, 0.02)
	y0 := bottom - boxH

	dc.SetRGBA(1, 1, 1, 0.8)
	dc.DrawRectangle(x0, y0, boxW, boxH)
	dc.Fill()
	dc.SetRGBA(0, 0, 0, 0.8)
	dc.SetLineWidth(c.pt(1))
	dc.DrawRectangle(x0, y0, boxW, boxH)
	dc.Stroke()

	dc.SetRGB(0, 0, 0)
	for i, l := range lines {
		dc.DrawStringAnchored(l, x0+pad, y0+pad+float64(i)*lh, 0, 1)
	}
	c.mark(ElementLegend, text)
}
