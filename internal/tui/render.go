package tui

import (
	"math"
	"sort"
	"strings"

	"github.com/paulmach/orb"
)

// viewport maps EPSG:3763 metres onto the dot grid of a w x h cell area.
// Dots are roughly square, so one scale serves both axes.
type viewport struct {
	cx, cy     float64 // parcel centre in metres
	scale      float64 // dots per metre
	midX, midY float64 // dot grid centre including pan
}

func (m Model) viewport(w, h int) (viewport, bool) {
	dx, dy := m.bbox.MaxX-m.bbox.MinX, m.bbox.MaxY-m.bbox.MinY
	if m.report == nil || dx <= 0 || dy <= 0 || w <= 1 || h <= 1 {
		return viewport{}, false
	}
	wMic, hMic := float64(w*2-1), float64(h*4-1)
	return viewport{
		cx:    (m.bbox.MinX + m.bbox.MaxX) / 2,
		cy:    (m.bbox.MinY + m.bbox.MaxY) / 2,
		scale: 0.9 * math.Min(wMic/dx, hMic/dy) * m.zoom,
		midX:  wMic/2 + float64(m.offsetX*2),
		midY:  hMic/2 + float64(m.offsetY*4),
	}, true
}

func (v viewport) toMicro(p orb.Point) (int, int) {
	x := v.midX + (p[0]-v.cx)*v.scale
	y := v.midY - (p[1]-v.cy)*v.scale
	return int(math.Round(x)), int(math.Round(y))
}

func (v viewport) fromMicro(mx, my int) orb.Point {
	return orb.Point{
		v.cx + (float64(mx)-v.midX)/v.scale,
		v.cy - (float64(my)-v.midY)/v.scale,
	}
}

// cellToXY converts a map cell to EPSG:3763 coordinates.
func (m Model) cellToXY(cx, cy, w, h int) (orb.Point, bool) {
	v, ok := m.viewport(w, h)
	if !ok {
		return orb.Point{}, false
	}
	return v.fromMicro(cx*2, cy*4), true
}

// renderAsciiMap draws the parcel as braille: even-odd fill across all
// rings of each polygon, so holes stay empty, then the ring outlines.
func (m Model) renderAsciiMap(w, h int) string {
	lines := make([]string, h)
	blank := strings.Repeat(" ", w)
	for y := range lines {
		lines[y] = blank
	}
	v, ok := m.viewport(w, h)
	if !ok {
		return strings.Join(lines, "\n")
	}
	br := newBrailleBuf(w, h)

	for _, poly := range m.report.Parcel.Shape {
		var rings [][][2]int
		for _, ring := range poly {
			var rm [][2]int
			for _, p := range ring {
				mx, my := v.toMicro(p)
				rm = append(rm, [2]int{mx, my})
			}
			if len(rm) >= 3 {
				rings = append(rings, rm)
			}
		}
		fillEvenOdd(br, rings, h*4)
		for _, r := range rings {
			for i := 0; i+1 < len(r); i++ {
				br.drawLineMicro(r[i][0], r[i][1], r[i+1][0], r[i+1][1])
			}
		}
	}

	for y, row := range br.toLines() {
		lines[y] = row
	}

	if m.hovering {
		cx, cy := m.hoverMicX/2, m.hoverMicY/4
		if cy >= 0 && cy < len(lines) {
			r := []rune(lines[cy])
			if cx >= 0 && cx < len(r) {
				lines[cy] = string(r[:cx]) + hoverStyle.Render("◯") + string(r[cx+1:])
			}
		}
	}
	return strings.Join(lines, "\n")
}

// fillEvenOdd scanlines the rings on the dot grid, every other dot row.
func fillEvenOdd(br *brailleBuf, rings [][][2]int, hMic int) {
	for yMic := 0; yMic < hMic; yMic += 2 {
		var xs []int
		for _, r := range rings {
			for i := 0; i+1 < len(r); i++ {
				a, b := r[i], r[i+1]
				if a[1] == b[1] {
					continue
				}
				if (yMic >= a[1] && yMic < b[1]) || (yMic >= b[1] && yMic < a[1]) {
					t := float64(yMic-a[1]) / float64(b[1]-a[1])
					xs = append(xs, int(float64(a[0])+t*float64(b[0]-a[0])))
				}
			}
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			br.span(xs[i], xs[i+1], yMic)
		}
	}
}

// nearestVertex finds the parcel vertex closest to a dot position.
func (m Model) nearestVertex(mx, my, w, h int) (int, int, orb.Point, bool) {
	v, ok := m.viewport(w, h)
	if !ok {
		return 0, 0, orb.Point{}, false
	}
	best := math.MaxInt
	var bx, by int
	var bp orb.Point
	for _, poly := range m.report.Parcel.Shape {
		for _, ring := range poly {
			for _, p := range ring {
				px, py := v.toMicro(p)
				d := (px-mx)*(px-mx) + (py-my)*(py-my)
				if d < best {
					best, bx, by, bp = d, px, py, p
				}
			}
		}
	}
	return bx, by, bp, best != math.MaxInt
}
