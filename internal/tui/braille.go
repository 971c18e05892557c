package tui

import "strings"

// brailleBuf is a w x h cell canvas with a 2x4 dot grid per cell.
type brailleBuf struct {
	w, h int
	m    [][]uint8
}

// dotBits[row][col] is the braille bit for a dot inside a cell.
var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	for i := range m {
		m[i] = make([]uint8, w)
	}
	return &brailleBuf{w: w, h: h, m: m}
}

// setPixel sets the dot at micro coordinates; out-of-canvas dots are ignored.
func (b *brailleBuf) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if cx >= b.w || cy >= b.h {
		return
	}
	b.m[cy][cx] |= dotBits[my%4][mx%2]
}

// span sets dots x0..x1 inclusive on micro row my.
func (b *brailleBuf) span(x0, x1, my int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	x0 = max(x0, 0)
	x1 = min(x1, b.w*2-1)
	for x := x0; x <= x1; x++ {
		b.setPixel(x, my)
	}
}

// drawLineMicro draws a Bresenham line on the dot grid.
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (b *brailleBuf) toLines() []string {
	out := make([]string, b.h)
	var sb strings.Builder
	for y := 0; y < b.h; y++ {
		sb.Reset()
		for x := 0; x < b.w; x++ {
			if mask := b.m[y][x]; mask != 0 {
				sb.WriteRune(rune(0x2800 + int(mask)))
			} else {
				sb.WriteByte(' ')
			}
		}
		out[y] = sb.String()
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
