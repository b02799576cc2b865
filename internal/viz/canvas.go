package viz

import (
	"strings"
)

// blank is the empty braille cell. Each cell packs a 2x4 block of dots; dot
// bits are laid out column-major except for the bottom row.
const blank = 0x2800

var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells addressed in sub-pixels, two across and
// four down per cell.
type Canvas struct {
	cols, rows int
	cells      []rune
}

func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{cols: cols, rows: rows, cells: make([]rune, cols*rows)}
	c.Clear()
	return c
}

// Pixels returns the sub-pixel size of the canvas.
func (c *Canvas) Pixels() (int, int) {
	return c.cols * 2, c.rows * 4
}

// Cell returns the braille rune at a cell position.
func (c *Canvas) Cell(col, row int) rune {
	return c.cells[row*c.cols+col]
}

// dot maps a sub-pixel to its cell index and bit. ok is false off the canvas.
func (c *Canvas) dot(x, y int) (idx int, bit rune, ok bool) {
	w, h := c.Pixels()
	if x < 0 || y < 0 || x >= w || y >= h {
		return 0, 0, false
	}
	return (y/4)*c.cols + x/2, dotBits[y%4][x%2], true
}

func (c *Canvas) Set(x, y int) {
	if i, bit, ok := c.dot(x, y); ok {
		c.cells[i] |= bit
	}
}

// IsSet reports whether a sub-pixel is lit.
func (c *Canvas) IsSet(x, y int) bool {
	i, bit, ok := c.dot(x, y)
	return ok && c.cells[i]&bit != 0
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = blank
	}
}

// DrawLine rasterises a segment with integer Bresenham steps. Dots that fall
// off the canvas are dropped.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, sx := span(x0, x1)
	dy, sy := span(y0, y1)
	dy = -dy
	e := dx + dy

	for x, y := x0, y0; ; {
		c.Set(x, y)
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func span(a, b int) (dist, step int) {
	if b >= a {
		return b - a, 1
	}
	return a - b, -1
}

// DrawRect outlines the box with corners (x0, y0) and (x1, y1).
func (c *Canvas) DrawRect(x0, y0, x1, y1 int) {
	c.DrawLine(x0, y0, x1, y0)
	c.DrawLine(x1, y0, x1, y1)
	c.DrawLine(x1, y1, x0, y1)
	c.DrawLine(x0, y1, x0, y0)
}

// String renders the rows joined by newlines, without a trailing one.
func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(len(c.cells)*3 + c.rows)
	for r := 0; r < c.rows; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(c.cells[r*c.cols : (r+1)*c.cols]))
	}
	return b.String()
}
