package viz

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/san-kum/canvasflow/internal/dynamo"
)

const (
	fitDuration = 0.4
	fitMargin   = 0.9
	minZoom     = 0.005
	maxZoom     = 4
)

type fitAnim struct {
	x, y, zoom *gween.Tween
	done       [3]bool
}

// Camera maps canvas coordinates onto the braille grid. X and Y are the
// canvas point shown at the centre; Zoom is sub-pixels per canvas pixel.
type Camera struct {
	X, Y float64
	Zoom float64

	fit *fitAnim
}

func NewCamera() *Camera {
	return &Camera{Zoom: 0.1}
}

// Project returns the sub-pixel for p on a w x h sub-pixel grid.
func (c *Camera) Project(p dynamo.Vec3, w, h int) (int, int) {
	x := (p.X-c.X)*c.Zoom + float64(w)/2
	y := (p.Y-c.Y)*c.Zoom + float64(h)/2
	return int(math.Round(x)), int(math.Round(y))
}

// Framing computes the centre and zoom that fit every body box inside a
// w x h sub-pixel grid.
func Framing(bodies dynamo.Bodies, w, h int) (x, y, zoom float64, ok bool) {
	if len(bodies) == 0 || w <= 0 || h <= 0 {
		return 0, 0, 0, false
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range bodies {
		minX = math.Min(minX, b.Position.X-b.Width/2)
		maxX = math.Max(maxX, b.Position.X+b.Width/2)
		minY = math.Min(minY, b.Position.Y-b.Height/2)
		maxY = math.Max(maxY, b.Position.Y+b.Height/2)
	}
	zoom = fitMargin * math.Min(float64(w)/(maxX-minX), float64(h)/(maxY-minY))
	zoom = math.Max(minZoom, math.Min(maxZoom, zoom))
	return (minX + maxX) / 2, (minY + maxY) / 2, zoom, true
}

// Snap moves the camera to fit bodies immediately.
func (c *Camera) Snap(bodies dynamo.Bodies, w, h int) {
	if x, y, zoom, ok := Framing(bodies, w, h); ok {
		c.X, c.Y, c.Zoom = x, y, zoom
		c.fit = nil
	}
}

// FitTo starts an eased transition towards the framing of bodies.
func (c *Camera) FitTo(bodies dynamo.Bodies, w, h int) {
	x, y, zoom, ok := Framing(bodies, w, h)
	if !ok {
		return
	}
	c.fit = &fitAnim{
		x:    gween.New(float32(c.X), float32(x), fitDuration, ease.OutCubic),
		y:    gween.New(float32(c.Y), float32(y), fitDuration, ease.OutCubic),
		zoom: gween.New(float32(c.Zoom), float32(zoom), fitDuration, ease.OutCubic),
	}
}

// ZoomBy scales the zoom, cancelling any fit in progress.
func (c *Camera) ZoomBy(f float64) {
	c.fit = nil
	c.Zoom = math.Max(minZoom, math.Min(maxZoom, c.Zoom*f))
}

func (c *Camera) Animating() bool { return c.fit != nil }

// Update advances a running fit by dt seconds.
func (c *Camera) Update(dt float32) {
	if c.fit == nil {
		return
	}
	fields := [3]*float64{&c.X, &c.Y, &c.Zoom}
	tweens := [3]*gween.Tween{c.fit.x, c.fit.y, c.fit.zoom}
	for i, tw := range tweens {
		if c.fit.done[i] {
			continue
		}
		val, done := tw.Update(dt)
		*fields[i] = float64(val)
		c.fit.done[i] = done
	}
	if c.fit.done[0] && c.fit.done[1] && c.fit.done[2] {
		c.fit = nil
	}
}
