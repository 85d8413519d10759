package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/dancolta/deep-problem-scanner/pkg/types"
)

// Drop-shadow parameters for card rectangles.
const (
	shadowOffsetY = 3.0
	shadowBlur    = 4.0
)

var shadowColor = color.NRGBA{R: 0, G: 0, B: 0, A: 70}

// Render composites the scene onto the base image and returns a new NRGBA
// buffer with the same dimensions. The base image is never modified.
func (s *Scene) Render(base image.Image) *image.NRGBA {
	dst := imaging.Clone(base)

	if s.hasShadows() {
		layer := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
		lc := &canvas{img: layer}
		for _, item := range s.Items {
			rr, ok := item.(RoundedRect)
			if !ok || !rr.Shadow {
				continue
			}
			shifted := rr.Rect
			shifted.Y += shadowOffsetY
			lc.fillRoundedRect(shifted, rr.Radius, shadowColor)
		}
		blurred := blur.Gaussian(layer, shadowBlur)
		draw.Draw(dst, dst.Bounds(), blurred, image.Point{}, draw.Over)
	}

	c := &canvas{img: dst}
	for _, item := range s.Items {
		item.draw(c)
	}
	return dst
}

func (s *Scene) hasShadows() bool {
	for _, item := range s.Items {
		if rr, ok := item.(RoundedRect); ok && rr.Shadow {
			return true
		}
	}
	return false
}

// canvas wraps the destination buffer with blending helpers.
type canvas struct {
	img *image.NRGBA
}

// blend draws a non-premultiplied color over the pixel at (x, y).
func (c *canvas) blend(x, y int, col color.NRGBA) {
	if col.A == 0 {
		return
	}
	b := c.img.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	if col.A == 255 {
		c.img.SetNRGBA(x, y, col)
		return
	}

	i := c.img.PixOffset(x, y)
	p := c.img.Pix[i : i+4 : i+4]

	sa := float64(col.A) / 255
	da := float64(p[3]) / 255
	outA := sa + da*(1-sa)
	if outA == 0 {
		return
	}
	blendCh := func(s, d uint8) uint8 {
		v := (float64(s)*sa + float64(d)*da*(1-sa)) / outA
		return uint8(v + 0.5)
	}
	p[0] = blendCh(col.R, p[0])
	p[1] = blendCh(col.G, p[1])
	p[2] = blendCh(col.B, p[2])
	p[3] = uint8(outA*255 + 0.5)
}

// blendAA scales the color's alpha by coverage before blending.
func (c *canvas) blendAA(x, y int, col color.NRGBA, coverage float64) {
	if coverage <= 0 {
		return
	}
	if coverage > 1 {
		coverage = 1
	}
	col.A = uint8(float64(col.A)*coverage + 0.5)
	c.blend(x, y, col)
}

// insideRoundedRect tests pixel-center containment against a rounded rect.
func insideRoundedRect(r types.Rect, radius, px, py float64) bool {
	if px < r.X || px > r.Right() || py < r.Y || py > r.Bottom() {
		return false
	}
	if radius <= 0 {
		return true
	}
	// Corner circle tests.
	cx, cy := px, py
	switch {
	case px < r.X+radius && py < r.Y+radius:
		cx, cy = r.X+radius, r.Y+radius
	case px > r.Right()-radius && py < r.Y+radius:
		cx, cy = r.Right()-radius, r.Y+radius
	case px < r.X+radius && py > r.Bottom()-radius:
		cx, cy = r.X+radius, r.Bottom()-radius
	case px > r.Right()-radius && py > r.Bottom()-radius:
		cx, cy = r.Right()-radius, r.Bottom()-radius
	default:
		return true
	}
	dx, dy := px-cx, py-cy
	return dx*dx+dy*dy <= radius*radius
}

func (c *canvas) fillRoundedRect(r types.Rect, radius float64, col color.NRGBA) {
	x0 := int(math.Floor(r.X))
	y0 := int(math.Floor(r.Y))
	x1 := int(math.Ceil(r.Right()))
	y1 := int(math.Ceil(r.Bottom()))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if insideRoundedRect(r, radius, float64(x)+0.5, float64(y)+0.5) {
				c.blend(x, y, col)
			}
		}
	}
}

func (rr RoundedRect) draw(c *canvas) {
	if rr.StrokeWidth > 0 && rr.Stroke.A > 0 {
		c.fillRoundedRect(rr.Rect, rr.Radius, rr.Stroke)
		inner := types.Rect{
			X:      rr.Rect.X + rr.StrokeWidth,
			Y:      rr.Rect.Y + rr.StrokeWidth,
			Width:  rr.Rect.Width - 2*rr.StrokeWidth,
			Height: rr.Rect.Height - 2*rr.StrokeWidth,
		}
		innerRadius := rr.Radius - rr.StrokeWidth
		if innerRadius < 0 {
			innerRadius = 0
		}
		c.fillRoundedRect(inner, innerRadius, rr.Fill)
		return
	}
	c.fillRoundedRect(rr.Rect, rr.Radius, rr.Fill)
}

func (l Line) draw(c *canvas) {
	dx := l.To.X - l.From.X
	dy := l.To.Y - l.From.Y
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		c.blend(int(l.From.X), int(l.From.Y), l.Color)
		return
	}

	steps := math.Max(math.Abs(dx), math.Abs(dy)) * 2
	perpX := -dy / dist
	perpY := dx / dist
	half := l.Width / 2

	for i := 0.0; i <= steps; i++ {
		t := i / steps
		px := l.From.X + dx*t
		py := l.From.Y + dy*t
		for o := -half; o <= half; o += 0.5 {
			c.blend(int(px+perpX*o), int(py+perpY*o), l.Color)
		}
	}
}

func (p Polygon) draw(c *canvas) {
	if len(p.Points) < 3 {
		return
	}
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points[1:] {
		minY = math.Min(minY, pt.Y)
		maxY = math.Max(maxY, pt.Y)
	}

	// Scanline fill at pixel centers.
	for y := int(math.Floor(minY)); y <= int(math.Ceil(maxY)); y++ {
		sy := float64(y) + 0.5
		var xs []float64
		n := len(p.Points)
		for i := 0; i < n; i++ {
			a := p.Points[i]
			b := p.Points[(i+1)%n]
			if (a.Y <= sy && b.Y > sy) || (b.Y <= sy && a.Y > sy) {
				t := (sy - a.Y) / (b.Y - a.Y)
				xs = append(xs, a.X+t*(b.X-a.X))
			}
		}
		if len(xs) < 2 {
			continue
		}
		sortFloats(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(math.Floor(xs[i])); x < int(math.Ceil(xs[i+1])); x++ {
				c.blend(x, y, p.Fill)
			}
		}
	}
}

func (ci Circle) draw(c *canvas) {
	r := ci.Radius
	x0 := int(math.Floor(ci.Center.X - r - 1))
	x1 := int(math.Ceil(ci.Center.X + r + 1))
	y0 := int(math.Floor(ci.Center.Y - r - 1))
	y1 := int(math.Ceil(ci.Center.Y + r + 1))

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - ci.Center.X
			dy := float64(y) + 0.5 - ci.Center.Y
			d := math.Hypot(dx, dy)

			if ci.StrokeWidth > 0 && ci.Stroke.A > 0 && d <= r+0.5 && d >= r-ci.StrokeWidth-0.5 {
				c.blendAA(x, y, ci.Stroke, r+0.5-d)
				continue
			}
			if d <= r+0.5 {
				c.blendAA(x, y, ci.Fill, r+0.5-d)
			}
		}
	}
}

func (tr TextRun) draw(c *canvas) {
	cf := face(tr.Bold, tr.Size)
	cf.mu.Lock()
	defer cf.mu.Unlock()

	f := cf.face
	metrics := f.Metrics()

	x := tr.Pos.X
	if tr.Align == AlignCenter {
		w := font.MeasureString(f, tr.Text)
		x -= float64(w.Ceil()) / 2
	}
	baseline := tr.Pos.Y + float64(metrics.Ascent.Ceil())

	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(tr.Color),
		Face: f,
		Dot: fixed.Point26_6{
			X: fixed.I(int(x + 0.5)),
			Y: fixed.I(int(baseline + 0.5)),
		},
	}
	d.DrawString(tr.Text)
}

func sortFloats(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}
