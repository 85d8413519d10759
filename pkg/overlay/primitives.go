// Package overlay assembles annotation drawing primitives into a scene and
// composites the scene onto a base raster image.
//
// The scene is a typed list of primitives; nothing is serialized until
// Render flattens the list onto pixels. Primitives draw in list order.
package overlay

import (
	"image/color"

	"github.com/dancolta/deep-problem-scanner/pkg/types"
)

// Primitive is one drawable element of the annotation overlay.
type Primitive interface {
	draw(c *canvas)
}

// RoundedRect is a filled, optionally stroked rectangle with rounded
// corners. Shadow marks it for inclusion in the blurred drop-shadow layer.
type RoundedRect struct {
	Rect        types.Rect
	Radius      float64
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
	Shadow      bool
}

// Line is a straight stroked segment.
type Line struct {
	From  types.Point
	To    types.Point
	Color color.NRGBA
	Width float64
}

// Polygon is a filled convex polygon (arrowheads are triangles).
type Polygon struct {
	Points []types.Point
	Fill   color.NRGBA
}

// Circle is a filled, optionally stroked circle.
type Circle struct {
	Center      types.Point
	Radius      float64
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
}

// Align controls horizontal text anchoring.
type Align int

// Text anchor modes.
const (
	AlignLeft Align = iota
	AlignCenter
)

// TextRun is a single line of text. Pos is the top-left corner of the line
// box (or the top-center when Align is AlignCenter); the baseline offset is
// derived from the face metrics.
type TextRun struct {
	Pos   types.Point
	Text  string
	Bold  bool
	Size  float64
	Color color.NRGBA
	Align Align
}

// Scene is the complete vector overlay for one annotation pass, sized to
// the base image canvas.
type Scene struct {
	Width  int
	Height int
	Items  []Primitive
}

// NewScene creates an empty scene for a w×h canvas.
func NewScene(w, h int) *Scene {
	return &Scene{Width: w, Height: h}
}

// Add appends primitives in draw order.
func (s *Scene) Add(items ...Primitive) {
	s.Items = append(s.Items, items...)
}
