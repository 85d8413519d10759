package types

import "math"

// Severity classifies how badly a detected issue hurts the page.
type Severity string

// Issue severities returned by the vision model.
const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// NormalizeSeverity maps arbitrary model output onto a known severity,
// defaulting to info.
func NormalizeSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return Severity(s)
	}
	return SeverityInfo
}

// Point is a position in image-pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance to another point.
func (p Point) Dist(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect is an axis-aligned rectangle in image-pixel coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Overlaps reports whether two rectangles overlap when both are grown by
// pad on every side.
func (r Rect) Overlaps(other Rect, pad float64) bool {
	return r.X-pad < other.Right()+pad &&
		r.Right()+pad > other.X-pad &&
		r.Y-pad < other.Bottom()+pad &&
		r.Bottom()+pad > other.Y-pad
}

// Contains reports whether the point lies strictly inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X > r.X && p.X < r.Right() && p.Y > r.Y && p.Y < r.Bottom()
}

// ClampTo trims the rectangle so it lies within a w×h canvas. A rectangle
// entirely outside the canvas collapses to a zero-size rect on the border.
func (r Rect) ClampTo(w, h float64) Rect {
	x0 := clamp(r.X, 0, w)
	y0 := clamp(r.Y, 0, h)
	x1 := clamp(r.Right(), 0, w)
	y1 := clamp(r.Bottom(), 0, h)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Annotation is one issue to call out on the screenshot, in the same pixel
// coordinate system as the decoded base image.
type Annotation struct {
	TargetRect       Rect     `json:"target_rect"`
	Label            string   `json:"label"`
	Severity         Severity `json:"severity"`
	Description      string   `json:"description"`
	ConversionImpact string   `json:"conversion_impact,omitempty"`
}

// Box is a normalized bounding box with coordinates in [0,1] range, as
// returned by vision models.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ToPixels converts the normalized box to a pixel-space rectangle on a
// w×h canvas.
func (b Box) ToPixels(w, h int) Rect {
	fw, fh := float64(w), float64(h)
	return Rect{
		X:      clamp(b.X, 0, 1) * fw,
		Y:      clamp(b.Y, 0, 1) * fh,
		Width:  clamp(b.W, 0, 1) * fw,
		Height: clamp(b.H, 0, 1) * fh,
	}.ClampTo(fw, fh)
}

// Issue is a single finding in the raw vision-model response.
type Issue struct {
	Label            string `json:"label"`
	Severity         string `json:"severity"`
	Description      string `json:"description"`
	ConversionImpact string `json:"conversion_impact"`
	Box              Box    `json:"box"`
}

// IssueReport contains the complete issue-detection result from the vision
// model before conversion to pixel space.
type IssueReport struct {
	Issues  []Issue `json:"issues"`
	Summary string  `json:"summary"`
}
