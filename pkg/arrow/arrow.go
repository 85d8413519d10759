// Package arrow routes the straight connector between a committed callout
// card and its target rectangle.
package arrow

import (
	"math"

	"github.com/dancolta/deep-problem-scanner/pkg/types"
)

const (
	// TargetMargin offsets the arrow tip outward from the target edge so
	// the arrowhead touches the element boundary without covering it.
	TargetMargin = 6.0

	// CornerInset keeps the exit point away from the exact card corners.
	// The clamp is load-bearing: the tangent formulas are unstable near
	// the ±45° quadrant boundaries.
	CornerInset = 12.0

	// Arrowhead geometry: length of the triangle and half-angle off the
	// line direction.
	HeadLength    = 12.0
	headHalfAngle = math.Pi / 6
)

// Arrow is a routed connector: a straight segment from the card boundary to
// just outside the target edge, plus the arrowhead triangle at the tip.
type Arrow struct {
	Start types.Point
	End   types.Point
	Head  [3]types.Point
}

// Route computes the connector between a card and its target. The exit edge
// is chosen by bucketing the card-center→target-center angle into ±45°
// quadrants; the exit point follows the tangent along that edge, clamped to
// its interior sub-range. The end point sits on the target's near edge,
// offset outward by TargetMargin.
func Route(card, target types.Rect) Arrow {
	cc := card.Center()
	tc := target.Center()

	start := exitPoint(card, cc, tc)
	if card.Contains(start) {
		// Degenerate tangent result; snap to the nearest edge.
		start = snapToEdge(card, start)
	}

	end := entryPoint(target, tc, start)

	dir := math.Atan2(end.Y-start.Y, end.X-start.X)
	return Arrow{
		Start: start,
		End:   end,
		Head: [3]types.Point{
			end,
			{X: end.X - HeadLength*math.Cos(dir-headHalfAngle), Y: end.Y - HeadLength*math.Sin(dir-headHalfAngle)},
			{X: end.X - HeadLength*math.Cos(dir+headHalfAngle), Y: end.Y - HeadLength*math.Sin(dir+headHalfAngle)},
		},
	}
}

// exitPoint picks the card edge facing the target and slides along it using
// the tangent of the center-to-center angle.
func exitPoint(card types.Rect, cc, tc types.Point) types.Point {
	angle := math.Atan2(tc.Y-cc.Y, tc.X-cc.X)
	halfW := card.Width / 2
	halfH := card.Height / 2

	switch {
	case angle >= -math.Pi/4 && angle < math.Pi/4: // right edge
		y := cc.Y + halfW*math.Tan(angle)
		return types.Point{X: card.Right(), Y: clampSpan(y, card.Y, card.Bottom())}
	case angle >= math.Pi/4 && angle < 3*math.Pi/4: // bottom edge
		x := cc.X + halfH/math.Tan(angle)
		return types.Point{X: clampSpan(x, card.X, card.Right()), Y: card.Bottom()}
	case angle >= 3*math.Pi/4 || angle < -3*math.Pi/4: // left edge
		y := cc.Y - halfW*math.Tan(angle)
		return types.Point{X: card.X, Y: clampSpan(y, card.Y, card.Bottom())}
	default: // top edge
		x := cc.X - halfH/math.Tan(angle)
		return types.Point{X: clampSpan(x, card.X, card.Right()), Y: card.Y}
	}
}

// entryPoint intersects the ray from the target center toward the arrow
// start with the target boundary, then backs off outward by TargetMargin.
func entryPoint(target types.Rect, tc, start types.Point) types.Point {
	dx := start.X - tc.X
	dy := start.Y - tc.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		// Start coincides with the target center; point the arrow upward.
		return types.Point{X: tc.X, Y: target.Y - TargetMargin}
	}

	halfW := target.Width / 2
	halfH := target.Height / 2
	t := math.Inf(1)
	if dx != 0 {
		t = halfW / math.Abs(dx)
	}
	if dy != 0 {
		if ty := halfH / math.Abs(dy); ty < t {
			t = ty
		}
	}
	if math.IsInf(t, 1) {
		t = 0
	}

	edge := types.Point{X: tc.X + dx*t, Y: tc.Y + dy*t}
	return types.Point{
		X: edge.X + dx/dist*TargetMargin,
		Y: edge.Y + dy/dist*TargetMargin,
	}
}

// snapToEdge projects a point onto the nearest of the four card edges.
func snapToEdge(card types.Rect, p types.Point) types.Point {
	dLeft := p.X - card.X
	dRight := card.Right() - p.X
	dTop := p.Y - card.Y
	dBottom := card.Bottom() - p.Y

	min := dLeft
	snapped := types.Point{X: card.X, Y: clampSpan(p.Y, card.Y, card.Bottom())}
	if dRight < min {
		min = dRight
		snapped = types.Point{X: card.Right(), Y: clampSpan(p.Y, card.Y, card.Bottom())}
	}
	if dTop < min {
		min = dTop
		snapped = types.Point{X: clampSpan(p.X, card.X, card.Right()), Y: card.Y}
	}
	if dBottom < min {
		snapped = types.Point{X: clampSpan(p.X, card.X, card.Right()), Y: card.Bottom()}
	}
	return snapped
}

func clampSpan(v, lo, hi float64) float64 {
	min := lo + CornerInset
	max := hi - CornerInset
	if max < min {
		return (lo + hi) / 2
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
