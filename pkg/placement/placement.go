// Package placement computes non-overlapping callout card positions around
// target rectangles.
//
// The search is greedy and order-dependent: cards are committed one at a
// time and later cards only avoid earlier ones. This favors predictability
// over global optimality; identical inputs always produce identical layouts.
package placement

import (
	"math"
	"sort"

	"github.com/dancolta/deep-problem-scanner/pkg/types"
)

// Search constants.
const (
	// EdgeMargin is the minimum distance kept between a card and the
	// canvas border.
	EdgeMargin = 20.0

	// OverlapPad is the minimum clearance between a card and the target,
	// and between any two cards.
	OverlapPad = 10.0

	// Arrow length tolerances. Candidates outside [MinArrowLen, MaxArrowLen]
	// are rejected; the selector prefers lengths closest to IdealArrowLen.
	MinArrowLen   = 50.0
	MaxArrowLen   = 150.0
	IdealArrowLen = 100.0

	// CornerInset keeps arrow attachment points away from card corners.
	CornerInset = 12.0

	// FallbackGap is the target-to-card gap used for degraded placements.
	FallbackGap = 20.0
)

// gapSteps is the fixed ascending sequence of target-to-card distances
// tried in each direction.
var gapSteps = []float64{30, 50, 70, 90, 110, 130}

// directions enumerated for each target, in deterministic order.
type direction int

const (
	dirRight direction = iota
	dirLeft
	dirAbove
	dirBelow
)

var allDirections = []direction{dirRight, dirLeft, dirAbove, dirBelow}

// Candidate is one tentative card placement under consideration. Candidates
// are ephemeral; only the selected box survives as a PlacedCard.
type Candidate struct {
	Box         types.Rect
	ArrowStart  types.Point
	ArrowLength float64
}

// PlacedCard is a committed placement: the card box plus the final arrow
// endpoints filled in by the arrow router.
type PlacedCard struct {
	Box        types.Rect
	ArrowStart types.Point
	ArrowEnd   types.Point
}

// Generate enumerates candidate card placements for one target. Each of the
// four cardinal directions is tried at every gap step; the card is centered
// on the target's perpendicular axis and clamped inside the canvas minus the
// edge margin. A candidate survives only if it clears the target and every
// already-committed card and its arrow length falls within tolerance.
//
// The committed list is read-only here; appending the selected card is the
// caller's responsibility.
func Generate(target types.Rect, cardW, cardH float64, canvasW, canvasH int, placed []PlacedCard) []Candidate {
	tc := target.Center()
	var out []Candidate
	for _, dir := range allDirections {
		for _, gap := range gapSteps {
			box := positionCard(target, cardW, cardH, dir, gap)
			box = clampBox(box, float64(canvasW), float64(canvasH))

			if box.Overlaps(target, OverlapPad) {
				continue
			}
			if overlapsAny(box, placed) {
				continue
			}

			start := facingEdgePoint(box, dir, tc)
			length := start.Dist(tc)
			if length < MinArrowLen || length > MaxArrowLen {
				continue
			}
			out = append(out, Candidate{Box: box, ArrowStart: start, ArrowLength: length})
		}
	}
	return out
}

// Select picks the candidate whose arrow length is closest to the ideal.
// Ties keep generation order, which is fixed, so selection is deterministic.
// ok is false when no candidate survived the constraints.
func Select(candidates []Candidate) (best Candidate, ok bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].ArrowLength-IdealArrowLen) < math.Abs(sorted[j].ArrowLength-IdealArrowLen)
	})
	return sorted[0], true
}

// Fallback produces the degraded placement used when no candidate survives:
// right of the target at a small fixed gap, clamped fully inside the canvas.
// It is accepted even when it violates the overlap or length constraints.
func Fallback(target types.Rect, cardW, cardH float64, canvasW, canvasH int) Candidate {
	box := positionCard(target, cardW, cardH, dirRight, FallbackGap)
	box = clampBox(box, float64(canvasW), float64(canvasH))
	tc := target.Center()
	start := facingEdgePoint(box, dirRight, tc)
	return Candidate{Box: box, ArrowStart: start, ArrowLength: start.Dist(tc)}
}

// positionCard offsets a card from the target edge by gap in the given
// direction, centered on the perpendicular axis.
func positionCard(target types.Rect, cardW, cardH float64, dir direction, gap float64) types.Rect {
	tc := target.Center()
	switch dir {
	case dirRight:
		return types.Rect{X: target.Right() + gap, Y: tc.Y - cardH/2, Width: cardW, Height: cardH}
	case dirLeft:
		return types.Rect{X: target.X - gap - cardW, Y: tc.Y - cardH/2, Width: cardW, Height: cardH}
	case dirAbove:
		return types.Rect{X: tc.X - cardW/2, Y: target.Y - gap - cardH, Width: cardW, Height: cardH}
	default: // dirBelow
		return types.Rect{X: tc.X - cardW/2, Y: target.Bottom() + gap, Width: cardW, Height: cardH}
	}
}

// clampBox forces the card inside [EdgeMargin, canvas−card−EdgeMargin] on
// both axes. When the canvas is too small for the margin the card pins to
// the margin on the near side.
func clampBox(box types.Rect, canvasW, canvasH float64) types.Rect {
	box.X = clampAxis(box.X, canvasW-box.Width)
	box.Y = clampAxis(box.Y, canvasH-box.Height)
	return box
}

func clampAxis(v, max float64) float64 {
	hi := max - EdgeMargin
	if hi < EdgeMargin {
		hi = EdgeMargin
	}
	if v < EdgeMargin {
		return EdgeMargin
	}
	if v > hi {
		return hi
	}
	return v
}

// facingEdgePoint returns the point on the card edge that faces the target,
// aligned with the target center but clamped away from the corners.
func facingEdgePoint(box types.Rect, dir direction, targetCenter types.Point) types.Point {
	switch dir {
	case dirRight: // card sits right of target, arrow leaves the left edge
		return types.Point{X: box.X, Y: clampSpan(targetCenter.Y, box.Y, box.Bottom())}
	case dirLeft:
		return types.Point{X: box.Right(), Y: clampSpan(targetCenter.Y, box.Y, box.Bottom())}
	case dirAbove: // card sits above target, arrow leaves the bottom edge
		return types.Point{X: clampSpan(targetCenter.X, box.X, box.Right()), Y: box.Bottom()}
	default: // dirBelow
		return types.Point{X: clampSpan(targetCenter.X, box.X, box.Right()), Y: box.Y}
	}
}

// clampSpan keeps v within [lo+CornerInset, hi−CornerInset].
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

func overlapsAny(box types.Rect, placed []PlacedCard) bool {
	for _, p := range placed {
		if box.Overlaps(p.Box, OverlapPad) {
			return true
		}
	}
	return false
}
