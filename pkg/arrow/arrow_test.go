package arrow

import (
	"math"
	"testing"

	"github.com/dancolta/deep-problem-scanner/pkg/types"
)

// onBoundary reports whether p lies exactly on the card's rectangle boundary.
func onBoundary(card types.Rect, p types.Point) bool {
	onVertical := (p.X == card.X || p.X == card.Right()) &&
		p.Y >= card.Y && p.Y <= card.Bottom()
	onHorizontal := (p.Y == card.Y || p.Y == card.Bottom()) &&
		p.X >= card.X && p.X <= card.Right()
	return onVertical || onHorizontal
}

func TestRouteStartOnBoundary(t *testing.T) {
	target := types.Rect{X: 860, Y: 490, Width: 200, Height: 100}
	cards := map[string]types.Rect{
		"right": {X: 1150, Y: 516, Width: 260, Height: 48},
		"left":  {X: 510, Y: 516, Width: 260, Height: 48},
		"above": {X: 830, Y: 392, Width: 260, Height: 48},
		"below": {X: 830, Y: 650, Width: 260, Height: 48},
		"diag":  {X: 1200, Y: 200, Width: 260, Height: 48},
	}

	for name, card := range cards {
		a := Route(card, target)
		if !onBoundary(card, a.Start) {
			t.Errorf("%s: arrow start %+v not on card boundary %+v", name, a.Start, card)
		}
		if card.Contains(a.Start) {
			t.Errorf("%s: arrow start %+v strictly inside the card", name, a.Start)
		}
	}
}

func TestRouteEdgeBuckets(t *testing.T) {
	target := types.Rect{X: 900, Y: 500, Width: 100, Height: 60}

	// Card left of the target: arrow exits the right edge.
	card := types.Rect{X: 500, Y: 506, Width: 260, Height: 48}
	a := Route(card, target)
	if a.Start.X != card.Right() {
		t.Errorf("left card: expected exit on right edge, got %+v", a.Start)
	}

	// Card above the target: arrow exits the bottom edge.
	card = types.Rect{X: 820, Y: 300, Width: 260, Height: 48}
	a = Route(card, target)
	if a.Start.Y != card.Bottom() {
		t.Errorf("above card: expected exit on bottom edge, got %+v", a.Start)
	}

	// Card below the target: arrow exits the top edge.
	card = types.Rect{X: 820, Y: 700, Width: 260, Height: 48}
	a = Route(card, target)
	if a.Start.Y != card.Y {
		t.Errorf("below card: expected exit on top edge, got %+v", a.Start)
	}
}

func TestRouteQuadrantBoundaries(t *testing.T) {
	// Targets placed exactly on the ±45° and ±135° diagonals from the card
	// center. The tangent formulas blow up near these angles; the edge
	// clamp must keep the exit point on the boundary regardless.
	card := types.Rect{X: 900, Y: 500, Width: 200, Height: 200}
	cc := card.Center()

	diagonals := []types.Point{
		{X: cc.X + 300, Y: cc.Y + 300}, // +45°
		{X: cc.X - 300, Y: cc.Y + 300}, // +135°
		{X: cc.X - 300, Y: cc.Y - 300}, // -135°
		{X: cc.X + 300, Y: cc.Y - 300}, // -45°
	}
	for i, p := range diagonals {
		target := types.Rect{X: p.X - 20, Y: p.Y - 20, Width: 40, Height: 40}
		a := Route(card, target)
		if !onBoundary(card, a.Start) {
			t.Errorf("diagonal %d: start %+v off boundary", i, a.Start)
		}
		// Exit point must honor the corner inset.
		nearCornerX := a.Start.X < card.X+CornerInset || a.Start.X > card.Right()-CornerInset
		nearCornerY := a.Start.Y < card.Y+CornerInset || a.Start.Y > card.Bottom()-CornerInset
		if nearCornerX && nearCornerY {
			t.Errorf("diagonal %d: start %+v inside the corner inset", i, a.Start)
		}
	}
}

func TestRouteEndOffTargetEdge(t *testing.T) {
	target := types.Rect{X: 860, Y: 490, Width: 200, Height: 100}
	card := types.Rect{X: 1200, Y: 516, Width: 260, Height: 48}

	a := Route(card, target)

	// The end point must sit outside the target by the safety margin.
	if target.Contains(a.End) {
		t.Errorf("arrow end %+v inside target %+v", a.End, target)
	}
	// Card is directly right: the tip lands TargetMargin past the right edge.
	wantX := target.Right() + TargetMargin
	if math.Abs(a.End.X-wantX) > 1e-9 {
		t.Errorf("arrow end X = %v, want %v", a.End.X, wantX)
	}
}

func TestRouteArrowheadGeometry(t *testing.T) {
	target := types.Rect{X: 400, Y: 400, Width: 100, Height: 100}
	card := types.Rect{X: 700, Y: 420, Width: 260, Height: 60}

	a := Route(card, target)

	if a.Head[0] != a.End {
		t.Errorf("arrowhead tip %+v should equal arrow end %+v", a.Head[0], a.End)
	}
	// Both wings are HeadLength away from the tip.
	for i := 1; i <= 2; i++ {
		d := a.Head[i].Dist(a.End)
		if math.Abs(d-HeadLength) > 1e-9 {
			t.Errorf("wing %d distance %v, want %v", i, d, HeadLength)
		}
	}
	// Wings are symmetric about the shaft.
	d1 := a.Head[1].Dist(a.Start)
	d2 := a.Head[2].Dist(a.Start)
	if math.Abs(d1-d2) > 1e-6 {
		t.Errorf("asymmetric arrowhead: %v vs %v", d1, d2)
	}
}

func TestRouteDegenerateOverlap(t *testing.T) {
	// Card centered exactly on the target center. Routing must still return
	// a start on the boundary and not panic.
	card := types.Rect{X: 400, Y: 400, Width: 200, Height: 100}
	target := types.Rect{X: 450, Y: 425, Width: 100, Height: 50}

	a := Route(card, target)
	if card.Contains(a.Start) {
		t.Errorf("degenerate case: start %+v inside card", a.Start)
	}
}

func TestRouteDeterministic(t *testing.T) {
	card := types.Rect{X: 1150, Y: 516, Width: 260, Height: 48}
	target := types.Rect{X: 860, Y: 490, Width: 200, Height: 100}
	a := Route(card, target)
	b := Route(card, target)
	if a != b {
		t.Error("Route is not deterministic")
	}
}
