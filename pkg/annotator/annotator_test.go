package annotator

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/dancolta/deep-problem-scanner/pkg/overlay"
	"github.com/dancolta/deep-problem-scanner/pkg/placement"
	"github.com/dancolta/deep-problem-scanner/pkg/textlayout"
	"github.com/dancolta/deep-problem-scanner/pkg/types"
)

// createTestScreenshot builds a flat synthetic page background.
func createTestScreenshot(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{245, 246, 248, 255})
		}
	}
	return img
}

func TestNew(t *testing.T) {
	a := New()
	if a == nil {
		t.Fatal("New() returned nil")
	}
	if a.config.MaxCards != 3 {
		t.Errorf("expected default MaxCards 3, got %d", a.config.MaxCards)
	}
}

func TestNewWithConfigZeroMaxCards(t *testing.T) {
	a := NewWithConfig(Config{})
	if a.config.MaxCards != 3 {
		t.Errorf("zero MaxCards should default to 3, got %d", a.config.MaxCards)
	}
}

func TestNewWithConfigFillsZeroFields(t *testing.T) {
	a := NewWithConfig(Config{MaxCards: 2, CornerRadius: 4})
	def := DefaultConfig()

	if a.config.MaxCards != 2 || a.config.CornerRadius != 4 {
		t.Errorf("explicit fields overwritten: %+v", a.config)
	}
	if a.config.LabelFontSize != def.LabelFontSize {
		t.Errorf("LabelFontSize = %v, want default %v", a.config.LabelFontSize, def.LabelFontSize)
	}
	if a.config.ImpactFontSize != def.ImpactFontSize {
		t.Errorf("ImpactFontSize = %v, want default %v", a.config.ImpactFontSize, def.ImpactFontSize)
	}
	if a.config.BadgeFontSize != def.BadgeFontSize {
		t.Errorf("BadgeFontSize = %v, want default %v", a.config.BadgeFontSize, def.BadgeFontSize)
	}
	if a.config.BadgeRadius != def.BadgeRadius {
		t.Errorf("BadgeRadius = %v, want default %v", a.config.BadgeRadius, def.BadgeRadius)
	}
	if a.config.BadgeGap != def.BadgeGap {
		t.Errorf("BadgeGap = %v, want default %v", a.config.BadgeGap, def.BadgeGap)
	}
	if a.config.ArrowWidth != def.ArrowWidth {
		t.Errorf("ArrowWidth = %v, want default %v", a.config.ArrowWidth, def.ArrowWidth)
	}
}

func TestAnnotatePartialConfigRendersText(t *testing.T) {
	// Geometry-only config, as a caller tuning just the card shape would
	// build it. Label text must still be painted inside the card.
	a := NewWithConfig(Config{MaxCards: 3, CornerRadius: 8, ArrowWidth: 2})
	base := createTestScreenshot(1280, 720)
	anns := []types.Annotation{{
		TargetRect: types.Rect{X: 500, Y: 300, Width: 200, Height: 80},
		Label:      "No CTA Button",
		Severity:   types.SeverityCritical,
	}}

	out, report := a.Annotate(base, anns)
	if report.RenderedCount != 1 {
		t.Fatalf("rendered count = %d, want 1", report.RenderedCount)
	}

	box := report.Cards[0].Box
	dark := 0
	for y := int(box.Y); y < int(box.Bottom()); y++ {
		for x := int(box.X); x < int(box.Right()); x++ {
			r, g, b, _ := out.At(x, y).RGBA()
			if r>>8 < 100 && g>>8 < 100 && b>>8 < 100 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("no label text pixels painted inside the card")
	}
}

func TestBadgeClampedOntoCanvas(t *testing.T) {
	a := New()
	card := Card{
		Annotation: types.Annotation{Label: "Top corner", Severity: types.SeverityInfo},
		Layout:     textlayout.Layout("Top corner", ""),
		Box:        types.Rect{X: 1640, Y: placement.EdgeMargin, Width: 260, Height: 48},
		Badge:      1,
	}

	scene := a.buildScene(1920, 1080, []Card{card})

	found := false
	for _, item := range scene.Items {
		badge, ok := item.(overlay.Circle)
		if !ok {
			continue
		}
		found = true
		if badge.Center.Y < badge.Radius {
			t.Errorf("badge clips top edge: center %v radius %v", badge.Center, badge.Radius)
		}
		if badge.Center.X > 1920-badge.Radius {
			t.Errorf("badge clips right edge: center %v radius %v", badge.Center, badge.Radius)
		}
	}
	if !found {
		t.Fatal("no badge circle in scene")
	}
}

func TestAnnotateDimensionsPreserved(t *testing.T) {
	a := New()
	base := createTestScreenshot(1920, 1080)
	anns := []types.Annotation{{
		TargetRect: types.Rect{X: 860, Y: 490, Width: 200, Height: 100},
		Label:      "No CTA Button",
		Severity:   types.SeverityCritical,
	}}

	out, report := a.Annotate(base, anns)
	if out.Bounds().Dx() != 1920 || out.Bounds().Dy() != 1080 {
		t.Errorf("output dimensions %v, want 1920x1080", out.Bounds())
	}
	if report.RenderedCount != 1 {
		t.Errorf("rendered count = %d, want 1", report.RenderedCount)
	}

	card := report.Cards[0]
	length := card.ArrowStart.Dist(anns[0].TargetRect.Center())
	if length < placement.MinArrowLen || length > placement.MaxArrowLen {
		t.Errorf("arrow length %v outside [%v,%v]", length, placement.MinArrowLen, placement.MaxArrowLen)
	}
}

func TestAnnotateEmptyListPassthrough(t *testing.T) {
	a := New()
	base := createTestScreenshot(640, 480)

	out, report := a.Annotate(base, nil)
	if out != base {
		t.Error("empty annotation list must return the base image unchanged")
	}
	if report.RenderedCount != 0 || len(report.RenderedLabels) != 0 {
		t.Errorf("unexpected report for empty input: %+v", report)
	}
}

func TestAnnotateDropsEmptyLabels(t *testing.T) {
	a := New()
	base := createTestScreenshot(1280, 720)
	anns := []types.Annotation{
		{TargetRect: types.Rect{X: 100, Y: 100, Width: 80, Height: 40}, Label: ""},
		{TargetRect: types.Rect{X: 500, Y: 300, Width: 80, Height: 40}, Label: "Missing alt text", Severity: types.SeverityWarning},
		{TargetRect: types.Rect{X: 900, Y: 500, Width: 80, Height: 40}, Label: "   "},
	}

	_, report := a.Annotate(base, anns)
	if report.RenderedCount != 1 {
		t.Fatalf("rendered count = %d, want 1", report.RenderedCount)
	}
	if report.RenderedLabels[0] != "Missing alt text" {
		t.Errorf("unexpected rendered labels: %v", report.RenderedLabels)
	}
	if report.Cards[0].Badge != 1 {
		t.Errorf("badge = %d, want 1", report.Cards[0].Badge)
	}
}

func TestAnnotateCapsAtThree(t *testing.T) {
	a := New()
	base := createTestScreenshot(1920, 1080)
	var anns []types.Annotation
	for i := 0; i < 5; i++ {
		anns = append(anns, types.Annotation{
			TargetRect: types.Rect{X: float64(200 + i*320), Y: float64(200 + i*120), Width: 120, Height: 50},
			Label:      "Issue",
			Severity:   types.SeverityInfo,
		})
	}

	_, report := a.Annotate(base, anns)
	if report.RenderedCount != 3 {
		t.Fatalf("rendered count = %d, want 3", report.RenderedCount)
	}
	for i, c := range report.Cards {
		if c.Badge != i+1 {
			t.Errorf("card %d badge = %d, want %d", i, c.Badge, i+1)
		}
	}
}

func TestAnnotateNoCardOverlaps(t *testing.T) {
	a := New()
	base := createTestScreenshot(1920, 1080)
	anns := []types.Annotation{
		{TargetRect: types.Rect{X: 800, Y: 400, Width: 120, Height: 60}, Label: "First issue", Severity: types.SeverityCritical},
		{TargetRect: types.Rect{X: 800, Y: 500, Width: 120, Height: 60}, Label: "Second issue", Severity: types.SeverityWarning},
		{TargetRect: types.Rect{X: 800, Y: 600, Width: 120, Height: 60}, Label: "Third issue", Severity: types.SeverityInfo},
	}

	_, report := a.Annotate(base, anns)

	for i, c := range report.Cards {
		if c.Fallback {
			continue // fallback placements are exempt from overlap constraints
		}
		if c.Box.Overlaps(anns[i].TargetRect, placement.OverlapPad) {
			t.Errorf("card %d overlaps its target", i)
		}
		for j := 0; j < i; j++ {
			if report.Cards[j].Fallback {
				continue
			}
			if c.Box.Overlaps(report.Cards[j].Box, placement.OverlapPad) {
				t.Errorf("card %d overlaps earlier card %d", i, j)
			}
		}
	}
}

func TestAnnotateArrowStartOnCardBoundary(t *testing.T) {
	a := New()
	base := createTestScreenshot(1920, 1080)
	anns := []types.Annotation{{
		TargetRect: types.Rect{X: 860, Y: 490, Width: 200, Height: 100},
		Label:      "No CTA Button",
		Severity:   types.SeverityCritical,
	}}

	_, report := a.Annotate(base, anns)
	c := report.Cards[0]

	onVertical := (c.ArrowStart.X == c.Box.X || c.ArrowStart.X == c.Box.Right()) &&
		c.ArrowStart.Y >= c.Box.Y && c.ArrowStart.Y <= c.Box.Bottom()
	onHorizontal := (c.ArrowStart.Y == c.Box.Y || c.ArrowStart.Y == c.Box.Bottom()) &&
		c.ArrowStart.X >= c.Box.X && c.ArrowStart.X <= c.Box.Right()
	if !onVertical && !onHorizontal {
		t.Errorf("arrow start %+v not on card boundary %+v", c.ArrowStart, c.Box)
	}
}

func TestAnnotateCornerTargetInsideMargins(t *testing.T) {
	a := New()
	base := createTestScreenshot(1920, 1080)
	anns := []types.Annotation{{
		TargetRect: types.Rect{X: 5, Y: 5, Width: 60, Height: 40},
		Label:      "Tiny logo",
		Severity:   types.SeverityInfo,
	}}

	_, report := a.Annotate(base, anns)
	box := report.Cards[0].Box
	if box.X < placement.EdgeMargin || box.Y < placement.EdgeMargin ||
		box.Right() > 1920-placement.EdgeMargin || box.Bottom() > 1080-placement.EdgeMargin {
		t.Errorf("card escapes canvas margins: %+v", box)
	}
}

func TestAnnotateDeterministic(t *testing.T) {
	base := createTestScreenshot(1280, 720)
	anns := []types.Annotation{
		{TargetRect: types.Rect{X: 300, Y: 200, Width: 150, Height: 80}, Label: "Weak headline copy",
			Severity: types.SeverityWarning, ConversionImpact: "visitors bounce before reading your offer"},
		{TargetRect: types.Rect{X: 700, Y: 400, Width: 180, Height: 60}, Label: "Form has 9 fields",
			Severity: types.SeverityCritical, ConversionImpact: "each extra field costs signups"},
	}

	encode := func() []byte {
		out, _ := New().Annotate(base, anns)
		var buf bytes.Buffer
		if err := png.Encode(&buf, out); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	}

	if !bytes.Equal(encode(), encode()) {
		t.Error("identical inputs produced different annotated images")
	}
}

func TestAnnotateCenteredTargetNotDegraded(t *testing.T) {
	a := New()
	base := createTestScreenshot(1920, 1080)
	anns := []types.Annotation{{
		TargetRect: types.Rect{X: 860, Y: 490, Width: 200, Height: 100},
		Label:      "No CTA Button",
		Severity:   types.SeverityCritical,
	}}

	_, report := a.Annotate(base, anns)
	if report.Degraded != 0 {
		t.Errorf("single centered target should never degrade, got %d", report.Degraded)
	}
	if report.Cards[0].Fallback {
		t.Error("card marked as fallback placement")
	}
}

func BenchmarkAnnotate(b *testing.B) {
	a := New()
	base := createTestScreenshot(1920, 1080)
	anns := []types.Annotation{
		{TargetRect: types.Rect{X: 860, Y: 490, Width: 200, Height: 100}, Label: "No CTA Button", Severity: types.SeverityCritical},
		{TargetRect: types.Rect{X: 200, Y: 150, Width: 300, Height: 90}, Label: "Hero image loads slowly", Severity: types.SeverityWarning},
		{TargetRect: types.Rect{X: 1400, Y: 800, Width: 180, Height: 70}, Label: "Footer links broken", Severity: types.SeverityInfo},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Annotate(base, anns)
	}
}
