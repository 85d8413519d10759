// Package annotator turns a screenshot and a list of detected issues into
// an annotated image with labeled callout cards, connector arrows, and
// numbered badges.
//
// Processing is a single deterministic pass: annotations are placed greedily
// in input order, each new card avoiding the target and every card committed
// before it. Nothing persists across calls; concurrent calls on different
// images need no coordination.
package annotator

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dancolta/deep-problem-scanner/pkg/arrow"
	"github.com/dancolta/deep-problem-scanner/pkg/overlay"
	"github.com/dancolta/deep-problem-scanner/pkg/placement"
	"github.com/dancolta/deep-problem-scanner/pkg/textlayout"
	"github.com/dancolta/deep-problem-scanner/pkg/types"
)

// Config holds annotator rendering parameters.
type Config struct {
	MaxCards       int
	CornerRadius   float64
	ArrowWidth     float64
	BadgeRadius    float64
	BadgeGap       float64
	LabelFontSize  float64
	ImpactFontSize float64
	BadgeFontSize  float64
}

// DefaultConfig returns the configuration used for outreach screenshots.
func DefaultConfig() Config {
	return Config{
		MaxCards:       3,
		CornerRadius:   8,
		ArrowWidth:     2,
		BadgeRadius:    14,
		BadgeGap:       4,
		LabelFontSize:  15,
		ImpactFontSize: 12,
		BadgeFontSize:  13,
	}
}

// Annotator renders issue callouts onto screenshots.
type Annotator struct {
	config Config
	logger *log.Logger
}

// New creates an Annotator with default configuration.
func New() *Annotator {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an Annotator with custom configuration. Zero-valued
// fields fall back to their defaults so partial configs stay renderable.
func NewWithConfig(config Config) *Annotator {
	def := DefaultConfig()
	if config.MaxCards <= 0 {
		config.MaxCards = def.MaxCards
	}
	if config.CornerRadius <= 0 {
		config.CornerRadius = def.CornerRadius
	}
	if config.ArrowWidth <= 0 {
		config.ArrowWidth = def.ArrowWidth
	}
	if config.BadgeRadius <= 0 {
		config.BadgeRadius = def.BadgeRadius
	}
	if config.BadgeGap <= 0 {
		config.BadgeGap = def.BadgeGap
	}
	if config.LabelFontSize <= 0 {
		config.LabelFontSize = def.LabelFontSize
	}
	if config.ImpactFontSize <= 0 {
		config.ImpactFontSize = def.ImpactFontSize
	}
	if config.BadgeFontSize <= 0 {
		config.BadgeFontSize = def.BadgeFontSize
	}
	return &Annotator{
		config: config,
		logger: log.New(io.Discard),
	}
}

// SetLogger routes diagnostics (degraded placements) to the given logger.
func (a *Annotator) SetLogger(l *log.Logger) {
	if l != nil {
		a.logger = l
	}
}

// Card is one committed callout: the annotation it renders, its card box,
// the routed arrow endpoints, and its badge number.
type Card struct {
	Annotation types.Annotation
	Layout     textlayout.CardLayout
	Box        types.Rect
	ArrowStart types.Point
	ArrowEnd   types.Point
	ArrowHead  [3]types.Point
	Badge      int
	Fallback   bool
}

// Report summarizes what was rendered, for downstream email composition.
type Report struct {
	RenderedCount  int
	RenderedLabels []string
	Degraded       int
	Cards          []Card
}

// Annotate composites callouts for the given annotations onto the base
// image and returns a new image of identical dimensions. When no renderable
// annotation remains after filtering, the base image is returned unchanged.
func (a *Annotator) Annotate(base image.Image, annotations []types.Annotation) (image.Image, Report) {
	bounds := base.Bounds()
	canvasW, canvasH := bounds.Dx(), bounds.Dy()

	eligible := a.filter(annotations, canvasW, canvasH)
	if len(eligible) == 0 {
		return base, Report{}
	}

	cards := a.place(eligible, canvasW, canvasH)

	report := Report{
		RenderedCount: len(cards),
		Cards:         cards,
	}
	for _, c := range cards {
		report.RenderedLabels = append(report.RenderedLabels, c.Annotation.Label)
		if c.Fallback {
			report.Degraded++
		}
	}

	scene := a.buildScene(canvasW, canvasH, cards)
	return scene.Render(base), report
}

// filter drops empty-label annotations, clamps targets to the canvas, and
// caps the list at MaxCards.
func (a *Annotator) filter(annotations []types.Annotation, canvasW, canvasH int) []types.Annotation {
	var out []types.Annotation
	for _, ann := range annotations {
		if strings.TrimSpace(ann.Label) == "" {
			continue
		}
		ann.TargetRect = ann.TargetRect.ClampTo(float64(canvasW), float64(canvasH))
		out = append(out, ann)
		if len(out) == a.config.MaxCards {
			break
		}
	}
	return out
}

// place runs the greedy placement fold: for each annotation the candidate
// set is generated against the cards committed so far, the best candidate
// (or the fallback) is selected, the arrow is routed, and the committed
// list grows by one. Earlier cards are never revisited.
func (a *Annotator) place(annotations []types.Annotation, canvasW, canvasH int) []Card {
	placed := make([]placement.PlacedCard, 0, len(annotations))
	cards := make([]Card, 0, len(annotations))

	for i, ann := range annotations {
		layout := textlayout.Layout(ann.Label, ann.ConversionImpact)

		candidates := placement.Generate(ann.TargetRect, layout.Width, layout.Height, canvasW, canvasH, placed)
		selected, ok := placement.Select(candidates)
		if !ok {
			selected = placement.Fallback(ann.TargetRect, layout.Width, layout.Height, canvasW, canvasH)
			a.logger.Warn("no valid card placement, using fallback",
				"label", ann.Label, "target", fmt.Sprintf("%.0f,%.0f", ann.TargetRect.X, ann.TargetRect.Y))
		}

		routed := arrow.Route(selected.Box, ann.TargetRect)
		placed = append(placed, placement.PlacedCard{
			Box:        selected.Box,
			ArrowStart: routed.Start,
			ArrowEnd:   routed.End,
		})
		cards = append(cards, Card{
			Annotation: ann,
			Layout:     layout,
			Box:        selected.Box,
			ArrowStart: routed.Start,
			ArrowEnd:   routed.End,
			ArrowHead:  routed.Head,
			Badge:      i + 1,
			Fallback:   !ok,
		})
	}
	return cards
}

// buildScene converts committed cards into the typed primitive list.
func (a *Annotator) buildScene(canvasW, canvasH int, cards []Card) *overlay.Scene {
	scene := overlay.NewScene(canvasW, canvasH)

	for _, card := range cards {
		accent := accentColor(card.Annotation.Severity)

		// Card body with accent wash, border, and drop shadow.
		scene.Add(overlay.RoundedRect{
			Rect:        card.Box,
			Radius:      a.config.CornerRadius,
			Fill:        tint(accent, 0.94),
			Stroke:      tint(accent, 0.60),
			StrokeWidth: 1,
			Shadow:      true,
		})
		// Left accent bar.
		scene.Add(overlay.RoundedRect{
			Rect: types.Rect{
				X:      card.Box.X,
				Y:      card.Box.Y,
				Width:  textlayout.AccentBarWidth,
				Height: card.Box.Height,
			},
			Radius: 2,
			Fill:   accent,
		})

		// Wrapped label and impact text, inside the card bounds.
		textX := card.Box.X + textlayout.AccentBarWidth + textlayout.CardPadding
		y := card.Box.Y + textlayout.CardPadding
		for _, line := range card.Layout.LabelLines {
			scene.Add(overlay.TextRun{
				Pos:   types.Point{X: textX, Y: y},
				Text:  line,
				Bold:  true,
				Size:  a.config.LabelFontSize,
				Color: labelTextColor,
			})
			y += textlayout.LabelLineHeight
		}
		if len(card.Layout.ImpactLines) > 0 {
			y += textlayout.ImpactGap
			impactColor := shade(accent, 0.20)
			for _, line := range card.Layout.ImpactLines {
				scene.Add(overlay.TextRun{
					Pos:   types.Point{X: textX, Y: y},
					Text:  line,
					Size:  a.config.ImpactFontSize,
					Color: impactColor,
				})
				y += textlayout.ImpactLineHeight
			}
		}

		// Numbered badge, anchored above the card's top-right corner. A card
		// clamped against the canvas margin would push the badge off-canvas,
		// so the center is pulled back inside; the badge then overlaps the
		// card corner instead of clipping.
		badgeCenter := types.Point{
			X: card.Box.Right() - a.config.BadgeRadius,
			Y: card.Box.Y - a.config.BadgeRadius - a.config.BadgeGap,
		}
		if badgeCenter.Y < a.config.BadgeRadius {
			badgeCenter.Y = a.config.BadgeRadius
		}
		if badgeCenter.X > float64(canvasW)-a.config.BadgeRadius {
			badgeCenter.X = float64(canvasW) - a.config.BadgeRadius
		}
		scene.Add(overlay.Circle{
			Center:      badgeCenter,
			Radius:      a.config.BadgeRadius,
			Fill:        accent,
			Stroke:      color.NRGBA{R: 255, G: 255, B: 255, A: 255},
			StrokeWidth: 2,
		})
		scene.Add(overlay.TextRun{
			Pos:   types.Point{X: badgeCenter.X, Y: badgeCenter.Y - a.config.BadgeFontSize*0.56},
			Text:  fmt.Sprintf("%d", card.Badge),
			Bold:  true,
			Size:  a.config.BadgeFontSize,
			Color: badgeTextColor,
			Align: overlay.AlignCenter,
		})

		// Connector arrow and arrowhead.
		scene.Add(overlay.Line{
			From:  card.ArrowStart,
			To:    card.ArrowEnd,
			Color: accent,
			Width: a.config.ArrowWidth,
		})
		scene.Add(overlay.Polygon{
			Points: []types.Point{card.ArrowHead[0], card.ArrowHead[1], card.ArrowHead[2]},
			Fill:   accent,
		})
	}
	return scene
}
