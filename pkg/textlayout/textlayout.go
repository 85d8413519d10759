// Package textlayout wraps callout text into fixed-width card lines and
// computes the resulting card dimensions.
package textlayout

import (
	"math"
	"strings"
)

// Card geometry constants. Card width is fixed for a whole annotation pass;
// only the height varies with the wrapped line counts.
const (
	CardWidth        = 260.0
	CardPadding      = 14.0
	AccentBarWidth   = 4.0
	LabelLineHeight  = 20.0
	ImpactLineHeight = 16.0
	ImpactGap        = 8.0

	// ContentWidth is the horizontal space available for text inside a card.
	ContentWidth = CardWidth - 2*CardPadding - AccentBarWidth

	// Average glyph widths for the two faces used on cards. The label uses
	// a 15px bold face, the impact line a 12px regular face.
	labelGlyphWidth  = 8.0
	impactGlyphWidth = 6.5
)

// Per-line character budgets derived from the content width, rounded down
// to whole characters.
var (
	LabelMaxChars  = int(math.Floor(ContentWidth / labelGlyphWidth))
	ImpactMaxChars = int(math.Floor(ContentWidth / impactGlyphWidth))
)

const ellipsis = "…"

// Wrap splits text into lines of at most maxChars characters using greedy
// word wrap. A single word longer than the limit is hard-truncated with an
// ellipsis. Empty or whitespace-only input yields no lines.
func Wrap(text string, maxChars int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if maxChars < 2 {
		maxChars = 2
	}

	var lines []string
	var line strings.Builder
	for _, word := range words {
		if len([]rune(word)) > maxChars {
			word = string([]rune(word)[:maxChars-1]) + ellipsis
		}
		if line.Len() == 0 {
			line.WriteString(word)
			continue
		}
		if len([]rune(line.String()))+1+len([]rune(word)) > maxChars {
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
			continue
		}
		line.WriteByte(' ')
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// CardHeight computes the card height for the given wrapped line counts.
func CardHeight(labelLines, impactLines int) float64 {
	h := 2*CardPadding + float64(labelLines)*LabelLineHeight
	if impactLines > 0 {
		h += ImpactGap + float64(impactLines)*ImpactLineHeight
	}
	return h
}

// CardLayout is the wrapped text content of one card plus its dimensions.
type CardLayout struct {
	LabelLines  []string
	ImpactLines []string
	Width       float64
	Height      float64
}

// Layout wraps a label and an optional impact string and sizes the card.
// An empty label produces a zero-line layout; callers must treat that as
// "skip this annotation".
func Layout(label, impact string) CardLayout {
	labelLines := Wrap(label, LabelMaxChars)
	impactLines := Wrap(impact, ImpactMaxChars)
	return CardLayout{
		LabelLines:  labelLines,
		ImpactLines: impactLines,
		Width:       CardWidth,
		Height:      CardHeight(len(labelLines), len(impactLines)),
	}
}
