package annotator

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dancolta/deep-problem-scanner/pkg/types"
)

// Base palette.
var (
	labelTextColor = color.NRGBA{R: 32, G: 33, B: 36, A: 255}
	badgeTextColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	severityAccents = map[types.Severity]color.NRGBA{
		types.SeverityCritical: {R: 217, G: 48, B: 37, A: 255},
		types.SeverityWarning:  {R: 234, G: 140, B: 0, A: 255},
		types.SeverityInfo:     {R: 26, G: 115, B: 232, A: 255},
	}
)

// accentColor returns the accent for a severity, defaulting to info.
func accentColor(sev types.Severity) color.NRGBA {
	if c, ok := severityAccents[sev]; ok {
		return c
	}
	return severityAccents[types.SeverityInfo]
}

// tint blends a color toward white in Lab space. amount 0 keeps the color,
// amount 1 yields white.
func tint(c color.NRGBA, amount float64) color.NRGBA {
	return blendLab(c, colorful.Color{R: 1, G: 1, B: 1}, amount)
}

// shade blends a color toward black in Lab space.
func shade(c color.NRGBA, amount float64) color.NRGBA {
	return blendLab(c, colorful.Color{}, amount)
}

func blendLab(c color.NRGBA, toward colorful.Color, amount float64) color.NRGBA {
	base, _ := colorful.MakeColor(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	mixed := base.BlendLab(toward, amount).Clamped()
	r, g, b := mixed.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: c.A}
}
