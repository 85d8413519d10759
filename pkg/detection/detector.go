// Package detection asks a vision model to find conversion problems on a
// landing-page screenshot and converts its findings into renderable
// annotations.
package detection

import (
	"context"
	"sort"
	"strings"

	"github.com/dancolta/deep-problem-scanner/pkg/client"
	"github.com/dancolta/deep-problem-scanner/pkg/types"
)

// SimpleTestPrompt for testing if the model can see images
const SimpleTestPrompt = `What do you see in this image? Describe it briefly.`

// DefaultPrompt asks for landing-page conversion issues with normalized boxes.
const DefaultPrompt = `You are a landing-page conversion auditor looking at a website screenshot.

Return JSON only:
{
  "issues": [
    {
      "label": "string (short, <= 70 chars)",
      "severity": "critical" | "warning" | "info",
      "description": "one factual sentence",
      "conversion_impact": "one sentence on how this loses the visitor",
      "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}
    }
  ],
  "summary": "one sentence overall assessment"
}

HARD RULES
- All box coordinates are normalized to [0,1] (NOT pixels).
- The box must tightly cover the page element the issue is about.
- Report at most 3 issues, most damaging first.
- Only report issues you can actually see in the screenshot.
- If the page looks fine, return: {"issues":[],"summary":"no significant issues found"}
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// severityRank orders issues for the cap: worst first.
var severityRank = map[types.Severity]int{
	types.SeverityCritical: 0,
	types.SeverityWarning:  1,
	types.SeverityInfo:     2,
}

// Detector finds page issues using a vision model.
type Detector struct {
	client    client.VisionClient
	maxIssues int
}

// NewDetector creates a new detector with a vision client.
func NewDetector(client client.VisionClient) *Detector {
	return &Detector{client: client, maxIssues: 3}
}

// DetectIssues analyzes a screenshot and returns the model's issue report.
func (d *Detector) DetectIssues(ctx context.Context, model, imageB64 string) (*types.IssueReport, error) {
	return d.DetectIssuesWithPrompt(ctx, model, imageB64, DefaultPrompt)
}

// DetectIssuesWithPrompt analyzes a screenshot with a custom prompt.
func (d *Detector) DetectIssuesWithPrompt(ctx context.Context, model, imageB64, prompt string) (*types.IssueReport, error) {
	report, err := d.client.AnalyzeImage(ctx, model, prompt, imageB64)
	if err != nil {
		return nil, err
	}
	return d.normalizeReport(report), nil
}

// TestVision tests if the model can actually see the image with a simple prompt.
func (d *Detector) TestVision(ctx context.Context, model, imageB64 string) (string, error) {
	return d.client.SimpleQuery(ctx, model, SimpleTestPrompt, imageB64)
}

// ToAnnotations converts a report's normalized boxes into pixel-space
// annotations for a w×h screenshot. Issues with degenerate boxes are kept:
// the box clamps to a zero-size rect and the annotator still points at it.
func ToAnnotations(report *types.IssueReport, w, h int) []types.Annotation {
	if report == nil {
		return nil
	}
	anns := make([]types.Annotation, 0, len(report.Issues))
	for _, issue := range report.Issues {
		anns = append(anns, types.Annotation{
			TargetRect:       issue.Box.ToPixels(w, h),
			Label:            strings.TrimSpace(issue.Label),
			Severity:         types.NormalizeSeverity(issue.Severity),
			Description:      strings.TrimSpace(issue.Description),
			ConversionImpact: strings.TrimSpace(issue.ConversionImpact),
		})
	}
	return anns
}

// normalizeReport cleans severities, clamps boxes, sorts by severity, and
// caps the issue count.
func (d *Detector) normalizeReport(report *types.IssueReport) *types.IssueReport {
	if report == nil {
		return &types.IssueReport{}
	}

	for i := range report.Issues {
		report.Issues[i].Severity = string(types.NormalizeSeverity(report.Issues[i].Severity))
		report.Issues[i].Box = clampBox(report.Issues[i].Box)
	}

	// Stable sort preserves the model's ordering within a severity.
	sort.SliceStable(report.Issues, func(i, j int) bool {
		return severityRank[types.Severity(report.Issues[i].Severity)] <
			severityRank[types.Severity(report.Issues[j].Severity)]
	})

	if len(report.Issues) > d.maxIssues {
		report.Issues = report.Issues[:d.maxIssues]
	}
	return report
}

func clampBox(b types.Box) types.Box {
	return types.Box{
		X: clamp(b.X, 0, 1),
		Y: clamp(b.Y, 0, 1),
		W: clamp(b.W, 0, 1),
		H: clamp(b.H, 0, 1),
	}
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
