package client

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/dancolta/deep-problem-scanner/pkg/types"
)

// ParseIssueReport parses a vision-model response into an issue report.
// Models wrap JSON in prose, code fences, and comments often enough that a
// hard parse failure is not worth surfacing: a response that yields no valid
// JSON produces an empty report with an explanatory summary, never a fake
// issue list.
func ParseIssueReport(raw string) (*types.IssueReport, error) {
	raw = SanitizeModelJSON(raw)

	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return &types.IssueReport{
			Summary: "model returned non-JSON response",
		}, nil
	}

	var report types.IssueReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		// Try conservative brace-slice approach
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start >= 0 && end > start {
			if err2 := json.Unmarshal([]byte(raw[start:end+1]), &report); err2 != nil {
				return &types.IssueReport{
					Summary: "failed to parse model response",
				}, nil
			}
		} else {
			return &types.IssueReport{
				Summary: "no valid JSON found in response",
			}, nil
		}
	}

	// Drop issues the annotator cannot render anyway.
	kept := report.Issues[:0]
	for _, issue := range report.Issues {
		if strings.TrimSpace(issue.Label) == "" {
			continue
		}
		kept = append(kept, issue)
	}
	report.Issues = kept

	return &report, nil
}

// SanitizeModelJSON removes code fences, comments, and trailing commas from
// a JSON response.
func SanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	// Remove /* ... */ block comments
	reBlock := regexp.MustCompile(`(?s)/\*.*?\*/`)
	raw = reBlock.ReplaceAllString(raw, "")

	// Remove // line/inline comments
	reLine := regexp.MustCompile(`(?m)^\s*//.*$`)
	raw = reLine.ReplaceAllString(raw, "")
	reInline := regexp.MustCompile(`(?m)//.*$`)
	raw = reInline.ReplaceAllString(raw, "")

	// Remove trailing commas before } or ]
	reTrailing := regexp.MustCompile(`,(\s*[}\]])`)
	raw = reTrailing.ReplaceAllString(raw, "$1")

	// Keep only the outermost {...}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}
