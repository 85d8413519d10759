package client

import (
	"context"

	"github.com/dancolta/deep-problem-scanner/pkg/types"
)

// VisionClient is implemented by every vision-model backend.
type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
	AnalyzeImage(ctx context.Context, model, prompt, imgB64 string) (*types.IssueReport, error)
}
