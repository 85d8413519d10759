// Package deepscanner finds conversion problems on landing-page screenshots
// and renders them as annotated callouts.
//
// A vision model locates up to three issues on the page and returns them
// with normalized bounding boxes. The annotator then composites labeled
// cards, connector arrows, and numbered badges onto the screenshot without
// covering the elements being called out.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//		"os"
//
//		deepscanner "github.com/dancolta/deep-problem-scanner"
//		"github.com/dancolta/deep-problem-scanner/pkg/llamacpp"
//	)
//
//	func main() {
//		data, err := os.ReadFile("landing.png")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		vc, err := llamacpp.NewClient("http://localhost:8080")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		scanner := deepscanner.New()
//		annotated, result, err := scanner.Scan(context.Background(), vc, "openbmb/minicpm-v4.5", data)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		log.Printf("rendered %d callouts: %v", result.Report.RenderedCount, result.Report.RenderedLabels)
//		if err := os.WriteFile("landing_annotated.png", annotated, 0o644); err != nil {
//			log.Fatal(err)
//		}
//	}
package deepscanner

import (
	"context"
	"fmt"
	"image"

	"github.com/charmbracelet/log"

	"github.com/dancolta/deep-problem-scanner/pkg/annotator"
	"github.com/dancolta/deep-problem-scanner/pkg/client"
	"github.com/dancolta/deep-problem-scanner/pkg/detection"
	"github.com/dancolta/deep-problem-scanner/pkg/processing"
	"github.com/dancolta/deep-problem-scanner/pkg/types"
)

// Version of the problem scanner library
const Version = "1.0.0"

// Scanner provides a high-level interface over detection, annotation, and
// image encoding.
type Scanner struct {
	processor *processing.Processor
	annotator *annotator.Annotator

	// sendFormat, sendMaxDim, and sendQuality control the image handed to
	// the vision model.
	sendFormat  string
	sendMaxDim  int
	sendQuality int

	// encodeQuality applies to lossy output formats.
	encodeQuality int
}

// New creates a Scanner with default configuration.
func New() *Scanner {
	return NewWithConfig(annotator.DefaultConfig())
}

// NewWithConfig creates a Scanner with a custom annotator configuration.
func NewWithConfig(cfg annotator.Config) *Scanner {
	return &Scanner{
		processor:     processing.NewProcessor(),
		annotator:     annotator.NewWithConfig(cfg),
		sendFormat:    "jpg",
		sendMaxDim:    1536,
		sendQuality:   85,
		encodeQuality: 90,
	}
}

// SetLogger routes annotator diagnostics to the given logger.
func (s *Scanner) SetLogger(l *log.Logger) {
	s.annotator.SetLogger(l)
}

// SetModelTransport controls the image payload sent to the vision model.
// maxDim 0 sends the screenshot at its original size.
func (s *Scanner) SetModelTransport(format string, maxDim, quality int) {
	if format != "" {
		s.sendFormat = format
	}
	s.sendMaxDim = maxDim
	if quality > 0 {
		s.sendQuality = quality
	}
}

// ScanResult bundles the model's findings with the rendering report.
type ScanResult struct {
	IssueReport *types.IssueReport
	Annotations []types.Annotation
	Report      annotator.Report
}

// AnnotateScreenshot decodes a screenshot, renders the given annotations
// onto it, and re-encodes it in its original format. When no annotation
// survives filtering, the input bytes are returned untouched.
func (s *Scanner) AnnotateScreenshot(data []byte, annotations []types.Annotation) ([]byte, annotator.Report, error) {
	img, format, err := s.processor.DecodeBytes(data)
	if err != nil {
		return nil, annotator.Report{}, fmt.Errorf("failed to decode screenshot: %w", err)
	}

	out, report := s.annotator.Annotate(img, annotations)
	if report.RenderedCount == 0 {
		return data, report, nil
	}

	encoded, err := s.processor.EncodeBytes(out, format, s.encodeQuality)
	if err != nil {
		return nil, annotator.Report{}, fmt.Errorf("failed to encode annotated screenshot: %w", err)
	}
	return encoded, report, nil
}

// Annotate renders annotations onto an already decoded screenshot.
func (s *Scanner) Annotate(img image.Image, annotations []types.Annotation) (image.Image, annotator.Report) {
	return s.annotator.Annotate(img, annotations)
}

// DetectIssues sends a screenshot to the vision model and returns its issue
// report along with pixel-space annotations for the original image size.
func (s *Scanner) DetectIssues(ctx context.Context, vc client.VisionClient, model string, data []byte) (*types.IssueReport, []types.Annotation, error) {
	img, _, err := s.processor.DecodeBytes(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}

	imgB64, err := s.processor.PrepareImageForModel(img, s.sendFormat, s.sendMaxDim, s.sendQuality)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prepare screenshot for model: %w", err)
	}

	detector := detection.NewDetector(vc)
	report, err := detector.DetectIssues(ctx, model, imgB64)
	if err != nil {
		return nil, nil, fmt.Errorf("issue detection failed: %w", err)
	}

	bounds := img.Bounds()
	anns := detection.ToAnnotations(report, bounds.Dx(), bounds.Dy())
	return report, anns, nil
}

// Scan runs the full pipeline: detect issues, then annotate the screenshot.
func (s *Scanner) Scan(ctx context.Context, vc client.VisionClient, model string, data []byte) ([]byte, ScanResult, error) {
	report, anns, err := s.DetectIssues(ctx, vc, model, data)
	if err != nil {
		return nil, ScanResult{}, err
	}

	annotated, renderReport, err := s.AnnotateScreenshot(data, anns)
	if err != nil {
		return nil, ScanResult{}, err
	}

	return annotated, ScanResult{
		IssueReport: report,
		Annotations: anns,
		Report:      renderReport,
	}, nil
}

// GetVersion returns the library version.
func GetVersion() string {
	return Version
}
