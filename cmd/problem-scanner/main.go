package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	deepscanner "github.com/dancolta/deep-problem-scanner"
	"github.com/dancolta/deep-problem-scanner/internal/config"
	"github.com/dancolta/deep-problem-scanner/internal/utils"
	"github.com/dancolta/deep-problem-scanner/pkg/annotator"
	"github.com/dancolta/deep-problem-scanner/pkg/client"
	"github.com/dancolta/deep-problem-scanner/pkg/llamacpp"
	"github.com/dancolta/deep-problem-scanner/pkg/ollama"
	"github.com/dancolta/deep-problem-scanner/pkg/processing"
	"github.com/dancolta/deep-problem-scanner/pkg/types"
)

func main() {
	var in, outDir, model, url, backend string
	var annotationsFile, configFile string
	var outFormat string
	var quality int
	var verbose bool

	flag.StringVar(&in, "in", "", "input screenshot path or URL (jpg/png/webp)")
	flag.StringVar(&outDir, "out", "", "output directory")
	flag.StringVar(&model, "model", "", "vision model name")
	flag.StringVar(&backend, "backend", "", "backend to use: ollama or llamacpp")
	flag.StringVar(&url, "url", "", "server URL (defaults: ollama=http://localhost:11434, llamacpp=http://localhost:8080)")
	flag.StringVar(&annotationsFile, "annotations", "", "JSON file with annotations; skips the vision model")
	flag.StringVar(&configFile, "config", "", "config file path (JSON)")
	flag.StringVar(&outFormat, "format", "", "output format: jpg|png|webp (default: same as input)")
	flag.IntVar(&quality, "quality", 0, "output quality for lossy formats (1-100)")
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.Parse()

	logger := log.New(os.Stderr)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if in == "" {
		logger.Fatal(fmt.Sprintf("usage: %s -in screenshot.png|URL [-backend ollama|llamacpp] [-url server_url] [-annotations issues.json] [-out outdir]", filepath.Base(os.Args[0])))
	}

	cfg := loadConfig(logger, configFile)
	applyFlags(cfg, backend, url, model, outDir, outFormat, quality)
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	if err := utils.EnsureDir(cfg.Output.OutputDir); err != nil {
		logger.Fatal("failed to create output directory", "err", err)
	}

	processor := processing.NewProcessor()
	img, format, err := processor.LoadImageSmart(in)
	if err != nil {
		logger.Fatal("failed to load screenshot", "err", err)
	}
	bounds := img.Bounds()
	logger.Debug("loaded screenshot", "source", in, "format", format,
		"size", fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()))

	scanner := deepscanner.NewWithConfig(annotator.Config{
		MaxCards:     cfg.Annotator.MaxCards,
		CornerRadius: cfg.Annotator.CornerRadius,
		ArrowWidth:   cfg.Annotator.ArrowWidth,
	})
	scanner.SetLogger(logger)
	scanner.SetModelTransport(cfg.Vision.SendFormat, cfg.Vision.SendMaxDim, cfg.Vision.SendQuality)

	anns, summary := resolveAnnotations(logger, scanner, processor, cfg, img, in, annotationsFile)

	annotated, report := scanner.Annotate(img, anns)
	if report.RenderedCount == 0 {
		logger.Info("no issues to render, screenshot left unchanged", "summary", summary)
		return
	}

	outFmt := cfg.Output.Format
	if outFmt == "" {
		outFmt = format
	}
	outPath := utils.GenerateOutputFilename(sourceName(in), cfg.Output.OutputDir, cfg.Output.Suffix, outFmt)
	if err := processor.SaveImage(annotated, outPath, outFmt, cfg.Output.Quality, false); err != nil {
		logger.Fatal("failed to save annotated screenshot", "err", err)
	}

	logger.Info("wrote annotated screenshot", "path", outPath,
		"callouts", report.RenderedCount, "degraded", report.Degraded)
	for i, label := range report.RenderedLabels {
		logger.Info("callout", "n", i+1, "label", label)
	}
	if summary != "" {
		logger.Info("model summary", "summary", summary)
	}
}

func loadConfig(logger *log.Logger, configFile string) *config.Config {
	if configFile == "" {
		if path := config.GetConfigPath(); utils.FileExists(path) {
			configFile = path
		}
	}
	if configFile == "" {
		return config.Default()
	}
	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		logger.Fatal("failed to load config", "path", configFile, "err", err)
	}
	logger.Debug("loaded config", "path", configFile)
	return cfg
}

// applyFlags lets command-line flags override the loaded configuration.
func applyFlags(cfg *config.Config, backend, url, model, outDir, outFormat string, quality int) {
	if backend != "" {
		cfg.Vision.Backend = backend
	}
	if url != "" {
		cfg.Vision.ServerURL = url
	}
	if model != "" {
		cfg.Vision.Model = model
	}
	if outDir != "" {
		cfg.Output.OutputDir = outDir
	}
	if outFormat != "" {
		cfg.Output.Format = outFormat
	}
	if quality > 0 {
		cfg.Output.Quality = quality
	}
}

// resolveAnnotations reads annotations from a file when -annotations is set,
// otherwise asks the configured vision backend for them.
func resolveAnnotations(logger *log.Logger, scanner *deepscanner.Scanner, processor *processing.Processor, cfg *config.Config, img image.Image, in, annotationsFile string) ([]types.Annotation, string) {
	if annotationsFile != "" {
		data, err := os.ReadFile(annotationsFile)
		if err != nil {
			logger.Fatal("failed to read annotations file", "err", err)
		}
		var anns []types.Annotation
		if err := json.Unmarshal(data, &anns); err != nil {
			logger.Fatal("failed to parse annotations file", "err", err)
		}
		logger.Debug("loaded annotations from file", "path", annotationsFile, "count", len(anns))
		return anns, ""
	}

	vc := newVisionClient(logger, cfg)

	data, err := os.ReadFile(in)
	if err != nil {
		// URL input: re-encode the screenshot we already decoded.
		data, err = processor.EncodeBytes(img, "png", 100)
		if err != nil {
			logger.Fatal("failed to encode screenshot for detection", "err", err)
		}
	}

	report, anns, err := scanner.DetectIssues(context.Background(), vc, cfg.Vision.Model, data)
	if err != nil {
		logger.Fatal("issue detection failed", "err", err)
	}
	logger.Debug("model reported issues", "count", len(report.Issues))
	return anns, report.Summary
}

func newVisionClient(logger *log.Logger, cfg *config.Config) client.VisionClient {
	switch cfg.Vision.Backend {
	case "ollama":
		url := cfg.Vision.ServerURL
		if url == "" {
			url = "http://localhost:11434"
		}
		vc, err := ollama.NewClient(url)
		if err != nil {
			logger.Fatal("failed to create Ollama client", "err", err)
		}
		return vc
	case "llamacpp":
		url := cfg.Vision.ServerURL
		if url == "" {
			url = "http://localhost:8080"
		}
		vc, err := llamacpp.NewClient(url)
		if err != nil {
			logger.Fatal("failed to create llama.cpp client", "err", err)
		}
		return vc
	default:
		logger.Fatal("unknown backend", "backend", cfg.Vision.Backend)
		return nil
	}
}

// sourceName maps a URL input to a stable filename stem.
func sourceName(in string) string {
	if base := filepath.Base(in); base != "" && base != "." && base != "/" {
		return base
	}
	return "screenshot"
}
