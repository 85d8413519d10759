// Package ollama implements the vision client against an Ollama server.
package ollama

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/dancolta/deep-problem-scanner/pkg/client"
	"github.com/dancolta/deep-problem-scanner/pkg/types"
)

// defaultTimeout bounds a single model call when the caller's context has no
// deadline. Vision models on CPU can take minutes per screenshot.
const defaultTimeout = 300 * time.Second

// Client wraps the Ollama API client.
type Client struct {
	client *api.Client
}

// NewClient creates a new Ollama client.
func NewClient(ollamaURL string) (*Client, error) {
	parsedURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	// Base URL only; paths like /api/chat are added by the SDK.
	baseURL := &url.URL{
		Scheme: parsedURL.Scheme,
		Host:   parsedURL.Host,
	}

	return &Client{client: api.NewClient(baseURL, http.DefaultClient)}, nil
}

// SimpleQuery sends a prompt with an image and returns the raw text reply.
func (c *Client) SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	imgBytes, err := base64.StdEncoding.DecodeString(imgB64)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 image: %v", err)
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: prompt,
				Images:  []api.ImageData{api.ImageData(imgBytes)},
			},
		},
		Stream: &streamFalse,
	}

	var responseContent string
	err = c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		responseContent = resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat error: %v", err)
	}

	return responseContent, nil
}

// AnalyzeImage sends the screenshot to the model and parses the reply as an
// issue report.
func (c *Client) AnalyzeImage(ctx context.Context, model, prompt, imgB64 string) (*types.IssueReport, error) {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	imgBytes, err := base64.StdEncoding.DecodeString(imgB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %v", err)
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: prompt,
				Images:  []api.ImageData{api.ImageData(imgBytes)},
			},
		},
		Stream: &streamFalse,
		Options: map[string]any{
			// Low temperature keeps box coordinates and the JSON shape stable.
			"temperature": 0.2,
			"num_ctx":     4096,
		},
	}

	var responseContent string
	err = c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		responseContent = resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat error: %v", err)
	}

	if responseContent == "" {
		return nil, fmt.Errorf("empty response from ollama")
	}

	return client.ParseIssueReport(responseContent)
}

func withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultTimeout)
}
