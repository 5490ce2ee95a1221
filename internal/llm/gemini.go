// Package llm adapts the Gemini API to the query.Completer seam.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/query"
)

const DefaultModelName = "gemini-2.0-flash"

type Client struct {
	client *genai.Client
	model  string
}

// New builds a Gemini-backed completer. apiKey may be empty, in which
// case the genai SDK falls back to GEMINI_API_KEY / GOOGLE_API_KEY from
// the environment; the key itself is never logged.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if model == "" {
		model = DefaultModelName
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
		// API version v1 is what docs use for current Gemini models.
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Model() string { return c.model }

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.2),
		MaxOutputTokens: 1024,
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", classify(err)
	}
	return resp.Text(), nil
}

// classify maps SDK failures onto the upstream error taxonomy so the
// orchestrator can decide what is retryable and handlers can pick a
// status code.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		kind := query.UpstreamNetwork
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			kind = query.UpstreamAuth
		case apiErr.Code == http.StatusTooManyRequests:
			kind = query.UpstreamRateLimit
		case apiErr.Code >= 400 && apiErr.Code < 500:
			kind = query.UpstreamMalformed
		}
		return &query.UpstreamError{Kind: kind, Cause: err}
	}
	return &query.UpstreamError{Kind: query.UpstreamNetwork, Cause: err}
}
