package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/repodigest/repodigest/internal/config"
	domainerrors "github.com/repodigest/repodigest/internal/domain/errors"
	"github.com/repodigest/repodigest/internal/domain/ports"
)

var _ ports.AIClient = (*Client)(nil)

// Client adapts the Gemini SDK to the ports.AIClient interface.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, domainerrors.NewProviderNotConfiguredError("gemini", "missing API key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating gemini client: %w", err)
	}

	return &Client{
		client: client,
		model:  cfg.GeminiModel,
	}, nil
}

// Invoke sends a prompt and returns the concatenated response text. An empty
// response is reported as an error so callers fall into their degraded path.
func (c *Client) Invoke(ctx context.Context, prompt string, maxTokens int32) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("error generating content: %w", err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

// ModelName returns the configured model identifier.
func (c *Client) ModelName() string {
	return c.model
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	var out strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				out.WriteString(part.Text)
			}
		}
	}
	return out.String()
}
