// Package gemini implements the annotation text generator on Google's Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/annotation"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// Client generates text with one Gemini model.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a Gemini API client. An empty apiKey is an error; callers
// that run without a key should not construct a Client at all.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

// Generate implements annotation.TextGenerator.
func (c *Client) Generate(ctx context.Context, req annotation.GenerateRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), GenerateConfig(req))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", annotation.ErrEmptyResponse
	}
	return text, nil
}

// GenerateConfig maps a request onto the generation settings, enabling JSON
// mode with a response schema for structured formats.
func GenerateConfig(req annotation.GenerateRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}

	switch req.Format {
	case annotation.FormatNoteList:
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = noteListSchema()
	case annotation.FormatSuggestionMap:
		config.ResponseMIMEType = "application/json"
	}

	return config
}

func noteListSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"nama":    {Type: genai.TypeString},
				"catatan": {Type: genai.TypeString},
			},
			Required: []string{"nama", "catatan"},
		},
	}
}
