package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	derrors "github.com/22f3002289/Mayank-s-first-LLM-Project/internal/errors"
)

// GeminiConfig configures the Gemini-backed client.
type GeminiConfig struct {
	APIKey          string
	Model           string
	BaseURL         string // empty uses the SDK default endpoint
	MaxOutputTokens int
}

// GeminiClient implements Client using the official Gemini SDK.
type GeminiClient struct {
	client          *genai.Client
	model           string
	maxOutputTokens int32
}

// NewGeminiClient creates a Gemini client. BaseURL is overridable so tests and
// proxies can point at a different endpoint.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, derrors.ConfigRequired("gemini.api_key")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-1.5-pro"
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:          client,
		model:           model,
		maxOutputTokens: int32(maxTokens),
	}, nil
}

// Generate issues one completion and returns the first candidate's text.
func (c *GeminiClient) Generate(ctx context.Context, system, user string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.2),
		MaxOutputTokens: c.maxOutputTokens,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), cfg)
	if err != nil {
		return "", derrors.WrapError(err, derrors.CategoryLLM, "Gemini API request failed").
			WithContext("model", c.model)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", derrors.New(derrors.CategoryLLM, derrors.SeverityError, "Gemini returned no text").
			WithContext("model", c.model)
	}
	return text, nil
}
