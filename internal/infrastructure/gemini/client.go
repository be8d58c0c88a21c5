package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/nutriscan/backend/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	genai "google.golang.org/genai"
)

const responseMIMEType = "application/json"

// generator is the part of the genai Models service the client uses
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config holds Gemini reasoning settings
type Config struct {
	APIKey            string
	Model             string
	MaxOutputTokens   int
	Temperature       float64
	RequestsPerMinute int
}

// Client is the reasoning service backed by the Gemini API.
// It makes one call per Complete; retries are left to callers.
type Client struct {
	models          generator
	model           string
	maxOutputTokens int32
	temperature     float32
	rateLimiter     *rate.Limiter
	logger          *zerolog.Logger
}

// NewClient creates a Gemini client using the official genai SDK
func NewClient(ctx context.Context, cfg Config, logger *zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return newClient(cli.Models, cfg, logger), nil
}

func newClient(models generator, cfg Config, logger *zerolog.Logger) *Client {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 15
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Client{
		models:          models,
		model:           model,
		maxOutputTokens: int32(maxTokens),
		temperature:     float32(cfg.Temperature),
		rateLimiter:     rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1),
		logger:          logger,
	}
}

// Name identifies the backing model.
func (c *Client) Name() string { return "gemini:" + c.model }

// Complete sends prompt and returns the model's text. Every failure, including
// timeouts and empty answers, wraps domain.ErrReasoningUnavailable.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limiter: %v", domain.ErrReasoningUnavailable, err)
	}

	temperature := c.temperature
	c.logger.Info().Str("model", c.model).Msg("calling Gemini API")

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: responseMIMEType,
		MaxOutputTokens:  c.maxOutputTokens,
		Temperature:      &temperature,
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("model", c.model).Msg("Gemini call failed")
		return "", fmt.Errorf("%w: %v", domain.ErrReasoningUnavailable, err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no content in Gemini response", domain.ErrReasoningUnavailable)
	}
	return text, nil
}

// responseText concatenates the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
