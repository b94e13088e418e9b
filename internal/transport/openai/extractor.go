// Package openai extracts structured search attributes from free-text
// queries via an OpenAI-compatible chat completion API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/shoplens/catalog/internal/domain"
	domsearch "github.com/shoplens/catalog/internal/domain/search"
	"github.com/shoplens/catalog/internal/metrics"
)

const (
	extractionTemperature = 0.3
	extractionMaxTokens   = 500
)

// Extractor calls the completion API with a fixed instruction prompt and
// validates the JSON it returns. The model output is not a trusted data
// source; every field is re-checked by domsearch.FromRaw regardless of how
// well the model complied.
type Extractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Config holds the completion provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewExtractor creates an OpenAI-compatible attribute extractor.
func NewExtractor(cfg *Config) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Extractor{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Extract sends one completion request and returns validated attributes.
// Any transport failure or unparsable response yields an error wrapping
// domain.ErrExtractionFailed; the caller decides how to degrade.
func (e *Extractor) Extract(ctx context.Context, query string) (domsearch.Attributes, error) {
	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		Temperature: extractionTemperature,
		MaxTokens:   extractionMaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()

	resp, err := e.client.CreateChatCompletion(ctx, req)

	// Error-path latency matters as much as success latency; record every
	// outcome under its status.
	observe := func(status string) {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.model, status).Inc()
		metrics.ExtractionRequestDuration.WithLabelValues(e.model, status).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		observe("error")
		return domsearch.Attributes{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		observe("error")
		return domsearch.Attributes{}, fmt.Errorf("empty completion response: %w", domain.ErrExtractionFailed)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &raw); err != nil {
		observe("parse_error")
		return domsearch.Attributes{}, fmt.Errorf("parse completion content: %v: %w", err, domain.ErrExtractionFailed)
	}

	observe("success")
	if resp.Usage.TotalTokens > 0 {
		metrics.ExtractionTokensTotal.WithLabelValues(e.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.ExtractionTokensTotal.WithLabelValues(e.model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	attrs := domsearch.FromRaw(raw)
	e.logger.Debug("extracted search attributes",
		zap.String("query", query), zap.Any("attributes", attrs))
	return attrs, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Extractor) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors wrap domain.ErrExtractionFailed so the pipeline can recognize
// the fallback condition.
func parseAPIError(err error) error {
	wrap := domain.ErrExtractionFailed

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("completion request failed: %v: %w", err, wrap)
}
