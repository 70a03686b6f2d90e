// Package llm provides completion-backend providers for taxonomy
// analysis. Each provider sends a fixed system instruction plus a single
// user prompt and returns the raw response text; callers own parsing.
package llm

import (
	"context"
)

// Provider is the interface for all completion backends.
//
// options carries per-call decoding parameters. Recognized keys:
//
//	"model"       string  override the configured model identifier
//	"temperature" float64 sampling temperature
//	"max_tokens"  int     maximum output size
//
// Unknown keys are ignored so callers can pass provider-specific extras.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

func optString(options map[string]interface{}, key, fallback string) string {
	if val, ok := options[key].(string); ok && val != "" {
		return val
	}
	return fallback
}

func optFloat(options map[string]interface{}, key string, fallback float64) float64 {
	switch val := options[key].(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	}
	return fallback
}

func optInt(options map[string]interface{}, key string, fallback int) int {
	switch val := options[key].(type) {
	case int:
		return val
	case float64:
		return int(val)
	}
	return fallback
}
