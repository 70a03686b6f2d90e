package llm

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// GeminiProvider calls the Gemini API directly through the official GenAI
// SDK, bypassing OpenRouter. Useful when only a GEMINI_API_KEY is
// available.
type GeminiProvider struct {
	apiKey string
	model  string
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider reads GEMINI_API_KEY from the environment and refuses
// to initialize without it.
func NewGeminiProvider(model string) (*GeminiProvider, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY_MISSING: GEMINI_API_KEY environment variable not set")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{apiKey: apiKey, model: model}, nil
}

// GenerateResponse sends a generateContent request. The taxonomy prompts
// always demand JSON output, so the response MIME type is pinned to
// application/json.
func (p *GeminiProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("GEMINI_CLIENT_ERROR: %v", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(optFloat(options, "temperature", 0.3))),
		ResponseMIMEType: "application/json",
	}
	if maxTokens := optInt(options, "max_tokens", 0); maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	result, err := client.Models.GenerateContent(
		ctx,
		optString(options, "model", p.model),
		genai.Text(prompt),
		config,
	)
	if err != nil {
		return "", fmt.Errorf("GEMINI_API_CALL_ERROR: %v", err)
	}

	return result.Text(), nil
}
