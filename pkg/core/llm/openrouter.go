package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"

	// DefaultOpenRouterModel is used when OR_RESEARCH_MODEL_NAME is unset
	// and no per-call override is given.
	DefaultOpenRouterModel = "google/gemini-3-flash-preview"
)

// OpenRouterProvider talks to the OpenRouter chat-completions API
// (OpenAI-compatible wire format). It holds no state across calls; each
// invocation is an independent request.
type OpenRouterProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

var _ Provider = (*OpenRouterProvider)(nil)

// NewOpenRouterProvider reads OPENROUTER_API_KEY and OR_RESEARCH_MODEL_NAME
// from the environment. A missing API key is a configuration error: the
// provider refuses to initialize rather than failing on the first call.
func NewOpenRouterProvider() (*OpenRouterProvider, error) {
	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY_MISSING: OPENROUTER_API_KEY environment variable not set")
	}

	model := os.Getenv("OR_RESEARCH_MODEL_NAME")
	if model == "" {
		model = DefaultOpenRouterModel
	}

	return &OpenRouterProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: openRouterBaseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (p *OpenRouterProvider) SetBaseURL(url string) { p.baseURL = url }

// Model returns the configured model identifier.
func (p *OpenRouterProvider) Model() string { return p.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateResponse sends one chat-completions request and returns the raw
// completion text. Transport and backend errors surface as errors; no
// retry is attempted here.
func (p *OpenRouterProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	reqBody := chatRequest{
		Model: optString(options, "model", p.model),
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: optFloat(options, "temperature", 0.3),
		MaxTokens:   optInt(options, "max_tokens", 0),
		Stream:      false,
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("OPENROUTER_MARSHAL_ERROR: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewBuffer(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("OPENROUTER_REQ_CREATE_ERROR: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	res, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("OPENROUTER_API_CALL_ERROR: %v", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("OPENROUTER_READ_BODY_ERROR: %v", err)
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OPENROUTER_API_ERROR: status=%d body=%s", res.StatusCode, string(body))
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("OPENROUTER_UNMARSHAL_ERROR: %v", err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("OPENROUTER_API_ERROR: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("OPENROUTER_NO_CHOICES: %s", string(body))
	}

	return response.Choices[0].Message.Content, nil
}
