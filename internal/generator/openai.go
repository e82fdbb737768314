package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAIGenerator calls an OpenAI-compatible /chat/completions endpoint in JSON
// mode.
type OpenAIGenerator struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOpenAIGenerator builds a client for baseURL, which should include the /v1
// prefix, e.g. "https://api.openai.com/v1". Request deadlines come from ctx.
func NewOpenAIGenerator(baseURL, apiKey string) *OpenAIGenerator {
	return &OpenAIGenerator{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (g *OpenAIGenerator) WithHTTPClient(c *http.Client) *OpenAIGenerator {
	g.httpClient = c
	return g
}

func (g *OpenAIGenerator) Generate(ctx context.Context, p Payload) (*Output, error) {
	if p.Model == "" {
		return nil, fmt.Errorf("openai generation model required")
	}
	messages := make([]oaiMessage, 0, 2)
	if strings.TrimSpace(p.SystemPrompt) != "" {
		messages = append(messages, oaiMessage{Role: "system", Content: p.SystemPrompt})
	}
	messages = append(messages, oaiMessage{Role: "user", Content: p.UserPrompt})

	body, err := json.Marshal(oaiChatRequest{
		Model:          p.Model,
		Messages:       messages,
		Temperature:    p.Temperature,
		ResponseFormat: &oaiResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp oaiErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return nil, fmt.Errorf("openai api error: %s", errResp.Error.Message)
		}
		return nil, fmt.Errorf("openai api error: %s", resp.Status)
	}

	var chatResp oaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("openai decode: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	return ParseOutput(chatResp.Choices[0].Message.Content)
}

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiResponseFormat struct {
	Type string `json:"type"`
}

type oaiChatRequest struct {
	Model          string             `json:"model"`
	Messages       []oaiMessage       `json:"messages"`
	Temperature    float64            `json:"temperature"`
	ResponseFormat *oaiResponseFormat `json:"response_format,omitempty"`
}

type oaiChatResponse struct {
	Choices []struct {
		Message oaiMessage `json:"message"`
	} `json:"choices"`
}

type oaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
