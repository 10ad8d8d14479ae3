package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zylker/failwatch/internal/config"
	"github.com/zylker/failwatch/pkg/models"
)

const (
	baseURL    = "https://api.anthropic.com"
	apiVersion = "2023-06-01"
	maxTokens  = 1024
)

// Provider implements models.ChatProvider using the Anthropic messages API.
type Provider struct {
	cfg    config.AnthropicConfig
	client *http.Client
}

func NewProvider(cfg config.AnthropicConfig) *Provider {
	return &Provider{cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return "anthropic" }

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (p *Provider) Answer(ctx context.Context, req models.ChatRequest) (models.ChatResult, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     p.cfg.Model,
		MaxTokens: maxTokens,
		System:    models.SystemPrompt,
		Messages:  []message{{Role: "user", Content: req.Prompt()}},
	})
	if err != nil {
		return models.ChatResult{}, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return models.ChatResult{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.ChatResult{}, fmt.Errorf("calling anthropic: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ChatResult{}, fmt.Errorf("anthropic returned status %d", resp.StatusCode)
	}

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.ChatResult{}, fmt.Errorf("decoding anthropic response: %w", err)
	}
	for _, block := range out.Content {
		if block.Type == "text" {
			return models.ChatResult{Answer: block.Text, Model: p.cfg.Model}, nil
		}
	}
	return models.ChatResult{}, fmt.Errorf("anthropic returned no text content")
}

var _ models.ChatProvider = (*Provider)(nil)
