package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zylker/failwatch/internal/config"
	"github.com/zylker/failwatch/pkg/models"
)

const baseURL = "https://api.openai.com"

// Provider implements models.ChatProvider using the OpenAI chat
// completions API.
type Provider struct {
	cfg    config.OpenAIConfig
	client *http.Client
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	return &Provider{cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *Provider) Answer(ctx context.Context, req models.ChatRequest) (models.ChatResult, error) {
	body, err := json.Marshal(completionRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: models.SystemPrompt},
			{Role: "user", Content: req.Prompt()},
		},
	})
	if err != nil {
		return models.ChatResult{}, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return models.ChatResult{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.ChatResult{}, fmt.Errorf("calling openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ChatResult{}, fmt.Errorf("openai returned status %d", resp.StatusCode)
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.ChatResult{}, fmt.Errorf("decoding openai response: %w", err)
	}
	if len(out.Choices) == 0 {
		return models.ChatResult{}, fmt.Errorf("openai returned no choices")
	}

	return models.ChatResult{Answer: out.Choices[0].Message.Content, Model: p.cfg.Model}, nil
}

var _ models.ChatProvider = (*Provider)(nil)
