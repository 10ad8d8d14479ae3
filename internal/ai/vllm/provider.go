package vllm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zylker/failwatch/internal/config"
	"github.com/zylker/failwatch/pkg/models"
)

// Provider implements models.ChatProvider against a vLLM server's
// OpenAI-compatible endpoint.
type Provider struct {
	cfg    config.VLLMConfig
	client *http.Client
}

func NewProvider(cfg config.VLLMConfig) *Provider {
	return &Provider{cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return "vllm" }

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

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return models.ChatResult{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.ChatResult{}, fmt.Errorf("calling vllm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ChatResult{}, fmt.Errorf("vllm returned status %d", resp.StatusCode)
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.ChatResult{}, fmt.Errorf("decoding vllm response: %w", err)
	}
	if len(out.Choices) == 0 {
		return models.ChatResult{}, fmt.Errorf("vllm returned no choices")
	}

	return models.ChatResult{Answer: out.Choices[0].Message.Content, Model: p.cfg.Model}, nil
}

var _ models.ChatProvider = (*Provider)(nil)
