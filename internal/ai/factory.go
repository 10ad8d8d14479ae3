package ai

import (
	"fmt"

	"github.com/zylker/failwatch/internal/ai/anthropic"
	"github.com/zylker/failwatch/internal/ai/ollama"
	"github.com/zylker/failwatch/internal/ai/openai"
	"github.com/zylker/failwatch/internal/ai/vllm"
	"github.com/zylker/failwatch/internal/config"
	"github.com/zylker/failwatch/pkg/models"
)

// NewProvider constructs the appropriate chat provider based on config.
// Called once at server startup.
func NewProvider(cfg config.AIConfig) (models.ChatProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "vllm":
		return vllm.NewProvider(cfg.VLLM), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "anthropic":
		return anthropic.NewProvider(cfg.Anthropic), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of ollama, vllm, openai, anthropic", cfg.Provider)
	}
}
