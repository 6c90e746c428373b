package factory

import (
	"fmt"

	"docqa-be/pkg/llm"
	"docqa-be/pkg/llm/ollama"
	"docqa-be/pkg/llm/openai"
)

type Config struct {
	Provider      string // "openai" or "ollama"
	Model         string
	OllamaBaseURL string
	OpenAIBaseURL string
	OpenAIAPIKey  string
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewOllamaProvider(cfg.OllamaBaseURL, cfg.Model), nil
	case "", "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai LLM provider: OPENAI_API_KEY is required")
		}
		return openai.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
