package embedding

import "fmt"

type Config struct {
	Provider       string // "ollama" or "openai"
	Model          string
	Dimension      int
	RequestsPerSec float64
	OllamaBaseURL  string
	OpenAIBaseURL  string
	OpenAIAPIKey   string
}

func NewProvider(cfg Config) (EmbeddingProvider, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaProvider(cfg.OllamaBaseURL, cfg.Model, cfg.Dimension, cfg.RequestsPerSec), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai embedding provider: API key is required")
		}
		return NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.Model, cfg.Dimension, cfg.RequestsPerSec), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
