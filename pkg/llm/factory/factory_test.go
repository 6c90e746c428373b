package factory

import (
	"testing"

	"docqa-be/pkg/llm/ollama"
	"docqa-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(Config{Provider: "ollama", Model: "llama3"})
	require.NoError(t, err)
	assert.IsType(t, &ollama.OllamaProvider{}, p)

	p, err = NewLLMProvider(Config{Provider: "openai", OpenAIAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &openai.OpenAIProvider{}, p)

	_, err = NewLLMProvider(Config{Provider: "openai"})
	assert.Error(t, err)

	_, err = NewLLMProvider(Config{Provider: "bard"})
	assert.ErrorContains(t, err, "unsupported")
}
