package factory

import (
	"fmt"

	"civic-grant-be/pkg/llm"
	"civic-grant-be/pkg/llm/gemini"
	"civic-grant-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "gemini":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		p := gemini.NewGeminiProvider(apiKey, modelName)
		if baseURL != "" {
			p.BaseURL = baseURL
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
