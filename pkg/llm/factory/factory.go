package factory

import (
	"fmt"
	"time"

	"contract-assistant-be/pkg/llm"
	"contract-assistant-be/pkg/llm/ollama"
	"contract-assistant-be/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string, timeout time.Duration) (llm.LLMProvider, error) {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	switch providerType {
	case "openai", "":
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1" // Default
		}
		return openai.NewProvider(baseURL, apiKey, modelName, timeout), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
