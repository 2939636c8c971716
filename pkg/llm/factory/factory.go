package factory

import (
	"fmt"

	"rag-api-explorer-be/pkg/llm"
	"rag-api-explorer-be/pkg/llm/ollama"
	"rag-api-explorer-be/pkg/llm/openai"
)

type Settings struct {
	Provider      string
	Model         string
	OllamaBaseURL string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	switch s.Provider {
	case "openai", "":
		if s.OpenAIAPIKey == "" && s.OpenAIBaseURL == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY or OPENAI_BASE_URL")
		}
		return openai.NewOpenAIProvider(s.OpenAIAPIKey, s.OpenAIBaseURL, s.Model), nil
	case "ollama":
		baseURL := s.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, s.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
