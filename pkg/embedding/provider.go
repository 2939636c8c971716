package embedding

import (
	"context"
	"fmt"
	"math"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}

type Settings struct {
	Provider      string // "openai" or "ollama"
	Model         string
	OllamaBaseURL string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

func NewEmbeddingProvider(s Settings) (EmbeddingProvider, error) {
	switch s.Provider {
	case "openai", "":
		if s.OpenAIAPIKey == "" && s.OpenAIBaseURL == "" {
			return nil, fmt.Errorf("openai embedding requires OPENAI_API_KEY or OPENAI_BASE_URL")
		}
		return NewOpenAIProvider(s.OpenAIAPIKey, s.OpenAIBaseURL, s.Model), nil
	case "ollama":
		return NewOllamaProvider(s.OllamaBaseURL, s.Model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", s.Provider)
	}
}

// normalizeVector normalizes a vector to unit length (magnitude = 1)
// This is REQUIRED for accurate cosine similarity calculation
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
