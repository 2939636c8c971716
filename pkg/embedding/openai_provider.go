package embedding

import (
	"context"
	"errors"
	"fmt"

	"rag-api-explorer-be/pkg/apperror"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider embeds text with the OpenAI embeddings endpoint (text-embedding-ada-002 by default).
type OpenAIProvider struct {
	client *openai.Client
	Model  string
}

func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = string(openai.EmbeddingModelTextEmbeddingAda002)
	}

	client := openai.NewClient(opts...)
	return &OpenAIProvider{client: &client, Model: model}
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	res, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(p.Model),
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrEmbedding, fmt.Errorf("openai embeddings: %w", err))
	}
	if len(res.Data) == 0 {
		return nil, apperror.Wrap(apperror.ErrEmbedding, errors.New("openai embeddings: empty data"))
	}

	raw := res.Data[0].Embedding
	values := make([]float32, len(raw))
	for i, v := range raw {
		values[i] = float32(v)
	}
	return values, nil
}
