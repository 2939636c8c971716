package contract

import (
	"context"

	"rag-api-explorer-be/internal/entity"
)

// ScoredCorpusChunk wraps CorpusChunk with its similarity score
type ScoredCorpusChunk struct {
	Chunk      *entity.CorpusChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type CorpusChunkRepository interface {
	Count(ctx context.Context) (int64, error)
	// SearchSimilarWithScore returns at most limit chunks with similarity >= threshold, best first.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredCorpusChunk, error)
}
