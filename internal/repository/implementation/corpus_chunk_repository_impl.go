package implementation

import (
	"context"

	"rag-api-explorer-be/internal/mapper"
	"rag-api-explorer-be/internal/model"
	"rag-api-explorer-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type CorpusChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CorpusMapper
}

func NewCorpusChunkRepository(db *gorm.DB) contract.CorpusChunkRepository {
	return &CorpusChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewCorpusMapper(),
	}
}

func (r *CorpusChunkRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.CorpusChunk{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SearchSimilarWithScore returns chunks with similarity scores, filtered by threshold
func (r *CorpusChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredCorpusChunk, error) {
	if limit <= 0 {
		limit = 3
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	type result struct {
		model.CorpusChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("corpus_chunks").
		Select("corpus_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredCorpusChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredCorpusChunk{
			Chunk:      r.mapper.ToEntity(&res.CorpusChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
