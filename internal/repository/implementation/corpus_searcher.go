package implementation

import (
	"context"

	"rag-api-explorer-be/internal/mapper"
	"rag-api-explorer-be/internal/repository/contract"
	"rag-api-explorer-be/pkg/apperror"
	"rag-api-explorer-be/pkg/store"
)

// CorpusSearcher adapts the corpus repository to the retrieval pipeline.
type CorpusSearcher struct {
	repo   contract.CorpusChunkRepository
	mapper *mapper.CorpusMapper
}

func NewCorpusSearcher(repo contract.CorpusChunkRepository) *CorpusSearcher {
	return &CorpusSearcher{repo: repo, mapper: mapper.NewCorpusMapper()}
}

func (s *CorpusSearcher) Search(ctx context.Context, vector []float32, limit int, threshold float64) ([]store.Document, error) {
	scored, err := s.repo.SearchSimilarWithScore(ctx, vector, limit, threshold)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrVectorSearch, err)
	}

	docs := make([]store.Document, 0, len(scored))
	for _, sc := range scored {
		docs = append(docs, s.mapper.ToDocument(sc.Chunk, sc.Similarity))
	}
	return docs, nil
}
