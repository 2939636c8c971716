package mapper

import (
	"rag-api-explorer-be/internal/entity"
	"rag-api-explorer-be/internal/model"
	"rag-api-explorer-be/pkg/store"
)

type CorpusMapper struct{}

func NewCorpusMapper() *CorpusMapper {
	return &CorpusMapper{}
}

func (m *CorpusMapper) ToEntity(c *model.CorpusChunk) *entity.CorpusChunk {
	if c == nil {
		return nil
	}
	return &entity.CorpusChunk{
		Id:             c.Id,
		Text:           c.Text,
		Title:          c.Title,
		Author:         c.Author,
		Date:           c.Date,
		Category:       c.Category,
		EmbeddingValue: c.EmbeddingValue.Slice(),
		CreatedAt:      c.CreatedAt,
	}
}

// ToDocument drops the vector, it is not needed past the search.
func (m *CorpusMapper) ToDocument(c *entity.CorpusChunk, score float64) store.Document {
	return store.Document{
		ID:       c.Id.String(),
		Text:     c.Text,
		Title:    c.Title,
		Author:   c.Author,
		Date:     c.Date,
		Category: c.Category,
		Score:    score,
	}
}
