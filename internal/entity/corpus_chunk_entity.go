package entity

import (
	"time"

	"github.com/google/uuid"
)

// CorpusChunk is one indexed passage of the knowledge base.
type CorpusChunk struct {
	Id             uuid.UUID
	Text           string
	Title          string
	Author         string
	Date           string
	Category       string
	EmbeddingValue []float32
	CreatedAt      time.Time
}
