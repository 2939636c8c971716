package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type CorpusChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Text           string          `gorm:"type:text;not null"`
	Title          string          `gorm:"type:text;default:'Inconnu'"`
	Author         string          `gorm:"type:text;default:'Anonyme'"`
	Date           string          `gorm:"type:varchar(64);default:'Non précisée'"`
	Category       string          `gorm:"type:varchar(128);default:'Divers'"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(1536)"` // text-embedding-ada-002
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (CorpusChunk) TableName() string {
	return "corpus_chunks"
}
