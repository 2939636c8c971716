package service

import (
	"context"
	"time"

	"rag-api-explorer-be/internal/dto"
	"rag-api-explorer-be/internal/pkg/logger"
	"rag-api-explorer-be/internal/repository/contract"
)

const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type IHealthService interface {
	Check(ctx context.Context) *dto.HealthResponse
}

type healthService struct {
	db     Pinger
	corpus contract.CorpusChunkRepository
	logger logger.ILogger
}

func NewHealthService(db Pinger, corpus contract.CorpusChunkRepository, log logger.ILogger) IHealthService {
	return &healthService{db: db, corpus: corpus, logger: log}
}

func (s *healthService) Check(ctx context.Context) *dto.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res := &dto.HealthResponse{
		Status:    HealthStatusHealthy,
		Database:  "up",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("HEALTH", "Database health check failed", map[string]interface{}{
			"error": err.Error(),
		})
		res.Status = HealthStatusUnhealthy
		res.Database = "down"
		return res
	}

	count, err := s.corpus.Count(ctx)
	if err != nil {
		s.logger.Warn("HEALTH", "Failed to count corpus chunks", map[string]interface{}{
			"error": err.Error(),
		})
		return res
	}
	res.CorpusChunks = count
	return res
}
