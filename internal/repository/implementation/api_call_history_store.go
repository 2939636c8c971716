package implementation

import (
	"context"

	"rag-api-explorer-be/internal/entity"
	"rag-api-explorer-be/internal/mapper"
	"rag-api-explorer-be/internal/repository/contract"
	"rag-api-explorer-be/internal/repository/specification"
	"rag-api-explorer-be/pkg/store"
)

// HistoryStore serves the explorer's call history from the history repository.
type HistoryStore struct {
	repo   contract.APICallHistoryRepository
	mapper *mapper.ApiMapper
}

func NewHistoryStore(repo contract.APICallHistoryRepository) *HistoryStore {
	return &HistoryStore{repo: repo, mapper: mapper.NewApiMapper()}
}

func (s *HistoryStore) Append(ctx context.Context, entry store.HistoryEntry, keep int) error {
	e := &entity.APICallHistory{
		UserId:       entry.UserID,
		ApiUrl:       entry.APIURL,
		Method:       entry.Method,
		Endpoint:     entry.Endpoint,
		Status:       entry.Status,
		DurationMs:   entry.Duration,
		Response:     entry.Response,
		ErrorMessage: entry.Error,
		CreatedAt:    entry.Timestamp,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return err
	}
	return s.repo.PruneByUserId(ctx, entry.UserID, keep)
}

func (s *HistoryStore) List(ctx context.Context, userID string, limit int) ([]store.HistoryEntry, error) {
	specs := []specification.Specification{
		specification.ByUserID{UserID: userID},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if limit > 0 {
		specs = append(specs, specification.Pagination{Limit: limit})
	}

	entities, err := s.repo.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	out := make([]store.HistoryEntry, len(entities))
	for i, e := range entities {
		out[i] = s.mapper.HistoryToStore(e)
	}
	return out, nil
}

func (s *HistoryStore) Clear(ctx context.Context, userID string) (int64, error) {
	return s.repo.DeleteAllByUserId(ctx, userID)
}
