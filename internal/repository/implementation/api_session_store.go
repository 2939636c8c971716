package implementation

import (
	"context"
	"time"

	"rag-api-explorer-be/internal/entity"
	"rag-api-explorer-be/internal/mapper"
	"rag-api-explorer-be/internal/repository/contract"
	"rag-api-explorer-be/pkg/store"
)

// SessionStore exposes the session repository with the shape the session manager expects.
type SessionStore struct {
	repo   contract.APISessionRepository
	mapper *mapper.ApiMapper
	now    func() time.Time
}

func NewSessionStore(repo contract.APISessionRepository) *SessionStore {
	return &SessionStore{
		repo:   repo,
		mapper: mapper.NewApiMapper(),
		now:    time.Now,
	}
}

func (s *SessionStore) Get(ctx context.Context, userID string) (*store.Session, error) {
	e, err := s.repo.FindByUserId(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.mapper.SessionToStore(e), nil
}

func (s *SessionStore) CreateOrUpdate(ctx context.Context, userID, apiURL string, meta store.SessionMeta) error {
	now := s.now().UTC().Truncate(time.Microsecond)
	return s.repo.Upsert(ctx, &entity.APISession{
		UserId:            userID,
		ApiUrl:            apiURL,
		StartedAt:         now,
		ExploredEndpoints: meta.ExploredEndpoints,
		UpdatedAt:         &now,
	})
}

func (s *SessionStore) Delete(ctx context.Context, userID, apiURL string) error {
	return s.repo.DeleteByUserAndURL(ctx, userID, apiURL)
}
