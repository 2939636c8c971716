package implementation

import (
	"context"
	"time"

	"rag-api-explorer-be/internal/entity"
	"rag-api-explorer-be/internal/mapper"
	"rag-api-explorer-be/internal/repository/contract"
	"rag-api-explorer-be/internal/repository/specification"
	"rag-api-explorer-be/pkg/store"

	"github.com/google/uuid"
)

// FavoriteStore serves the explorer's favorites from the favorites repository.
type FavoriteStore struct {
	repo   contract.APIFavoriteRepository
	mapper *mapper.ApiMapper
}

func NewFavoriteStore(repo contract.APIFavoriteRepository) *FavoriteStore {
	return &FavoriteStore{repo: repo, mapper: mapper.NewApiMapper()}
}

func (s *FavoriteStore) Add(ctx context.Context, userID string, in store.FavoriteInput) (*store.Favorite, error) {
	e := &entity.APIFavorite{
		UserId:      userID,
		Url:         in.URL,
		Name:        in.Name,
		Description: in.Description,
		Headers:     in.Headers,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	fav := s.mapper.FavoriteToStore(e)
	return &fav, nil
}

// List returns the user's favorites oldest first, so list positions stay stable.
func (s *FavoriteStore) List(ctx context.Context, userID string) ([]store.Favorite, error) {
	entities, err := s.repo.FindAll(ctx,
		specification.ByUserID{UserID: userID},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	out := make([]store.Favorite, len(entities))
	for i, e := range entities {
		out[i] = s.mapper.FavoriteToStore(e)
	}
	return out, nil
}

func (s *FavoriteStore) Get(ctx context.Context, userID, favoriteID string) (*store.Favorite, error) {
	id, err := uuid.Parse(favoriteID)
	if err != nil {
		return nil, nil
	}
	e, err := s.repo.FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByUserID{UserID: userID},
	)
	if err != nil || e == nil {
		return nil, err
	}
	fav := s.mapper.FavoriteToStore(e)
	return &fav, nil
}

func (s *FavoriteStore) Remove(ctx context.Context, userID, favoriteID string) (bool, error) {
	fav, err := s.Get(ctx, userID, favoriteID)
	if err != nil || fav == nil {
		return false, err
	}
	return s.repo.Delete(ctx, uuid.MustParse(fav.ID))
}

func (s *FavoriteStore) Touch(ctx context.Context, favoriteID string, at time.Time) error {
	id, err := uuid.Parse(favoriteID)
	if err != nil {
		return err
	}
	return s.repo.TouchLastUsed(ctx, id, at)
}
