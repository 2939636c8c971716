package contract

import (
	"context"
	"time"

	"rag-api-explorer-be/internal/entity"
	"rag-api-explorer-be/internal/repository/specification"

	"github.com/google/uuid"
)

type APIFavoriteRepository interface {
	Create(ctx context.Context, favorite *entity.APIFavorite) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.APIFavorite, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.APIFavorite, error)
}
