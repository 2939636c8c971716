package contract

import (
	"context"

	"rag-api-explorer-be/internal/entity"
	"rag-api-explorer-be/internal/repository/specification"
)

type APICallHistoryRepository interface {
	Create(ctx context.Context, entry *entity.APICallHistory) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.APICallHistory, error)
	DeleteAllByUserId(ctx context.Context, userId string) (int64, error)
	// PruneByUserId keeps only the newest keep entries of the user.
	PruneByUserId(ctx context.Context, userId string, keep int) error
}
