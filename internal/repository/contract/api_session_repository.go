package contract

import (
	"context"

	"rag-api-explorer-be/internal/entity"
)

type APISessionRepository interface {
	// FindByUserId returns nil, nil when the user has no session.
	FindByUserId(ctx context.Context, userId string) (*entity.APISession, error)
	// Upsert keeps one row per user. StartedAt is only replaced when the API changes.
	Upsert(ctx context.Context, session *entity.APISession) error
	DeleteByUserAndURL(ctx context.Context, userId, apiUrl string) error
}
