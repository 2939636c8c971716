package implementation

import (
	"context"
	"errors"

	"rag-api-explorer-be/internal/entity"
	"rag-api-explorer-be/internal/mapper"
	"rag-api-explorer-be/internal/model"
	"rag-api-explorer-be/internal/repository/contract"
	"rag-api-explorer-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type APISessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ApiMapper
}

func NewAPISessionRepository(db *gorm.DB) contract.APISessionRepository {
	return &APISessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewApiMapper(),
	}
}

func (r *APISessionRepositoryImpl) FindByUserId(ctx context.Context, userId string) (*entity.APISession, error) {
	var m model.ApiSession
	query := specification.ByUserID{UserID: userId}.Apply(r.db.WithContext(ctx))
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m)
}

func (r *APISessionRepositoryImpl) Upsert(ctx context.Context, session *entity.APISession) error {
	m := r.mapper.SessionToModel(session)

	// Assignments reference the pre-update row, so started_at compares against the old api_url.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"started_at": gorm.Expr("CASE WHEN api_sessions.api_url = excluded.api_url THEN api_sessions.started_at ELSE excluded.started_at END"),
			"api_url":    gorm.Expr("excluded.api_url"),
			"meta":       gorm.Expr("excluded.meta"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	return nil
}

func (r *APISessionRepositoryImpl) DeleteByUserAndURL(ctx context.Context, userId, apiUrl string) error {
	query := r.db.WithContext(ctx)
	query = specification.ByUserID{UserID: userId}.Apply(query)
	query = specification.ByApiURL{ApiURL: apiUrl}.Apply(query)
	return query.Delete(&model.ApiSession{}).Error
}
