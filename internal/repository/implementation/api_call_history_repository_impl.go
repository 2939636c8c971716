package implementation

import (
	"context"

	"rag-api-explorer-be/internal/entity"
	"rag-api-explorer-be/internal/mapper"
	"rag-api-explorer-be/internal/model"
	"rag-api-explorer-be/internal/repository/contract"
	"rag-api-explorer-be/internal/repository/specification"

	"gorm.io/gorm"
)

type APICallHistoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ApiMapper
}

func NewAPICallHistoryRepository(db *gorm.DB) contract.APICallHistoryRepository {
	return &APICallHistoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewApiMapper(),
	}
}

func (r *APICallHistoryRepositoryImpl) Create(ctx context.Context, entry *entity.APICallHistory) error {
	m := r.mapper.HistoryToModel(entry)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.HistoryToEntity(m)
	return nil
}

func (r *APICallHistoryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.APICallHistory, error) {
	var models []*model.ApiCallHistory
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.APICallHistory, len(models))
	for i, m := range models {
		entities[i] = r.mapper.HistoryToEntity(m)
	}
	return entities, nil
}

func (r *APICallHistoryRepositoryImpl) DeleteAllByUserId(ctx context.Context, userId string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.ApiCallHistory{})
	return res.RowsAffected, res.Error
}

func (r *APICallHistoryRepositoryImpl) PruneByUserId(ctx context.Context, userId string, keep int) error {
	if keep <= 0 {
		return nil
	}
	return r.db.WithContext(ctx).Exec(`
		DELETE FROM api_call_history
		WHERE user_id = ?
		  AND id NOT IN (
			SELECT id FROM api_call_history
			WHERE user_id = ?
			ORDER BY created_at DESC
			LIMIT ?
		  )`, userId, userId, keep).Error
}
