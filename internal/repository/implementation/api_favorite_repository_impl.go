package implementation

import (
	"context"
	"errors"
	"time"

	"rag-api-explorer-be/internal/entity"
	"rag-api-explorer-be/internal/mapper"
	"rag-api-explorer-be/internal/model"
	"rag-api-explorer-be/internal/repository/contract"
	"rag-api-explorer-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type APIFavoriteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ApiMapper
}

func NewAPIFavoriteRepository(db *gorm.DB) contract.APIFavoriteRepository {
	return &APIFavoriteRepositoryImpl{
		db:     db,
		mapper: mapper.NewApiMapper(),
	}
}

func (r *APIFavoriteRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *APIFavoriteRepositoryImpl) Create(ctx context.Context, favorite *entity.APIFavorite) error {
	m := r.mapper.FavoriteToModel(favorite)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*favorite = *r.mapper.FavoriteToEntity(m)
	return nil
}

func (r *APIFavoriteRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.ApiFavorite{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *APIFavoriteRepositoryImpl) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.ApiFavorite{}).
		Where("id = ?", id).
		Update("last_used", at).Error
}

func (r *APIFavoriteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.APIFavorite, error) {
	var m model.ApiFavorite
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.FavoriteToEntity(&m), nil
}

func (r *APIFavoriteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.APIFavorite, error) {
	var models []*model.ApiFavorite
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.APIFavorite, len(models))
	for i, m := range models {
		entities[i] = r.mapper.FavoriteToEntity(m)
	}
	return entities, nil
}
