package implementation

import (
	"context"
	"errors"

	"civic-grant-be/internal/entity"
	"civic-grant-be/internal/mapper"
	"civic-grant-be/internal/model"
	"civic-grant-be/internal/repository/contract"
	"civic-grant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GrantDraftRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewGrantDraftRepository(db *gorm.DB) contract.GrantDraftRepository {
	return &GrantDraftRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *GrantDraftRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GrantDraftRepositoryImpl) Create(ctx context.Context, draft *entity.GrantDraft) error {
	m := r.mapper.GrantDraftToModel(draft)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*draft = *r.mapper.GrantDraftToEntity(m)
	return nil
}

func (r *GrantDraftRepositoryImpl) Update(ctx context.Context, draft *entity.GrantDraft) error {
	m := r.mapper.GrantDraftToModel(draft)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*draft = *r.mapper.GrantDraftToEntity(m)
	return nil
}

func (r *GrantDraftRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.GrantDraft{}, id).Error
}

func (r *GrantDraftRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GrantDraft, error) {
	var m model.GrantDraft
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.GrantDraftToEntity(&m), nil
}

func (r *GrantDraftRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GrantDraft, error) {
	var models []*model.GrantDraft
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.GrantDraft, len(models))
	for i, m := range models {
		entities[i] = r.mapper.GrantDraftToEntity(m)
	}
	return entities, nil
}
