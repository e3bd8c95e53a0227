package contract

import (
	"context"

	"civic-grant-be/internal/entity"
	"civic-grant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type GrantDraftRepository interface {
	Create(ctx context.Context, draft *entity.GrantDraft) error
	Update(ctx context.Context, draft *entity.GrantDraft) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GrantDraft, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GrantDraft, error)
}
