package unitofwork

import (
	"context"

	"civic-grant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	GrantDraftRepository() contract.GrantDraftRepository
}
