package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByChatSessionId filters messages and drafts by their owning session.
type ByChatSessionId struct {
	ChatSessionId uuid.UUID
}

func (s ByChatSessionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionId)
}

// ByGrantName filters drafts by the grant they were written for.
type ByGrantName struct {
	GrantName string
}

func (s ByGrantName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("grant_name = ?", s.GrantName)
}

// ByStage filters sessions by workflow stage.
type ByStage struct {
	Stage string
}

func (s ByStage) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("stage = ?", s.Stage)
}
