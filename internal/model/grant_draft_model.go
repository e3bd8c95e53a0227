package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GrantDraft struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	GrantName     string         `gorm:"type:text;not null"`
	Grant         datatypes.JSON `gorm:"type:jsonb"`
	Profile       datatypes.JSON `gorm:"type:jsonb"`
	Content       string         `gorm:"type:text;not null"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (GrantDraft) TableName() string {
	return "grant_drafts"
}
