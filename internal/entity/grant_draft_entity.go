package entity

import (
	"time"

	"github.com/google/uuid"
)

type GrantDraft struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	GrantName     string
	Grant         map[string]any
	Profile       map[string]any
	Content       string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}
