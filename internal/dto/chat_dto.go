package dto

import (
	"time"

	"civic-grant-be/pkg/events"
	"civic-grant-be/pkg/grants"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id    uuid.UUID `json:"id"`
	Stage string    `json:"stage"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Stage     string     `json:"stage"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Chat      string    `json:"chat"`
	Stage     string    `json:"stage,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Chat          string    `json:"chat" validate:"required"`
}

type SendChatResponseChat struct {
	Id        uuid.UUID `json:"id"`
	Chat      string    `json:"chat"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatResponse struct {
	ChatSessionId   uuid.UUID             `json:"chat_session_id"`
	Title           string                `json:"title"`
	Stage           string                `json:"stage"`
	ProfileComplete bool                  `json:"profile_complete"`
	Sent            *SendChatResponseChat `json:"sent"`
	Reply           *SendChatResponseChat `json:"reply"`
	Events          []events.Event        `json:"events"`
	Grants          []grants.Opportunity  `json:"grants,omitempty"`
}

type SelectGrantRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	GrantName     string    `json:"grant_name" validate:"required"`
}

type GetGrantsResponse struct {
	ChatSessionId uuid.UUID            `json:"chat_session_id"`
	Grants        []grants.Opportunity `json:"grants"`
}

type GetProfileResponse struct {
	ChatSessionId   uuid.UUID      `json:"chat_session_id"`
	Profile         map[string]any `json:"profile"`
	ProfileComplete bool           `json:"profile_complete"`
	// FullyDetailed reports the stricter check that also wants budget and
	// call-volume figures, which make for stronger applications.
	FullyDetailed bool `json:"fully_detailed"`
}

type DraftResponse struct {
	Id        uuid.UUID      `json:"id"`
	GrantName string         `json:"grant_name"`
	Grant     map[string]any `json:"grant,omitempty"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}
