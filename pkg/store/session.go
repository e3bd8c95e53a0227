// Package store holds the shared per-conversation workflow state and the
// session stores that persist it between turns.
package store

import (
	"context"

	"civic-grant-be/pkg/grants"
)

// Stage pointer values for the grant workflow. The pointer is a cache of a
// fact derivable from data; the orchestrator repairs it when they disagree.
const (
	StageProfileBuilding   = "PROFILE_BUILDING"
	StageFinding           = "FINDING"
	StageAwaitingSelection = "AWAITING_SELECTION"
	StageWriting           = "WRITING"
)

// Session is the shared state every stage reads and writes during one
// conversation. Exactly one stage agent mutates it at a time; the orchestrator
// owns the Stage field exclusively.
type Session struct {
	ID    string `json:"id"`
	Stage string `json:"stage"`

	// Built up by the profile collector.
	Profile         map[string]any `json:"profile"`
	ProfileComplete bool           `json:"profile_complete"`

	// Replaced wholesale after each search.
	Opportunities []grants.Opportunity `json:"opportunities"`

	// Set when the user picks a grant card.
	Selected map[string]any `json:"selected_opportunity,omitempty"`

	// One draft per selected opportunity.
	Draft          string `json:"draft,omitempty"`
	DraftGrantName string `json:"draft_grant_name,omitempty"`

	LastMessage string `json:"last_message,omitempty"`

	// Stage-private keys. Opaque to the orchestrator.
	Private map[string]any `json:"private,omitempty"`
}

// NewSession creates the empty initial state for a conversation.
func NewSession(id string) *Session {
	return &Session{
		ID:      id,
		Stage:   StageProfileBuilding,
		Profile: map[string]any{},
		Private: map[string]any{},
	}
}

// GetPrivate reads a stage-private key.
func (s *Session) GetPrivate(key string) (any, bool) {
	if s.Private == nil {
		return nil, false
	}
	v, ok := s.Private[key]
	return v, ok
}

// SetPrivate writes a stage-private key.
func (s *Session) SetPrivate(key string, value any) {
	if s.Private == nil {
		s.Private = map[string]any{}
	}
	s.Private[key] = value
}

// SessionStore persists sessions between turns, keyed by session id. Stores
// must never share a mutable structure across two session ids.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*Session, bool, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, sessionID string) error
}
