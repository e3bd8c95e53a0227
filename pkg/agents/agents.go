package agents

import (
	"context"
	"errors"
	"regexp"

	"civic-grant-be/pkg/events"
	"civic-grant-be/pkg/store"
)

// ErrNoNewInput is returned when an agent is invoked without a fresh user
// message to act on. The orchestrator treats it as a clean end of turn.
var ErrNoNewInput = errors.New("no new input to process")

// StageAgent handles one workflow stage. Run returns immediately with a
// stream; the agent produces events on it and closes it when the turn is
// done. Agents mutate the session directly; the caller persists it.
type StageAgent interface {
	Run(ctx context.Context, sess *store.Session) *events.Stream
}

// jsonObjectPattern grabs the outermost object from model output that may
// be wrapped in prose or code fences.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

func extractJSONObject(raw string) string {
	return jsonObjectPattern.FindString(raw)
}
