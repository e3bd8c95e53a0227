package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"civic-grant-be/internal/constant"
	"civic-grant-be/pkg/events"
	"civic-grant-be/pkg/llm"
	"civic-grant-be/pkg/store"
)

// ErrNoGrantSelected is returned when the drafting stage runs without a
// selected grant in the session.
var ErrNoGrantSelected = errors.New("no grant selected for writing")

// Writer runs the drafting stage: it turns the selected grant and the
// department profile into a full application draft.
type Writer struct {
	LLM llm.LLMProvider

	// now allows tests to pin the prepared date.
	now func() time.Time
}

func NewWriter(provider llm.LLMProvider) *Writer {
	return &Writer{
		LLM: provider,
		now: time.Now,
	}
}

var _ StageAgent = &Writer{}

func (a *Writer) Run(ctx context.Context, sess *store.Session) *events.Stream {
	stream := events.NewStream(16)

	go func() {
		if err := a.write(ctx, sess, stream); err != nil {
			stream.Close(err)
			return
		}
		stream.Close(nil)
	}()

	return stream
}

func (a *Writer) write(ctx context.Context, sess *store.Session, stream *events.Stream) error {
	if len(sess.Selected) == 0 {
		return ErrNoGrantSelected
	}

	grantName, _ := sess.Selected["name"].(string)
	if err := stream.Send(ctx, events.Content(fmt.Sprintf("Drafting your application for **%s**...", grantName))); err != nil {
		return err
	}

	draft, err := a.draft(ctx, sess.Profile, sess.Selected)
	if err != nil {
		return err
	}

	sess.Draft = draft
	sess.DraftGrantName = grantName

	if err := stream.Send(ctx, events.ToolCall(constant.ToolSaveGrantDraft, map[string]any{"grant_name": grantName})); err != nil {
		return err
	}
	if err := stream.Send(ctx, events.ToolResult(constant.ToolSaveGrantDraft, "Draft saved.")); err != nil {
		return err
	}

	return stream.Send(ctx, events.Content(draft))
}

func (a *Writer) draft(ctx context.Context, p, selected map[string]any) (string, error) {
	profileJSON, err := json.Marshal(p)
	if err != nil {
		profileJSON = []byte("{}")
	}
	grantJSON, err := json.Marshal(selected)
	if err != nil {
		grantJSON = []byte("{}")
	}

	history := []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.GrantWriterPromptV1},
		{Role: constant.ChatMessageRoleUser, Content: fmt.Sprintf(
			"Selected grant (JSON):\n%s\n\nDepartment profile (JSON):\n%s\n\nDate prepared: %s\n\nWrite the full application draft.",
			string(grantJSON), string(profileJSON), a.now().Format("January 2, 2006"))},
	}

	draft, err := a.LLM.Chat(ctx, history, llm.WithTemperature(0.7))
	if err != nil {
		return "", fmt.Errorf("draft generation failed: %w", err)
	}
	return draft, nil
}
