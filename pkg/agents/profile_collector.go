package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"civic-grant-be/internal/constant"
	"civic-grant-be/pkg/events"
	"civic-grant-be/pkg/llm"
	"civic-grant-be/pkg/profile"
	"civic-grant-be/pkg/store"
)

// ProfileCollector runs the intake stage. Each turn it extracts profile
// fields from the user's message, merges them into the session profile,
// and either asks for what is still missing or signals completion.
type ProfileCollector struct {
	LLM          llm.LLMProvider
	Requirements profile.Requirements
}

func NewProfileCollector(provider llm.LLMProvider) *ProfileCollector {
	return &ProfileCollector{
		LLM:          provider,
		Requirements: profile.DefaultRequirements,
	}
}

var _ StageAgent = &ProfileCollector{}

func (a *ProfileCollector) Run(ctx context.Context, sess *store.Session) *events.Stream {
	stream := events.NewStream(16)

	go func() {
		message := strings.TrimSpace(sess.LastMessage)
		if message == "" {
			stream.Close(ErrNoNewInput)
			return
		}

		if err := a.collect(ctx, sess, message, stream); err != nil {
			stream.Close(err)
			return
		}
		stream.Close(nil)
	}()

	return stream
}

func (a *ProfileCollector) collect(ctx context.Context, sess *store.Session, message string, stream *events.Stream) error {
	updates, err := a.extract(ctx, sess.Profile, message)
	if err != nil {
		return err
	}

	if len(updates) > 0 {
		if err := stream.Send(ctx, events.ToolCall(constant.ToolUpdateDepartmentProfile, updates)); err != nil {
			return err
		}
		sess.Profile = profile.Merge(sess.Profile, updates)
		if err := stream.Send(ctx, events.ToolResult(constant.ToolUpdateDepartmentProfile, "Profile updated successfully.")); err != nil {
			return err
		}
	}

	if a.Requirements.IsComplete(sess.Profile) {
		sess.ProfileComplete = true
		if err := stream.Send(ctx, events.ToolCall(constant.ToolExitProfileLoop, map[string]any{})); err != nil {
			return err
		}
		if err := stream.Send(ctx, events.ToolResult(constant.ToolExitProfileLoop, "Profile completed.")); err != nil {
			return err
		}
		return stream.Send(ctx, events.Content("Your profile is complete! Say **'find grants'** to start searching for matching grant opportunities."))
	}

	reply, err := a.respond(ctx, sess.Profile, message)
	if err != nil {
		return err
	}
	return stream.Send(ctx, events.Content(reply))
}

// extract asks the model for a bare JSON object of new profile fields.
// Unparseable output is treated as no extraction rather than a failure.
func (a *ProfileCollector) extract(ctx context.Context, current map[string]any, message string) (map[string]any, error) {
	currentJSON, err := json.Marshal(current)
	if err != nil {
		currentJSON = []byte("{}")
	}

	prompt := fmt.Sprintf(constant.ProfileExtractionPromptV1, string(currentJSON), message)
	raw, err := a.LLM.Generate(ctx, prompt, llm.WithTemperature(0.1))
	if err != nil {
		return nil, fmt.Errorf("profile extraction failed: %w", err)
	}

	obj := extractJSONObject(raw)
	if obj == "" {
		return nil, nil
	}

	var updates map[string]any
	if err := json.Unmarshal([]byte(obj), &updates); err != nil {
		return nil, nil
	}
	return updates, nil
}

func (a *ProfileCollector) respond(ctx context.Context, current map[string]any, message string) (string, error) {
	currentJSON, err := json.Marshal(current)
	if err != nil {
		currentJSON = []byte("{}")
	}

	history := []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.ProfileCollectorPromptV1},
		{Role: constant.ChatMessageRoleUser, Content: fmt.Sprintf("Current profile (JSON):\n%s\n\nUser message:\n%s", string(currentJSON), message)},
	}

	reply, err := a.LLM.Chat(ctx, history, llm.WithTemperature(0.7))
	if err != nil {
		return "", fmt.Errorf("profile response failed: %w", err)
	}
	return reply, nil
}
