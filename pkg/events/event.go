// Package events defines the event contract between stage agents and the
// workflow orchestrator, plus the sanitizer that keeps malformed events away
// from the streaming consumer.
package events

// Kind discriminates the event variants. Inspection is exhaustive on this tag;
// there is no attribute probing.
type Kind string

const (
	// KindContent is a text fragment for the user.
	KindContent Kind = "content"
	// KindToolCall is a control event: an agent invoking a named tool.
	KindToolCall Kind = "tool_call"
	// KindToolResult is a control event: the outcome of a tool invocation.
	KindToolResult Kind = "tool_result"
	// KindTurnFinished marks the end of a turn. Also emitted synthetically
	// when a benign already-consumed-message race is suppressed.
	KindTurnFinished Kind = "turn_finished"
	// KindStageChanged announces a workflow stage transition to the UI.
	KindStageChanged Kind = "stage_changed"
)

// Event is the tagged variant every stage agent emits. Only the fields for
// the tagged kind are populated.
type Event struct {
	Kind       Kind           `json:"kind"`
	Text       string         `json:"text,omitempty"`
	ToolName   string         `json:"tool_name,omitempty"`
	ToolArgs   map[string]any `json:"tool_args,omitempty"`
	ToolResult string         `json:"tool_result,omitempty"`
	Stage      string         `json:"stage,omitempty"`
}

func Content(text string) Event {
	return Event{Kind: KindContent, Text: text}
}

func ToolCall(name string, args map[string]any) Event {
	return Event{Kind: KindToolCall, ToolName: name, ToolArgs: args}
}

func ToolResult(name, result string) Event {
	return Event{Kind: KindToolResult, ToolName: name, ToolResult: result}
}

func TurnFinished() Event {
	return Event{Kind: KindTurnFinished}
}

func StageChanged(stage string) Event {
	return Event{Kind: KindStageChanged, Stage: stage}
}

// IsControl reports whether the event is a tool invocation or tool result.
func (e Event) IsControl() bool {
	return e.Kind == KindToolCall || e.Kind == KindToolResult
}
