package events

import "testing"

func TestKeep(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{"normal content", Content("Here are your matches."), true},
		{"empty content", Content(""), false},
		{"whitespace content", Content("   \n\t "), false},
		{"zero-width placeholder", Content("​"), false},
		{"zero-width wrapped in spaces", Content(" ​ "), false},
		{"content with real text and placeholder", Content("​hello"), true},
		{"tool call always passes", ToolCall("exit_profile_loop", nil), true},
		{"tool call with empty args passes", ToolCall("", nil), true},
		{"tool result always passes", ToolResult("search_web", ""), true},
		{"turn finished passes", TurnFinished(), true},
		{"stage change passes", StageChanged("FINDING"), true},
		{"unknown kind passes unmodified", Event{Kind: Kind("telemetry")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Keep(tt.event); got != tt.want {
				t.Errorf("Keep(%+v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestSanitizePreservesOrder(t *testing.T) {
	in := make(chan Event, 6)
	in <- Content("first")
	in <- Content("")
	in <- ToolCall("search_web", map[string]any{"query": "grants"})
	in <- Content("​")
	in <- Content("second")
	close(in)

	var got []Event
	for e := range Sanitize(in) {
		got = append(got, e)
	}

	if len(got) != 3 {
		t.Fatalf("forwarded %d events, want 3", len(got))
	}
	if got[0].Text != "first" || got[1].ToolName != "search_web" || got[2].Text != "second" {
		t.Errorf("order not preserved: %+v", got)
	}
}
