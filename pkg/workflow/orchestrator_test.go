package workflow

import (
	"context"
	"errors"
	"testing"

	"civic-grant-be/internal/constant"
	"civic-grant-be/pkg/agents"
	"civic-grant-be/pkg/events"
	"civic-grant-be/pkg/grants"
	"civic-grant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}

// scriptedAgent emits a fixed event sequence and optionally mutates the
// session first, standing in for a full LLM-backed stage.
type scriptedAgent struct {
	calls  int
	mutate func(*store.Session)
	emit   []events.Event
	err    error
}

func (a *scriptedAgent) Run(ctx context.Context, sess *store.Session) *events.Stream {
	a.calls++
	stream := events.NewStream(16)
	go func() {
		if a.mutate != nil {
			a.mutate(sess)
		}
		for _, e := range a.emit {
			if err := stream.Send(ctx, e); err != nil {
				stream.Close(err)
				return
			}
		}
		stream.Close(a.err)
	}()
	return stream
}

func drain(t *testing.T, s *events.Stream) []events.Event {
	t.Helper()
	var out []events.Event
	for e := range s.Events() {
		out = append(out, e)
	}
	return out
}

func kinds(evts []events.Event) []events.Kind {
	out := make([]events.Kind, 0, len(evts))
	for _, e := range evts {
		out = append(out, e.Kind)
	}
	return out
}

func newTestOrchestrator(collector, finder, writer *scriptedAgent) (*Orchestrator, *store.MemoryStore) {
	sessions := store.NewMemoryStore()
	return NewOrchestrator(sessions, collector, finder, writer, nil, nopLogger{}), sessions
}

func validatedGrant() grants.Opportunity {
	return grants.Opportunity{
		Name:             "Assistance to Firefighters Grant (AFG)",
		Source:           "FEMA",
		URL:              "https://www.fema.gov/grants/afg",
		EligibilityScore: 0.9,
		PriorityRank:     1,
	}
}

func TestHandleTurnIntakeIncomplete(t *testing.T) {
	collector := &scriptedAgent{emit: []events.Event{
		events.ToolCall(constant.ToolUpdateDepartmentProfile, map[string]any{"name": "Halls FD"}),
		events.ToolResult(constant.ToolUpdateDepartmentProfile, "ok"),
		events.Content("What city and state are you in?"),
	}}
	finder := &scriptedAgent{}
	o, sessions := newTestOrchestrator(collector, finder, &scriptedAgent{})

	stream := o.HandleTurn(context.Background(), "s1", "We're Halls FD")
	evts := drain(t, stream)
	require.NoError(t, stream.Err())

	assert.Equal(t, []events.Kind{
		events.KindToolCall,
		events.KindToolResult,
		events.KindContent,
		events.KindTurnFinished,
	}, kinds(evts))
	assert.Equal(t, 1, collector.calls)
	assert.Equal(t, 0, finder.calls, "finding must not start before the profile is complete")

	sess, found, err := sessions.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, store.StageProfileBuilding, sess.Stage)
}

func TestHandleTurnCompletionCascadesIntoFinding(t *testing.T) {
	collector := &scriptedAgent{
		mutate: func(sess *store.Session) { sess.ProfileComplete = true },
		emit: []events.Event{
			events.ToolCall(constant.ToolExitProfileLoop, map[string]any{}),
			events.ToolResult(constant.ToolExitProfileLoop, "done"),
			events.Content("Profile complete!"),
		},
	}
	finder := &scriptedAgent{
		mutate: func(sess *store.Session) { sess.Opportunities = []grants.Opportunity{validatedGrant()} },
		emit:   []events.Event{events.Content("Found 1 matching grants!")},
	}
	o, sessions := newTestOrchestrator(collector, finder, &scriptedAgent{})

	stream := o.HandleTurn(context.Background(), "s1", "our mission is serving Clinton")
	evts := drain(t, stream)
	require.NoError(t, stream.Err())

	assert.Equal(t, []events.Kind{
		events.KindToolCall,     // exit_profile_loop
		events.KindToolResult,
		events.KindContent,      // profile complete message
		events.KindStageChanged, // FINDING
		events.KindContent,      // finder output
		events.KindStageChanged, // AWAITING_SELECTION
		events.KindTurnFinished,
	}, kinds(evts))
	assert.Equal(t, store.StageFinding, evts[3].Stage)
	assert.Equal(t, store.StageAwaitingSelection, evts[5].Stage)
	assert.Equal(t, 1, finder.calls)

	sess, _, _ := sessions.Get(context.Background(), "s1")
	assert.Equal(t, store.StageAwaitingSelection, sess.Stage)
	assert.Len(t, sess.Opportunities, 1)
}

func TestHandleTurnMergesExitToolPayload(t *testing.T) {
	// The exit call may carry one last profile fragment. It must land in the
	// session even when the agent itself never touches the profile.
	collector := &scriptedAgent{emit: []events.Event{
		events.ToolCall(constant.ToolExitProfileLoop, map[string]any{"mission": "protect Halls"}),
		events.ToolResult(constant.ToolExitProfileLoop, "done"),
	}}
	finder := &scriptedAgent{emit: []events.Event{events.Content("Searching...")}}
	o, sessions := newTestOrchestrator(collector, finder, &scriptedAgent{})

	stream := o.HandleTurn(context.Background(), "s1", "our mission is protecting Halls")
	drain(t, stream)
	require.NoError(t, stream.Err())

	sess, _, _ := sessions.Get(context.Background(), "s1")
	assert.Equal(t, "protect Halls", sess.Profile["mission"])
	assert.True(t, sess.ProfileComplete)
	assert.Equal(t, 1, finder.calls)
}

func TestHandleTurnOracleCompletionWithoutExitTool(t *testing.T) {
	// The collector saves a complete profile but never calls the exit tool;
	// the completeness check alone must advance the workflow.
	collector := &scriptedAgent{
		mutate: func(sess *store.Session) {
			sess.Profile = map[string]any{
				"name":     "Halls Fire Department",
				"location": map[string]any{"state": "NC"},
				"needs":    []any{"SCBA"},
			}
		},
		emit: []events.Event{events.Content("Saved your details.")},
	}
	finder := &scriptedAgent{emit: []events.Event{events.Content("Searching...")}}
	o, _ := newTestOrchestrator(collector, finder, &scriptedAgent{})

	stream := o.HandleTurn(context.Background(), "s1", "Halls Fire Department, NC, SCBA")
	drain(t, stream)
	require.NoError(t, stream.Err())

	assert.Equal(t, 1, finder.calls)
}

func TestHandleTurnHealsStaleStagePointer(t *testing.T) {
	collector := &scriptedAgent{}
	finder := &scriptedAgent{}
	o, sessions := newTestOrchestrator(collector, finder, &scriptedAgent{})

	// Grants already validated, but the pointer was left at intake.
	sess := store.NewSession("s1")
	sess.Stage = store.StageProfileBuilding
	sess.Opportunities = []grants.Opportunity{validatedGrant()}
	require.NoError(t, sessions.Save(context.Background(), sess))

	stream := o.HandleTurn(context.Background(), "s1", "hello again")
	evts := drain(t, stream)
	require.NoError(t, stream.Err())

	assert.Equal(t, 0, collector.calls, "intake must not rerun once grants exist")
	assert.Equal(t, 0, finder.calls)

	require.NotEmpty(t, evts)
	assert.Equal(t, events.KindStageChanged, evts[0].Kind)
	assert.Equal(t, store.StageAwaitingSelection, evts[0].Stage)

	saved, _, _ := sessions.Get(context.Background(), "s1")
	assert.Equal(t, store.StageAwaitingSelection, saved.Stage)
}

func TestHandleTurnSuppressesDuplicateDeliveryRace(t *testing.T) {
	collector := &scriptedAgent{err: agents.ErrNoNewInput}
	o, _ := newTestOrchestrator(collector, &scriptedAgent{}, &scriptedAgent{})

	stream := o.HandleTurn(context.Background(), "s1", "")
	evts := drain(t, stream)

	require.NoError(t, stream.Err())
	assert.Equal(t, []events.Kind{events.KindTurnFinished}, kinds(evts))
}

func TestHandleTurnSuppressesRaceByMessageText(t *testing.T) {
	collector := &scriptedAgent{err: errors.New("runner: no new input to process for invocation")}
	o, _ := newTestOrchestrator(collector, &scriptedAgent{}, &scriptedAgent{})

	stream := o.HandleTurn(context.Background(), "s1", "hi")
	evts := drain(t, stream)

	require.NoError(t, stream.Err())
	assert.Equal(t, []events.Kind{events.KindTurnFinished}, kinds(evts))
}

func TestHandleTurnPropagatesRealAgentErrors(t *testing.T) {
	boom := errors.New("model unavailable")
	collector := &scriptedAgent{err: boom}
	o, _ := newTestOrchestrator(collector, &scriptedAgent{}, &scriptedAgent{})

	stream := o.HandleTurn(context.Background(), "s1", "hi")
	drain(t, stream)

	assert.ErrorIs(t, stream.Err(), boom)
}

func TestHandleTurnDropsEmptyContent(t *testing.T) {
	collector := &scriptedAgent{emit: []events.Event{
		events.Content(""),
		events.Content("​"),
		events.ToolCall(constant.ToolUpdateDepartmentProfile, nil),
		events.Content("  real text  "),
	}}
	o, _ := newTestOrchestrator(collector, &scriptedAgent{}, &scriptedAgent{})

	stream := o.HandleTurn(context.Background(), "s1", "hi")
	evts := drain(t, stream)
	require.NoError(t, stream.Err())

	assert.Equal(t, []events.Kind{
		events.KindToolCall,
		events.KindContent,
		events.KindTurnFinished,
	}, kinds(evts))
}

func TestHandleTurnAwaitingSelectionPrompt(t *testing.T) {
	o, sessions := newTestOrchestrator(&scriptedAgent{}, &scriptedAgent{}, &scriptedAgent{})

	sess := store.NewSession("s1")
	sess.Stage = store.StageAwaitingSelection
	sess.Opportunities = []grants.Opportunity{validatedGrant()}
	require.NoError(t, sessions.Save(context.Background(), sess))

	stream := o.HandleTurn(context.Background(), "s1", "what now?")
	evts := drain(t, stream)
	require.NoError(t, stream.Err())

	require.Len(t, evts, 2)
	assert.Equal(t, events.KindContent, evts[0].Kind)
	assert.Contains(t, evts[0].Text, "Assistance to Firefighters Grant (AFG)")
	assert.Equal(t, events.KindTurnFinished, evts[1].Kind)
}

func TestHandleTurnAwaitingSelectionNewSearch(t *testing.T) {
	finder := &scriptedAgent{emit: []events.Event{events.Content("Searching again...")}}
	o, sessions := newTestOrchestrator(&scriptedAgent{}, finder, &scriptedAgent{})

	sess := store.NewSession("s1")
	sess.Stage = store.StageAwaitingSelection
	sess.Opportunities = []grants.Opportunity{validatedGrant()}
	require.NoError(t, sessions.Save(context.Background(), sess))

	stream := o.HandleTurn(context.Background(), "s1", "please find grants again")
	evts := drain(t, stream)
	require.NoError(t, stream.Err())

	assert.Equal(t, 1, finder.calls)
	assert.Equal(t, []events.Kind{
		events.KindStageChanged, // FINDING
		events.KindContent,
		events.KindStageChanged, // AWAITING_SELECTION
		events.KindTurnFinished,
	}, kinds(evts))
}

func TestHandleTurnSelectionInStateCascadesIntoWriting(t *testing.T) {
	// A selection already sitting in shared state (written by the UI between
	// turns) must pull the next HandleTurn straight into drafting.
	writer := &scriptedAgent{
		mutate: func(sess *store.Session) { sess.Draft = "# GRANT APPLICATION DRAFT" },
		emit:   []events.Event{events.Content("# GRANT APPLICATION DRAFT")},
	}
	collector := &scriptedAgent{}
	o, sessions := newTestOrchestrator(collector, &scriptedAgent{}, writer)

	sess := store.NewSession("s1")
	sess.Stage = store.StageAwaitingSelection
	sess.Opportunities = []grants.Opportunity{validatedGrant()}
	sess.Selected = validatedGrant().AsMap()
	require.NoError(t, sessions.Save(context.Background(), sess))

	stream := o.HandleTurn(context.Background(), "s1", "draft it please")
	evts := drain(t, stream)
	require.NoError(t, stream.Err())

	assert.Equal(t, []events.Kind{
		events.KindStageChanged, // WRITING
		events.KindContent,
		events.KindStageChanged, // AWAITING_SELECTION
		events.KindTurnFinished,
	}, kinds(evts))
	assert.Equal(t, store.StageWriting, evts[0].Stage)
	assert.Equal(t, store.StageAwaitingSelection, evts[2].Stage)
	assert.Equal(t, 1, writer.calls)
	assert.Equal(t, 0, collector.calls)

	saved, _, _ := sessions.Get(context.Background(), "s1")
	assert.Equal(t, store.StageAwaitingSelection, saved.Stage)
	assert.Equal(t, "# GRANT APPLICATION DRAFT", saved.Draft)
}

func TestSelectGrantRunsWriterAndReturnsToSelection(t *testing.T) {
	writer := &scriptedAgent{
		mutate: func(sess *store.Session) {
			sess.Draft = "# GRANT APPLICATION DRAFT"
			sess.DraftGrantName, _ = sess.Selected["name"].(string)
		},
		emit: []events.Event{events.Content("# GRANT APPLICATION DRAFT")},
	}
	o, sessions := newTestOrchestrator(&scriptedAgent{}, &scriptedAgent{}, writer)

	sess := store.NewSession("s1")
	sess.Stage = store.StageAwaitingSelection
	sess.Opportunities = []grants.Opportunity{validatedGrant()}
	require.NoError(t, sessions.Save(context.Background(), sess))

	stream, err := o.SelectGrant(context.Background(), "s1", "Assistance to Firefighters Grant (AFG)")
	require.NoError(t, err)
	evts := drain(t, stream)
	require.NoError(t, stream.Err())

	assert.Equal(t, []events.Kind{
		events.KindStageChanged, // WRITING
		events.KindContent,
		events.KindStageChanged, // AWAITING_SELECTION
		events.KindTurnFinished,
	}, kinds(evts))

	saved, _, _ := sessions.Get(context.Background(), "s1")
	assert.Equal(t, store.StageAwaitingSelection, saved.Stage)
	assert.Equal(t, "# GRANT APPLICATION DRAFT", saved.Draft)
	assert.Equal(t, "Assistance to Firefighters Grant (AFG)", saved.DraftGrantName)
}

func TestSelectGrantUnknownSession(t *testing.T) {
	o, _ := newTestOrchestrator(&scriptedAgent{}, &scriptedAgent{}, &scriptedAgent{})

	_, err := o.SelectGrant(context.Background(), "missing", "AFG")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSelectGrantUnknownGrant(t *testing.T) {
	o, sessions := newTestOrchestrator(&scriptedAgent{}, &scriptedAgent{}, &scriptedAgent{})

	sess := store.NewSession("s1")
	sess.Opportunities = []grants.Opportunity{validatedGrant()}
	require.NoError(t, sessions.Save(context.Background(), sess))

	_, err := o.SelectGrant(context.Background(), "s1", "Nonexistent Grant")
	assert.Error(t, err)
}
