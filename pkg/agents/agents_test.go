package agents

import (
	"context"
	"errors"
	"testing"

	"civic-grant-be/internal/constant"
	"civic-grant-be/pkg/events"
	"civic-grant-be/pkg/llm"
	"civic-grant-be/pkg/search"
	"civic-grant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLLM replays scripted responses in order, across Chat and Generate.
type fakeLLM struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeLLM) next() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.calls >= len(f.responses) {
		return "", errors.New("fakeLLM: no scripted response left")
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp, nil
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return f.next()
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.next()
}

type fakeSearch struct {
	results []search.Result
	err     error
	queries []string
}

func (f *fakeSearch) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func drain(t *testing.T, stream *events.Stream) []events.Event {
	t.Helper()
	var out []events.Event
	for e := range stream.Events() {
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

func TestProfileCollectorSavesBeforeResponding(t *testing.T) {
	provider := &fakeLLM{responses: []string{
		`{"name": "Halls Fire Department", "location": {"city": "Clinton", "state": "NC"}}`,
		"Thanks! What are your department's primary needs?",
	}}
	collector := NewProfileCollector(provider)

	sess := store.NewSession("s1")
	sess.LastMessage = "We're Halls Fire Department in Clinton, NC"

	stream := collector.Run(context.Background(), sess)
	evts := drain(t, stream)
	require.NoError(t, stream.Err())

	require.Len(t, evts, 3)
	assert.Equal(t, events.KindToolCall, evts[0].Kind)
	assert.Equal(t, constant.ToolUpdateDepartmentProfile, evts[0].ToolName)
	assert.Equal(t, events.KindToolResult, evts[1].Kind)
	assert.Equal(t, events.KindContent, evts[2].Kind)

	assert.Equal(t, "Halls Fire Department", sess.Profile["name"])
	location, ok := sess.Profile["location"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NC", location["state"])
	assert.False(t, sess.ProfileComplete)
}

func TestProfileCollectorCompletesWhenRequirementsMet(t *testing.T) {
	provider := &fakeLLM{responses: []string{
		`{"name": "Halls Fire Department", "location": {"state": "NC"}, "needs": ["SCBA"]}`,
	}}
	collector := NewProfileCollector(provider)

	sess := store.NewSession("s1")
	sess.LastMessage = "Halls Fire Department, North Carolina, we need SCBA gear"

	stream := collector.Run(context.Background(), sess)
	evts := drain(t, stream)
	require.NoError(t, stream.Err())

	assert.True(t, sess.ProfileComplete)
	assert.Equal(t, []events.Kind{
		events.KindToolCall,   // update_department_profile
		events.KindToolResult,
		events.KindToolCall,   // exit_profile_loop
		events.KindToolResult,
		events.KindContent,
	}, kinds(evts))
	assert.Equal(t, constant.ToolExitProfileLoop, evts[2].ToolName)
	assert.Contains(t, evts[4].Text, "find grants")
}

func TestProfileCollectorNoNewInput(t *testing.T) {
	collector := NewProfileCollector(&fakeLLM{})

	sess := store.NewSession("s1")
	sess.LastMessage = "   "

	stream := collector.Run(context.Background(), sess)
	evts := drain(t, stream)

	assert.Empty(t, evts)
	assert.ErrorIs(t, stream.Err(), ErrNoNewInput)
}

func TestProfileCollectorMalformedExtraction(t *testing.T) {
	provider := &fakeLLM{responses: []string{
		"I could not find anything useful.",
		"Could you tell me your department's name?",
	}}
	collector := NewProfileCollector(provider)

	sess := store.NewSession("s1")
	sess.LastMessage = "hello there"

	stream := collector.Run(context.Background(), sess)
	evts := drain(t, stream)
	require.NoError(t, stream.Err())

	// No tool events when nothing was extracted.
	require.Len(t, evts, 1)
	assert.Equal(t, events.KindContent, evts[0].Kind)
	assert.Empty(t, sess.Profile)
}

const finderOutput = `Found one strong match.

[
  {
    "name": "Assistance to Firefighters Grant (AFG)",
    "source": "FEMA",
    "url": "https://www.fema.gov/grants/afg",
    "description": "Federal nationwide grant for volunteer fire department SCBA equipment and training",
    "funding_range": "$50,000 - $500,000",
    "deadline": "2026-12-01",
    "eligibility_score": 0.85,
    "match_reasons": ["volunteer", "SCBA"],
    "priority_rank": 1
  }
]`

func finderProfile() map[string]any {
	return map[string]any{
		"name": "Halls Fire Department",
		"type": "Volunteer",
		"location": map[string]any{
			"city":  "Clinton",
			"state": "NC",
		},
		"organization_details": map[string]any{
			"budget":           float64(185000),
			"nonprofit_status": true,
		},
		"needs": []any{"SCBA", "training"},
	}
}

func TestFinderRunsSearchesAndValidates(t *testing.T) {
	searcher := &fakeSearch{results: []search.Result{
		{Title: "AFG", Snippet: "Firefighter grants", Link: "https://www.fema.gov/grants/afg"},
	}}
	finder := NewFinder(&fakeLLM{responses: []string{finderOutput}}, searcher)

	sess := store.NewSession("s1")
	sess.Profile = finderProfile()
	sess.LastMessage = "find grants"

	stream := finder.Run(context.Background(), sess)
	evts := drain(t, stream)
	require.NoError(t, stream.Err())

	// Five queries, with the state substituted into the regional one.
	require.Len(t, searcher.queries, 5)
	assert.Contains(t, searcher.queries[2], "NC")

	require.Len(t, sess.Opportunities, 1)
	assert.Equal(t, "Assistance to Firefighters Grant (AFG)", sess.Opportunities[0].Name)
	assert.Equal(t, 1, sess.Opportunities[0].PriorityRank)
	assert.GreaterOrEqual(t, sess.Opportunities[0].EligibilityScore, 0.6)

	var sawSave bool
	for _, e := range evts {
		if e.Kind == events.KindToolCall && e.ToolName == constant.ToolSaveGrantsToState {
			sawSave = true
		}
	}
	assert.True(t, sawSave, "expected a save_grants_to_state tool call")
	assert.Contains(t, evts[len(evts)-1].Text, "Found 1 matching grants")
}

func TestFinderMalformedModelOutput(t *testing.T) {
	searcher := &fakeSearch{}
	finder := NewFinder(&fakeLLM{responses: []string{"no json here at all"}}, searcher)

	sess := store.NewSession("s1")
	sess.Profile = finderProfile()
	sess.LastMessage = "find grants"

	stream := finder.Run(context.Background(), sess)
	evts := drain(t, stream)
	require.NoError(t, stream.Err())

	assert.Empty(t, sess.Opportunities)
	assert.Contains(t, evts[len(evts)-1].Text, "No eligible grants found")
}

func TestFinderSearchFailureDoesNotAbortTurn(t *testing.T) {
	searcher := &fakeSearch{err: errors.New("quota exceeded")}
	finder := NewFinder(&fakeLLM{responses: []string{finderOutput}}, searcher)

	sess := store.NewSession("s1")
	sess.Profile = finderProfile()
	sess.LastMessage = "find grants"

	stream := finder.Run(context.Background(), sess)
	drain(t, stream)
	require.NoError(t, stream.Err())

	// Model output still carried a grant the scorer accepts.
	assert.Len(t, sess.Opportunities, 1)
}

func TestWriterDraftsSelectedGrant(t *testing.T) {
	writer := NewWriter(&fakeLLM{responses: []string{"# GRANT APPLICATION DRAFT\n\n## 1. EXECUTIVE SUMMARY\n..."}})

	sess := store.NewSession("s1")
	sess.Profile = finderProfile()
	sess.Selected = map[string]any{
		"name":   "Assistance to Firefighters Grant (AFG)",
		"source": "FEMA",
	}

	stream := writer.Run(context.Background(), sess)
	evts := drain(t, stream)
	require.NoError(t, stream.Err())

	assert.Contains(t, sess.Draft, "GRANT APPLICATION DRAFT")
	assert.Equal(t, "Assistance to Firefighters Grant (AFG)", sess.DraftGrantName)

	assert.Equal(t, []events.Kind{
		events.KindContent,    // drafting notice
		events.KindToolCall,   // save_grant_draft
		events.KindToolResult,
		events.KindContent,    // the draft itself
	}, kinds(evts))
}

func TestWriterWithoutSelection(t *testing.T) {
	writer := NewWriter(&fakeLLM{})

	sess := store.NewSession("s1")
	stream := writer.Run(context.Background(), sess)
	evts := drain(t, stream)

	assert.Empty(t, evts)
	assert.ErrorIs(t, stream.Err(), ErrNoGrantSelected)
}
