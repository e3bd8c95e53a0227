package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"civic-grant-be/internal/constant"
	"civic-grant-be/pkg/events"
	"civic-grant-be/pkg/grants"
	"civic-grant-be/pkg/llm"
	"civic-grant-be/pkg/profile"
	"civic-grant-be/pkg/search"
	"civic-grant-be/pkg/store"
)

// resultsPerQuery matches the search tool's page size.
const resultsPerQuery = 3

// Finder runs the grant search stage in one shot: web searches, model
// synthesis, then local scoring and region filtering of whatever the
// model returned.
type Finder struct {
	LLM    llm.LLMProvider
	Search search.Provider
	Scorer *grants.Scorer
}

func NewFinder(provider llm.LLMProvider, searcher search.Provider) *Finder {
	return &Finder{
		LLM:    provider,
		Search: searcher,
		Scorer: grants.NewScorer(),
	}
}

var _ StageAgent = &Finder{}

// searchQueries builds the standard query set, substituting the
// department's state where known.
func searchQueries(p map[string]any) []string {
	state := profile.State(p)
	if state == "" {
		state = "state"
	}
	return []string{
		"FEMA AFG Assistance to Firefighters Grant 2026",
		"volunteer fire department SCBA equipment grants",
		fmt.Sprintf("%s fire department grants 2026", state),
		"SAFER grant fire department staffing",
		"rural fire department federal grants",
	}
}

func (a *Finder) Run(ctx context.Context, sess *store.Session) *events.Stream {
	stream := events.NewStream(16)

	go func() {
		if err := a.find(ctx, sess, stream); err != nil {
			stream.Close(err)
			return
		}
		stream.Close(nil)
	}()

	return stream
}

func (a *Finder) find(ctx context.Context, sess *store.Session, stream *events.Stream) error {
	if err := stream.Send(ctx, events.Content("Searching for grant opportunities...")); err != nil {
		return err
	}

	var searchContext strings.Builder
	for _, query := range searchQueries(sess.Profile) {
		if err := stream.Send(ctx, events.ToolCall(constant.ToolSearchWeb, map[string]any{"query": query})); err != nil {
			return err
		}

		results, err := a.Search.Search(ctx, query, resultsPerQuery)
		formatted := ""
		if err != nil {
			formatted = fmt.Sprintf("Search failed for '%s': %v", query, err)
		} else {
			formatted = search.Format(query, results)
		}

		if err := stream.Send(ctx, events.ToolResult(constant.ToolSearchWeb, formatted)); err != nil {
			return err
		}
		searchContext.WriteString(formatted)
		searchContext.WriteString("\n\n")
	}

	raw, err := a.synthesize(ctx, sess.Profile, searchContext.String())
	if err != nil {
		return err
	}
	sess.SetPrivate("validated_grants_raw", raw)

	validated := a.validate(raw, sess.Profile)
	sess.Opportunities = validated

	if err := stream.Send(ctx, events.ToolCall(constant.ToolSaveGrantsToState, map[string]any{"count": len(validated)})); err != nil {
		return err
	}
	if err := stream.Send(ctx, events.ToolResult(constant.ToolSaveGrantsToState, fmt.Sprintf("Saved %d validated grants.", len(validated)))); err != nil {
		return err
	}

	if err := stream.Send(ctx, events.Content(raw)); err != nil {
		return err
	}

	if len(validated) == 0 {
		return stream.Send(ctx, events.Content("No eligible grants found this round. Try adding more detail to your profile, then say 'find grants' again."))
	}
	return stream.Send(ctx, events.Content(fmt.Sprintf("Found %d matching grants! Pick any grant to generate an application draft.", len(validated))))
}

func (a *Finder) synthesize(ctx context.Context, p map[string]any, searchResults string) (string, error) {
	profileJSON, err := json.Marshal(p)
	if err != nil {
		profileJSON = []byte("{}")
	}

	history := []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.GrantFinderPromptV1},
		{Role: constant.ChatMessageRoleUser, Content: fmt.Sprintf("Department profile (JSON):\n%s\n\nWeb search results:\n%s\n\nValidate the grants and output the JSON array.", string(profileJSON), searchResults)},
	}

	raw, err := a.LLM.Chat(ctx, history, llm.WithTemperature(0.4))
	if err != nil {
		return "", fmt.Errorf("grant synthesis failed: %w", err)
	}
	return raw, nil
}

// validate re-scores the model's grants locally. Malformed output means
// zero validated grants, not a failed turn.
func (a *Finder) validate(raw string, p map[string]any) []grants.Opportunity {
	opps, err := grants.ParseOpportunities(raw)
	if err != nil {
		return nil
	}
	return a.Scorer.Evaluate(opps, p)
}
