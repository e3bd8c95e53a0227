// Package workflow is the orchestration core: it routes each chat turn to
// the agent for the session's current stage, detects completion signals,
// heals a stale stage pointer from session data, and emits one sanitized
// event stream per turn.
package workflow

import (
	"context"
	"errors"
	"strings"

	"civic-grant-be/internal/constant"
	"civic-grant-be/internal/pkg/logger"
	"civic-grant-be/pkg/agents"
	"civic-grant-be/pkg/events"
	"civic-grant-be/pkg/profile"
	"civic-grant-be/pkg/store"
)

// benignRaceMarker identifies the duplicate-delivery race where a turn is
// started for a message that was already consumed. Suppressed, not surfaced.
const benignRaceMarker = "no new input to process"

var ErrSessionNotFound = errors.New("session not found")

// Orchestrator drives the four-stage grant workflow. Agents mutate the
// session; the orchestrator owns stage transitions and persistence.
type Orchestrator struct {
	store        store.SessionStore
	collector    agents.StageAgent
	finder       agents.StageAgent
	writer       agents.StageAgent
	requirements profile.Requirements
	bus          *events.Bus
	log          logger.ILogger
}

func NewOrchestrator(sessions store.SessionStore, collector, finder, writer agents.StageAgent, bus *events.Bus, log logger.ILogger) *Orchestrator {
	return &Orchestrator{
		store:        sessions,
		collector:    collector,
		finder:       finder,
		writer:       writer,
		requirements: profile.DefaultRequirements,
		bus:          bus,
		log:          log,
	}
}

// HandleTurn processes one user message and returns the turn's event
// stream. The session is created on first contact and persisted before the
// stream closes, including when the turn was cancelled midway.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, message string) *events.Stream {
	out := events.NewStream(32)

	go func() {
		sess, found, err := o.store.Get(ctx, sessionID)
		if err != nil {
			out.Close(err)
			return
		}
		if !found {
			sess = store.NewSession(sessionID)
		}
		sess.LastMessage = message

		turnErr := o.runTurn(ctx, sess, out)
		o.save(ctx, sess)
		out.Close(turnErr)
	}()

	return out
}

// SelectGrant records the user's grant choice, runs the drafting stage, and
// returns the session to selection so further drafts can be requested.
func (o *Orchestrator) SelectGrant(ctx context.Context, sessionID, grantName string) (*events.Stream, error) {
	sess, found, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}

	var selected map[string]any
	for _, opp := range sess.Opportunities {
		if strings.EqualFold(opp.Name, grantName) {
			selected = opp.AsMap()
			break
		}
	}
	if selected == nil {
		return nil, errors.New("grant not found in validated results: " + grantName)
	}
	sess.Selected = selected

	out := events.NewStream(32)
	go func() {
		turnErr := o.runWriting(ctx, sess, out)
		o.save(ctx, sess)
		out.Close(turnErr)
	}()

	return out, nil
}

// runTurn heals the stage pointer, dispatches on the healed stage, and
// cascades same-turn transitions. A nil return means the turn ended cleanly
// and a turn-finished event was sent.
func (o *Orchestrator) runTurn(ctx context.Context, sess *store.Session, out *events.Stream) error {
	if err := o.heal(ctx, sess, out); err != nil {
		return err
	}

	switch sess.Stage {
	case store.StageProfileBuilding:
		exitSeen, cont, err := o.runCollector(ctx, sess, out)
		if err != nil || !cont {
			return err
		}
		if !exitSeen && !o.profileDone(sess) {
			return o.finish(ctx, sess, out)
		}
		sess.ProfileComplete = true
		if err := o.transition(ctx, sess, store.StageFinding, out); err != nil {
			return err
		}
		fallthrough

	case store.StageFinding:
		return o.runFinding(ctx, sess, out)

	case store.StageAwaitingSelection:
		if wantsNewSearch(sess.LastMessage) {
			if err := o.transition(ctx, sess, store.StageFinding, out); err != nil {
				return err
			}
			return o.runFinding(ctx, sess, out)
		}
		if err := o.forward(ctx, sess, out, events.Content(selectionPrompt(sess))); err != nil {
			return err
		}
		return o.finish(ctx, sess, out)

	case store.StageWriting:
		return o.runWriting(ctx, sess, out)

	default:
		o.log.Warn("workflow", "unknown stage, resetting to intake", map[string]interface{}{
			"session_id": sess.ID,
			"stage":      sess.Stage,
		})
		sess.Stage = store.StageProfileBuilding
		if err := o.forward(ctx, sess, out, events.Content("Let's start with your department profile. What's your department's name and location?")); err != nil {
			return err
		}
		return o.finish(ctx, sess, out)
	}
}

func (o *Orchestrator) runFinding(ctx context.Context, sess *store.Session, out *events.Stream) error {
	cont, err := o.runStage(ctx, o.finder, sess, out)
	if err != nil || !cont {
		return err
	}
	if err := o.transition(ctx, sess, store.StageAwaitingSelection, out); err != nil {
		return err
	}
	return o.finish(ctx, sess, out)
}

func (o *Orchestrator) runWriting(ctx context.Context, sess *store.Session, out *events.Stream) error {
	if sess.Stage != store.StageWriting {
		if err := o.transition(ctx, sess, store.StageWriting, out); err != nil {
			return err
		}
	}
	cont, err := o.runStage(ctx, o.writer, sess, out)
	if err != nil || !cont {
		return err
	}
	if err := o.transition(ctx, sess, store.StageAwaitingSelection, out); err != nil {
		return err
	}
	return o.finish(ctx, sess, out)
}

// heal reconciles the stage pointer with session data. Data wins: a session
// holding validated grants is never sent back to intake, and a complete
// profile never re-enters the collection loop.
func (o *Orchestrator) heal(ctx context.Context, sess *store.Session, out *events.Stream) error {
	healed := sess.Stage
	switch {
	case len(sess.Selected) > 0 && sess.Stage != store.StageWriting && sess.Draft == "":
		healed = store.StageWriting
	case len(sess.Opportunities) > 0 && (sess.Stage == store.StageProfileBuilding || sess.Stage == store.StageFinding):
		healed = store.StageAwaitingSelection
	case o.profileDone(sess) && sess.Stage == store.StageProfileBuilding:
		healed = store.StageFinding
	}

	if healed == sess.Stage {
		return nil
	}
	o.log.Info("workflow", "healed stale stage pointer", map[string]interface{}{
		"session_id": sess.ID,
		"from":       sess.Stage,
		"to":         healed,
	})
	return o.transition(ctx, sess, healed, out)
}

func (o *Orchestrator) profileDone(sess *store.Session) bool {
	return sess.ProfileComplete || o.requirements.IsComplete(sess.Profile)
}

// runCollector forwards the intake agent's stream and watches for the exit
// tool call, the explicit completion signal. The exit call may carry a final
// profile payload; it is merged before the completion flag is acted on.
func (o *Orchestrator) runCollector(ctx context.Context, sess *store.Session, out *events.Stream) (exitSeen, cont bool, err error) {
	stream := o.collector.Run(ctx, sess)
	for e := range stream.Events() {
		if e.Kind == events.KindToolCall && e.ToolName == constant.ToolExitProfileLoop {
			exitSeen = true
			sess.Profile = profile.Merge(sess.Profile, e.ToolArgs)
		}
		if err := o.forward(ctx, sess, out, e); err != nil {
			drainStream(stream)
			return false, false, err
		}
	}
	cont, err = o.settle(ctx, sess, out, stream.Err())
	return exitSeen, cont, err
}

// runStage forwards one agent's stream. cont=false with a nil error means
// the turn already ended cleanly (suppressed race).
func (o *Orchestrator) runStage(ctx context.Context, agent agents.StageAgent, sess *store.Session, out *events.Stream) (cont bool, err error) {
	stream := agent.Run(ctx, sess)
	for e := range stream.Events() {
		if err := o.forward(ctx, sess, out, e); err != nil {
			drainStream(stream)
			return false, err
		}
	}
	return o.settle(ctx, sess, out, stream.Err())
}

// forward sanitizes and emits one event. Control events always pass; empty
// content, including the zero-width placeholder, is dropped.
func (o *Orchestrator) forward(ctx context.Context, sess *store.Session, out *events.Stream, e events.Event) error {
	if !events.Keep(e) {
		return nil
	}
	if err := out.Send(ctx, e); err != nil {
		return err
	}
	o.publish(sess, e)
	return nil
}

// settle resolves an agent's terminal error. The already-consumed-message
// race ends the turn cleanly with a synthetic finish; anything else fails
// the turn.
func (o *Orchestrator) settle(ctx context.Context, sess *store.Session, out *events.Stream, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, agents.ErrNoNewInput) || strings.Contains(err.Error(), benignRaceMarker) {
		o.log.Debug("workflow", "suppressed duplicate-delivery race", map[string]interface{}{
			"session_id": sess.ID,
		})
		return false, o.finish(ctx, sess, out)
	}
	o.log.Error("workflow", "stage agent failed", map[string]interface{}{
		"session_id": sess.ID,
		"stage":      sess.Stage,
		"error":      err.Error(),
	})
	return false, err
}

func (o *Orchestrator) transition(ctx context.Context, sess *store.Session, stage string, out *events.Stream) error {
	sess.Stage = stage
	return o.forward(ctx, sess, out, events.StageChanged(stage))
}

func (o *Orchestrator) finish(ctx context.Context, sess *store.Session, out *events.Stream) error {
	return o.forward(ctx, sess, out, events.TurnFinished())
}

func (o *Orchestrator) publish(sess *store.Session, e events.Event) {
	if o.bus == nil {
		return
	}
	if err := o.bus.Publish(sess.ID, sess.Stage, e); err != nil {
		o.log.Warn("workflow", "event publish failed", map[string]interface{}{
			"session_id": sess.ID,
			"error":      err.Error(),
		})
	}
}

// save persists the session even when the turn's context was cancelled.
func (o *Orchestrator) save(ctx context.Context, sess *store.Session) {
	if err := o.store.Save(context.WithoutCancel(ctx), sess); err != nil {
		o.log.Error("workflow", "session save failed", map[string]interface{}{
			"session_id": sess.ID,
			"error":      err.Error(),
		})
	}
}

// drainStream lets an abandoned producer goroutine finish.
func drainStream(s *events.Stream) {
	go func() {
		for range s.Events() {
		}
	}()
}

func wantsNewSearch(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "find grants") || strings.Contains(m, "search for grants") || strings.Contains(m, "search again")
}

func selectionPrompt(sess *store.Session) string {
	if len(sess.Opportunities) == 0 {
		return "No grants are saved yet. Say 'find grants' to search for matching opportunities."
	}
	var b strings.Builder
	b.WriteString("Here are your validated grants:\n\n")
	for _, opp := range sess.Opportunities {
		b.WriteString("- **")
		b.WriteString(opp.Name)
		b.WriteString("** (")
		b.WriteString(opp.Source)
		b.WriteString(")\n")
	}
	b.WriteString("\nPick one to generate an application draft, or say 'find grants' to search again.")
	return b.String()
}
