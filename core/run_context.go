package core

import (
	"context"
	"maps"

	"github.com/civicgrant/grantflow/logging"
)

// RunContext carries the mutable, per-turn execution scope passed to a
// sub-agent's Run method. The backend is stateless: everything a turn needs
// travels in this context and nothing survives it. It aggregates:
//
//   - The ambient cancellation Context
//   - Identifiers (SessionID, TurnID, Agent info)
//   - Input user Content plus prior conversation history
//   - The turn's working run-state map (a view over WorkflowState)
//   - The emit channel events flow through
//
// State mutations performed via SetState accumulate in StateDelta until
// EmitEvent attaches them to the next emitted event; they are also applied to
// the working State map immediately so later tool calls in the same turn see
// them.
type RunContext struct {
	Context           context.Context
	SessionID, TurnID string
	Agent             AgentInfo
	UserContent       Content
	History           []Content
	MaxModelCalls     int
	Emit              chan<- Event
	Limiter           *ModelLimiter
	State             map[string]any
	StateDelta        map[string]any

	*loggerAdapter
}

// NewRunContext constructs a RunContext with an empty staged delta.
func NewRunContext(
	ctx context.Context,
	sessionID, turnID string,
	agent AgentInfo,
	userContent Content,
	history []Content,
	maxModelCalls int,
	emit chan<- Event,
	runState map[string]any,
	logger logging.Logger,
) *RunContext {
	if runState == nil {
		runState = map[string]any{}
	}

	return &RunContext{
		Context:       ctx,
		SessionID:     sessionID,
		TurnID:        turnID,
		Agent:         agent,
		UserContent:   userContent,
		History:       history,
		MaxModelCalls: maxModelCalls,
		Emit:          emit,
		Limiter:       NewModelLimiter(maxModelCalls),
		State:         runState,
		StateDelta:    map[string]any{},
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// GetState returns a staged (delta) value if present, else the working state value.
func (rc *RunContext) GetState(k string) (any, bool) {
	if v, ok := rc.StateDelta[k]; ok {
		return v, true
	}

	v, ok := rc.State[k]

	return v, ok
}

// SetState stages a state mutation and makes it immediately visible to later
// reads within the turn.
func (rc *RunContext) SetState(k string, v any) {
	rc.StateDelta[k] = v
	rc.State[k] = v
}

// ApplyStateDelta merges all pairs from d into the staged StateDelta.
func (rc *RunContext) ApplyStateDelta(d map[string]any) {
	for k, v := range d {
		rc.SetState(k, v)
	}
}

// GetAgentName returns the logical agent name for this turn.
func (rc *RunContext) GetAgentName() string { return rc.Agent.Name }

// WithAgent clones the context for a cascaded sub-agent invocation within the
// same turn. The working state is shared; the staged delta buffer is fresh.
func (rc *RunContext) WithAgent(agent AgentInfo) *RunContext {
	return &RunContext{
		Context:       rc.Context,
		SessionID:     rc.SessionID,
		TurnID:        rc.TurnID,
		Agent:         agent,
		UserContent:   rc.UserContent,
		History:       rc.History,
		MaxModelCalls: rc.MaxModelCalls,
		Emit:          rc.Emit,
		Limiter:       rc.Limiter,
		State:         rc.State,
		StateDelta:    map[string]any{},
		loggerAdapter: rc.loggerAdapter,
	}
}

// Clone returns a shallow copy with a deep-copied delta buffer.
func (rc *RunContext) Clone() *RunContext {
	c := rc.WithAgent(rc.Agent)
	maps.Copy(c.StateDelta, rc.StateDelta)

	return c
}

// EmitEvent merges the pending StateDelta into the event and emits it.
func (rc *RunContext) EmitEvent(ev Event) error {
	if len(rc.StateDelta) > 0 {
		if ev.Actions.StateDelta == nil {
			ev.Actions.StateDelta = map[string]any{}
		}
		maps.Copy(ev.Actions.StateDelta, rc.StateDelta)
	}

	select {
	case <-rc.Context.Done():
		return rc.Context.Err()
	case rc.Emit <- ev:
	}

	rc.StateDelta = map[string]any{}

	return nil
}
