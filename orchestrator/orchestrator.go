// Package orchestrator implements the per-turn router and state machine. For
// every inbound user message it reconciles the client-supplied workflow state,
// recomputes the stage from data, dispatches exactly one sub-agent (with at
// most one same-turn cascade), filters the resulting event stream and returns
// one coherent final state. The backend holds no durable state between turns;
// the returned WorkflowState is the entire persistence mechanism.
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/civicgrant/grantflow/agent"
	"github.com/civicgrant/grantflow/core"
	"github.com/civicgrant/grantflow/logging"
	"github.com/civicgrant/grantflow/session"
	"github.com/civicgrant/grantflow/state"
)

// apologyText is returned when an external service failure aborts the turn.
// The prior state rides back unchanged so the user can simply retry.
const apologyText = "I'm sorry, something went wrong while processing that request. Your progress is saved; please try again."

const resetText = "Your workspace has been reset. Tell me about your organization whenever you're ready to start again."

// Options configures an Orchestrator instance.
type Options struct {
	MaxModelCalls int
	Completeness  state.Completeness
	Logger        logging.Logger
}

// Orchestrator routes turns between the three sub-agents.
type Orchestrator struct {
	collector *agent.TaskAgent
	finder    *agent.TaskAgent
	writer    *agent.TaskAgent

	reconciler    *state.Reconciler
	locks         *session.Registry
	logger        logging.Logger
	maxModelCalls int
}

// Request is one inbound user turn. State is the client's last-known
// WorkflowState snapshot (may be nil on a first turn) and History the prior
// conversation content the client carries.
type Request struct {
	SessionID string
	Message   string
	State     *state.WorkflowState
	History   []core.Content
}

// Result is the turn's outcome: the filtered event stream and the fully
// reconciled state the client must persist until the next turn.
type Result struct {
	Events []core.Event
	State  *state.WorkflowState
}

// New constructs an orchestrator over the three sub-agents.
func New(collector, finder, writer *agent.TaskAgent, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		MaxModelCalls: 8,
		Completeness:  state.DefaultCompleteness(),
		Logger:        logging.NewDefaultSlogLogger(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Orchestrator{
		collector:     collector,
		finder:        finder,
		writer:        writer,
		reconciler:    state.NewReconciler(opts.Completeness),
		locks:         session.NewRegistry(),
		logger:        opts.Logger,
		maxModelCalls: opts.MaxModelCalls,
	}
}

// Turn processes one user message end to end. Turns for the same session are
// serialized; a second request blocks until the first has produced its final
// state. State changes are all-or-nothing: a failed turn returns the prior
// state untouched together with an apology event.
func (o *Orchestrator) Turn(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}

	release := o.locks.Acquire(req.SessionID)
	defer release()

	turnID := core.NewID()
	prior := o.reconciler.Normalize(req.State)

	message := strings.TrimSpace(req.Message)
	if message == "" {
		// Defensive no-op; nothing to dispatch.
		return &Result{State: prior}, nil
	}

	if isResetCommand(message) {
		fresh := state.New()
		fresh.Revision = prior.Revision + 1

		ev := core.NewMessageEvent("system", resetText)
		ev.TurnID = turnID
		complete := true
		ev.TurnComplete = &complete

		o.logger.Info("turn.reset", "session", req.SessionID, "turn", turnID)

		return &Result{Events: []core.Event{ev}, State: fresh}, nil
	}

	working := prior.Clone()

	// The stored flag is a cache; the data is truth. If intake data is
	// already complete, correct the stage before dispatch.
	if working.Stage == state.StageProfileBuilding && working.ProfileComplete {
		working.AdvanceStage(working.Stage.Next())
	}

	active := o.route(working.Stage)
	wasComplete := working.ProfileComplete

	o.logger.Info("turn.dispatch",
		"session", req.SessionID,
		"turn", turnID,
		"stage", string(working.Stage),
		"agent", active.Name(),
	)

	events, err := o.runAgent(ctx, active, turnID, req, message, working)
	if err != nil {
		return o.failTurn(req.SessionID, turnID, prior, err), nil
	}

	// Cascade: when intake completes during this very turn, the research
	// agent runs immediately so the user is not forced to repeat themselves.
	// At most one cascade per turn.
	if active == o.collector && !wasComplete && working.ProfileComplete {
		o.logger.Info("turn.cascade",
			"session", req.SessionID,
			"turn", turnID,
			"from", active.Name(),
			"to", o.finder.Name(),
		)

		cascadeEvents, err := o.runAgent(ctx, o.finder, turnID, req, message, working)
		if err != nil {
			return o.failTurn(req.SessionID, turnID, prior, err), nil
		}
		events = append(events, cascadeEvents...)
	}

	// One coherent application of the merge rules at turn end: the stage stays
	// monotonic and the completeness flag is recomputed from the merged data,
	// whatever order the per-event deltas arrived in.
	working = o.reconciler.Merge(prior, working)
	working.Revision = prior.Revision + 1

	return &Result{Events: filterEvents(events), State: working}, nil
}

// route maps a stage to the sub-agent owning it.
func (o *Orchestrator) route(s state.Stage) *agent.TaskAgent {
	switch s {
	case state.StageGrantScouting:
		return o.finder
	case state.StageGrantValidation, state.StageGrantWriting:
		return o.writer
	default:
		return o.collector
	}
}

// runAgent executes one sub-agent invocation, folding every emitted state
// delta into the working state in emission order.
func (o *Orchestrator) runAgent(
	ctx context.Context,
	a *agent.TaskAgent,
	turnID string,
	req Request,
	message string,
	working *state.WorkflowState,
) ([]core.Event, error) {
	emit := make(chan core.Event, 16)
	runCtx := core.NewRunContext(
		ctx,
		req.SessionID, turnID,
		a.Info(),
		core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: message}}},
		req.History,
		o.maxModelCalls,
		emit,
		working.RunState(),
		o.logger,
	)

	var runErr error
	go func() {
		defer close(emit)
		runErr = a.Run(runCtx)
	}()

	var events []core.Event
	for ev := range emit {
		if len(ev.Actions.StateDelta) > 0 {
			if err := working.ApplyDelta(ev.Actions.StateDelta); err != nil {
				o.logger.Warn("turn.delta.rejected",
					"turn", turnID,
					"agent", a.Name(),
					"error", err.Error(),
				)
			}
			working.ProfileComplete = o.reconciler.Policy.Complete(working.Profile)
		}
		events = append(events, ev)
	}

	return events, runErr
}

// failTurn implements the all-or-nothing rule: the prior state is returned
// unchanged together with a short apology, and nothing from the failed turn
// survives.
func (o *Orchestrator) failTurn(sessionID, turnID string, prior *state.WorkflowState, cause error) *Result {
	o.logger.Error("turn.failed", "session", sessionID, "turn", turnID, "error", cause.Error())

	ev := core.NewMessageEvent("system", apologyText)
	ev.TurnID = turnID
	complete := true
	ev.TurnComplete = &complete

	return &Result{Events: []core.Event{ev}, State: prior}
}

// filterEvents suppresses events that must never reach the client: empty or
// whitespace-only assistant text, and duplicate terminal responses. Exactly
// one event at most carries the turn-complete marker.
func filterEvents(events []core.Event) []core.Event {
	out := make([]core.Event, 0, len(events))
	seenTerminal := map[string]bool{}

	for _, ev := range events {
		if ev.IsEmptyText() && ev.ErrorMessage == nil {
			continue
		}

		if isTerminalText(ev) {
			text := strings.TrimSpace(ev.Text())
			if seenTerminal[text] {
				continue
			}
			seenTerminal[text] = true
		}

		out = append(out, ev)
	}

	// Only the last terminal event keeps the completion marker.
	marked := false
	for i := len(out) - 1; i >= 0; i-- {
		if !isTerminalText(out[i]) {
			continue
		}
		if marked {
			out[i].TurnComplete = nil
			continue
		}
		marked = true
	}

	return out
}

func isTerminalText(ev core.Event) bool {
	return ev.IsFinalResponse() && strings.TrimSpace(ev.Text()) != ""
}

// isResetCommand reports whether the message is an explicit workspace reset.
func isResetCommand(message string) bool {
	switch strings.ToLower(strings.TrimSpace(message)) {
	case "reset", "start over", "restart":
		return true
	default:
		return false
	}
}
