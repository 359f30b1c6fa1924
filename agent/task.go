// Package agent contains the sub-agents that handle one conversation turn
// each: an intake specialist, a grant researcher and an application writer.
// All three are TaskAgent instances differing only in instruction and tool
// set; stage routing between them happens in the orchestrator.
package agent

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/civicgrant/grantflow/core"
	"github.com/civicgrant/grantflow/model"
	"github.com/civicgrant/grantflow/tool"
)

// TaskAgentOptions configures a TaskAgent instance. Use functional options
// with NewTaskAgent to override defaults.
type TaskAgentOptions struct {
	Description        string
	Instruction        Instruction
	Tools              []tool.Tool
	ToolTimeout        time.Duration
	MaxHistoryMessages int
}

// TaskAgent drives a single request -> model -> (optional tool loop) cycle
// against a language model. It emits every model message and tool response as
// an Event on the run context's channel; state mutations performed by tools
// ride along as state deltas on the tool response events.
//
// A TaskAgent has no mutable state after construction and is safe for
// concurrent use across sessions.
type TaskAgent struct {
	name        string
	description string
	instruction Instruction
	llm         model.Model
	tools       map[string]tool.Tool
	toolOrder   []string
	toolTimeout time.Duration
	maxHistory  int
}

// NewTaskAgent creates a model-backed agent with the given name.
func NewTaskAgent(name string, llm model.Model, optFns ...func(o *TaskAgentOptions)) (*TaskAgent, error) {
	opts := TaskAgentOptions{
		Description:        fmt.Sprintf("Agent %s", name),
		Instruction:        NewInstructionFromText(fmt.Sprintf("You are %s, a helpful assistant.", name)),
		ToolTimeout:        15 * time.Second,
		MaxHistoryMessages: 20,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &TaskAgent{
		name:        name,
		description: opts.Description,
		instruction: opts.Instruction,
		llm:         llm,
		tools:       make(map[string]tool.Tool, len(opts.Tools)),
		toolTimeout: opts.ToolTimeout,
		maxHistory:  opts.MaxHistoryMessages,
	}

	if err := tool.VerifySchemas(opts.Tools...); err != nil {
		return nil, err
	}
	for _, t := range opts.Tools {
		a.tools[t.Name()] = t
		a.toolOrder = append(a.toolOrder, t.Name())
	}

	return a, nil
}

// Name returns the agent's display name.
func (a *TaskAgent) Name() string { return a.name }

// Description returns the agent's purpose description.
func (a *TaskAgent) Description() string { return a.description }

// Info returns the identity attached to events and tool contexts.
func (a *TaskAgent) Info() core.AgentInfo {
	return core.AgentInfo{Name: a.name, Type: "task"}
}

// HasTool reports whether a tool is registered with the agent.
func (a *TaskAgent) HasTool(name string) bool {
	_, ok := a.tools[name]
	return ok
}

// Tools returns the registered tools in registration order.
func (a *TaskAgent) Tools() []tool.Tool {
	out := make([]tool.Tool, 0, len(a.toolOrder))
	for _, name := range a.toolOrder {
		out = append(out, a.tools[name])
	}

	return out
}

// Run executes the generate/tool loop for one turn. It returns when the model
// produces a final text response, the context is cancelled, or the per-turn
// model call limit is exhausted. Generation failures are returned to the
// caller so the orchestrator can discard the turn.
func (a *TaskAgent) Run(runCtx *core.RunContext) error {
	runCtx.LogDebug("agent.run.start", "agent", a.name, "turn", runCtx.TurnID)

	contents := a.windowedHistory(runCtx.History)
	contents = append(contents, runCtx.UserContent)

	for {
		last, next, err := a.runOnce(runCtx, contents)
		if err != nil {
			return err
		}
		contents = next

		if last == nil {
			return fmt.Errorf("agent %s: model produced no response", a.name)
		}
		if len(last.GetFunctionResponses()) > 0 {
			// Tool results are in; the model gets another look.
			continue
		}
		if last.IsFinalResponse() {
			runCtx.LogDebug("agent.run.complete", "agent", a.name, "turn", runCtx.TurnID)
			return nil
		}
	}
}

// runOnce performs one model call plus any tool executions it requests and
// returns the last emitted event along with the extended conversation.
func (a *TaskAgent) runOnce(runCtx *core.RunContext, contents []core.Content) (*core.Event, []core.Content, error) {
	if err := runCtx.Limiter.Increment(); err != nil {
		return nil, contents, fmt.Errorf("agent %s: %w", a.name, err)
	}

	instructions, err := a.instruction.Resolve(runCtx)
	if err != nil {
		return nil, contents, fmt.Errorf("resolve instructions: %w", err)
	}

	req := model.Request{
		Instructions: instructions,
		Contents:     contents,
		Tools:        a.toolDefinitions(),
	}

	start := time.Now()
	respCh, errCh := a.llm.Generate(runCtx.Context, req)

	var lastEvent *core.Event

	for {
		select {
		case <-runCtx.Context.Done():
			return lastEvent, contents, runCtx.Context.Err()
		case err, ok := <-errCh:
			if !ok {
				errCh = nil // closed; stop selecting on it
				continue
			}
			if err != nil {
				runCtx.LogError("agent.model.error", "agent", a.name, "error", err.Error())
				return lastEvent, contents, fmt.Errorf("model call failed: %w", err)
			}
		case resp, ok := <-respCh:
			if !ok {
				runCtx.LogDebug("agent.model.done", "agent", a.name, "duration_ms", time.Since(start).Milliseconds())
				return lastEvent, contents, nil
			}

			ev := core.NewEvent(runCtx.TurnID, a.name)
			content := resp.Content
			ev.Content = &content
			partial := resp.Partial
			ev.Partial = &partial

			if !resp.Partial && len(ev.GetFunctionCalls()) == 0 {
				complete := true
				ev.TurnComplete = &complete
			}

			lastEvent = &ev
			if err := runCtx.EmitEvent(ev); err != nil {
				return lastEvent, contents, err
			}
			if !resp.Partial {
				contents = append(contents, content)
			}

			for _, fnCall := range ev.GetFunctionCalls() {
				respEv, toolContent := a.executeCall(runCtx, fnCall)
				lastEvent = &respEv
				if err := runCtx.EmitEvent(respEv); err != nil {
					return lastEvent, contents, err
				}
				contents = append(contents, toolContent)
			}
		}
	}
}

// executeCall runs one requested tool and packages its result (or failure)
// as a function response event plus the content fed back to the model.
func (a *TaskAgent) executeCall(runCtx *core.RunContext, fnCall core.FunctionCall) (core.Event, core.Content) {
	toolCtx := core.NewToolContext(runCtx, fnCall.ID)

	start := time.Now()
	result, err := a.executeTool(toolCtx, fnCall.Name, fnCall.Arguments)
	runCtx.LogInfo("agent.tool.executed",
		"agent", a.name,
		"tool", fnCall.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)

	ev := core.NewFunctionResponseEvent(a.name, fnCall.ID, fnCall.Name, result, err)
	ev.TurnID = runCtx.TurnID
	toolCtx.InternalApplyActions(&ev)

	return ev, *ev.Content
}

// executeTool deserializes JSON arguments and invokes the named tool.
func (a *TaskAgent) executeTool(toolCtx *core.ToolContext, toolName, args string) (any, error) {
	t, ok := a.tools[toolName]
	if !ok {
		return nil, fmt.Errorf("tool %s not found", toolName)
	}

	argsMap := make(map[string]any)
	if args != "" {
		if err := json.Unmarshal([]byte(args), &argsMap); err != nil {
			return nil, fmt.Errorf("unmarshal tool args: %w", err)
		}
	}

	return t.Call(toolCtx, argsMap)
}

func (a *TaskAgent) toolDefinitions() []model.ToolDefinition {
	if len(a.toolOrder) == 0 {
		return nil
	}

	defs := make([]model.ToolDefinition, 0, len(a.toolOrder))
	for _, name := range a.toolOrder {
		t := a.tools[name]
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}

	return defs
}

// windowedHistory trims the conversation history to the configured window,
// keeping the most recent messages.
func (a *TaskAgent) windowedHistory(history []core.Content) []core.Content {
	if a.maxHistory <= 0 || len(history) <= a.maxHistory {
		return append([]core.Content(nil), history...)
	}

	return append([]core.Content(nil), history[len(history)-a.maxHistory:]...)
}
