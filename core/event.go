package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventActions encodes side effects attached to an Event. StateDelta carries
// the structured state mutations a tool produced during its invocation; the
// orchestrator folds them into the turn's working state under the
// reconciliation rules.
type EventActions struct {
	StateDelta map[string]any `json:"state_delta,omitempty"`
}

// Event is the primary unit of communication between sub-agents, the
// orchestrator and the client. After emission it should be treated as
// immutable. It captures:
//
//   - Correlation (TurnID, ID, Author)
//   - Conversational content (optional role-based Parts)
//   - State mutations (Actions.StateDelta)
//   - Error metadata
//   - High precision UTC timestamp
//
// Content may be nil for control or error-only events.
type Event struct {
	ID           string       `json:"id"`
	TurnID       string       `json:"turn_id"`
	Author       string       `json:"author"`
	Actions      EventActions `json:"actions"`
	Timestamp    time.Time    `json:"timestamp"`
	Content      *Content     `json:"content,omitempty"`
	Partial      *bool        `json:"partial,omitempty"`
	TurnComplete *bool        `json:"turn_complete,omitempty"`
	ErrorCode    *string      `json:"error_code,omitempty"`
	ErrorMessage *string      `json:"error_message,omitempty"`
}

// NewEvent creates a bare event authored by 'author' bound to a turn.
// Prefer helper constructors for common semantic categories.
func NewEvent(turnID, author string) Event {
	return Event{
		ID:        NewID(),
		TurnID:    turnID,
		Author:    author,
		Timestamp: time.Now().UTC(),
		Actions:   EventActions{},
	}
}

// NewMessageEvent creates an assistant message event with a single text part.
func NewMessageEvent(author, message string) Event {
	e := NewEvent("", author)
	e.Content = &Content{Role: "assistant", Parts: []Part{TextPart{Text: message}}}
	return e
}

// NewUserMessageEvent creates a user-authored text message event.
func NewUserMessageEvent(turnID, message string) Event {
	e := NewEvent(turnID, "user")
	e.Content = &Content{Role: "user", Parts: []Part{TextPart{Text: message}}}
	return e
}

// NewFunctionCallEvent represents an agent requesting execution of a named tool.
func NewFunctionCallEvent(author, functionName, args string) Event {
	e := NewEvent("", author)
	e.Content = &Content{
		Role: "assistant",
		Parts: []Part{
			FunctionCallPart{
				FunctionCall: FunctionCall{
					Name:      functionName,
					Arguments: args,
				},
			},
		},
	}
	return e
}

// NewFunctionResponseEvent records the completion result (or error) of a tool
// invocation. If err is non-nil its message is copied into the response.
func NewFunctionResponseEvent(author, id, functionName string, result any, err error) Event {
	e := NewEvent("", author)
	fr := FunctionResponse{ID: id, Name: functionName, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	e.Content = &Content{Role: "tool", Parts: []Part{FunctionResponsePart{FunctionResponse: fr}}}
	return e
}

// NewID generates a new unique identifier for events and turns.
func NewID() string { return uuid.NewString() }

// IsPartial reports whether this event represents a streaming fragment that
// will be followed by additional events composing the final assistant turn.
func (e Event) IsPartial() bool { return e.Partial != nil && *e.Partial }

// GetFunctionCalls returns any FunctionCall parts contained within the event
// content preserving their original order.
func (e Event) GetFunctionCalls() []FunctionCall {
	if e.Content == nil {
		return nil
	}
	var calls []FunctionCall
	for _, p := range e.Content.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// GetFunctionResponses returns any FunctionResponse parts contained within
// the event content preserving their original order.
func (e Event) GetFunctionResponses() []FunctionResponse {
	if e.Content == nil {
		return nil
	}
	var responses []FunctionResponse
	for _, p := range e.Content.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// IsFinalResponse reports whether this event closes an assistant turn (no
// pending tool calls or responses, not partial).
func (e Event) IsFinalResponse() bool {
	return len(e.GetFunctionCalls()) == 0 &&
		len(e.GetFunctionResponses()) == 0 &&
		!e.IsPartial()
}

// IsEmptyText reports whether the event carries only empty or whitespace
// text. Such events are internal bookkeeping from sub-agents and must never
// reach the client. Events carrying function calls or responses are never
// considered empty.
func (e Event) IsEmptyText() bool {
	if len(e.GetFunctionCalls()) > 0 || len(e.GetFunctionResponses()) > 0 {
		return false
	}
	if e.Content == nil {
		return true
	}

	for _, p := range e.Content.Parts {
		switch part := p.(type) {
		case TextPart:
			if strings.TrimSpace(part.Text) != "" {
				return false
			}
		case DataPart:
			if len(part.Data) > 0 {
				return false
			}
		}
	}

	return true
}

// Text returns the concatenated text content of the event.
func (e Event) Text() string {
	if e.Content == nil {
		return ""
	}

	return e.Content.Text()
}
