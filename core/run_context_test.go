package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunContext(emit chan<- Event) *RunContext {
	return NewRunContext(
		context.Background(),
		"session-1", "turn-1",
		AgentInfo{Name: "profile_collector", Type: "sub_agent"},
		Content{Role: "user", Parts: []Part{TextPart{Text: "hi"}}},
		nil,
		10,
		emit,
		map[string]any{"workflow_stage": "profile_building"},
		nil,
	)
}

func TestRunContextStateStaging(t *testing.T) {
	rc := newTestRunContext(nil)

	rc.SetState("profile_complete", true)

	v, ok := rc.GetState("profile_complete")
	require.True(t, ok)
	assert.Equal(t, true, v)

	v, ok = rc.GetState("workflow_stage")
	require.True(t, ok)
	assert.Equal(t, "profile_building", v)
}

func TestEmitEventAttachesDelta(t *testing.T) {
	emit := make(chan Event, 1)
	rc := newTestRunContext(emit)

	rc.SetState("profile_complete", true)
	require.NoError(t, rc.EmitEvent(NewMessageEvent("profile_collector", "done")))

	ev := <-emit
	assert.Equal(t, true, ev.Actions.StateDelta["profile_complete"])

	// Delta buffer is cleared after emission.
	assert.Empty(t, rc.StateDelta)
}

func TestWithAgentSharesWorkingState(t *testing.T) {
	rc := newTestRunContext(nil)
	rc.SetState("organization_profile", map[string]any{"name": "Maple Grove VFD"})

	child := rc.WithAgent(AgentInfo{Name: "grant_finder", Type: "sub_agent"})

	v, ok := child.GetState("organization_profile")
	require.True(t, ok)
	assert.NotNil(t, v)

	// Fresh delta buffer for the cascaded agent.
	assert.Empty(t, child.StateDelta)
	assert.Equal(t, "grant_finder", child.GetAgentName())
}

func TestEmitEventRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	emit := make(chan Event) // unbuffered, nobody reading
	rc := newTestRunContext(emit)
	rc.Context = ctx

	cancel()
	err := rc.EmitEvent(NewMessageEvent("a", "x"))
	assert.Error(t, err)
}
