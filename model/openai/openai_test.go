package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicgrant/grantflow/core"
	"github.com/civicgrant/grantflow/model"
)

func TestBuildMessagesPrependsInstructions(t *testing.T) {
	req := model.Request{
		Instructions: "You are a grant researcher.",
		Contents: []core.Content{
			{Role: "user", Parts: []core.Part{core.TextPart{Text: "find grants"}}},
		},
	}

	responses, order := collectToolResponses(req)
	messages := buildMessages(req, responses, order)

	require.Len(t, messages, 2)
	require.NotNil(t, messages[0].OfSystem)
	assert.Equal(t, "You are a grant researcher.", messages[0].OfSystem.Content.OfString.Value)
	require.NotNil(t, messages[1].OfUser)
}

func TestBuildMessagesWithoutInstructions(t *testing.T) {
	req := model.Request{
		Contents: []core.Content{
			{Role: "user", Parts: []core.Part{core.TextPart{Text: "hello"}}},
		},
	}

	responses, order := collectToolResponses(req)
	messages := buildMessages(req, responses, order)

	require.Len(t, messages, 1)
	assert.NotNil(t, messages[0].OfUser)
}

func TestBuildMessagesPairsToolResponses(t *testing.T) {
	req := model.Request{
		Contents: []core.Content{
			{Role: "user", Parts: []core.Part{core.TextPart{Text: "search"}}},
			{Role: "assistant", Parts: []core.Part{core.FunctionCallPart{
				FunctionCall: core.FunctionCall{ID: "fc-1", Name: "search_web", Arguments: `{"query": "grants"}`},
			}}},
			{Role: "tool", Parts: []core.Part{core.FunctionResponsePart{
				FunctionResponse: core.FunctionResponse{ID: "fc-1", Name: "search_web", Response: "results here"},
			}}},
		},
	}

	responses, order := collectToolResponses(req)
	messages := buildMessages(req, responses, order)

	// user, assistant tool call, tool response
	require.Len(t, messages, 3)
	require.NotNil(t, messages[1].OfAssistant)
	require.NotNil(t, messages[2].OfTool)
	assert.Equal(t, "fc-1", messages[2].OfTool.ToolCallID)
}

func TestNewModelOptions(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.Model = "gpt-4o"
		o.APIKey = "test-key"
	})

	info := m.Info()
	assert.Equal(t, "gpt-4o", info.Name)
	assert.Equal(t, "openai", info.Provider)
	assert.True(t, info.SupportsTools)
}
