package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentJSONRoundTrip(t *testing.T) {
	in := Content{
		Role: "assistant",
		Parts: []Part{
			TextPart{Text: "hello"},
			DataPart{Data: map[string]any{"key": "value"}},
			FunctionCallPart{FunctionCall: FunctionCall{ID: "fc-1", Name: "search_web", Arguments: `{"query":"grants"}`}},
			FunctionResponsePart{FunctionResponse: FunctionResponse{ID: "fc-1", Name: "search_web", Response: "ok"}},
		},
	}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"text"`)
	assert.Contains(t, string(raw), `"type":"function_call"`)

	var out Content
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.Equal(t, in.Role, out.Role)
	require.Len(t, out.Parts, 4)
	assert.Equal(t, TextPart{Text: "hello"}, out.Parts[0])
	assert.Equal(t, "search_web", out.Parts[2].(FunctionCallPart).FunctionCall.Name)
	assert.Equal(t, "ok", out.Parts[3].(FunctionResponsePart).FunctionResponse.Response)
}

func TestContentUnmarshalRejectsUnknownType(t *testing.T) {
	var out Content
	err := json.Unmarshal([]byte(`{"role":"user","parts":[{"type":"hologram"}]}`), &out)
	require.Error(t, err)
}
