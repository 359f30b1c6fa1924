package tool

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicgrant/grantflow/core"
	"github.com/civicgrant/grantflow/logging"
	"github.com/civicgrant/grantflow/search"
	"github.com/civicgrant/grantflow/state"
)

func newTestToolContext(runState map[string]any) *core.ToolContext {
	emit := make(chan core.Event, 16)
	rc := core.NewRunContext(
		context.Background(),
		"session-1", "turn-1",
		core.AgentInfo{Name: "test_agent", Type: "task"},
		core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: "hi"}}},
		nil,
		5,
		emit,
		runState,
		logging.NoOpLogger{},
	)

	return core.NewToolContext(rc, "fc-1")
}

func TestFunctionToolValidation(t *testing.T) {
	tool := NewFunctionTool(
		"echo",
		"Echo a message",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{"type": "string"},
			},
			"required": []string{"message"},
		},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			return args["message"], nil
		},
	)

	tc := newTestToolContext(nil)

	result, err := tool.Call(tc, map[string]any{"message": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", result)

	_, err = tool.Call(tc, map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestFunctionToolWrapsExecutionError(t *testing.T) {
	tool := NewFunctionTool(
		"boom",
		"Always fails",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ *core.ToolContext, _ map[string]any) (any, error) {
			return nil, errors.New("kaput")
		},
	)

	_, err := tool.Call(newTestToolContext(nil), map[string]any{})

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Contains(t, toolErr.Message, "kaput")
}

func TestAllToolSchemasPassContract(t *testing.T) {
	policy := state.DefaultCompleteness()
	tools := []Tool{
		NewUpdateProfileTool(policy),
		NewCompleteProfileTool(policy),
		NewSearchWebTool(search.NewStub()),
		NewSaveGrantsTool(),
		NewSaveDraftTool(),
	}

	require.NoError(t, VerifySchemas(tools...))
}

func TestVerifySchemaRejectsOptionalParameter(t *testing.T) {
	bad := NewFunctionTool("bad", "optional param", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "string"},
			"b": map[string]any{"type": "string"},
		},
		"required": []string{"a"},
	}, nil)

	err := VerifySchema(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"b" must be required`)
}

func TestVerifySchemaRejectsUntypedArray(t *testing.T) {
	bad := NewFunctionTool("bad", "untyped array", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"items_list": map[string]any{"type": "array"},
		},
		"required": []string{"items_list"},
	}, nil)

	err := VerifySchema(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must declare items")
}

func TestUpdateProfileMergesFillForward(t *testing.T) {
	policy := state.DefaultCompleteness()
	tool := NewUpdateProfileTool(policy)

	tc := newTestToolContext(map[string]any{
		state.KeyProfile: map[string]any{
			"name":     "Maple Grove VFD",
			"location": map[string]any{"state": "Pennsylvania"},
		},
	})

	result, err := tool.Call(tc, map[string]any{
		"profile_json": `{"name": "", "location": {"city": "Maple Grove"}, "needs": ["SCBA units"]}`,
	})
	require.NoError(t, err)

	merged := state.Profile(tc.GetStateMap(state.KeyProfile))
	assert.Equal(t, "Maple Grove VFD", merged.Name(), "empty name must not clobber recorded name")
	assert.Equal(t, "Pennsylvania", merged.State())
	assert.Equal(t, "Maple Grove", merged.City())
	assert.Equal(t, []string{"SCBA units"}, merged.Needs())
	assert.Contains(t, result.(string), "complete_profile")
}

func TestUpdateProfileReportsMissingFields(t *testing.T) {
	tool := NewUpdateProfileTool(state.DefaultCompleteness())
	tc := newTestToolContext(nil)

	result, err := tool.Call(tc, map[string]any{"profile_json": `{"name": "Maple Grove VFD"}`})
	require.NoError(t, err)

	msg := result.(string)
	assert.Contains(t, msg, "location")
	assert.Contains(t, msg, "need")
}

func TestUpdateProfileEmptyFragmentIsNoOp(t *testing.T) {
	tool := NewUpdateProfileTool(state.DefaultCompleteness())

	for _, raw := range []string{"", "{}", "   "} {
		tc := newTestToolContext(nil)
		result, err := tool.Call(tc, map[string]any{"profile_json": raw})
		require.NoError(t, err)
		assert.Equal(t, "No profile changes to record.", result)
		assert.Empty(t, tc.Actions().StateDelta)
	}
}

func TestUpdateProfileInvalidJSONReturnsGuidance(t *testing.T) {
	tool := NewUpdateProfileTool(state.DefaultCompleteness())
	tc := newTestToolContext(nil)

	result, err := tool.Call(tc, map[string]any{"profile_json": `{"name": `})
	require.NoError(t, err, "parse failures must not abort the turn")
	assert.Contains(t, result.(string), "Could not parse")
	assert.Empty(t, tc.Actions().StateDelta)
}

func TestCompleteProfileAdvancesStage(t *testing.T) {
	tool := NewCompleteProfileTool(state.DefaultCompleteness())
	tc := newTestToolContext(map[string]any{
		state.KeyProfile: map[string]any{
			"name":     "Maple Grove VFD",
			"location": map[string]any{"state": "Pennsylvania"},
			"needs":    []any{"SCBA units"},
		},
	})

	result, err := tool.Call(tc, map[string]any{"final_profile_json": ""})
	require.NoError(t, err)
	assert.Contains(t, result.(string), "find grants")

	delta := tc.Actions().StateDelta
	assert.Equal(t, true, delta[state.KeyProfileComplete])
	assert.Equal(t, string(state.StageGrantScouting), delta[state.KeyStage])
}

func TestCompleteProfileRefusesIncompleteProfile(t *testing.T) {
	tool := NewCompleteProfileTool(state.DefaultCompleteness())
	tc := newTestToolContext(map[string]any{
		state.KeyProfile: map[string]any{"name": "Maple Grove VFD"},
	})

	result, err := tool.Call(tc, map[string]any{"final_profile_json": ""})
	require.NoError(t, err)
	assert.Contains(t, result.(string), "not complete")

	delta := tc.Actions().StateDelta
	assert.NotContains(t, delta, state.KeyProfileComplete)
	assert.NotContains(t, delta, state.KeyStage)
}

func TestCompleteProfileMergesFinalFragment(t *testing.T) {
	tool := NewCompleteProfileTool(state.DefaultCompleteness())
	tc := newTestToolContext(map[string]any{
		state.KeyProfile: map[string]any{"name": "Maple Grove VFD"},
	})

	_, err := tool.Call(tc, map[string]any{
		"final_profile_json": `{"location": {"state": "Pennsylvania"}, "needs": ["SCBA units"]}`,
	})
	require.NoError(t, err)

	delta := tc.Actions().StateDelta
	assert.Equal(t, true, delta[state.KeyProfileComplete])
	merged := state.Profile(tc.GetStateMap(state.KeyProfile))
	assert.Equal(t, "Pennsylvania", merged.State())
}

func TestSaveGrantsFiltersScoresAndRanks(t *testing.T) {
	tool := NewSaveGrantsTool()
	tc := newTestToolContext(map[string]any{
		state.KeyProfile: map[string]any{
			"location": map[string]any{"state": "Pennsylvania"},
		},
	})

	grantsJSON := `[
		{"name": "Low Score Grant", "source": "Somewhere", "url": "https://example.org", "description": "weak match", "eligibility_score": 0.4},
		{"name": "FEMA Assistance to Firefighters", "source": "FEMA", "url": "https://www.fema.gov/afg", "description": "Federal equipment grants", "eligibility_score": 0.8},
		{"name": "Ohio Fire Equipment Grant", "source": "Ohio Fire Marshal", "url": "https://ohio.gov/grants", "description": "State equipment fund", "eligibility_score": 0.95},
		{"name": "Pennsylvania Fire Company Grant", "source": "PA OSFC", "url": "https://www.osfc.pa.gov", "description": "State grant program", "eligibility_score": 0.9}
	]`

	result, err := tool.Call(tc, map[string]any{"grants_json": grantsJSON})
	require.NoError(t, err)

	saved, ok := tc.Actions().StateDelta[state.KeyGrants].([]state.Grant)
	require.True(t, ok)
	require.Len(t, saved, 2)

	assert.Equal(t, "Pennsylvania Fire Company Grant", saved[0].Name)
	assert.Equal(t, 1, saved[0].PriorityRank)
	assert.Equal(t, "FEMA Assistance to Firefighters", saved[1].Name)
	assert.Equal(t, 2, saved[1].PriorityRank)

	assert.Equal(t, string(state.StageGrantValidation), tc.Actions().StateDelta[state.KeyStage])
	assert.Contains(t, result.(string), "Saved 2 grant opportunities")
}

func TestSaveGrantsInvalidJSONReturnsGuidance(t *testing.T) {
	tool := NewSaveGrantsTool()
	tc := newTestToolContext(nil)

	result, err := tool.Call(tc, map[string]any{"grants_json": `[{"name":`})
	require.NoError(t, err)
	assert.Contains(t, result.(string), "Could not parse")
	assert.Empty(t, tc.Actions().StateDelta)
}

func TestSaveGrantsEmptyList(t *testing.T) {
	tool := NewSaveGrantsTool()
	tc := newTestToolContext(nil)

	result, err := tool.Call(tc, map[string]any{"grants_json": "[]"})
	require.NoError(t, err)
	assert.Equal(t, "No grant opportunities to save.", result)
	assert.Empty(t, tc.Actions().StateDelta)
}

func TestSaveDraftRendersDocumentAndAdvances(t *testing.T) {
	tool := NewSaveDraftTool()
	tc := newTestToolContext(map[string]any{
		state.KeyProfile: map[string]any{"name": "Maple Grove VFD"},
		state.KeyGrants: []state.Grant{
			{Name: "FEMA Assistance to Firefighters", Source: "FEMA"},
		},
	})

	result, err := tool.Call(tc, map[string]any{
		"grant_name":    "FEMA Assistance to Firefighters",
		"draft_content": `EXECUTIVE SUMMARY\nOur department requests \"SCBA units\".\n`,
	})
	require.NoError(t, err)

	saved, ok := tc.Actions().StateDelta[state.KeyDraft].(state.Draft)
	require.True(t, ok)
	assert.Equal(t, "FEMA Assistance to Firefighters", saved.GrantName)
	assert.False(t, saved.CreatedAt.IsZero())

	// Escapes normalized and the narrative wrapped in the fixed layout.
	assert.Contains(t, saved.Content, "EXECUTIVE SUMMARY\n"+strings.Repeat("-", 80)+"\nOur department")
	assert.Contains(t, saved.Content, `"SCBA units"`)
	assert.Contains(t, saved.Content, "Grant Program: FEMA Assistance to Firefighters")
	assert.Contains(t, saved.Content, "Funding Source: FEMA")
	assert.Contains(t, saved.Content, "Applicant: Maple Grove VFD")
	assert.Contains(t, saved.Content, "END OF DRAFT")
	assert.Contains(t, saved.Content, "AI-generated draft")

	assert.Equal(t, string(state.StageGrantWriting), tc.Actions().StateDelta[state.KeyStage])
	assert.NotContains(t, result.(string), "EXECUTIVE SUMMARY", "confirmation must not echo the draft")
}

func TestSaveDraftUnknownGrantFallsBack(t *testing.T) {
	tool := NewSaveDraftTool()
	tc := newTestToolContext(nil)

	_, err := tool.Call(tc, map[string]any{
		"grant_name":    "Some Grant Nobody Saved",
		"draft_content": "EXECUTIVE SUMMARY\nbody",
	})
	require.NoError(t, err)

	saved := tc.Actions().StateDelta[state.KeyDraft].(state.Draft)
	assert.Contains(t, saved.Content, "Funding Source: Not specified")
	assert.Contains(t, saved.Content, "Applicant: Not specified")
}

func TestSaveDraftRejectsEmptyContent(t *testing.T) {
	tool := NewSaveDraftTool()
	tc := newTestToolContext(nil)

	result, err := tool.Call(tc, map[string]any{"grant_name": "X", "draft_content": "   "})
	require.NoError(t, err)
	assert.Contains(t, result.(string), "nothing was saved")
	assert.Empty(t, tc.Actions().StateDelta)
}

func TestSearchWebFormatsResults(t *testing.T) {
	stub := search.NewStub()
	stub.Add("fire grants", search.Result{
		Title:   "AFG Program",
		URL:     "https://www.fema.gov/afg",
		Snippet: "Assistance to Firefighters Grants",
	})

	tool := NewSearchWebTool(stub)
	result, err := tool.Call(newTestToolContext(nil), map[string]any{"query": "fire grants"})
	require.NoError(t, err)

	text := result.(string)
	assert.Contains(t, text, "Title: AFG Program")
	assert.Contains(t, text, "Link: https://www.fema.gov/afg")
}

func TestSearchWebFailureReturnsResultString(t *testing.T) {
	stub := search.NewStub()
	stub.Err = errors.New("upstream 503")

	tool := NewSearchWebTool(stub)
	result, err := tool.Call(newTestToolContext(nil), map[string]any{"query": "anything"})
	require.NoError(t, err, "lookup failures degrade to a result string")
	assert.True(t, strings.Contains(result.(string), "could not be completed"))
}

func TestSearchWebNoResults(t *testing.T) {
	tool := NewSearchWebTool(search.NewStub())
	result, err := tool.Call(newTestToolContext(nil), map[string]any{"query": "obscure"})
	require.NoError(t, err)
	assert.Equal(t, "Search completed, but no relevant results were found.", result)
}
