package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDeltaProfileMergesFillForward(t *testing.T) {
	ws := New()
	ws.Profile = Profile{"name": "Maple Grove VFD"}

	err := ws.ApplyDelta(map[string]any{
		KeyProfile: map[string]any{
			"name":     "",
			"location": map[string]any{"state": "Pennsylvania"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Maple Grove VFD", ws.Profile.Name())
	assert.Equal(t, "Pennsylvania", ws.Profile.State())
}

func TestApplyDeltaStageOnlyAdvances(t *testing.T) {
	ws := New()
	ws.Stage = StageGrantScouting

	require.NoError(t, ws.ApplyDelta(map[string]any{KeyStage: "profile_building"}))
	assert.Equal(t, StageGrantScouting, ws.Stage)

	require.NoError(t, ws.ApplyDelta(map[string]any{KeyStage: "grant_validation"}))
	assert.Equal(t, StageGrantValidation, ws.Stage)

	require.NoError(t, ws.ApplyDelta(map[string]any{KeyStage: "garbage"}))
	assert.Equal(t, StageGrantValidation, ws.Stage)
}

func TestApplyDeltaCompleteFlagOneWay(t *testing.T) {
	ws := New()

	require.NoError(t, ws.ApplyDelta(map[string]any{KeyProfileComplete: true}))
	assert.True(t, ws.ProfileComplete)

	require.NoError(t, ws.ApplyDelta(map[string]any{KeyProfileComplete: false}))
	assert.True(t, ws.ProfileComplete)
}

func TestApplyDeltaGrantsReplacedWholesale(t *testing.T) {
	ws := New()
	ws.Grants = []Grant{{Name: "Old Grant"}}

	require.NoError(t, ws.ApplyDelta(map[string]any{
		KeyGrants: []any{
			map[string]any{
				"name":              "AFG",
				"source":            "FEMA",
				"url":               "https://www.fema.gov/grants/afg",
				"eligibility_score": 0.92,
				"match_reasons":     []any{"equipment need"},
			},
		},
	}))

	require.Len(t, ws.Grants, 1)
	assert.Equal(t, "AFG", ws.Grants[0].Name)
	assert.InDelta(t, 0.92, ws.Grants[0].EligibilityScore, 1e-9)
	assert.Equal(t, []string{"equipment need"}, ws.Grants[0].MatchReasons)
}

func TestApplyDeltaDraft(t *testing.T) {
	ws := New()

	require.NoError(t, ws.ApplyDelta(map[string]any{
		KeyDraft: map[string]any{
			"grant_name": "AFG",
			"content":    "EXECUTIVE SUMMARY\n...",
		},
	}))

	require.NotNil(t, ws.Draft)
	assert.Equal(t, "AFG", ws.Draft.GrantName)
}

func TestResetClearsEverythingTogether(t *testing.T) {
	ws := New()
	ws.Stage = StageGrantWriting
	ws.Profile = Profile{"name": "Maple Grove VFD"}
	ws.ProfileComplete = true
	ws.Grants = []Grant{{Name: "AFG"}}
	ws.Draft = &Draft{GrantName: "AFG", Content: "draft"}

	ws.Reset()

	assert.Equal(t, StageProfileBuilding, ws.Stage)
	assert.Empty(t, ws.Profile)
	assert.False(t, ws.ProfileComplete)
	assert.Nil(t, ws.Grants)
	assert.Nil(t, ws.Draft)
}

func TestCloneIsDeep(t *testing.T) {
	ws := New()
	ws.Profile = Profile{"location": map[string]any{"state": "Ohio"}}
	ws.Grants = []Grant{{Name: "AFG", MatchReasons: []string{"a"}}}

	clone := ws.Clone()
	clone.Profile.Location()["state"] = "Texas"
	clone.Grants[0].MatchReasons[0] = "b"

	assert.Equal(t, "Ohio", ws.Profile.State())
	assert.Equal(t, "a", ws.Grants[0].MatchReasons[0])
}

func TestRunStateRoundTrip(t *testing.T) {
	ws := New()
	ws.Stage = StageGrantScouting
	ws.Profile = Profile{"name": "Maple Grove VFD"}

	m := ws.RunState()
	assert.Equal(t, "grant_scouting", m[KeyStage])

	// Mutating the run-state view must not leak into the workflow state.
	m[KeyProfile].(map[string]any)["name"] = "Other"
	assert.Equal(t, "Maple Grove VFD", ws.Profile.Name())
}
