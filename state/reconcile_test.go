package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeProfile() Profile {
	return Profile{
		"name": "Maple Grove VFD",
		"location": map[string]any{
			"city":  "Maple Grove",
			"state": "Pennsylvania",
		},
		"needs": []any{"SCBA units"},
	}
}

func TestCompletenessRequiresNameRegionAndNeed(t *testing.T) {
	policy := DefaultCompleteness()

	assert.True(t, policy.Complete(completeProfile()))
	assert.False(t, policy.Complete(nil))
	assert.False(t, policy.Complete(Profile{}))

	p := completeProfile()
	delete(p, "name")
	assert.False(t, policy.Complete(p))

	p = completeProfile()
	delete(p, "location")
	assert.False(t, policy.Complete(p))

	p = completeProfile()
	p["needs"] = []any{}
	assert.False(t, policy.Complete(p))

	// City alone satisfies the region requirement.
	p = completeProfile()
	p["location"] = map[string]any{"city": "Maple Grove"}
	assert.True(t, policy.Complete(p))
}

func TestCompletenessIgnoresStoredFlag(t *testing.T) {
	r := NewReconciler(DefaultCompleteness())

	// Stale true on empty data must not survive normalization.
	in := New()
	in.ProfileComplete = true
	out := r.Normalize(in)
	assert.False(t, out.ProfileComplete)

	// Stale false on complete data must not survive either.
	in = New()
	in.Profile = completeProfile()
	in.ProfileComplete = false
	out = r.Normalize(in)
	assert.True(t, out.ProfileComplete)
}

func TestNormalizeRecoversUnknownStage(t *testing.T) {
	r := NewReconciler(DefaultCompleteness())

	in := New()
	in.Stage = Stage("totally_bogus")
	out := r.Normalize(in)

	assert.Equal(t, StageProfileBuilding, out.Stage)
}

func TestMergeProfileFillForward(t *testing.T) {
	base := Profile{
		"name": "Maple Grove VFD",
		"location": map[string]any{
			"state": "Pennsylvania",
		},
	}

	merged := MergeProfile(base, map[string]any{
		"name": "",
		"location": map[string]any{
			"city":  "Maple Grove",
			"state": "",
		},
		"mission": "Protect the community",
	})

	assert.Equal(t, "Maple Grove VFD", merged.Name())
	assert.Equal(t, "Pennsylvania", merged.State())
	assert.Equal(t, "Maple Grove", merged.City())
	assert.Equal(t, "Protect the community", merged["mission"])
}

func TestMergeProfileDoesNotMutateBase(t *testing.T) {
	base := completeProfile()
	_ = MergeProfile(base, map[string]any{
		"location": map[string]any{"county": "Hennepin"},
	})

	_, hasCounty := base.Location()["county"]
	assert.False(t, hasCounty)
}

func TestMergeIdempotent(t *testing.T) {
	r := NewReconciler(DefaultCompleteness())

	ws := New()
	ws.Stage = StageGrantScouting
	ws.Profile = completeProfile()
	ws.ProfileComplete = true
	ws.Grants = []Grant{{Name: "AFG", Source: "FEMA", EligibilityScore: 0.9}}
	ws.Revision = 3

	merged := r.Merge(ws, ws.Clone())

	assert.Equal(t, ws.Stage, merged.Stage)
	assert.Equal(t, ws.Profile, merged.Profile)
	assert.Equal(t, ws.ProfileComplete, merged.ProfileComplete)
	assert.Equal(t, ws.Grants, merged.Grants)
	assert.Equal(t, ws.Revision, merged.Revision)
}

func TestMergeStageMonotonic(t *testing.T) {
	r := NewReconciler(DefaultCompleteness())

	base := New()
	base.Stage = StageGrantValidation

	fragment := New()
	fragment.Stage = StageProfileBuilding

	merged := r.Merge(base, fragment)
	assert.Equal(t, StageGrantValidation, merged.Stage)

	fragment.Stage = StageGrantWriting
	merged = r.Merge(base, fragment)
	assert.Equal(t, StageGrantWriting, merged.Stage)
}

func TestStageOrdering(t *testing.T) {
	assert.True(t, StageProfileBuilding.Before(StageGrantScouting))
	assert.True(t, StageGrantScouting.Before(StageGrantValidation))
	assert.True(t, StageGrantValidation.Before(StageGrantWriting))
	assert.False(t, StageGrantWriting.Before(StageProfileBuilding))

	parsed, ok := ParseStage("grant_writing")
	require.True(t, ok)
	assert.Equal(t, StageGrantWriting, parsed)

	parsed, ok = ParseStage("nope")
	assert.False(t, ok)
	assert.Equal(t, StageProfileBuilding, parsed)
}
