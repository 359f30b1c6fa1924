package testutil

import (
	"github.com/civicgrant/grantflow/state"
)

// StateBuilder provides a fluent helper for constructing workflow states in
// tests.
type StateBuilder struct {
	ws *state.WorkflowState
}

// NewStateBuilder creates a builder seeded with a fresh workflow state.
func NewStateBuilder() *StateBuilder {
	return &StateBuilder{ws: state.New()}
}

// Stage sets the workflow stage (chainable).
func (b *StateBuilder) Stage(s state.Stage) *StateBuilder {
	b.ws.Stage = s
	return b
}

// Name sets the organization name (chainable).
func (b *StateBuilder) Name(name string) *StateBuilder {
	b.ws.Profile["name"] = name
	return b
}

// Location sets city and state on the profile (chainable).
func (b *StateBuilder) Location(city, st string) *StateBuilder {
	loc := map[string]any{}
	if city != "" {
		loc["city"] = city
	}
	if st != "" {
		loc["state"] = st
	}
	b.ws.Profile["location"] = loc
	return b
}

// Needs sets the declared needs (chainable).
func (b *StateBuilder) Needs(needs ...string) *StateBuilder {
	items := make([]any, len(needs))
	for i, n := range needs {
		items[i] = n
	}
	b.ws.Profile["needs"] = items
	return b
}

// CompleteProfile fills name, location and needs in one call (chainable).
func (b *StateBuilder) CompleteProfile() *StateBuilder {
	return b.Name("Maple Grove VFD").Location("Maple Grove", "Pennsylvania").Needs("SCBA units")
}

// ProfileComplete sets the derived flag as the client might send it (chainable).
func (b *StateBuilder) ProfileComplete(v bool) *StateBuilder {
	b.ws.ProfileComplete = v
	return b
}

// Grants sets the grant list (chainable).
func (b *StateBuilder) Grants(grants ...state.Grant) *StateBuilder {
	b.ws.Grants = grants
	return b
}

// Build returns the constructed workflow state.
func (b *StateBuilder) Build() *state.WorkflowState { return b.ws }
