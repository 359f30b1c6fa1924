// Package state holds the session workflow state, the stage state machine and
// the reconciliation policy that merges state fragments arriving from the
// client, from prior turns and from tool writes into one consistent object.
package state

// Completeness is the data-completeness predicate that gates the transition
// out of intake. The stored profile_complete flag is never trusted; this
// predicate over the actual profile data is the source of truth.
//
// The required-field set is configurable because the product threshold is not
// settled; the default requires a name, a location region (state or city) and
// at least one declared need.
type Completeness struct {
	RequireName   bool `yaml:"require_name"`
	RequireRegion bool `yaml:"require_region"`
	MinNeeds      int  `yaml:"min_needs"`
}

// DefaultCompleteness returns the default predicate configuration.
func DefaultCompleteness() Completeness {
	return Completeness{RequireName: true, RequireRegion: true, MinNeeds: 1}
}

// Complete evaluates the predicate over the profile data.
func (c Completeness) Complete(p Profile) bool {
	if p == nil {
		return false
	}

	if c.RequireName && p.Name() == "" {
		return false
	}
	if c.RequireRegion && p.State() == "" && p.City() == "" {
		return false
	}
	if len(p.Needs()) < c.MinNeeds {
		return false
	}

	return true
}

// Reconciler merges workflow state fragments under the monotonic-stage and
// fill-forward rules and recomputes the derived completeness flag.
type Reconciler struct {
	Policy Completeness
}

// NewReconciler builds a reconciler with the given completeness policy.
func NewReconciler(policy Completeness) *Reconciler {
	return &Reconciler{Policy: policy}
}

// Normalize turns a client-supplied snapshot into a trustworthy working state
// for the turn. The snapshot is a hint: an unknown stage falls back to
// profile_building and the profile_complete flag is recomputed from the data
// it claims to summarize.
func (r *Reconciler) Normalize(in *WorkflowState) *WorkflowState {
	out := in.Clone()

	if !out.Stage.Valid() {
		out.Stage = StageProfileBuilding
	}
	if out.Profile == nil {
		out.Profile = Profile{}
	}

	out.ProfileComplete = r.Policy.Complete(out.Profile)

	return out
}

// Merge folds a later fragment into a base state: the stage takes the maximum
// of the two, the profile merges fill-forward, the completeness flag is
// recomputed from the merged data, and grants/draft prefer the fragment when
// it carries them. Merging a state with itself yields an identical state.
func (r *Reconciler) Merge(base, fragment *WorkflowState) *WorkflowState {
	if fragment == nil {
		return r.Normalize(base)
	}
	if base == nil {
		return r.Normalize(fragment)
	}

	out := base.Clone()

	if fragment.Stage.Valid() {
		out.Stage = MaxStage(out.Stage, fragment.Stage)
	}

	out.Profile = MergeProfile(out.Profile, fragment.Profile)
	out.ProfileComplete = r.Policy.Complete(out.Profile)

	if len(fragment.Grants) > 0 {
		out.Grants = make([]Grant, len(fragment.Grants))
		copy(out.Grants, fragment.Grants)
	}
	if fragment.Draft != nil {
		d := *fragment.Draft
		out.Draft = &d
	}
	if fragment.Revision > out.Revision {
		out.Revision = fragment.Revision
	}

	return out
}
