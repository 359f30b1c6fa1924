package state

import (
	"encoding/json"
	"fmt"
)

// Well-known keys in the per-turn run-state map. Tools write their structured
// side effects under these keys; ApplyDelta interprets them with the
// reconciliation rules (monotonic stage, fill-forward profile, wholesale
// grant replacement).
const (
	KeyStage           = "workflow_stage"
	KeyProfile         = "organization_profile"
	KeyProfileComplete = "profile_complete"
	KeyGrants          = "grant_opportunities"
	KeyDraft           = "grant_draft"
)

// WorkflowState is the authoritative per-session payload. It travels with the
// client between turns (the backend keeps no durable copy) and is rebuilt
// fresh each turn by the reconciler.
type WorkflowState struct {
	Stage           Stage   `json:"stage"`
	Profile         Profile `json:"profile"`
	ProfileComplete bool    `json:"profile_complete"`
	Grants          []Grant `json:"grants"`
	Draft           *Draft  `json:"draft,omitempty"`
	Revision        int     `json:"revision"`
}

// New returns a fresh workflow state at the start of the intake stage.
func New() *WorkflowState {
	return &WorkflowState{
		Stage:   StageProfileBuilding,
		Profile: Profile{},
	}
}

// Clone returns a deep copy.
func (ws *WorkflowState) Clone() *WorkflowState {
	if ws == nil {
		return New()
	}

	out := &WorkflowState{
		Stage:           ws.Stage,
		Profile:         ws.Profile.Clone(),
		ProfileComplete: ws.ProfileComplete,
		Revision:        ws.Revision,
	}

	if len(ws.Grants) > 0 {
		out.Grants = make([]Grant, len(ws.Grants))
		copy(out.Grants, ws.Grants)
		for i, g := range ws.Grants {
			if len(g.MatchReasons) > 0 {
				out.Grants[i].MatchReasons = append([]string(nil), g.MatchReasons...)
			}
		}
	}

	if ws.Draft != nil {
		d := *ws.Draft
		out.Draft = &d
	}

	return out
}

// Reset clears the workflow back to intake. Profile, grants and draft are
// cleared together; a partial reset would leave an inconsistent mixed state.
func (ws *WorkflowState) Reset() {
	ws.Stage = StageProfileBuilding
	ws.Profile = Profile{}
	ws.ProfileComplete = false
	ws.Grants = nil
	ws.Draft = nil
}

// AdvanceStage moves the stage forward to target if target is later in
// workflow order. Backward moves are ignored (reset is the only way back).
func (ws *WorkflowState) AdvanceStage(target Stage) {
	if target.Valid() && ws.Stage.Before(target) {
		ws.Stage = target
	}
}

// RunState returns the run-state map view handed to tools for the duration of
// a turn.
func (ws *WorkflowState) RunState() map[string]any {
	m := map[string]any{
		KeyStage:           string(ws.Stage),
		KeyProfile:         map[string]any(ws.Profile.Clone()),
		KeyProfileComplete: ws.ProfileComplete,
	}

	if len(ws.Grants) > 0 {
		m[KeyGrants] = ws.Grants
	}
	if ws.Draft != nil {
		m[KeyDraft] = ws.Draft
	}

	return m
}

// ApplyDelta folds a state delta produced during the turn into the workflow
// state, enforcing the reconciliation rules key by key:
//
//   - stage only advances (monotonic, unknown values ignored)
//   - profile fragments merge fill-forward
//   - profile_complete only flips false to true
//   - grants are replaced wholesale
//   - draft is replaced
//
// Unknown keys are ignored so tools can stash scratch values without
// corrupting the canonical state.
func (ws *WorkflowState) ApplyDelta(delta map[string]any) error {
	for key, value := range delta {
		switch key {
		case KeyStage:
			s, ok := value.(string)
			if !ok {
				if st, ok := value.(Stage); ok {
					s = string(st)
				}
			}
			if target, ok := ParseStage(s); ok {
				ws.AdvanceStage(target)
			}
		case KeyProfile:
			fragment, err := toMap(value)
			if err != nil {
				return fmt.Errorf("profile delta: %w", err)
			}
			ws.Profile = MergeProfile(ws.Profile, fragment)
		case KeyProfileComplete:
			if b, ok := value.(bool); ok && b {
				ws.ProfileComplete = true
			}
		case KeyGrants:
			grants, err := toGrants(value)
			if err != nil {
				return fmt.Errorf("grants delta: %w", err)
			}
			ws.Grants = grants
		case KeyDraft:
			draft, err := toDraft(value)
			if err != nil {
				return fmt.Errorf("draft delta: %w", err)
			}
			ws.Draft = draft
		}
	}

	return nil
}

func toMap(v any) (map[string]any, error) {
	switch val := v.(type) {
	case map[string]any:
		return val, nil
	case Profile:
		return val, nil
	default:
		return nil, fmt.Errorf("expected object, got %T", v)
	}
}

func toGrants(v any) ([]Grant, error) {
	switch val := v.(type) {
	case []Grant:
		return val, nil
	case []any, []map[string]any:
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		var grants []Grant
		if err := json.Unmarshal(raw, &grants); err != nil {
			return nil, err
		}
		return grants, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("expected grant list, got %T", v)
	}
}

func toDraft(v any) (*Draft, error) {
	switch val := v.(type) {
	case *Draft:
		return val, nil
	case Draft:
		return &val, nil
	case map[string]any:
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		var d Draft
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil
	default:
		return nil, fmt.Errorf("expected draft object, got %T", v)
	}
}
