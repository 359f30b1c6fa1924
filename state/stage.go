package state

// Stage identifies the current phase of the grant workflow state machine.
// Stages are ordered; transitions only move forward except for a full reset.
type Stage string

const (
	// StageProfileBuilding collects the organization profile.
	StageProfileBuilding Stage = "profile_building"
	// StageGrantScouting discovers candidate grant opportunities.
	StageGrantScouting Stage = "grant_scouting"
	// StageGrantValidation holds the filtered grant list awaiting a user selection.
	StageGrantValidation Stage = "grant_validation"
	// StageGrantWriting drafts the application for the selected grant.
	StageGrantWriting Stage = "grant_writing"
)

var stageRank = map[Stage]int{
	StageProfileBuilding: 0,
	StageGrantScouting:   1,
	StageGrantValidation: 2,
	StageGrantWriting:    3,
}

// ParseStage returns the Stage for s, or StageProfileBuilding and false when s
// is not a known stage value. Unknown/corrupt stages always fall back to the
// beginning of the workflow.
func ParseStage(s string) (Stage, bool) {
	st := Stage(s)
	if _, ok := stageRank[st]; ok {
		return st, true
	}

	return StageProfileBuilding, false
}

// Valid reports whether the stage is a known enum member.
func (s Stage) Valid() bool {
	_, ok := stageRank[s]
	return ok
}

// Rank returns the position of the stage in workflow order. Unknown stages
// rank before profile_building so they never win a monotonic comparison.
func (s Stage) Rank() int {
	if r, ok := stageRank[s]; ok {
		return r
	}

	return -1
}

// Before reports whether s precedes other in workflow order.
func (s Stage) Before(other Stage) bool { return s.Rank() < other.Rank() }

// Next returns the following stage, or the stage itself at the end of the workflow.
func (s Stage) Next() Stage {
	switch s {
	case StageProfileBuilding:
		return StageGrantScouting
	case StageGrantScouting:
		return StageGrantValidation
	case StageGrantValidation:
		return StageGrantWriting
	default:
		return s
	}
}

// String implements fmt.Stringer.
func (s Stage) String() string { return string(s) }

// MaxStage returns the later of two stages in workflow order.
func MaxStage(a, b Stage) Stage {
	if b.Rank() > a.Rank() {
		return b
	}

	return a
}
