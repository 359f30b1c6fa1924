package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicgrant/grantflow/state"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		grant state.Grant
		want  Class
	}{
		{
			name:  "fema is federal",
			grant: state.Grant{Name: "Assistance to Firefighters Grant", Source: "FEMA"},
			want:  ClassFederal,
		},
		{
			name:  "firehouse subs is a national foundation",
			grant: state.Grant{Name: "Public Safety Grant", Source: "Firehouse Subs Public Safety Foundation"},
			want:  ClassNationalFoundation,
		},
		{
			name:  "state name in title is state-specific",
			grant: state.Grant{Name: "Ohio Fire Marshal Equipment Grant", Source: "State Fire Marshal"},
			want:  ClassStateSpecific,
		},
		{
			name:  "state gov url is state-specific",
			grant: state.Grant{Name: "Equipment Grant", Source: "Fire Marshal", URL: "https://com.ohio.gov/fire"},
			want:  ClassStateSpecific,
		},
		{
			name:  "no signal is unknown",
			grant: state.Grant{Name: "Community Equipment Grant", Source: "Local Trust"},
			want:  ClassUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.grant))
		})
	}
}

func TestDetectStatesFromURL(t *testing.T) {
	states := DetectStates("", "", "https://www.nc.gov/grants")
	assert.Contains(t, states, "north carolina")

	states = DetectStates("", "", "https://state.tx.us/fire")
	assert.Contains(t, states, "texas")

	states = DetectStates("", "", "https://example.org/fire")
	assert.Empty(t, states)
}

func TestFilterExcludesOtherStates(t *testing.T) {
	grants := []state.Grant{
		{Name: "Ohio Fire Marshal Equipment Grant", Source: "State Fire Marshal", URL: "https://com.ohio.gov/fire"},
		{Name: "Assistance to Firefighters Grant", Source: "FEMA", URL: "https://www.fema.gov/grants/afg"},
	}

	filtered := FilterByState(grants, "North Carolina")

	require.Len(t, filtered, 1)
	assert.Equal(t, "Assistance to Firefighters Grant", filtered[0].Name)
}

func TestFilterRetainsFederalEverywhere(t *testing.T) {
	grants := []state.Grant{
		{Name: "Assistance to Firefighters Grant", Source: "FEMA"},
	}

	for _, dept := range []string{"Ohio", "North Carolina", "Wyoming"} {
		filtered := FilterByState(grants, dept)
		assert.Len(t, filtered, 1, "federal grant dropped for %s", dept)
	}
}

func TestFilterDropsURLLabelConflict(t *testing.T) {
	// "NC" style label with an ohio.gov URL is bad data; exclude it even for
	// departments in either state.
	grant := state.Grant{
		Name:   "North Carolina Rescue Grant",
		Source: "Rescue Council",
		URL:    "https://com.ohio.gov/rescue",
	}

	assert.Empty(t, FilterByState([]state.Grant{grant}, "north carolina"))
	assert.Empty(t, FilterByState([]state.Grant{grant}, "ohio"))
}

func TestFilterKeepsMatchingState(t *testing.T) {
	grant := state.Grant{
		Name:   "Ohio Fire Marshal Equipment Grant",
		Source: "State Fire Marshal",
		URL:    "https://com.ohio.gov/fire",
	}

	filtered := FilterByState([]state.Grant{grant}, "Ohio")
	assert.Len(t, filtered, 1)
}

func TestFilterAmbiguousIncluded(t *testing.T) {
	grant := state.Grant{Name: "Community Safety Grant", Source: "Regional Trust"}

	filtered := FilterByState([]state.Grant{grant}, "Ohio")
	assert.Len(t, filtered, 1)
}

func TestFilterNoDepartmentStatePassesThrough(t *testing.T) {
	grants := []state.Grant{
		{Name: "Ohio Fire Marshal Equipment Grant", Source: "State Fire Marshal"},
	}

	assert.Equal(t, grants, FilterByState(grants, ""))
}
