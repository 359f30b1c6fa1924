package state

import "strings"

// Profile is the nested organization record accumulated during intake. It is
// deliberately schema-flexible (the model supplies fragments of varying
// shape); well-known fields are accessed through typed helpers.
//
// Conventional layout:
//
//	name                 string
//	type                 string (e.g. "volunteer", "combination")
//	location             {city, county, state, population}
//	organization_details {annual_budget, founded}
//	service_stats        {annual_calls, active_members}
//	needs                [string, ...]
//	mission              string
type Profile map[string]any

// Name returns the organization name, or "" when unset.
func (p Profile) Name() string { return stringField(p, "name") }

// Location returns the nested location record, or nil when unset.
func (p Profile) Location() map[string]any {
	if loc, ok := p["location"].(map[string]any); ok {
		return loc
	}

	return nil
}

// State returns the declared location state, or "" when unset.
func (p Profile) State() string { return stringField(p.Location(), "state") }

// City returns the declared location city, or "" when unset.
func (p Profile) City() string { return stringField(p.Location(), "city") }

// Needs returns the declared needs as strings, skipping empty entries.
func (p Profile) Needs() []string {
	raw, ok := p["needs"].([]any)
	if !ok {
		if typed, ok := p["needs"].([]string); ok {
			raw = make([]any, len(typed))
			for i, s := range typed {
				raw[i] = s
			}
		}
	}

	var needs []string
	for _, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			needs = append(needs, s)
		}
	}

	return needs
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	if p == nil {
		return Profile{}
	}

	return Profile(cloneMap(p))
}

// MergeProfile merges a fragment into a base profile using fill-forward
// semantics: a present value in the fragment overwrites an absent one in the
// base, nested maps merge recursively, and an empty fragment value never
// clobbers a populated base value.
func MergeProfile(base Profile, fragment map[string]any) Profile {
	merged := base.Clone()
	mergeFillForward(merged, fragment)

	return merged
}

func mergeFillForward(dst map[string]any, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				mergeFillForward(existing, sub)
				continue
			}
			if len(sub) > 0 {
				dst[k] = cloneMap(sub)
			}
			continue
		}

		if isEmptyValue(v) {
			continue
		}

		dst[k] = cloneValue(v)
	}
}

// isEmptyValue reports whether v carries no information for merge purposes.
func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}

	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}

	return ""
}
