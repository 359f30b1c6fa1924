package tool

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/civicgrant/grantflow/core"
	"github.com/civicgrant/grantflow/state"
)

// Profile tool arguments arrive as a single JSON-serialized string rather than
// a structured object parameter. Loosely-typed nested objects trip provider
// schema validation (optional fields and untyped maps get rejected), so the
// boundary stays a string and the payload is parsed here.

// NewUpdateProfileTool returns the update_profile tool. It merges a profile
// fragment extracted from the conversation into the working profile using
// fill-forward semantics and reports which required fields are still missing.
func NewUpdateProfileTool(policy state.Completeness) *FunctionTool {
	return NewFunctionTool(
		"update_profile",
		"Record organization profile details mentioned by the user. Pass a JSON object string with any of: name, type, location {city, county, state, population}, organization_details {annual_budget, founded}, service_stats {annual_calls, active_members}, needs (array of strings), mission. Only include fields the user actually stated.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"profile_json": map[string]any{
					"type":        "string",
					"description": "JSON object string containing the profile fields to record",
				},
			},
			"required": []string{"profile_json"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			raw, _ := args["profile_json"].(string)
			fragment, err := parseProfileJSON(raw)
			if err != nil {
				return fmt.Sprintf("Could not parse profile update: %v. Re-send the profile as a valid JSON object string.", err), nil
			}
			if len(fragment) == 0 {
				return "No profile changes to record.", nil
			}

			current := state.Profile(toolCtx.GetStateMap(state.KeyProfile))
			merged := state.MergeProfile(current, fragment)
			toolCtx.SetState(state.KeyProfile, map[string]any(merged))

			if policy.Complete(merged) {
				return "Profile updated. All required details are on file; confirm the profile with the user, then call complete_profile.", nil
			}

			return fmt.Sprintf("Profile updated. Still needed before grant matching can start: %s.", strings.Join(missingFields(policy, merged), ", ")), nil
		},
	)
}

// NewCompleteProfileTool returns the complete_profile tool. It optionally
// merges a final profile fragment, verifies the data-completeness policy and
// advances the workflow into grant scouting. The stored completeness flag is
// derived from data; calling this tool with an incomplete profile does not
// advance the stage.
func NewCompleteProfileTool(policy state.Completeness) *FunctionTool {
	return NewFunctionTool(
		"complete_profile",
		"Mark the organization profile as complete once the user has confirmed it. Pass the full confirmed profile as a JSON object string, or an empty string to keep the recorded profile as-is.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"final_profile_json": map[string]any{
					"type":        "string",
					"description": "JSON object string with the confirmed profile, or empty to use the recorded profile",
				},
			},
			"required": []string{"final_profile_json"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			raw, _ := args["final_profile_json"].(string)

			profile := state.Profile(toolCtx.GetStateMap(state.KeyProfile))
			if strings.TrimSpace(raw) != "" {
				fragment, err := parseProfileJSON(raw)
				if err != nil {
					return fmt.Sprintf("Could not parse the confirmed profile: %v. Re-send it as a valid JSON object string.", err), nil
				}
				profile = state.MergeProfile(profile, fragment)
				toolCtx.SetState(state.KeyProfile, map[string]any(profile))
			}

			if !policy.Complete(profile) {
				return fmt.Sprintf("The profile is not complete yet. Still needed: %s. Ask the user for the missing details before completing.", strings.Join(missingFields(policy, profile), ", ")), nil
			}

			toolCtx.SetState(state.KeyProfileComplete, true)
			toolCtx.SetState(state.KeyStage, string(state.StageGrantScouting))

			return "Profile completed. Tell the user their profile is saved and that you can now search for matching grant opportunities; suggest they say 'find grants' to begin.", nil
		},
	)
}

// parseProfileJSON decodes a JSON object string into a profile fragment.
func parseProfileJSON(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "{}" {
		return nil, nil
	}
	if !gjson.Valid(trimmed) {
		return nil, fmt.Errorf("invalid JSON")
	}

	parsed := gjson.Parse(trimmed)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("expected a JSON object, got %s", parsed.Type)
	}

	fragment, _ := parsed.Value().(map[string]any)

	return fragment, nil
}

// missingFields lists the human-readable names of required fields the profile
// does not yet satisfy.
func missingFields(policy state.Completeness, p state.Profile) []string {
	var missing []string
	if policy.RequireName && p.Name() == "" {
		missing = append(missing, "organization name")
	}
	if policy.RequireRegion && p.State() == "" && p.City() == "" {
		missing = append(missing, "location (city or state)")
	}
	if len(p.Needs()) < policy.MinNeeds {
		missing = append(missing, "at least one equipment or program need")
	}
	if len(missing) == 0 {
		missing = append(missing, "nothing")
	}

	return missing
}
