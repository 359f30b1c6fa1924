package tool

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/civicgrant/grantflow/core"
	"github.com/civicgrant/grantflow/eligibility"
	"github.com/civicgrant/grantflow/state"
)

// MinEligibilityScore is the cutoff below which a scored opportunity is not
// worth presenting. Matches scored under this line are discarded before
// geographic filtering.
const MinEligibilityScore = 0.6

// NewSaveGrantsTool returns the save_grants tool. The model passes the
// opportunities it assembled from search results as a JSON array string; the
// tool parses, score-cuts, geo-filters against the department's state, ranks
// the survivors and stores them. The stored list replaces any previous list
// wholesale.
func NewSaveGrantsTool() *FunctionTool {
	return NewFunctionTool(
		"save_grants",
		"Save the matched grant opportunities so they appear in the user's grant panel. Pass a JSON array string of objects with: name, source, url, description, funding_range, deadline, eligibility_score (0.0 to 1.0), match_reasons (array of strings).",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"grants_json": map[string]any{
					"type":        "string",
					"description": "JSON array string of grant opportunity objects",
				},
			},
			"required": []string{"grants_json"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			raw, _ := args["grants_json"].(string)
			grants, err := parseGrantsJSON(raw)
			if err != nil {
				return fmt.Sprintf("Could not parse the grant list: %v. Re-send it as a valid JSON array string.", err), nil
			}
			if len(grants) == 0 {
				return "No grant opportunities to save.", nil
			}

			scored := make([]state.Grant, 0, len(grants))
			for _, g := range grants {
				if g.EligibilityScore >= MinEligibilityScore {
					scored = append(scored, g)
				}
			}

			profile := state.Profile(toolCtx.GetStateMap(state.KeyProfile))
			eligible := eligibility.FilterByState(scored, profile.State())

			sort.SliceStable(eligible, func(i, j int) bool {
				return eligible[i].EligibilityScore > eligible[j].EligibilityScore
			})
			for i := range eligible {
				eligible[i].PriorityRank = i + 1
			}

			toolCtx.SetState(state.KeyGrants, eligible)
			toolCtx.SetState(state.KeyStage, string(state.StageGrantValidation))

			if len(eligible) == 0 {
				return "None of the candidate grants passed eligibility screening for this department. Tell the user no matches were found and offer to search with different terms.", nil
			}

			names := make([]string, len(eligible))
			for i, g := range eligible {
				names[i] = g.Name
			}

			return fmt.Sprintf("Saved %d grant opportunities to the user's grant panel: %s. Summarize the matches briefly and ask which grant they want to pursue; do not repeat full grant details in chat.", len(eligible), strings.Join(names, "; ")), nil
		},
	)
}

// parseGrantsJSON decodes a JSON array string into grant records.
func parseGrantsJSON(raw string) ([]state.Grant, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "[]" {
		return nil, nil
	}
	if !gjson.Valid(trimmed) {
		return nil, fmt.Errorf("invalid JSON")
	}

	parsed := gjson.Parse(trimmed)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("expected a JSON array, got %s", parsed.Type)
	}

	var grants []state.Grant
	if err := json.Unmarshal([]byte(trimmed), &grants); err != nil {
		return nil, fmt.Errorf("grant objects malformed: %w", err)
	}

	return grants, nil
}
