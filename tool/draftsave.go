package tool

import (
	"fmt"
	"strings"
	"time"

	"github.com/civicgrant/grantflow/core"
	"github.com/civicgrant/grantflow/draft"
	"github.com/civicgrant/grantflow/state"
)

// NewSaveDraftTool returns the save_draft tool. The generated application
// narrative reaches the user exclusively through this tool and the document
// panel; the confirmation string instructs the model not to echo the draft
// into chat. The narrative body is normalized for escape artifacts from the
// serialized argument boundary and rendered into the fixed document layout
// (ruled header, sectioned body, end marker, review disclaimer) before
// storage, with the funder and applicant resolved from the saved grants and
// profile.
func NewSaveDraftTool() *FunctionTool {
	return NewFunctionTool(
		"save_draft",
		"Save the completed grant application draft so it appears in the user's document panel. Pass the grant name and the full draft text. Always call this instead of writing the draft into the chat reply.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"grant_name": map[string]any{
					"type":        "string",
					"description": "Name of the grant program the draft applies to",
				},
				"draft_content": map[string]any{
					"type":        "string",
					"description": "Complete draft document text",
				},
			},
			"required": []string{"grant_name", "draft_content"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			grantName, _ := args["grant_name"].(string)
			content, _ := args["draft_content"].(string)
			grantName = strings.TrimSpace(grantName)

			if strings.TrimSpace(content) == "" {
				return "The draft content was empty; nothing was saved. Generate the full draft and call save_draft again.", nil
			}

			applicant := state.Profile(toolCtx.GetStateMap(state.KeyProfile)).Name()
			if applicant == "" {
				applicant = "Not specified"
			}

			now := time.Now().UTC()
			d := state.Draft{
				GrantName: grantName,
				Content: draft.Render(
					grantName,
					fundingSource(toolCtx, grantName),
					applicant,
					now,
					draft.NormalizeEscapes(content),
				),
				CreatedAt: now,
			}

			toolCtx.SetState(state.KeyDraft, d)
			toolCtx.SetState(state.KeyStage, string(state.StageGrantWriting))

			return fmt.Sprintf("Draft for %q saved to the user's document panel. Tell the user their draft is ready for review there; do not paste the draft text into the chat.", d.GrantName), nil
		},
	)
}

// fundingSource resolves the funder for the named grant from the saved
// opportunity list, falling back to a neutral label when the grant is not on
// file.
func fundingSource(toolCtx *core.ToolContext, grantName string) string {
	if v, ok := toolCtx.GetState(state.KeyGrants); ok {
		if grants, ok := v.([]state.Grant); ok {
			for _, g := range grants {
				if strings.EqualFold(strings.TrimSpace(g.Name), grantName) && g.Source != "" {
					return g.Source
				}
			}
		}
	}

	return "Not specified"
}
