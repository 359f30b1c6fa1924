package agent

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/civicgrant/grantflow/core"
	"github.com/civicgrant/grantflow/model"
	"github.com/civicgrant/grantflow/search"
	"github.com/civicgrant/grantflow/state"
	"github.com/civicgrant/grantflow/tool"
)

// Sub-agent names used for event authorship and routing decisions.
const (
	ProfileCollectorName = "profile_collector"
	GrantFinderName      = "grant_finder"
	GrantWriterName      = "grant_writer"
)

const profileCollectorPrompt = `You are a friendly intake specialist helping fire departments and EMS agencies provide their information for grant matching.

Your goal is to gather the required organization details quickly and conversationally.

CRITICAL RULES:
1. NEVER just repeat collected data back as JSON in chat. Call the update_profile tool to record ANY details the user provides, BEFORE writing your text reply.
2. Extract every data point from each user message in one pass, then ask only for what is still missing.
3. Use search_web for public facts like county or population when the user does not know them, and ask the user to confirm what you found before recording it.
4. When the required details are all on file, confirm the full profile with the user, then call complete_profile. After that, tell them to say 'find grants' to start the search. Do not ask "anything else?".

Information to collect:
1. Organization name
2. Type (volunteer, career or combination)
3. Location (city, state, county, population)
4. Annual budget
5. Equipment or program needs
6. Service statistics (annual calls, active members)
7. Mission statement

Record details under these profile fields: name, type, location {city, state, county, population}, organization_details {annual_budget, founded}, service_stats {annual_calls, active_members}, needs (array), mission.`

const grantFinderPrompt = `You are a grant researcher for fire departments and EMS agencies. You search for grant opportunities, score how well each one matches the organization, and save the matches.

Work through these phases in order:

PHASE 1 - SEARCH. Tell the user you are searching, then call search_web several times with varied queries, for example:
- "FEMA AFG Assistance to Firefighters Grant"
- "volunteer fire department equipment grants"
- "<state> fire department grants" using the organization's actual state
- queries targeting the organization's specific needs

PHASE 2 - SCORE. For each opportunity found, estimate an eligibility score between 0.0 and 1.0 from: organization type match, geographic eligibility (home state or federal), alignment with declared needs, budget fit. Discard anything scoring under 0.6.

PHASE 3 - SAVE. Call save_grants once with the full JSON array of scored opportunities. Each object needs: name, source, url, description, funding_range, deadline, eligibility_score, match_reasons.

PHASE 4 - REPORT. Summarize each saved match in one or two lines (name, score, why it fits) and tell the user to pick a grant from their grant panel to generate an application draft. Do not dump raw search results or full grant records into chat.`

const grantWriterPrompt = `You are a professional grant writer. Generate a complete application draft for the grant the user selected, then save it.

Write these sections in order, using real figures from the organization profile wherever possible:
1. EXECUTIVE SUMMARY (150-200 words): the organization, its primary need, the requested funding, the expected community impact.
2. ORGANIZATION BACKGROUND (250-300 words): history, service area, population served, structure, current capabilities.
3. STATEMENT OF NEED (300-400 words): the critical gap, backed by service statistics and current shortfalls.
4. PROJECT DESCRIPTION (350-450 words): the specific equipment or program, implementation timeline, measurable outcomes.
5. BUDGET NARRATIVE (200-250 words): cost breakdown, justification, cost-effectiveness.
6. COMMUNITY IMPACT (250-300 words): safety improvements for residents, response improvements, economic benefit.
7. SUSTAINABILITY PLAN (200-250 words): maintenance, ongoing funding, training continuation.

Tone: professional, data-driven, compelling but factual.

CRITICAL: deliver the draft by calling save_draft with the grant name and the complete document. NEVER paste the draft text into your chat reply; after saving, tell the user their draft is ready in the document panel.`

// NewProfileCollector builds the intake sub-agent. It records profile
// fragments as the user supplies them and closes intake once the
// completeness policy is satisfied.
func NewProfileCollector(llm model.Model, svc search.Service, policy state.Completeness) (*TaskAgent, error) {
	return NewTaskAgent(ProfileCollectorName, llm, func(o *TaskAgentOptions) {
		o.Description = "Collects and verifies the organization profile"
		o.Instruction = withStateContext(profileCollectorPrompt)
		o.Tools = []tool.Tool{
			tool.NewUpdateProfileTool(policy),
			tool.NewCompleteProfileTool(policy),
			tool.NewSearchWebTool(svc),
		}
	})
}

// NewGrantFinder builds the research sub-agent. It searches for
// opportunities, scores them and saves the eligible matches.
func NewGrantFinder(llm model.Model, svc search.Service) (*TaskAgent, error) {
	return NewTaskAgent(GrantFinderName, llm, func(o *TaskAgentOptions) {
		o.Description = "Searches for and scores matching grant opportunities"
		o.Instruction = withStateContext(grantFinderPrompt)
		o.Tools = []tool.Tool{
			tool.NewSearchWebTool(svc),
			tool.NewSaveGrantsTool(),
		}
		o.ToolTimeout = 30 * time.Second
	})
}

// NewGrantWriter builds the drafting sub-agent. It generates the application
// narrative for the selected grant and stores it through the save tool.
func NewGrantWriter(llm model.Model) (*TaskAgent, error) {
	return NewTaskAgent(GrantWriterName, llm, func(o *TaskAgentOptions) {
		o.Description = "Drafts grant applications for the selected opportunity"
		o.Instruction = withStateContext(grantWriterPrompt)
		o.Tools = []tool.Tool{
			tool.NewSaveDraftTool(),
		}
	})
}

// withStateContext wraps a static prompt with a dynamic snapshot of the
// session's profile and saved grants so every model call sees the current
// workflow data without the client having to restate it.
func withStateContext(prompt string) Instruction {
	return NewInstructionFromFunc(func(runCtx *core.RunContext) (string, error) {
		out := prompt

		if profile := stateJSON(runCtx, state.KeyProfile); profile != "" {
			out += fmt.Sprintf("\n\nCurrent organization profile:\n%s", profile)
		}
		if grants := stateJSON(runCtx, state.KeyGrants); grants != "" {
			out += fmt.Sprintf("\n\nSaved grant opportunities:\n%s", grants)
		}
		out += fmt.Sprintf("\n\nToday's date: %s", time.Now().UTC().Format("January 2, 2006"))

		return out, nil
	})
}

// stateJSON renders a run-state value as indented JSON, or "" when absent or
// unserializable.
func stateJSON(runCtx *core.RunContext, key string) string {
	v, ok := runCtx.GetState(key)
	if !ok || v == nil {
		return ""
	}
	if m, ok := v.(map[string]any); ok && len(m) == 0 {
		return ""
	}

	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}

	return string(raw)
}
