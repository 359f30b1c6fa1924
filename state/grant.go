package state

import "time"

// Grant is one discovered grant opportunity after eligibility filtering.
type Grant struct {
	Name             string   `json:"name"`
	Source           string   `json:"source"`
	URL              string   `json:"url"`
	Description      string   `json:"description"`
	FundingRange     string   `json:"funding_range,omitempty"`
	Deadline         string   `json:"deadline,omitempty"`
	EligibilityScore float64  `json:"eligibility_score"`
	MatchReasons     []string `json:"match_reasons,omitempty"`
	PriorityRank     int      `json:"priority_rank,omitempty"`
}

// Draft is the generated application narrative for one selected grant. The
// content is only ever written through the save tool, never lifted from
// conversational text.
type Draft struct {
	GrantName string    `json:"grant_name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
