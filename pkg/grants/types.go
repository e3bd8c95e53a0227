// Package grants holds the opportunity record plus the region filter and
// eligibility scorer applied between search and display.
package grants

import (
	"encoding/json"
	"regexp"
	"sort"
)

// Opportunity is one candidate funding program. A list of these is replaced
// wholesale on every new search; nothing is carried over between searches.
type Opportunity struct {
	Name             string   `json:"name"`
	Source           string   `json:"source"`
	URL              string   `json:"url"`
	Description      string   `json:"description"`
	FundingRange     string   `json:"funding_range"`
	Deadline         string   `json:"deadline"`
	EligibilityScore float64  `json:"eligibility_score"`
	MatchReasons     []string `json:"match_reasons"`
	PriorityRank     int      `json:"priority_rank"`
}

// AsMap renders the opportunity as plain JSON-shaped data, the form the
// session keeps for the drafting stage.
func (o Opportunity) AsMap() map[string]any {
	reasons := make([]any, 0, len(o.MatchReasons))
	for _, r := range o.MatchReasons {
		reasons = append(reasons, r)
	}
	return map[string]any{
		"name":              o.Name,
		"source":            o.Source,
		"url":               o.URL,
		"description":       o.Description,
		"funding_range":     o.FundingRange,
		"deadline":          o.Deadline,
		"eligibility_score": o.EligibilityScore,
		"match_reasons":     reasons,
		"priority_rank":     o.PriorityRank,
	}
}

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// ParseOpportunities extracts a JSON array of opportunities from raw LLM
// output, which may carry prose before and after the array. A missing or
// malformed array is an error the caller downgrades to "zero results".
func ParseOpportunities(raw string) ([]Opportunity, error) {
	match := jsonArrayPattern.FindString(raw)
	if match == "" {
		return nil, ErrNoOpportunityJSON
	}
	var opps []Opportunity
	if err := json.Unmarshal([]byte(match), &opps); err != nil {
		return nil, err
	}
	return opps, nil
}

// Rank sorts by descending eligibility score and assigns a dense 1..N
// priority rank. Stable so equal scores keep their incoming order.
func Rank(opps []Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].EligibilityScore > opps[j].EligibilityScore
	})
	for i := range opps {
		opps[i].PriorityRank = i + 1
	}
}
