package grants

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"civic-grant-be/pkg/profile"
)

// ErrNoOpportunityJSON means the finder output carried no JSON array at all.
var ErrNoOpportunityJSON = errors.New("no opportunity JSON array in output")

// Weights are the sub-score weights. They should sum to 1.0 so the composite
// score stays in [0,1].
type Weights struct {
	Type      float64
	Location  float64
	Needs     float64
	Budget    float64
	Nonprofit float64
}

// DefaultWeights follow the eligibility policy: needs alignment dominates,
// nonprofit status matters least.
var DefaultWeights = Weights{
	Type:      0.25,
	Location:  0.20,
	Needs:     0.30,
	Budget:    0.15,
	Nonprofit: 0.10,
}

// DefaultThreshold is the minimum composite score for inclusion.
const DefaultThreshold = 0.6

// Evaluation is the detailed outcome of scoring one opportunity against a
// profile.
type Evaluation struct {
	Score    float64         `json:"score"`
	Eligible bool            `json:"eligible"`
	Reasons  []string        `json:"reasons"`
	Warnings []string        `json:"warnings"`
	Matches  map[string]bool `json:"matches"`
}

// Scorer computes eligibility scores. Deterministic for identical inputs and
// monotone in each sub-score, which is what the tests rely on.
type Scorer struct {
	Weights   Weights
	Threshold float64
}

func NewScorer() *Scorer {
	return &Scorer{Weights: DefaultWeights, Threshold: DefaultThreshold}
}

// Score evaluates one opportunity against the department profile.
func (s *Scorer) Score(opp Opportunity, p map[string]any) Evaluation {
	eval := Evaluation{Matches: make(map[string]bool)}
	desc := strings.ToLower(opp.Description + " " + opp.Name)

	typeScore := scoreType(desc, profile.Type(p))
	eval.Score += typeScore * s.Weights.Type
	if eval.Matches["type"] = typeScore > 0.5; eval.Matches["type"] {
		eval.Reasons = append(eval.Reasons, fmt.Sprintf("Organization type matches: %s", profile.Type(p)))
	} else {
		eval.Warnings = append(eval.Warnings, "Organization type may not match grant requirements")
	}

	locationScore := scoreLocation(desc, profile.State(p))
	eval.Score += locationScore * s.Weights.Location
	if eval.Matches["location"] = locationScore > 0.5; eval.Matches["location"] {
		eval.Reasons = append(eval.Reasons, fmt.Sprintf("Location eligible: %s", profile.State(p)))
	}

	needsScore := scoreNeeds(desc, profile.Needs(p))
	eval.Score += needsScore * s.Weights.Needs
	if eval.Matches["needs"] = needsScore > 0.5; eval.Matches["needs"] {
		eval.Reasons = append(eval.Reasons, "Grant funding aligns with department needs")
	} else {
		eval.Warnings = append(eval.Warnings, "Grant focus may not align with department needs")
	}

	budgetScore := scoreBudget(opp.FundingRange, profile.AnnualBudget(p))
	eval.Score += budgetScore * s.Weights.Budget
	if eval.Matches["budget"] = budgetScore > 0.5; eval.Matches["budget"] {
		eval.Reasons = append(eval.Reasons, "Department budget compatible with grant requirements")
	}

	nonprofitScore := scoreNonprofit(desc, profile.NonprofitStatus(p))
	eval.Score += nonprofitScore * s.Weights.Nonprofit
	eval.Matches["nonprofit"] = nonprofitScore > 0.5

	eval.Eligible = eval.Score >= s.Threshold
	return eval
}

// Evaluate scores every opportunity, drops those below the threshold, region-
// filters the survivors, and assigns dense priority ranks. This is the full
// post-search pipeline: score first (it needs the raw set), filter before
// anything is displayed.
func (s *Scorer) Evaluate(opps []Opportunity, p map[string]any) []Opportunity {
	kept := make([]Opportunity, 0, len(opps))
	for _, opp := range opps {
		eval := s.Score(opp, p)
		if !eval.Eligible {
			continue
		}
		opp.EligibilityScore = eval.Score
		opp.MatchReasons = eval.Reasons
		kept = append(kept, opp)
	}
	kept = FilterByRegion(kept, profile.State(p))
	Rank(kept)
	return kept
}

var volunteerKeywords = []string{"volunteer", "combination", "all fire departments", "any fire department"}
var paidOnlyKeywords = []string{"paid", "career", "full-time staff"}

func scoreType(desc, deptType string) float64 {
	if strings.ToLower(deptType) == "volunteer" {
		if containsAny(desc, paidOnlyKeywords) && !containsAny(desc, volunteerKeywords) {
			return 0.2
		}
		return 0.9
	}
	return 0.8
}

func scoreLocation(desc, state string) float64 {
	if containsAny(desc, []string{"federal", "fema", "national", "nationwide"}) {
		return 1.0
	}
	if state != "" && strings.Contains(desc, strings.ToLower(state)) {
		return 1.0
	}
	// Nothing location-specific: assume broadly eligible.
	return 0.7
}

var equipmentKeywords = []string{"equipment", "apparatus", "vehicle", "scba", "gear", "aed", "extrication"}
var trainingKeywords = []string{"training", "education", "certification", "professional development"}
var facilityKeywords = []string{"facility", "station", "building", "construction", "renovation"}

func scoreNeeds(desc string, needs []string) float64 {
	if len(needs) == 0 {
		return 0.5
	}
	var matches float64
	for _, need := range needs {
		needLower := strings.ToLower(need)
		if strings.Contains(desc, needLower) {
			matches++
			continue
		}
		switch {
		case containsAny(needLower, []string{"training", "certification", "education"}):
			if containsAny(desc, trainingKeywords) {
				matches += 0.8
			}
		case containsAny(needLower, []string{"equipment", "gear", "scba", "aed"}):
			if containsAny(desc, equipmentKeywords) {
				matches += 0.8
			}
		case containsAny(needLower, []string{"facility", "station", "building"}):
			if containsAny(desc, facilityKeywords) {
				matches += 0.8
			}
		}
	}
	score := matches / float64(len(needs))
	if score > 1.0 {
		score = 1.0
	}
	return score
}

var fundingAmountPattern = regexp.MustCompile(`\$?[\d,]+`)

func scoreBudget(fundingRange string, budget int) float64 {
	if fundingRange == "" || budget == 0 {
		return 0.7
	}

	var amounts []int
	for _, raw := range fundingAmountPattern.FindAllString(fundingRange, -1) {
		cleaned := strings.NewReplacer(",", "", "$", "").Replace(raw)
		if n, err := strconv.Atoi(cleaned); err == nil {
			amounts = append(amounts, n)
		}
	}
	if len(amounts) == 0 {
		return 0.6
	}

	minFunding, maxFunding := amounts[0], amounts[0]
	for _, n := range amounts[1:] {
		if n < minFunding {
			minFunding = n
		}
		if n > maxFunding {
			maxFunding = n
		}
	}

	switch {
	case budget < 100000: // small department
		if maxFunding <= 100000 {
			return 1.0
		}
		if minFunding <= 50000 {
			return 0.8
		}
	case budget < 500000: // medium
		if minFunding >= 10000 && minFunding <= 500000 {
			return 1.0
		}
	default: // large
		if minFunding >= 50000 {
			return 1.0
		}
	}
	return 0.6
}

func scoreNonprofit(desc string, has501c3 bool) float64 {
	if strings.Contains(desc, "501(c)(3)") || strings.Contains(desc, "nonprofit") {
		if has501c3 {
			return 1.0
		}
		return 0.3
	}
	// Many department grants do not require 501(c)(3).
	return 0.9
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
