package grants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func volunteerProfile() map[string]any {
	return map[string]any{
		"name": "Morningslide VFD",
		"type": "volunteer",
		"location": map[string]any{
			"state": "Ohio",
			"city":  "Morningslide",
		},
		"organization_details": map[string]any{
			"budget":           float64(80000),
			"nonprofit_status": true,
		},
		"needs": []any{"SCBA equipment", "training"},
	}
}

func TestScoreDeterministic(t *testing.T) {
	opp := Opportunity{
		Name:         "FEMA Assistance to Firefighters Grant",
		Source:       "FEMA",
		Description:  "Federal funding for SCBA equipment and training for volunteer fire departments",
		FundingRange: "$10,000 - $50,000",
	}
	s := NewScorer()

	first := s.Score(opp, volunteerProfile())
	second := s.Score(opp, volunteerProfile())
	assert.Equal(t, first.Score, second.Score, "same inputs must score identically")
}

func TestScoreStrongMatchIsEligible(t *testing.T) {
	opp := Opportunity{
		Name:         "FEMA Assistance to Firefighters Grant",
		Source:       "FEMA",
		Description:  "Federal nationwide funding for SCBA equipment and training, open to volunteer fire departments, 501(c)(3) nonprofit eligible",
		FundingRange: "$10,000 - $50,000",
	}
	eval := NewScorer().Score(opp, volunteerProfile())

	assert.True(t, eval.Eligible, "score %.2f below threshold", eval.Score)
	assert.GreaterOrEqual(t, eval.Score, 0.6)
	assert.LessOrEqual(t, eval.Score, 1.0)
	assert.True(t, eval.Matches["type"])
	assert.True(t, eval.Matches["location"])
	assert.True(t, eval.Matches["needs"])
	assert.NotEmpty(t, eval.Reasons)
}

func TestScorePaidOnlyGrantPenalizesVolunteer(t *testing.T) {
	paidOnly := Opportunity{
		Name:        "Career Staffing Grant",
		Description: "Salaries for paid full-time staff only",
	}
	open := Opportunity{
		Name:        "Staffing Grant",
		Description: "Staffing support for all fire departments",
	}
	s := NewScorer()
	p := volunteerProfile()

	assert.Less(t, s.Score(paidOnly, p).Score, s.Score(open, p).Score)
}

func TestEvaluateRankConsistency(t *testing.T) {
	opps := []Opportunity{
		{
			Name:         "Ohio Fire Equipment Grant",
			Source:       "Ohio Department of Commerce",
			Description:  "Ohio volunteer fire department SCBA equipment and training funding",
			FundingRange: "$5,000 - $25,000",
		},
		{
			Name:        "FEMA Assistance to Firefighters Grant",
			Source:      "FEMA",
			Description: "Federal nationwide SCBA equipment, gear and training funding for volunteer fire departments, nonprofit eligible",
		},
		{
			Name:        "Texas Rural Fire Grant",
			Source:      "Texas A&M Forest Service",
			Description: "Texas apparatus and equipment funding for volunteer departments",
		},
	}

	result := NewScorer().Evaluate(opps, volunteerProfile())

	// The Texas grant must never survive for an Ohio department.
	for _, opp := range result {
		assert.NotEqual(t, "Texas Rural Fire Grant", opp.Name)
	}

	for i := range result {
		assert.Equal(t, i+1, result[i].PriorityRank, "rank must be dense 1..N")
		if i > 0 {
			assert.GreaterOrEqual(t, result[i-1].EligibilityScore, result[i].EligibilityScore)
		}
	}
}

func TestParseOpportunities(t *testing.T) {
	raw := `Here are the grants I validated:
[
  {"name": "FEMA AFG", "source": "FEMA", "eligibility_score": 0.85},
  {"name": "Ohio Equipment Grant", "source": "State of Ohio", "eligibility_score": 0.7}
]
Click a card to continue.`

	opps, err := ParseOpportunities(raw)
	assert.NoError(t, err)
	assert.Len(t, opps, 2)
	assert.Equal(t, "FEMA AFG", opps[0].Name)
}

func TestParseOpportunitiesMalformed(t *testing.T) {
	if _, err := ParseOpportunities("no json here at all"); err == nil {
		t.Error("expected error for missing JSON array")
	}
	if _, err := ParseOpportunities(`[{"name": broken]`); err == nil {
		t.Error("expected error for malformed JSON array")
	}
}
