package grants

import "testing"

func TestFilterByRegion(t *testing.T) {
	tests := []struct {
		name      string
		opp       Opportunity
		homeState string
		want      bool
	}{
		{
			name: "federal grant kept regardless of home state",
			opp: Opportunity{
				Name:        "National Assistance Grant",
				Source:      "Federal Agency",
				Description: "Nationwide assistance for fire departments",
			},
			homeState: "Ohio",
			want:      true,
		},
		{
			name: "out-of-state grant dropped",
			opp: Opportunity{
				Name:        "Texas Rural Fire Grant",
				Source:      "Texas A&M Forest Service",
				Description: "Apparatus funding for rural departments",
			},
			homeState: "Ohio",
			want:      false,
		},
		{
			name: "home-state grant kept",
			opp: Opportunity{
				Name:        "Ohio Fire Equipment Grant",
				Source:      "Ohio Department of Commerce",
				Description: "Equipment funding",
			},
			homeState: "Ohio",
			want:      true,
		},
		{
			name: "no region mentioned kept by default",
			opp: Opportunity{
				Name:        "Rural Responder Equipment Program",
				Source:      "Responder Trust",
				Description: "SCBA and turnout gear funding",
			},
			homeState: "Ohio",
			want:      true,
		},
		{
			name: "national foundation kept",
			opp: Opportunity{
				Name:   "Firehouse Subs Public Safety Grant",
				Source: "Firehouse Subs Public Safety Foundation",
			},
			homeState: "Ohio",
			want:      true,
		},
		{
			name: "state detected from URL domain",
			opp: Opportunity{
				Name:        "Rural Fire Assistance",
				Source:      "State Fire Marshal",
				Description: "Equipment support",
				URL:         "https://com.ohio.gov/fire-grants",
			},
			homeState: "Ohio",
			want:      true,
		},
		{
			name: "URL state differs from home state",
			opp: Opportunity{
				Name:        "Rural Fire Assistance",
				Source:      "State Fire Marshal",
				Description: "Equipment support",
				URL:         "https://tfs.tamu.edu/grants/.tx.gov",
			},
			homeState: "Ohio",
			want:      false,
		},
		{
			name: "name and URL disagree: dropped as bad data",
			opp: Opportunity{
				Name:        "North Carolina Volunteer Fire Department Fund",
				Source:      "State Program",
				Description: "VFD support",
				URL:         "https://ohio.gov/programs/vfd-fund",
			},
			homeState: "Ohio",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByRegion([]Opportunity{tt.opp}, tt.homeState)
			kept := len(got) == 1
			if kept != tt.want {
				t.Errorf("kept = %v, want %v", kept, tt.want)
			}
		})
	}
}

func TestFilterByRegionEmptyHomeState(t *testing.T) {
	opps := []Opportunity{
		{Name: "Texas Rural Fire Grant", Source: "Texas A&M Forest Service"},
	}
	if got := FilterByRegion(opps, ""); len(got) != 1 {
		t.Errorf("unknown home state should not filter, got %d entries", len(got))
	}
}
