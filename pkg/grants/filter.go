package grants

import "strings"

// usStates are the full state names scanned for in grant text.
var usStates = []string{
	"alabama", "alaska", "arizona", "arkansas", "california", "colorado",
	"connecticut", "delaware", "florida", "georgia", "hawaii", "idaho",
	"illinois", "indiana", "iowa", "kansas", "kentucky", "louisiana",
	"maine", "maryland", "massachusetts", "michigan", "minnesota",
	"mississippi", "missouri", "montana", "nebraska", "nevada",
	"new hampshire", "new jersey", "new mexico", "new york", "north carolina",
	"north dakota", "ohio", "oklahoma", "oregon", "pennsylvania",
	"rhode island", "south carolina", "south dakota", "tennessee", "texas",
	"utah", "vermont", "virginia", "washington", "west virginia",
	"wisconsin", "wyoming",
}

// stateAbbreviations maps full name to postal abbreviation for URL domain
// detection (ohio.gov, .oh.gov, .tx.us and the like).
var stateAbbreviations = map[string]string{
	"alabama": "al", "alaska": "ak", "arizona": "az", "arkansas": "ar",
	"california": "ca", "colorado": "co", "connecticut": "ct",
	"delaware": "de", "florida": "fl", "georgia": "ga", "hawaii": "hi",
	"idaho": "id", "illinois": "il", "indiana": "in", "iowa": "ia",
	"kansas": "ks", "kentucky": "ky", "louisiana": "la", "maine": "me",
	"maryland": "md", "massachusetts": "ma", "michigan": "mi",
	"minnesota": "mn", "mississippi": "ms", "missouri": "mo",
	"montana": "mt", "nebraska": "ne", "nevada": "nv",
	"new hampshire": "nh", "new jersey": "nj", "new mexico": "nm",
	"new york": "ny", "north carolina": "nc", "north dakota": "nd",
	"ohio": "oh", "oklahoma": "ok", "oregon": "or", "pennsylvania": "pa",
	"rhode island": "ri", "south carolina": "sc", "south dakota": "sd",
	"tennessee": "tn", "texas": "tx", "utah": "ut", "vermont": "vt",
	"virginia": "va", "washington": "wa", "west virginia": "wv",
	"wisconsin": "wi", "wyoming": "wy",
}

var federalIndicators = []string{
	"federal", "fema", "national", "nationwide", "u.s.", "united states",
	"usda", "dhs",
}

// Known national foundations that fund departments in every state.
var nationalFoundations = []string{
	"firehouse subs", "gary sinise", "leary firefighters", "spirit of blue",
	"100 club", "nfff", "national fallen firefighters", "iafc", "nvfc",
	"foundation", "national volunteer",
}

// IsFederal reports whether the grant text matches the federal/nationwide
// indicator lexicon.
func IsFederal(name, source, desc string) bool {
	text := strings.ToLower(name + " " + source + " " + desc)
	for _, indicator := range federalIndicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	return false
}

// IsNationalFoundation reports whether the grant comes from a known
// nationwide foundation.
func IsNationalFoundation(name, source string) bool {
	text := strings.ToLower(name + " " + source)
	for _, foundation := range nationalFoundations {
		if strings.Contains(text, foundation) {
			return true
		}
	}
	return false
}

// statesMentioned extracts every state referenced in the grant's name and
// source text plus its URL domain.
func statesMentioned(name, source, url string) []string {
	text := strings.ToLower(name + " " + source)
	var found []string
	for _, state := range usStates {
		if strings.Contains(text, state) {
			found = append(found, state)
		}
	}

	if url != "" {
		urlLower := strings.ToLower(url)
		for state, abbrev := range stateAbbreviations {
			if strings.Contains(urlLower, state+".gov") ||
				strings.Contains(urlLower, "."+abbrev+".gov") ||
				strings.Contains(urlLower, "."+abbrev+".us") {
				if !containsState(found, state) {
					found = append(found, state)
				}
			}
		}
	}
	return found
}

func containsState(states []string, state string) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

func anyOverlap(a, b []string) bool {
	for _, s := range a {
		if containsState(b, s) {
			return true
		}
	}
	return false
}

// FilterByRegion drops opportunities that are specific to a state other than
// homeState. Federal and national-foundation grants always pass. Grants that
// mention no state at all pass too: assuming broad eligibility by default,
// a false positive costs the user a wasted click, a false negative hides a
// real opportunity. When the name/source names one state and the URL domain a
// disjoint one, the entry is bad data and is dropped rather than guessed at.
func FilterByRegion(opps []Opportunity, homeState string) []Opportunity {
	if homeState == "" {
		return opps
	}
	home := strings.ToLower(homeState)

	filtered := make([]Opportunity, 0, len(opps))
	for _, opp := range opps {
		if IsFederal(opp.Name, opp.Source, opp.Description) {
			filtered = append(filtered, opp)
			continue
		}
		if IsNationalFoundation(opp.Name, opp.Source) {
			filtered = append(filtered, opp)
			continue
		}

		mentioned := statesMentioned(opp.Name, opp.Source, opp.URL)
		if len(mentioned) == 0 {
			filtered = append(filtered, opp)
			continue
		}

		urlStates := statesMentioned("", "", opp.URL)
		nameStates := statesMentioned(opp.Name, opp.Source, "")
		if len(urlStates) > 0 && len(nameStates) > 0 && !anyOverlap(urlStates, nameStates) {
			// Name says one state, URL another. Data-quality problem.
			continue
		}

		if containsState(mentioned, home) {
			filtered = append(filtered, opp)
		}
	}
	return filtered
}
