package profile

import "strings"

// Requirement is a group of alternative field paths; it is satisfied when at
// least one path holds a non-empty value. Paths use dot notation into nested
// maps, e.g. "location.state".
type Requirement []string

// Requirements is the configurable required-field set a completeness check
// runs against. Different stages use different strictness levels.
type Requirements []Requirement

// DefaultRequirements is the minimum a profile needs before grant finding can
// start: an organization name, some location, and at least one stated need.
var DefaultRequirements = Requirements{
	{"name"},
	{"location.state", "location.city"},
	{"needs"},
}

// StrictRequirements additionally demands budget and call-volume figures.
// Used where downstream scoring benefits from the extra fields.
var StrictRequirements = Requirements{
	{"name"},
	{"location.state", "location.city"},
	{"needs"},
	{"organization_details.budget"},
	{"service_stats.calls_per_year"},
}

// IsComplete reports whether the profile satisfies every requirement. It is
// total: a nil, absent, or non-map profile is simply incomplete. The result is
// re-derivable from data alone, which is what lets the orchestrator repair a
// stage pointer that disagrees with the stored profile.
func (r Requirements) IsComplete(p any) bool {
	m, ok := p.(map[string]any)
	if !ok || m == nil {
		return false
	}
	for _, req := range r {
		if !req.met(m) {
			return false
		}
	}
	return true
}

func (req Requirement) met(m map[string]any) bool {
	for _, path := range req {
		if nonEmpty(lookup(m, path)) {
			return true
		}
	}
	return false
}

// lookup walks a dot-separated path through nested maps. Any missing or
// non-map intermediate yields nil.
func lookup(m map[string]any, path string) any {
	parts := strings.Split(path, ".")
	var current any = m
	for _, part := range parts {
		node, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = node[part]
	}
	return current
}

func nonEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case bool:
		return val
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case []any:
		return len(val) > 0
	case []string:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		// Unknown concrete types count as present.
		return true
	}
}
