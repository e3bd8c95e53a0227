// Package profile holds the department profile record: a nested map built up
// incrementally during the intake conversation, plus the merge and
// completeness logic the workflow depends on.
package profile

// Typed accessors for the fields the scorer and oracle read. All of them
// tolerate a nil or partially-built profile and return zero values.

func Name(p map[string]any) string {
	return getString(p, "name")
}

func Type(p map[string]any) string {
	return getString(p, "type")
}

func State(p map[string]any) string {
	return getString(p, "location.state")
}

func City(p map[string]any) string {
	return getString(p, "location.city")
}

// Needs returns the stated needs in priority order (insertion order).
func Needs(p map[string]any) []string {
	raw := lookup(p, "needs")
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		needs := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				needs = append(needs, s)
			}
		}
		return needs
	default:
		return nil
	}
}

// AnnualBudget returns the reported budget, or 0 when unknown. JSON decoding
// delivers numbers as float64, so both int and float forms are accepted.
func AnnualBudget(p map[string]any) int {
	switch v := lookup(p, "organization_details.budget").(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func NonprofitStatus(p map[string]any) bool {
	v, _ := lookup(p, "organization_details.nonprofit_status").(bool)
	return v
}

func Mission(p map[string]any) string {
	return getString(p, "mission")
}

func getString(p map[string]any, path string) string {
	s, _ := lookup(p, path).(string)
	return s
}
