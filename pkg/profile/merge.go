package profile

// Merge deep-merges updates into base and returns a new map. When both sides
// hold a nested map for the same key the merge recurses; otherwise the update
// value wins, including replacing a map with a scalar or vice versa. Keys
// present in base but absent from updates are always preserved, so merging an
// empty update set returns a copy equal to base.
func Merge(base, updates map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(updates))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range updates {
		existing, ok := result[k]
		if ok {
			baseMap, baseIsMap := existing.(map[string]any)
			updateMap, updateIsMap := v.(map[string]any)
			if baseIsMap && updateIsMap {
				result[k] = Merge(baseMap, updateMap)
				continue
			}
		}
		result[k] = v
	}
	return result
}
