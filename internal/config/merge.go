package config

// DeepMerge combines two generic documents into a new map, never
// mutating either input. For each key in override: if both sides hold a
// mapping, the merge recurses; otherwise the override value replaces the
// base value entirely. Scalars and sequences are never merged
// element-wise: the merge is last-writer-wins at the leaf, so merges
// commute only when the overrides touch disjoint keys.
func DeepMerge(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if baseMap, ok := out[k].(map[string]any); ok {
			if overrideMap, ok := v.(map[string]any); ok {
				out[k] = DeepMerge(baseMap, overrideMap)
				continue
			}
		}
		out[k] = v
	}
	return out
}
