package coursedoc

import "sort"

// SortedKeys returns the map keys in ascending order. Map iteration order is
// random, and every pass over the snapshot must be deterministic.
func SortedKeys[T any](m map[string]*T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
