package query

import (
	"sort"
	"strings"
	"time"
)

// Cache key prefixes, one per read operation.
const (
	keyPrefixComposition = "index_composition"
	keyPrefixPerformance = "index_performance"
	keyPrefixChanges     = "composition_changes"
)

// cacheKey builds a deterministic cache key from an operation prefix and
// its date parameters: the prefix followed by `name:value` pairs in
// lexicographic parameter order, dates in ISO-8601. Two calls with the
// same logical arguments always produce the same key.
func cacheKey(prefix string, params map[string]time.Time) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, 1+2*len(params))
	parts = append(parts, prefix)
	for _, name := range names {
		parts = append(parts, name, params[name].Format("2006-01-02"))
	}
	return strings.Join(parts, ":")
}
