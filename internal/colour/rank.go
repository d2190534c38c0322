package colour

import "sort"

// MaxRankedColours is the number of candidate brand colours kept by Rank.
const MaxRankedColours = 5

// Rank orders the table by descending count and returns up to limit hex
// colours. Equal counts keep first-insertion order. A limit below 1 or above
// MaxRankedColours selects MaxRankedColours.
func Rank(table *FrequencyTable, limit int) []string {
	if limit < 1 || limit > MaxRankedColours {
		limit = MaxRankedColours
	}
	if table == nil || table.Len() == 0 {
		return []string{}
	}

	keys := table.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		return table.Count(keys[i]) > table.Count(keys[j])
	})

	if len(keys) > limit {
		keys = keys[:limit]
	}

	ranked := make([]string, len(keys))
	for i, k := range keys {
		ranked[i] = k.Hex()
	}
	return ranked
}
