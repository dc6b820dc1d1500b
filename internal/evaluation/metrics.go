package evaluation

// RecallAtK computes Recall@K: the fraction of relevant items found in the top-K retrieved results.
// Returns 1.0 if relevant is empty, since nothing was missed.
func RecallAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 {
		return 1.0
	}

	relevantSet := make(map[string]struct{}, len(relevant))
	for _, r := range relevant {
		relevantSet[r] = struct{}{}
	}

	topK := retrieved
	if k < len(topK) {
		topK = topK[:k]
	}

	found := 0
	for _, r := range topK {
		if _, ok := relevantSet[r]; ok {
			found++
			delete(relevantSet, r)
		}
	}

	return float64(found) / float64(len(relevant))
}

// SameSet reports whether a and b hold the same distinct items, ignoring order.
func SameSet(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	other := make(map[string]struct{}, len(b))
	for _, s := range b {
		if _, ok := set[s]; !ok {
			return false
		}
		other[s] = struct{}{}
	}
	return len(other) == len(set)
}

// ratio returns hits/total, or 0 for an empty set
func ratio(hits, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
