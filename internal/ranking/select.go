package ranking

import "sort"

// Select returns the indices of the n highest scores in descending order.
// Equal scores keep corpus order, so the lower index comes first. When n is
// at least len(scores) every index is returned; n <= 0 returns nothing.
func Select(scores []float64, n int) []int {
	if n <= 0 || len(scores) == 0 {
		return nil
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if n < len(order) {
		order = order[:n]
	}
	return order
}
