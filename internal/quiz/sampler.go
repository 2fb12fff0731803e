// internal/quiz/sampler.go
package quiz

import (
	"math/rand"
	"sort"
)

// Draw picks n distinct ids uniformly at random. The pool is sorted first so
// a seeded source gives the same draw regardless of query order. When n <= 0
// or n >= len(pool) every id is returned in ascending order.
func Draw(pool []uint, n int, rng *rand.Rand) []uint {
	ids := make([]uint, len(pool))
	copy(ids, pool)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if n <= 0 || n >= len(ids) {
		return ids
	}
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(ids)-i)
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids[:n]
}
