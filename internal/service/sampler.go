package service

import (
	"math"
	"math/rand"
)

// weightEpsilon floors every sampling weight so zero- or negative-aggregate
// items keep a nonzero chance: votes only accrue after exposure, so brand-new
// segments must still be able to surface.
const weightEpsilon = 0.01

// WeightedRandomChoice samples up to n items without replacement, with each
// draw's probability proportional to weight(item). Every draw removes the
// chosen item from the pool so repeats are impossible. If n >= len(items) the
// full set is returned.
func WeightedRandomChoice[T any](items []T, n int, weight func(T) float64, rng *rand.Rand) []T {
	if n >= len(items) {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}

	pool := make([]T, len(items))
	copy(pool, items)

	chosen := make([]T, 0, n)
	for len(chosen) < n {
		var total float64
		for _, item := range pool {
			total += math.Max(weight(item), weightEpsilon)
		}

		r := rng.Float64() * total
		idx := len(pool) - 1
		for i, item := range pool {
			r -= math.Max(weight(item), weightEpsilon)
			if r < 0 {
				idx = i
				break
			}
		}

		chosen = append(chosen, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return chosen
}

// voteWeight is the shared monotonic weight over a vote total and reputation
// aggregate. Higher votes and reputation raise selection probability without
// ever deterministically excluding low-vote entries. The sqrt argument is
// floored before the root: a deeply downvoted required segment must yield a
// small positive weight, never NaN.
func voteWeight(votes int, reputation float64) float64 {
	return math.Sqrt(math.Max(float64(votes)+2*reputation+3, weightEpsilon))
}
