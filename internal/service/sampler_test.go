package service

import (
	"math"
	"math/rand"
	"testing"
)

func TestWeightedRandomChoice_ReturnsAllWhenEnough(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	items := []int{1, 2, 3}

	got := WeightedRandomChoice(items, 3, func(i int) float64 { return float64(i) }, rng)
	if len(got) != 3 {
		t.Fatalf("got %d items, want 3", len(got))
	}

	got = WeightedRandomChoice(items, 10, func(i int) float64 { return float64(i) }, rng)
	if len(got) != 3 {
		t.Fatalf("n beyond pool size: got %d items, want 3", len(got))
	}
}

func TestWeightedRandomChoice_DoesNotMutateInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	items := []int{10, 20, 30, 40}

	WeightedRandomChoice(items, 2, func(i int) float64 { return float64(i) }, rng)

	want := []int{10, 20, 30, 40}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("input mutated at %d: got %v", i, items)
		}
	}
}

func TestWeightedRandomChoice_WithoutReplacement(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}

	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		got := WeightedRandomChoice(items, 5, func(i int) float64 { return float64(i) }, rng)

		if len(got) != 5 {
			t.Fatalf("seed %d: got %d items, want 5", seed, len(got))
		}
		seen := make(map[int]bool)
		for _, v := range got {
			if seen[v] {
				t.Fatalf("seed %d: item %d chosen twice", seed, v)
			}
			seen[v] = true
		}
	}
}

func TestWeightedRandomChoice_ZeroWeightStillEligible(t *testing.T) {
	// One item has weight 0 and one has a negative weight. The epsilon floor
	// keeps both reachable; over many seeds each must be chosen at least once.
	items := []int{0, -1, 100}
	zeroChosen, negChosen := false, false

	for seed := int64(0); seed < 5000; seed++ {
		rng := rand.New(rand.NewSource(seed))
		got := WeightedRandomChoice(items, 1, func(i int) float64 { return float64(i) }, rng)
		switch got[0] {
		case 0:
			zeroChosen = true
		case -1:
			negChosen = true
		}
	}

	if !zeroChosen {
		t.Error("zero-weight item never chosen across seeds")
	}
	if !negChosen {
		t.Error("negative-weight item never chosen across seeds")
	}
}

func TestWeightedRandomChoice_HigherWeightWinsMoreOften(t *testing.T) {
	items := []string{"light", "heavy"}
	weights := map[string]float64{"light": 1, "heavy": 10}

	counts := make(map[string]int)
	for seed := int64(0); seed < 2000; seed++ {
		rng := rand.New(rand.NewSource(seed))
		got := WeightedRandomChoice(items, 1, func(s string) float64 { return weights[s] }, rng)
		counts[got[0]]++
	}

	if counts["heavy"] <= counts["light"] {
		t.Errorf("heavy chosen %d times, light %d times, want heavy > light", counts["heavy"], counts["light"])
	}
}

func TestWeightedRandomChoice_Deterministic(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6}
	weight := func(i int) float64 { return float64(i) }

	a := WeightedRandomChoice(items, 3, weight, rand.New(rand.NewSource(42)))
	b := WeightedRandomChoice(items, 3, weight, rand.New(rand.NewSource(42)))

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d: %v vs %v", i, a, b)
		}
	}
}

func TestVoteWeight(t *testing.T) {
	// weight = sqrt(votes + 2*reputation + 3)
	if got, want := voteWeight(0, 0), math.Sqrt(3); got != want {
		t.Errorf("voteWeight(0, 0) = %f, want %f", got, want)
	}
	if got, want := voteWeight(6, 2), math.Sqrt(13); got != want {
		t.Errorf("voteWeight(6, 2) = %f, want %f", got, want)
	}
	// Monotonic in both votes and reputation
	if voteWeight(5, 0) <= voteWeight(1, 0) {
		t.Error("weight not increasing in votes")
	}
	if voteWeight(1, 3) <= voteWeight(1, 0) {
		t.Error("weight not increasing in reputation")
	}
}

func TestVoteWeight_DeepNegativeAggregateStaysPositive(t *testing.T) {
	// sqrt of a negative argument is NaN, which would poison the sampler's
	// running total. The floor must apply before the root.
	for _, votes := range []int{-4, -50, -1000} {
		got := voteWeight(votes, 0)
		if math.IsNaN(got) {
			t.Fatalf("voteWeight(%d, 0) is NaN", votes)
		}
		if got <= 0 {
			t.Errorf("voteWeight(%d, 0) = %f, want > 0", votes, got)
		}
	}
}
