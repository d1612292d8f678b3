package service

import (
	"math/rand"
	"sort"

	"github.com/Skyebold/SponsorBlockServer/internal/model"
)

// OverlapGroup is a request-scoped cluster of segments believed to describe
// the same real span. Votes sums only positive member votes; Reputation is
// the average over the surviving members after priority filtering.
type OverlapGroup struct {
	Segments   []model.DBSegment
	Votes      int
	Reputation float64
	Locked     bool
	Required   bool
}

// BuildOverlapGroups partitions segments into non-overlapping groups with a
// single chronological sweep. Input order does not matter; segments are
// sorted by span start first (ties at the same start stay grouped regardless
// of end order). The cursor starts at -1 so a segment starting at 0 still
// opens the first group, and only ever advances to the maximum end seen.
func BuildOverlapGroups(segments []model.DBSegment) []OverlapGroup {
	sorted := make([]model.DBSegment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})

	var groups []OverlapGroup
	cursor := -1.0
	for _, seg := range sorted {
		if seg.StartTime >= cursor {
			groups = append(groups, OverlapGroup{})
		}
		g := &groups[len(groups)-1]
		g.Segments = append(g.Segments, seg)

		// Only positive votes count toward the group aggregate; a negative
		// total usually just means a slightly mistimed duplicate.
		if seg.Votes > 0 {
			g.Votes += seg.Votes
		}
		if seg.Locked {
			g.Locked = true
		}
		if seg.Required {
			g.Required = true
		}

		if seg.EndTime > cursor {
			cursor = seg.EndTime
		}
	}

	for i := range groups {
		groups[i].applyPriority()
	}
	return groups
}

// applyPriority resolves competing intent inside a group: an explicit client
// ask beats a moderator lock, which beats organic votes. Reputation is then
// re-averaged over the survivors, counting only positive values.
func (g *OverlapGroup) applyPriority() {
	if g.Required {
		g.Segments = filterSegments(g.Segments, func(s model.DBSegment) bool { return s.Required })
	} else if g.Locked {
		g.Segments = filterSegments(g.Segments, func(s model.DBSegment) bool { return s.Locked })
	}

	var repSum float64
	for _, s := range g.Segments {
		if s.Reputation > 0 {
			repSum += s.Reputation
		}
	}
	g.Reputation = repSum / float64(len(g.Segments))
}

func filterSegments(segments []model.DBSegment, keep func(model.DBSegment) bool) []model.DBSegment {
	out := segments[:0]
	for _, s := range segments {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// ChooseSegments picks at most max representatives from competing overlapping
// segments: group, weighted-sample max groups, then weighted-sample one
// member per chosen group. Both stages share the same sqrt(votes+reputation)
// weight and sample without replacement. Required groups bypass the group cap
// entirely; an explicit ask is always surfaced.
func ChooseSegments(segments []model.DBSegment, max int, rng *rand.Rand) []model.DBSegment {
	groups := BuildOverlapGroups(segments)

	var required, organic []OverlapGroup
	for _, g := range groups {
		if g.Required {
			required = append(required, g)
		} else {
			organic = append(organic, g)
		}
	}

	remaining := max - len(required)
	if remaining < 0 {
		remaining = 0
	}
	chosen := append(required, WeightedRandomChoice(organic, remaining, func(g OverlapGroup) float64 {
		return voteWeight(g.Votes, g.Reputation)
	}, rng)...)

	out := make([]model.DBSegment, 0, len(chosen))
	for _, g := range chosen {
		picked := WeightedRandomChoice(g.Segments, 1, func(s model.DBSegment) float64 {
			return voteWeight(s.Votes, s.Reputation)
		}, rng)
		if len(picked) > 0 {
			out = append(out, picked[0])
		}
	}
	return out
}
