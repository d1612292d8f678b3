package service

import (
	"regexp"
	"strings"

	"github.com/Skyebold/SponsorBlockServer/internal/model"
)

// CategoryActionType classifies how many concurrent segment groups a category
// may surface.
type CategoryActionType int

const (
	// Skippable categories denote ranges; many can coexist on one video.
	Skippable CategoryActionType = iota
	// POI categories denote a single instant; at most one group survives.
	POI
)

const (
	maxSkippableGroups = 32
	maxPOIGroups       = 1
)

var knownCategories = map[model.Category]bool{
	"sponsor":        true,
	"selfpromo":      true,
	"interaction":    true,
	"intro":          true,
	"outro":          true,
	"preview":        true,
	"music_offtopic": true,
	"poi_highlight":  true,
}

// categoryRe rejects anything outside lowercase letters, underscore and dash,
// so category values can never smuggle cache-key or SQL metacharacters.
var categoryRe = regexp.MustCompile(`^[a-z_-]+$`)

// ActionType classifies a category by its naming convention.
func ActionType(category model.Category) CategoryActionType {
	if strings.HasPrefix(string(category), "poi_") {
		return POI
	}
	return Skippable
}

// MaxSegmentGroups returns the per-category cap on surviving overlap groups.
func MaxSegmentGroups(category model.Category) int {
	if ActionType(category) == POI {
		return maxPOIGroups
	}
	return maxSkippableGroups
}

// IsKnownCategory reports whether the category is registered.
func IsKnownCategory(category model.Category) bool {
	return knownCategories[category]
}

// FilterCategories drops malformed category values, keeping request handling
// tolerant of partially bad input the way the read path requires.
func FilterCategories(categories []model.Category) []model.Category {
	out := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		if categoryRe.MatchString(string(c)) {
			out = append(out, c)
		}
	}
	return out
}
