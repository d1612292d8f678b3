package service

import (
	"testing"

	"github.com/Skyebold/SponsorBlockServer/internal/model"
)

func TestActionType(t *testing.T) {
	if ActionType("sponsor") != Skippable {
		t.Error("sponsor should be skippable")
	}
	if ActionType("poi_highlight") != POI {
		t.Error("poi_highlight should be a point of interest")
	}
}

func TestMaxSegmentGroups(t *testing.T) {
	if got := MaxSegmentGroups("sponsor"); got != 32 {
		t.Errorf("sponsor cap = %d, want 32", got)
	}
	if got := MaxSegmentGroups("poi_highlight"); got != 1 {
		t.Errorf("poi_highlight cap = %d, want 1", got)
	}
}

func TestIsKnownCategory(t *testing.T) {
	for _, c := range []model.Category{"sponsor", "selfpromo", "interaction", "intro", "outro", "preview", "music_offtopic", "poi_highlight"} {
		if !IsKnownCategory(c) {
			t.Errorf("%s should be known", c)
		}
	}
	if IsKnownCategory("chapter") {
		t.Error("chapter should not be known")
	}
}

func TestFilterCategories(t *testing.T) {
	got := FilterCategories([]model.Category{
		"sponsor",
		"poi_highlight",
		"music_offtopic",
		"DROP TABLE",   // spaces and uppercase rejected
		"sponsor:evil", // colon would corrupt cache keys
		"",
	})

	want := []model.Category{"sponsor", "poi_highlight", "music_offtopic"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
