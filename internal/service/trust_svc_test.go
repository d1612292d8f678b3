package service

import (
	"math"
	"testing"
	"time"

	"github.com/Skyebold/SponsorBlockServer/internal/model"
)

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestAgeFactor(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		firstSeen time.Time
		want      float64
	}{
		{"zero time", time.Time{}, 0},
		{"brand new", now, 0},
		{"30 days", now.AddDate(0, 0, -30), 0.5},
		{"60 days", now.AddDate(0, 0, -60), 1.0},
		{"two years", now.AddDate(-2, 0, 0), 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgeFactor(tt.firstSeen, now); !almostEqual(got, tt.want, 0.01) {
				t.Errorf("AgeFactor = %.3f, want %.3f", got, tt.want)
			}
		})
	}
}

func TestAccuracyFactor(t *testing.T) {
	tests := []struct {
		name string
		up   int
		down int
		want float64
	}{
		{"no votes yet", 0, 0, 0.5},
		{"below threshold", 2, 1, 0.5},
		{"all upvoted", 10, 0, 1.0},
		{"all downvoted", 0, 10, 0.0},
		{"mixed", 6, 4, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &model.User{UpvotedSubmissions: tt.up, DownvotedSubmissions: tt.down}
			if got := AccuracyFactor(u); !almostEqual(got, tt.want, 0.001) {
				t.Errorf("AccuracyFactor = %.3f, want %.3f", got, tt.want)
			}
		})
	}
}

func TestVolumeFactor(t *testing.T) {
	if got := VolumeFactor(0); got != 0 {
		t.Errorf("VolumeFactor(0) = %.3f, want 0", got)
	}
	if got := VolumeFactor(25); !almostEqual(got, 0.5, 0.001) {
		t.Errorf("VolumeFactor(25) = %.3f, want 0.5", got)
	}
	if got := VolumeFactor(500); got != 1.0 {
		t.Errorf("VolumeFactor(500) = %.3f, want 1.0", got)
	}
}

func TestComputeReputation_EstablishedUser(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	u := &model.User{
		FirstSeen:            now.AddDate(-1, 0, 0),
		TotalSubmissions:     50,
		UpvotedSubmissions:   10,
		DownvotedSubmissions: 0,
	}

	// age=1.0, accuracy=1.0, volume=1.0 → weighted sum 1.0 → scaled to 4.0
	if got := ComputeReputation(u, now); !almostEqual(got, 4.0, 0.001) {
		t.Errorf("reputation = %.3f, want 4.0", got)
	}
}

func TestComputeReputation_NewUser(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	u := &model.User{FirstSeen: now}

	// age=0, accuracy=0.5 (default), volume=0 → 0.25 → scaled to 1.0
	if got := ComputeReputation(u, now); !almostEqual(got, 1.0, 0.001) {
		t.Errorf("reputation = %.3f, want 1.0", got)
	}
}

func TestComputeReputation_ShadowBannedIsZero(t *testing.T) {
	now := time.Now()
	u := &model.User{
		ShadowBanned:       true,
		FirstSeen:          now.AddDate(-1, 0, 0),
		TotalSubmissions:   100,
		UpvotedSubmissions: 100,
	}

	if got := ComputeReputation(u, now); got != 0 {
		t.Errorf("shadow-banned reputation = %.3f, want 0", got)
	}
}

func TestTrustworthy(t *testing.T) {
	tests := []struct {
		name string
		user model.User
		want bool
	}{
		{"shadow banned", model.User{ShadowBanned: true, TotalSubmissions: 100, UpvotedSubmissions: 100}, false},
		{"brand new submitter", model.User{}, true},
		{"few submissions", model.User{TotalSubmissions: 3, DownvotedSubmissions: 3}, true},
		{"established, no votes yet", model.User{TotalSubmissions: 20}, true},
		{"established, well regarded", model.User{TotalSubmissions: 20, UpvotedSubmissions: 15, DownvotedSubmissions: 5}, true},
		{"established, at the ratio limit", model.User{TotalSubmissions: 20, UpvotedSubmissions: 4, DownvotedSubmissions: 6}, true},
		{"established, heavily downvoted", model.User{TotalSubmissions: 20, UpvotedSubmissions: 2, DownvotedSubmissions: 8}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Trustworthy(&tt.user); got != tt.want {
				t.Errorf("Trustworthy = %v, want %v", got, tt.want)
			}
		})
	}
}
