package service

import (
	"context"
	"math"
	"time"

	"github.com/Skyebold/SponsorBlockServer/internal/model"
)

const (
	ageWeight      = 0.30
	accuracyWeight = 0.50
	volumeWeight   = 0.20

	// Full age factor after 60 days
	ageDaysMax = 60.0

	// Default accuracy for users with fewer than 5 voted-on submissions
	defaultAccuracy     = 0.5
	minVotedForAccuracy = 5

	// Full volume factor at 50 submissions
	volumeSubmissionsMax = 50.0

	// Reputation is the weighted factor sum scaled into [0, reputationScale].
	reputationScale = 4.0

	// Submitters whose downvote ratio exceeds this are no longer trustworthy
	// and their new submissions are written shadow-hidden.
	maxDownvoteRatio = 0.6
	// New submitters get the benefit of the doubt below this volume.
	minSubmissionsForDistrust = 5
)

// UserStore is the trust lookup surface the engine needs from storage.
type UserStore interface {
	FindByUserID(ctx context.Context, userID model.UserID) (*model.User, error)
}

// TrustService derives reputation and trustworthiness from a submitter's
// history. All scoring is pure; the only I/O is the user row lookup.
type TrustService struct {
	store UserStore
}

func NewTrustService(store UserStore) *TrustService {
	return &TrustService{store: store}
}

// Reputation returns the submitter's reputation snapshot:
//
//	reputation = (age_factor*0.30 + accuracy_factor*0.50 + volume_factor*0.20) * scale
func (s *TrustService) Reputation(ctx context.Context, userID model.UserID) (float64, error) {
	u, err := s.store.FindByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return ComputeReputation(u, time.Now()), nil
}

// IsTrustworthy reports whether new submissions from this user should be
// served normally. Shadow-banned users and established users with a heavy
// downvote ratio are not trustworthy.
func (s *TrustService) IsTrustworthy(ctx context.Context, userID model.UserID) (bool, error) {
	u, err := s.store.FindByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	return Trustworthy(u), nil
}

// IsVIP reports whether the user is a privileged reviewer.
func (s *TrustService) IsVIP(ctx context.Context, userID model.UserID) (bool, error) {
	u, err := s.store.FindByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	return u.VIP, nil
}

// User returns the raw trust row.
func (s *TrustService) User(ctx context.Context, userID model.UserID) (*model.User, error) {
	return s.store.FindByUserID(ctx, userID)
}

// ComputeReputation is the pure scoring function.
func ComputeReputation(u *model.User, now time.Time) float64 {
	if u.ShadowBanned {
		return 0
	}

	score := AgeFactor(u.FirstSeen, now)*ageWeight +
		AccuracyFactor(u)*accuracyWeight +
		VolumeFactor(u.TotalSubmissions)*volumeWeight

	return math.Min(score, 1.0) * reputationScale
}

// AgeFactor returns a value between 0.0 and 1.0 based on account age.
// Full weight (1.0) after 60 days.
func AgeFactor(firstSeen, now time.Time) float64 {
	if firstSeen.IsZero() {
		return 0
	}
	days := now.Sub(firstSeen).Hours() / 24
	return math.Min(math.Max(days, 0)/ageDaysMax, 1.0)
}

// AccuracyFactor is the upvote share among voted-on submissions, or the
// neutral default for users without enough voted history.
func AccuracyFactor(u *model.User) float64 {
	voted := u.UpvotedSubmissions + u.DownvotedSubmissions
	if voted < minVotedForAccuracy {
		return defaultAccuracy
	}
	return float64(u.UpvotedSubmissions) / float64(voted)
}

// VolumeFactor returns a value between 0.0 and 1.0 based on total
// submissions. Full weight (1.0) at 50+.
func VolumeFactor(totalSubmissions int) float64 {
	return math.Min(float64(totalSubmissions)/volumeSubmissionsMax, 1.0)
}

// Trustworthy is the pure trust decision.
func Trustworthy(u *model.User) bool {
	if u.ShadowBanned {
		return false
	}
	voted := u.UpvotedSubmissions + u.DownvotedSubmissions
	if u.TotalSubmissions < minSubmissionsForDistrust || voted == 0 {
		return true
	}
	return float64(u.DownvotedSubmissions)/float64(voted) <= maxDownvoteRatio
}
