package service

import (
	"context"
	"math"
	"time"

	"github.com/Skyebold/SponsorBlockServer/internal/model"
)

// UserService builds the public submitter view.
type UserService struct {
	trust *TrustService
}

func NewUserService(trust *TrustService) *UserService {
	return &UserService{trust: trust}
}

// Lookup returns the trust-facing view of a submitter.
func (s *UserService) Lookup(ctx context.Context, userID model.UserID) (*model.UserResponse, error) {
	u, err := s.trust.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	accountAge := 0
	if !u.FirstSeen.IsZero() {
		accountAge = int(math.Floor(time.Since(u.FirstSeen).Hours() / 24))
	}

	return &model.UserResponse{
		UserID:           u.UserID,
		Reputation:       ComputeReputation(u, time.Now()),
		TotalSubmissions: u.TotalSubmissions,
		AccountAge:       accountAge,
		IsVIP:            u.VIP,
		Trustworthy:      Trustworthy(u),
	}, nil
}
