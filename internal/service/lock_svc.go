package service

import (
	"context"

	"github.com/Skyebold/SponsorBlockServer/internal/model"
)

// LockAdminStore extends lock reads with the VIP-only removal operation.
type LockAdminStore interface {
	LockStore
	Delete(ctx context.Context, videoID model.VideoID, service model.Service, categories []model.Category) error
}

// LockService exposes category locks to clients and lets privileged
// reviewers remove them.
type LockService struct {
	store LockAdminStore
	trust *TrustService
}

func NewLockService(store LockAdminStore, trust *TrustService) *LockService {
	return &LockService{store: store, trust: trust}
}

// LockedCategories returns all locks on (video, service) with reasons.
func (s *LockService) LockedCategories(ctx context.Context, videoID model.VideoID, service model.Service) ([]model.LockCategory, error) {
	return s.store.FindByVideoID(ctx, videoID, service)
}

// RemoveLocks deletes locks for the given categories (all when empty). Only
// privileged reviewers may do this.
func (s *LockService) RemoveLocks(ctx context.Context, userID model.UserID, videoID model.VideoID, service model.Service, categories []model.Category) error {
	isVIP, err := s.trust.IsVIP(ctx, userID)
	if err != nil {
		return err
	}
	if !isVIP {
		return &model.APIError{
			Code:    model.ErrCodeCategoryLocked,
			Status:  403,
			Message: "Must be a VIP to remove category locks.",
		}
	}
	return s.store.Delete(ctx, videoID, service, categories)
}
