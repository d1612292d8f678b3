package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Skyebold/SponsorBlockServer/internal/metrics"
	"github.com/Skyebold/SponsorBlockServer/internal/model"
	"github.com/Skyebold/SponsorBlockServer/pkg/hash"
)

// SegmentStore is the persistence surface of the engine.
type SegmentStore interface {
	SubmitterHashStore
	Insert(ctx context.Context, seg model.DBSegment, hashedIP model.HashedIP) error
	FindByVideoID(ctx context.Context, videoID model.VideoID, service model.Service) ([]model.DBSegment, error)
	FindByHashPrefix(ctx context.Context, prefix string, service model.Service) ([]model.DBSegment, error)
	CountIdentical(ctx context.Context, videoID model.VideoID, service model.Service, seg model.IncomingSegment) (int, error)
}

// LockStore is the category lock lookup surface.
type LockStore interface {
	FindByVideoID(ctx context.Context, videoID model.VideoID, service model.Service) ([]model.LockCategory, error)
}

// SegmentService implements submission and selection of description segments.
type SegmentService struct {
	store      SegmentStore
	locks      LockStore
	trust      *TrustService
	visibility *SegmentVisibility
	cache      *CacheService
	salt       string

	// now and newRNG are swappable for tests. The RNG is created fresh per
	// request so sampler state is never shared across requests.
	now    func() int64
	newRNG func() *rand.Rand
}

func NewSegmentService(store SegmentStore, locks LockStore, trust *TrustService, cache *CacheService, salt string) *SegmentService {
	return &SegmentService{
		store:      store,
		locks:      locks,
		trust:      trust,
		visibility: NewSegmentVisibility(store),
		cache:      cache,
		salt:       salt,
		now:        func() int64 { return time.Now().UnixMilli() },
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// Submit validates, deduplicates, and persists a batch of segments for one
// video, returning the content-derived identifier per stored segment. Checks
// run strictly before any mutation: locked category (403), duplicate content
// (409). Resubmitting identical content is a client error, not a silent
// merge, so callers can tell "already recorded" from "recorded now".
func (s *SegmentService) Submit(ctx context.Context, req model.SubmissionRequest, clientIP string) ([]model.PostedSegment, error) {
	videoID := model.VideoID(req.VideoID)
	service := model.ParseService(req.Service)
	userID := hash.HashUserID(req.UserID)

	isVIP, err := s.trust.IsVIP(ctx, userID)
	if err != nil {
		return nil, err
	}

	locks, err := s.locks.FindByVideoID(ctx, videoID, service)
	if err != nil {
		return nil, err
	}

	for _, seg := range req.Segments {
		if !IsKnownCategory(seg.Category) {
			return nil, model.NewValidationError("category '%s' does not exist", seg.Category)
		}

		if !isVIP {
			for _, lock := range locks {
				if lock.Category == seg.Category {
					log.Warn().
						Str("user_id", string(userID)).
						Str("video_id", string(videoID)).
						Str("category", string(seg.Category)).
						Msg("submission rejected: category locked")
					return nil, model.NewLockedCategoryError(seg.Category, lock.Reason)
				}
			}
		}

		count, err := s.store.CountIdentical(ctx, videoID, service, seg)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, model.NewDuplicateError()
		}
	}

	trustworthy, err := s.trust.IsTrustworthy(ctx, userID)
	if err != nil {
		return nil, err
	}
	reputation, err := s.reputation(ctx, userID)
	if err != nil {
		return nil, err
	}

	shadowHidden := model.Visible
	if !trustworthy {
		// Hide quietly: the submitter still sees their own segments.
		shadowHidden = model.Hidden
	}

	timeSubmitted := s.now()
	hashedIP := hash.HashIP(clientIP, s.salt)
	hashedVideoID := hash.VideoHash(videoID)

	posted := make([]model.PostedSegment, 0, len(req.Segments))
	for _, seg := range req.Segments {
		uuid := hash.SubmissionID(videoID, userID, service, seg)

		row := model.DBSegment{
			UUID:            uuid,
			VideoID:         videoID,
			HashedVideoID:   hashedVideoID,
			Service:         service,
			Category:        seg.Category,
			StartTime:       seg.Offset,
			EndTime:         seg.Offset + float64(seg.Length),
			FirstCharacters: seg.FirstCharacters,
			LastCharacters:  seg.LastCharacters,
			Length:          seg.Length,
			DescriptionHash: seg.DescriptionHash,
			UserID:          userID,
			Votes:           0,
			Locked:          isVIP,
			ShadowHidden:    shadowHidden,
			Reputation:      reputation,
			TimeSubmitted:   timeSubmitted,
			UserAgent:       req.UserAgent,
		}

		if err := s.store.Insert(ctx, row, hashedIP); err != nil {
			log.Error().Err(err).
				Str("video_id", string(videoID)).
				Str("category", string(seg.Category)).
				Msg("segment insert failed")
			return nil, err
		}

		metrics.SubmissionsTotal.WithLabelValues(string(seg.Category)).Inc()
		posted = append(posted, model.PostedSegment{UUID: uuid, Category: seg.Category})
	}

	// Invalidation is synchronous with the write path. A failure here is an
	// operational bug, not a caller error: the write succeeded.
	if s.cache != nil {
		if err := s.cache.InvalidateVideo(ctx, videoID, hashedVideoID, service, userID); err != nil {
			log.Error().Err(err).Str("video_id", string(videoID)).Msg("cache invalidation failed after write")
		}
	}

	return posted, nil
}

// FetchRequest carries one read request through the engine.
type FetchRequest struct {
	VideoID          model.VideoID
	Service          model.Service
	Categories       []model.Category
	RequiredSegments []model.SegmentUUID
	ViewerIP         string
}

// Fetch returns the trust-weighted selection of visible segments for a video:
// load candidates (cache-aside) → mark required → visibility filter →
// per-category overlap grouping and weighted sampling.
func (s *SegmentService) Fetch(ctx context.Context, req FetchRequest) ([]model.Segment, error) {
	categories := FilterCategories(req.Categories)
	if len(categories) == 0 {
		return nil, model.NewValidationError("no valid categories requested")
	}

	key := SegmentsKey(req.Service, req.VideoID, categories)
	registry := VideoKeysKey(req.Service, req.VideoID)
	candidates, err := s.cache.FetchSegments(ctx, key, registry, func(ctx context.Context) ([]model.DBSegment, error) {
		segments, err := s.store.FindByVideoID(ctx, req.VideoID, req.Service)
		if err != nil {
			return nil, err
		}
		return filterByCategory(segments, categories), nil
	})
	if err != nil {
		return nil, err
	}

	cache := NewSegmentCache(req.ViewerIP, s.salt)
	selected, err := s.selectSegments(ctx, req.VideoID, req.Service, candidates, req.RequiredSegments, cache)
	if err != nil {
		return nil, err
	}

	if len(selected) == 0 {
		return nil, model.NewNotFoundError("no segments found for this video")
	}
	return selected, nil
}

// FetchByHashPrefix is the k-anonymity read: all videos whose hash starts
// with the prefix, each run through the same selection pipeline.
func (s *SegmentService) FetchByHashPrefix(ctx context.Context, prefix string, req FetchRequest) ([]model.VideoData, error) {
	categories := FilterCategories(req.Categories)
	if len(categories) == 0 {
		return nil, model.NewValidationError("no valid categories requested")
	}

	loader := func(ctx context.Context) ([]model.DBSegment, error) {
		segments, err := s.store.FindByHashPrefix(ctx, prefix, req.Service)
		if err != nil {
			return nil, err
		}
		return filterByCategory(segments, categories), nil
	}

	var candidates []model.DBSegment
	var err error
	if len(prefix) == CachedPrefixLength {
		key := SegmentsHashKey(req.Service, prefix, categories)
		registry := HashKeysKey(req.Service, prefix)
		candidates, err = s.cache.FetchSegments(ctx, key, registry, loader)
	} else {
		candidates, err = loader(ctx)
	}
	if err != nil {
		return nil, err
	}

	byVideo := make(map[model.VideoID][]model.DBSegment)
	for _, seg := range candidates {
		byVideo[seg.VideoID] = append(byVideo[seg.VideoID], seg)
	}

	// One visibility cache across all videos in the response, so the viewer
	// hash is still computed at most once.
	cache := NewSegmentCache(req.ViewerIP, s.salt)

	var out []model.VideoData
	for videoID, segments := range byVideo {
		selected, err := s.selectSegments(ctx, videoID, req.Service, segments, req.RequiredSegments, cache)
		if err != nil {
			return nil, err
		}
		if len(selected) == 0 {
			continue
		}
		out = append(out, model.VideoData{
			VideoID:  videoID,
			Hash:     segments[0].HashedVideoID,
			Segments: selected,
		})
	}

	if len(out) == 0 {
		return nil, model.NewNotFoundError("no segments found matching this prefix")
	}
	return out, nil
}

// selectSegments runs visibility filtering, then per-category grouping and
// trust-weighted sampling. Visibility completes for every candidate before
// grouping begins, so group membership never changes mid-computation.
func (s *SegmentService) selectSegments(ctx context.Context, videoID model.VideoID, service model.Service, candidates []model.DBSegment, required []model.SegmentUUID, cache *SegmentCache) ([]model.Segment, error) {
	requiredSet := make(map[model.SegmentUUID]bool, len(required))
	for _, uuid := range required {
		requiredSet[uuid] = true
	}

	byCategory := make(map[model.Category][]model.DBSegment)
	for _, seg := range candidates {
		if requiredSet[seg.UUID] {
			seg.Required = true
		}
		byCategory[seg.Category] = append(byCategory[seg.Category], seg)
	}

	rng := s.newRNG()
	var out []model.Segment
	for category, segments := range byCategory {
		visible, err := s.visibility.FilterVisible(ctx, videoID, service, segments, cache)
		if err != nil {
			return nil, err
		}

		for _, chosen := range ChooseSegments(visible, MaxSegmentGroups(category), rng) {
			out = append(out, chosen.ToSegment())
		}
	}
	return out, nil
}

// reputation reads the submitter's reputation through the cache.
func (s *SegmentService) reputation(ctx context.Context, userID model.UserID) (float64, error) {
	if s.cache != nil {
		if rep, ok := s.cache.GetReputation(ctx, userID); ok {
			return rep, nil
		}
	}
	rep, err := s.trust.Reputation(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.SetReputation(ctx, userID, rep)
	}
	return rep, nil
}

func filterByCategory(segments []model.DBSegment, categories []model.Category) []model.DBSegment {
	want := make(map[model.Category]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}
	out := make([]model.DBSegment, 0, len(segments))
	for _, s := range segments {
		if want[s.Category] {
			out = append(out, s)
		}
	}
	return out
}
