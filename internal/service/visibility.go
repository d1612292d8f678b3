package service

import (
	"context"
	"sync"

	"github.com/Skyebold/SponsorBlockServer/internal/model"
	"github.com/Skyebold/SponsorBlockServer/pkg/hash"
)

// Segments voted below this total are dropped before visibility evaluation
// unless the caller asked for them explicitly; a segment at exactly -1 is
// still served.
const minSegmentVotes = -1

// SubmitterHashStore is the private-store lookup the visibility check needs.
type SubmitterHashStore interface {
	SubmitterHashes(ctx context.Context, videoID model.VideoID, timeSubmitted int64, service model.Service) ([]model.HashedIP, error)
}

// SegmentCache is the request-scoped visibility state: submitter IP hashes
// fetched so far, keyed by (video, submission time), and the viewer's own
// salted hash, computed lazily at most once because the iterated hash is
// expensive and most requests carry no shadow-hidden content. It is owned by
// exactly one request and needs no locking beyond the prefetch join.
type SegmentCache struct {
	mu              sync.Mutex
	shadowHiddenIPs map[model.VideoID]map[int64][]model.HashedIP

	viewerIP   string
	salt       string
	viewerHash *model.HashedIP
}

func NewSegmentCache(viewerIP, salt string) *SegmentCache {
	return &SegmentCache{
		shadowHiddenIPs: make(map[model.VideoID]map[int64][]model.HashedIP),
		viewerIP:        viewerIP,
		salt:            salt,
	}
}

// ViewerHash computes the viewer's salted IP hash on first use.
func (c *SegmentCache) ViewerHash() model.HashedIP {
	if c.viewerHash == nil {
		h := hash.HashIP(c.viewerIP, c.salt)
		c.viewerHash = &h
	}
	return *c.viewerHash
}

func (c *SegmentCache) submitterHashes(videoID model.VideoID, ts int64) ([]model.HashedIP, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byTime, ok := c.shadowHiddenIPs[videoID]
	if !ok {
		return nil, false
	}
	hashes, ok := byTime[ts]
	return hashes, ok
}

func (c *SegmentCache) putSubmitterHashes(videoID model.VideoID, ts int64, hashes []model.HashedIP) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shadowHiddenIPs[videoID] == nil {
		c.shadowHiddenIPs[videoID] = make(map[int64][]model.HashedIP)
	}
	c.shadowHiddenIPs[videoID][ts] = hashes
}

// SegmentVisibility decides, per viewer, which candidate segments may be
// shown. Shadow-hidden rows are matched against the submitter's network
// identity hash, never the account identity, preserving plausible
// deniability for quietly suppressed content.
type SegmentVisibility struct {
	store SubmitterHashStore
}

func NewSegmentVisibility(store SubmitterHashStore) *SegmentVisibility {
	return &SegmentVisibility{store: store}
}

// FilterVisible returns the segments the viewer may see, in input order.
// All private-store lookups complete before the result is assembled, so
// callers can group immediately without membership changing under them.
func (v *SegmentVisibility) FilterVisible(ctx context.Context, videoID model.VideoID, service model.Service, segments []model.DBSegment, cache *SegmentCache) ([]model.DBSegment, error) {
	candidates := make([]model.DBSegment, 0, len(segments))
	for _, s := range segments {
		if s.Votes < minSegmentVotes && !s.Required {
			continue // too untrustworthy, drop before any visibility work
		}
		candidates = append(candidates, s)
	}

	if err := v.prefetchSubmitterHashes(ctx, videoID, service, candidates, cache); err != nil {
		return nil, err
	}

	visible := make([]model.DBSegment, 0, len(candidates))
	for _, s := range candidates {
		if s.ShadowHidden != model.Hidden {
			visible = append(visible, s)
			continue
		}

		hashes, _ := cache.submitterHashes(videoID, s.TimeSubmitted)
		for _, h := range hashes {
			if h == cache.ViewerHash() {
				visible = append(visible, s)
				break
			}
		}
	}
	return visible, nil
}

// prefetchSubmitterHashes issues one concurrent lookup per missing
// (video, timeSubmitted) key and joins them all before returning. A failed
// lookup cancels the rest and propagates, as does parent cancellation.
func (v *SegmentVisibility) prefetchSubmitterHashes(ctx context.Context, videoID model.VideoID, service model.Service, segments []model.DBSegment, cache *SegmentCache) error {
	missing := make(map[int64]struct{})
	for _, s := range segments {
		if s.ShadowHidden != model.Hidden {
			continue
		}
		if _, ok := cache.submitterHashes(videoID, s.TimeSubmitted); !ok {
			missing[s.TimeSubmitted] = struct{}{}
		}
	}
	if len(missing) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for ts := range missing {
		wg.Add(1)
		go func(ts int64) {
			defer wg.Done()
			hashes, err := v.store.SubmitterHashes(ctx, videoID, ts, service)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
				return
			}
			cache.putSubmitterHashes(videoID, ts, hashes)
		}(ts)
	}
	wg.Wait()
	return firstErr
}
