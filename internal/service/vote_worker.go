package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/Skyebold/SponsorBlockServer/internal/model"
	"github.com/Skyebold/SponsorBlockServer/pkg/hash"
)

// VoteWorker listens for PostgreSQL NOTIFY on the 'segment_votes' channel
// (fired when external vote processors touch segment_votes) and invalidates
// the affected videos' cache entries in batched windows, so a burst of votes
// on one video costs one invalidation.
type VoteWorker struct {
	pool    *pgxpool.Pool
	cache   *CacheService
	batchMs time.Duration

	mu      sync.Mutex
	pending map[model.VideoID]struct{}
}

func NewVoteWorker(pool *pgxpool.Pool, cache *CacheService) *VoteWorker {
	return &VoteWorker{
		pool:    pool,
		cache:   cache,
		batchMs: 5 * time.Second,
		pending: make(map[model.VideoID]struct{}),
	}
}

// Start begins listening for segment_votes notifications, reconnecting on
// error until the context is cancelled.
func (w *VoteWorker) Start(ctx context.Context) {
	log.Info().Dur("batch_window", w.batchMs).Msg("vote-worker: starting")

	for {
		if err := w.listenLoop(ctx); err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("vote-worker: stopping (context cancelled)")
				return
			}
			log.Warn().Err(err).Msg("vote-worker: listen error, reconnecting in 5s")
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				log.Info().Msg("vote-worker: stopping (context cancelled)")
				return
			}
		}
	}
}

// listenLoop acquires a dedicated connection, LISTENs on segment_votes, and
// queues payloads into the pending set.
func (w *VoteWorker) listenLoop(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN segment_votes"); err != nil {
		return err
	}
	log.Info().Msg("vote-worker: listening on segment_votes")

	flushCtx, flushCancel := context.WithCancel(ctx)
	defer flushCancel()
	go w.flushLoop(flushCtx)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		videoID := model.VideoID(notification.Payload)
		if videoID == "" {
			continue
		}

		w.mu.Lock()
		w.pending[videoID] = struct{}{}
		w.mu.Unlock()
	}
}

// flushLoop periodically drains the pending set.
func (w *VoteWorker) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(w.batchMs)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.flush(ctx)
		case <-ctx.Done():
			// Final flush before exit
			w.flush(context.Background())
			return
		}
	}
}

// flush invalidates every pending video's cache keys. The notification does
// not carry the service, so both services' keyspaces are invalidated;
// removing absent keys is a no-op.
func (w *VoteWorker) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[model.VideoID]struct{})
	w.mu.Unlock()

	invalidated := 0
	for videoID := range batch {
		hashedVideoID := hash.VideoHash(videoID)
		for _, service := range []model.Service{model.ServiceYouTube, model.ServicePeerTube} {
			if err := w.cache.InvalidateVideo(ctx, videoID, hashedVideoID, service, ""); err != nil {
				log.Warn().Err(err).Str("video_id", string(videoID)).Msg("vote-worker: cache invalidate error")
			}
		}
		invalidated++
	}

	log.Info().Int("videos", invalidated).Msg("vote-worker: batch complete")
}
