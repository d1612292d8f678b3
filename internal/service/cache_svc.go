package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Skyebold/SponsorBlockServer/internal/metrics"
	"github.com/Skyebold/SponsorBlockServer/internal/model"
)

const (
	SegmentCacheTTL    = 5 * time.Minute
	ReputationCacheTTL = 15 * time.Minute

	// Prefix length at which hash lookups are cached; longer prefixes are
	// too sparse to be worth the keyspace.
	CachedPrefixLength = 4
)

// CacheService is a Redis cache-aside layer for candidate segment loads and
// reputation snapshots. Cache unavailability never fails a read: every
// operation degrades to the loader. Each derived key is registered in a
// per-video key set so a write invalidates exactly the entries it affects.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a CacheService. If redisURL is empty or connection
// fails the client stays nil and every cache operation becomes a no-op.
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Info().Msg("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Str("url", redisURL).Msg("redis: invalid URL, caching disabled")
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		return &CacheService{}
	}

	log.Info().Msg("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// FetchSegments returns the cached candidate set for key, or invokes loader,
// stores the result, registers key under registryKey, and returns it. Any
// Redis error falls through to the loader.
func (c *CacheService) FetchSegments(ctx context.Context, key, registryKey string, loader func(context.Context) ([]model.DBSegment, error)) ([]model.DBSegment, error) {
	if c.rdb == nil {
		return loader(ctx)
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var segments []model.DBSegment
		if jsonErr := json.Unmarshal(data, &segments); jsonErr == nil {
			metrics.CacheHits.Inc()
			return segments, nil
		}
	} else if err != redis.Nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: read failed, falling back to store")
	}
	metrics.CacheMisses.Inc()

	segments, err := loader(ctx)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(segments); err == nil {
		pipe := c.rdb.Pipeline()
		pipe.Set(ctx, key, b, SegmentCacheTTL)
		pipe.SAdd(ctx, registryKey, key)
		pipe.Expire(ctx, registryKey, SegmentCacheTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache: write failed")
		}
	}
	return segments, nil
}

// GetReputation returns a cached reputation snapshot, with ok=false on miss
// or when caching is disabled.
func (c *CacheService) GetReputation(ctx context.Context, userID model.UserID) (float64, bool) {
	if c.rdb == nil {
		return 0, false
	}
	val, err := c.rdb.Get(ctx, reputationKey(userID)).Float64()
	if err != nil {
		return 0, false
	}
	return val, true
}

// SetReputation stores a reputation snapshot.
func (c *CacheService) SetReputation(ctx context.Context, userID model.UserID, reputation float64) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, reputationKey(userID), reputation, ReputationCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("cache: reputation write failed")
	}
}

// InvalidateVideo removes every cache entry that could contain results
// derived from the given video: all registered per-video keys, the hash
// prefix keys, and the submitter's cached reputation. It runs synchronously
// on the write path; a failure here is an operational error, never a caller
// visible one. Removing absent keys is a no-op, so concurrent writers can
// each invalidate their union safely.
func (c *CacheService) InvalidateVideo(ctx context.Context, videoID model.VideoID, hashedVideoID model.VideoIDHash, service model.Service, userID model.UserID) error {
	if c.rdb == nil {
		return nil
	}
	metrics.CacheInvalidations.Inc()

	registries := []string{
		VideoKeysKey(service, videoID),
		HashKeysKey(service, string(hashedVideoID)[:CachedPrefixLength]),
	}

	var toDelete []string
	for _, reg := range registries {
		members, err := c.rdb.SMembers(ctx, reg).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		toDelete = append(toDelete, members...)
		toDelete = append(toDelete, reg)
	}
	if userID != "" {
		toDelete = append(toDelete, reputationKey(userID))
	}

	return c.rdb.Del(ctx, toDelete...).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// SegmentsKey is the cache key for a candidate load by exact video ID. The
// category set is part of the key, sorted so equivalent sets collide.
func SegmentsKey(service model.Service, videoID model.VideoID, categories []model.Category) string {
	return fmt.Sprintf("segments:%s:%s:%s", service, videoID, categorySetKey(categories))
}

// SegmentsHashKey is the cache key for a candidate load by video hash prefix.
func SegmentsHashKey(service model.Service, prefix string, categories []model.Category) string {
	return fmt.Sprintf("segments.hash:%s:%s:%s", service, prefix, categorySetKey(categories))
}

// VideoKeysKey is the per-video key registry; every cache entry derived from
// the video is registered here so invalidation can enumerate it.
func VideoKeysKey(service model.Service, videoID model.VideoID) string {
	return fmt.Sprintf("segments.keys:%s:%s", service, videoID)
}

// HashKeysKey is the registry for entries keyed by a video hash prefix.
func HashKeysKey(service model.Service, prefix string) string {
	return fmt.Sprintf("segments.keys.hash:%s:%s", service, prefix)
}

func reputationKey(userID model.UserID) string {
	return fmt.Sprintf("reputation:%s", userID)
}

func categorySetKey(categories []model.Category) string {
	set := make([]string, len(categories))
	for i, c := range categories {
		set[i] = string(c)
	}
	sort.Strings(set)
	return strings.Join(set, ",")
}
