package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Skyebold/SponsorBlockServer/internal/model"
)

func TestSegmentsKey_CategoryOrderIrrelevant(t *testing.T) {
	a := SegmentsKey(model.ServiceYouTube, "vid", []model.Category{"sponsor", "intro"})
	b := SegmentsKey(model.ServiceYouTube, "vid", []model.Category{"intro", "sponsor"})
	if a != b {
		t.Errorf("equivalent category sets produced different keys: %q vs %q", a, b)
	}
}

func TestSegmentsKey_DistinguishesInputs(t *testing.T) {
	base := SegmentsKey(model.ServiceYouTube, "vid", []model.Category{"sponsor"})

	variants := []string{
		SegmentsKey(model.ServiceYouTube, "other", []model.Category{"sponsor"}),
		SegmentsKey(model.ServicePeerTube, "vid", []model.Category{"sponsor"}),
		SegmentsKey(model.ServiceYouTube, "vid", []model.Category{"intro"}),
		SegmentsKey(model.ServiceYouTube, "vid", []model.Category{"sponsor", "intro"}),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collides with base key %q", i, base)
		}
	}
}

func TestKeyRegistries_DisjointNamespaces(t *testing.T) {
	video := VideoKeysKey(model.ServiceYouTube, "abcd")
	hash := HashKeysKey(model.ServiceYouTube, "abcd")
	if video == hash {
		t.Errorf("video and hash registries collide: %q", video)
	}
}

func TestCacheService_DisabledFallsThroughToLoader(t *testing.T) {
	cache := NewCacheService("")
	ctx := context.Background()

	calls := 0
	want := []model.DBSegment{{UUID: "u1"}}
	got, err := cache.FetchSegments(ctx, "k", "reg", func(context.Context) ([]model.DBSegment, error) {
		calls++
		return want, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
	if len(got) != 1 || got[0].UUID != "u1" {
		t.Errorf("got %+v, want loader result", got)
	}

	// Loader errors pass straight through.
	wantErr := errors.New("boom")
	if _, err := cache.FetchSegments(ctx, "k", "reg", func(context.Context) ([]model.DBSegment, error) {
		return nil, wantErr
	}); !errors.Is(err, wantErr) {
		t.Errorf("got err %v, want %v", err, wantErr)
	}
}

func TestCacheService_DisabledNoOps(t *testing.T) {
	cache := NewCacheService("")
	ctx := context.Background()

	if _, ok := cache.GetReputation(ctx, "user"); ok {
		t.Error("disabled cache reported a reputation hit")
	}
	cache.SetReputation(ctx, "user", 2.5)

	if err := cache.InvalidateVideo(ctx, "vid", "aaaabbbb", model.ServiceYouTube, "user"); err != nil {
		t.Errorf("disabled invalidation returned %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("disabled close returned %v", err)
	}
}

func TestNewCacheService_BadURLDisablesCache(t *testing.T) {
	cache := NewCacheService("not-a-redis-url")
	if cache.Client() != nil {
		t.Error("invalid URL should leave the client nil")
	}
}
