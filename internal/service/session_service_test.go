package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storyreel/api/internal/model"
	"github.com/storyreel/api/internal/timeline"
)

// unreachableRedis returns a client whose commands fail fast, for lifecycle
// tests that must not depend on a running redis.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
}

func TestSeedTimelineDefaults(t *testing.T) {
	tl := seedTimeline([]model.SceneSeed{
		{Text: "Opening shot", Notes: "wide angle"},
		{Text: "Close-up", DurationSeconds: 8},
	})

	if len(tl.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(tl.Items))
	}

	first := tl.Items[0]
	if first.DurationSeconds != timeline.DefaultBlockSeconds {
		t.Errorf("expected default duration %v, got %v", timeline.DefaultBlockSeconds, first.DurationSeconds)
	}
	if first.Kind != model.ItemKindScene {
		t.Errorf("expected scene kind, got %v", first.Kind)
	}
	if first.Transition != model.TransitionCut {
		t.Errorf("expected cut transition, got %v", first.Transition)
	}
	if first.ID == "" {
		t.Error("expected generated id")
	}

	if tl.Items[1].DurationSeconds != 8 {
		t.Errorf("explicit duration not kept: %v", tl.Items[1].DurationSeconds)
	}
	if tl.Items[0].ID == tl.Items[1].ID {
		t.Error("seeded items share an id")
	}
}

func TestCloseReleasesEditors(t *testing.T) {
	s := NewSessionService(unreachableRedis())
	var released []string
	s.SetEditorReleaseHook(func(id string, ed *timeline.Editor) {
		released = append(released, id)
	})
	s.editors["a"] = timeline.NewEditor(model.Timeline{})
	s.editors["b"] = timeline.NewEditor(model.Timeline{})
	s.lastUsed["a"] = time.Now()
	s.lastUsed["b"] = time.Now()

	s.Close()

	if len(released) != 2 {
		t.Errorf("expected 2 release hook calls, got %d", len(released))
	}
	if len(s.editors) != 0 || len(s.lastUsed) != 0 {
		t.Errorf("registry not emptied: %d editors, %d timestamps", len(s.editors), len(s.lastUsed))
	}
}

func TestDeleteReleasesEditorEvenWithoutRecord(t *testing.T) {
	s := NewSessionService(unreachableRedis())
	released := false
	s.SetEditorReleaseHook(func(id string, ed *timeline.Editor) {
		released = true
	})
	s.editors["x"] = timeline.NewEditor(model.Timeline{})
	s.lastUsed["x"] = time.Now()

	// The record fetch fails, but the live editor must still be torn down.
	_ = s.Delete(context.Background(), "x")

	if !released {
		t.Error("release hook not invoked on delete")
	}
	if _, ok := s.editors["x"]; ok {
		t.Error("editor still registered after delete")
	}
}

func TestEvictIdleSkipsFreshAndPlaying(t *testing.T) {
	s := NewSessionService(unreachableRedis())
	var released []string
	s.SetEditorReleaseHook(func(id string, ed *timeline.Editor) {
		released = append(released, id)
	})

	playing := timeline.NewEditor(model.Timeline{Items: []model.TimelineItem{
		{ID: "i1", Kind: model.ItemKindScene, DurationSeconds: 5},
	}})
	playing.Play()

	s.editors["stale"] = timeline.NewEditor(model.Timeline{})
	s.lastUsed["stale"] = time.Now().Add(-time.Hour)
	s.editors["fresh"] = timeline.NewEditor(model.Timeline{})
	s.lastUsed["fresh"] = time.Now()
	s.editors["playing"] = playing
	s.lastUsed["playing"] = time.Now().Add(-time.Hour)

	n := s.EvictIdle(context.Background(), 30*time.Minute)

	if n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if len(released) != 1 || released[0] != "stale" {
		t.Errorf("expected only the stale editor released, got %v", released)
	}
	if _, ok := s.editors["fresh"]; !ok {
		t.Error("fresh editor evicted")
	}
	if _, ok := s.editors["playing"]; !ok {
		t.Error("playing editor evicted")
	}
}

func TestSeedTimelineEmpty(t *testing.T) {
	tl := seedTimeline(nil)
	if len(tl.Items) != 0 {
		t.Errorf("expected empty timeline, got %d items", len(tl.Items))
	}
	if tl.ContentDuration() != 0 {
		t.Errorf("expected zero duration, got %v", tl.ContentDuration())
	}
}
