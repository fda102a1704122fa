package timeline

import (
	"math"
	"testing"

	"github.com/storyreel/api/internal/model"
)

func scene(id string, duration float64) model.TimelineItem {
	return model.TimelineItem{
		ID:              id,
		Kind:            model.ItemKindScene,
		DurationSeconds: duration,
		Text:            "narration for " + id,
		Transition:      model.TransitionCut,
	}
}

func timelineOf(items ...model.TimelineItem) model.Timeline {
	return model.Timeline{Items: items}
}

// assertContiguous checks the core invariant: start(i) == sum(durations[0..i))
// with no gaps or overlaps, and all ids unique.
func assertContiguous(t *testing.T, tl *model.Timeline) {
	t.Helper()
	var elapsed float64
	seen := make(map[string]bool)
	for i := range tl.Items {
		item := tl.Items[i]
		if item.DurationSeconds <= 0 {
			t.Errorf("item %s has non-positive duration %v", item.ID, item.DurationSeconds)
		}
		if got := tl.StartOf(i); math.Abs(got-elapsed) > 1e-9 {
			t.Errorf("item %d start = %v, want %v", i, got, elapsed)
		}
		if seen[item.ID] {
			t.Errorf("duplicate item id %s", item.ID)
		}
		seen[item.ID] = true
		elapsed += item.DurationSeconds
	}
}

func TestItemAt(t *testing.T) {
	tl := timelineOf(scene("a", 3), scene("b", 4))

	tests := []struct {
		time      float64
		wantIdx   int
		wantStart float64
		wantOK    bool
	}{
		{0, 0, 0, true},
		{2.9, 0, 0, true},
		{3, 1, 3, true},
		{6.9, 1, 3, true},
		{7, -1, 0, false},  // trailing pad
		{42, -1, 0, false}, // way past content
	}
	for _, tt := range tests {
		idx, start, ok := itemAt(&tl, tt.time)
		if idx != tt.wantIdx || start != tt.wantStart || ok != tt.wantOK {
			t.Errorf("itemAt(%v) = (%d, %v, %v), want (%d, %v, %v)",
				tt.time, idx, start, ok, tt.wantIdx, tt.wantStart, tt.wantOK)
		}
	}
}

func TestItemAtEmptyTimeline(t *testing.T) {
	tl := timelineOf()
	if _, _, ok := itemAt(&tl, 0); ok {
		t.Error("expected no match on empty timeline")
	}
}

func TestInsertBlockSplitsItem(t *testing.T) {
	tl := timelineOf(scene("a", 10))
	tl.Items[0].AudioRef = "audio://a"
	tl.Items[0].ImageRef = "image://a"

	insertBlock(&tl, 3, 6)

	if len(tl.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(tl.Items))
	}
	left, block, right := tl.Items[0], tl.Items[1], tl.Items[2]

	if left.DurationSeconds != 3 || left.Kind != model.ItemKindScene {
		t.Errorf("left fragment = %v/%v, want 3s scene", left.DurationSeconds, left.Kind)
	}
	if block.DurationSeconds != 3 || block.Kind != model.ItemKindEmpty {
		t.Errorf("block = %v/%v, want 3s empty", block.DurationSeconds, block.Kind)
	}
	if right.DurationSeconds != 4 || right.Kind != model.ItemKindScene {
		t.Errorf("right fragment = %v/%v, want 4s scene", right.DurationSeconds, right.Kind)
	}
	if got := tl.ContentDuration(); got != 10 {
		t.Errorf("total duration changed: %v, want 10", got)
	}

	// Fragments are independently addressable but never inherit assets.
	if left.ID == right.ID || left.ID == "a" || right.ID == "a" {
		t.Errorf("fragment ids not distinct: left=%s right=%s", left.ID, right.ID)
	}
	if left.AudioRef != "" || left.ImageRef != "" || right.AudioRef != "" || right.ImageRef != "" {
		t.Error("split fragments must not inherit generated assets")
	}
	// Other fields carry over.
	if left.Text != "narration for a" || right.Text != "narration for a" {
		t.Error("split fragments should preserve text")
	}
	assertContiguous(t, &tl)
}

func TestInsertBlockEmptyTimeline(t *testing.T) {
	tl := timelineOf()
	insertBlock(&tl, 2, 7)

	if len(tl.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(tl.Items))
	}
	if tl.Items[0].Kind != model.ItemKindEmpty || tl.Items[0].DurationSeconds != 5 {
		t.Errorf("got %v/%v, want 5s empty block", tl.Items[0].Kind, tl.Items[0].DurationSeconds)
	}
}

func TestInsertBlockPastContentAppends(t *testing.T) {
	tl := timelineOf(scene("a", 3))
	insertBlock(&tl, 20, 25)

	if len(tl.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(tl.Items))
	}
	if tl.Items[1].Kind != model.ItemKindEmpty || tl.Items[1].DurationSeconds != 5 {
		t.Errorf("appended block = %v/%v, want 5s empty", tl.Items[1].Kind, tl.Items[1].DurationSeconds)
	}
	assertContiguous(t, &tl)
}

func TestInsertBlockDropsSlivers(t *testing.T) {
	// Range starts 0.05s into the item: the left remainder is a negligible
	// sliver and must be dropped, not kept as a sub-0.1s fragment.
	tl := timelineOf(scene("a", 10))
	insertBlock(&tl, 0.05, 4)

	if len(tl.Items) != 2 {
		t.Fatalf("expected 2 items (sliver dropped), got %d", len(tl.Items))
	}
	if tl.Items[0].Kind != model.ItemKindEmpty {
		t.Errorf("first item = %v, want empty block", tl.Items[0].Kind)
	}
	assertContiguous(t, &tl)
}

func TestInsertBlockSpansMultipleItems(t *testing.T) {
	tl := timelineOf(scene("a", 4), scene("b", 4), scene("c", 4))
	insertBlock(&tl, 2, 10)

	// a keeps [0,2), b is swallowed whole, c keeps [10,12).
	if len(tl.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(tl.Items))
	}
	if tl.Items[0].DurationSeconds != 2 {
		t.Errorf("left fragment duration = %v, want 2", tl.Items[0].DurationSeconds)
	}
	if tl.Items[1].Kind != model.ItemKindEmpty || tl.Items[1].DurationSeconds != 8 {
		t.Errorf("block = %v/%v, want 8s empty", tl.Items[1].Kind, tl.Items[1].DurationSeconds)
	}
	if tl.Items[2].DurationSeconds != 2 {
		t.Errorf("right fragment duration = %v, want 2", tl.Items[2].DurationSeconds)
	}
	assertContiguous(t, &tl)
}

func TestInsertBlockAt(t *testing.T) {
	tl := timelineOf(scene("a", 3), scene("b", 4))
	insertBlockAt(&tl, 1)

	if len(tl.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(tl.Items))
	}
	if tl.Items[1].Kind != model.ItemKindEmpty || tl.Items[1].DurationSeconds != DefaultBlockSeconds {
		t.Errorf("inserted = %v/%v, want default empty block", tl.Items[1].Kind, tl.Items[1].DurationSeconds)
	}
	if tl.Items[0].ID != "a" || tl.Items[2].ID != "b" {
		t.Errorf("neighbors misplaced: %s, %s", tl.Items[0].ID, tl.Items[2].ID)
	}
	assertContiguous(t, &tl)
}

func TestRemoveRangeMidpointPolicy(t *testing.T) {
	// a [0,4) mid 2, b [4,8) mid 6, c [8,12) mid 10.
	tl := timelineOf(scene("a", 4), scene("b", 4), scene("c", 4))

	// [5,11) covers b's and c's midpoints but not a's. a partially overlaps
	// nothing here, but the policy is midpoint-only either way.
	removeRange(&tl, 5, 11)

	if len(tl.Items) != 1 || tl.Items[0].ID != "a" {
		t.Fatalf("expected only item a to survive, got %d items", len(tl.Items))
	}
}

func TestRemoveRangeKeepsPartialOverlaps(t *testing.T) {
	// The range overlaps a's tail but not its midpoint: a survives whole.
	tl := timelineOf(scene("a", 4), scene("b", 4))
	removeRange(&tl, 3, 8)

	if len(tl.Items) != 1 || tl.Items[0].ID != "a" {
		t.Fatalf("expected a kept whole and b removed, got %+v", tl.Items)
	}
	if tl.Items[0].DurationSeconds != 4 {
		t.Errorf("partially overlapped item must not be split, duration = %v", tl.Items[0].DurationSeconds)
	}
}

func TestRemoveItem(t *testing.T) {
	tl := timelineOf(scene("a", 3), scene("b", 4))
	if !removeItem(&tl, "a") {
		t.Fatal("expected removal to succeed")
	}
	if len(tl.Items) != 1 || tl.Items[0].ID != "b" {
		t.Errorf("unexpected items after removal: %+v", tl.Items)
	}
	if removeItem(&tl, "missing") {
		t.Error("removing an unknown id must be a no-op")
	}
}

func TestReorderSwaps(t *testing.T) {
	tl := timelineOf(scene("a", 3), scene("b", 4), scene("c", 5))
	if !reorder(&tl, "c", "a") {
		t.Fatal("expected reorder to succeed")
	}
	if tl.Items[0].ID != "c" || tl.Items[2].ID != "a" {
		t.Errorf("unexpected order: %s, %s, %s", tl.Items[0].ID, tl.Items[1].ID, tl.Items[2].ID)
	}
	assertContiguous(t, &tl)
}

func TestFindCollision(t *testing.T) {
	// a [0,3), b [3,7).
	tl := timelineOf(scene("a", 3), scene("b", 4))

	// b dragged left over a's interval.
	if id, ok := findCollision(&tl, "b", 1); !ok || id != "a" {
		t.Errorf("findCollision = (%s, %v), want (a, true)", id, ok)
	}
	// b dragged into open space past the content.
	if _, ok := findCollision(&tl, "b", 10); ok {
		t.Error("expected no collision in open space")
	}
	// Prospective interval exactly adjacent to a does not overlap it.
	if id, ok := findCollision(&tl, "b", 3); ok {
		t.Errorf("adjacent intervals must not collide, got %s", id)
	}
}

func TestApplyPatch(t *testing.T) {
	tl := timelineOf(scene("a", 3))

	ref := "audio://a"
	dur := 5.0
	gen := false
	if !applyPatch(&tl, model.ItemPatch{ItemID: "a", AudioRef: &ref, DurationSeconds: &dur, GeneratingAudio: &gen}) {
		t.Fatal("expected patch to apply")
	}
	if tl.Items[0].AudioRef != ref || tl.Items[0].DurationSeconds != 5 {
		t.Errorf("patch not merged: %+v", tl.Items[0])
	}

	// Durations only grow through patches.
	shrink := 2.0
	applyPatch(&tl, model.ItemPatch{ItemID: "a", DurationSeconds: &shrink})
	if tl.Items[0].DurationSeconds != 5 {
		t.Errorf("duration shrank to %v via patch", tl.Items[0].DurationSeconds)
	}
}

func TestApplyPatchStaleDropped(t *testing.T) {
	tl := timelineOf(scene("a", 3))
	ref := "audio://ghost"
	if applyPatch(&tl, model.ItemPatch{ItemID: "deleted", AudioRef: &ref}) {
		t.Error("patch for a deleted item must be dropped")
	}
}

func TestApplyPatchEmptyItemRejectsAssets(t *testing.T) {
	tl := timelineOf(newEmptyItem(5))
	id := tl.Items[0].ID
	ref := "audio://x"
	gen := true
	applyPatch(&tl, model.ItemPatch{ItemID: id, AudioRef: &ref, GeneratingAudio: &gen})

	if tl.Items[0].AudioRef != "" || tl.Items[0].GeneratingAudio {
		t.Error("empty items must never carry assets or generation flags")
	}
}
