package timeline

import (
	"github.com/google/uuid"

	"github.com/storyreel/api/internal/model"
)

const (
	// MinBlockSeconds is the floor under which a drawn selection is treated
	// as a plain seek instead of a structural edit.
	MinBlockSeconds = 0.5
	// DefaultBlockSeconds is the length of blocks created without a drawn
	// range (double-click, explicit insert affordance).
	DefaultBlockSeconds = 5.0
	// sliverSeconds is the floor under which a split fragment is dropped as
	// a negligible sliver.
	sliverSeconds = 0.1
)

// itemAt returns the index and absolute start time of the item whose
// [start, start+duration) interval contains t. ok is false when t falls past
// the last item (the trailing pad) or the timeline is empty.
func itemAt(tl *model.Timeline, t float64) (idx int, start float64, ok bool) {
	var elapsed float64
	for i := range tl.Items {
		end := elapsed + tl.Items[i].DurationSeconds
		if t >= elapsed && t < end {
			return i, elapsed, true
		}
		elapsed = end
	}
	return -1, 0, false
}

// splitFragment derives a fragment from src with a new duration. Fragments
// get derived-but-distinct ids so the halves stay independently addressable,
// and never inherit generated assets: a sub-range of an already rendered
// asset is not valid.
func splitFragment(src model.TimelineItem, suffix string, duration float64) model.TimelineItem {
	frag := src
	frag.ID = src.ID + "-" + suffix
	frag.DurationSeconds = duration
	frag.ImageRef = ""
	frag.AudioRef = ""
	frag.GeneratingAudio = false
	frag.GeneratingVisual = false
	return frag
}

func newEmptyItem(duration float64) model.TimelineItem {
	return model.TimelineItem{
		ID:              uuid.New().String(),
		Kind:            model.ItemKindEmpty,
		DurationSeconds: duration,
		Transition:      model.TransitionCut,
	}
}

// insertBlock splits the timeline at [start, end) and inserts one new empty
// item of duration end-start. Items wholly before the range are kept; items
// overlapping it are cut into left/right fragments (dropping slivers under
// 0.1s); the new block lands at the first position whose extent reaches
// start. When nothing reaches start, including on an empty timeline, the
// block is appended. Callers are responsible for the 0.5s seek floor.
func insertBlock(tl *model.Timeline, start, end float64) {
	if end < start {
		start, end = end, start
	}
	block := newEmptyItem(end - start)
	out := make([]model.TimelineItem, 0, len(tl.Items)+2)
	inserted := false
	var elapsed float64

	for i := range tl.Items {
		item := tl.Items[i]
		itemStart := elapsed
		itemEnd := elapsed + item.DurationSeconds
		elapsed = itemEnd

		if itemEnd <= start {
			out = append(out, item)
			continue
		}
		if itemStart >= end {
			if !inserted {
				out = append(out, block)
				inserted = true
			}
			out = append(out, item)
			continue
		}

		if left := start - itemStart; left > sliverSeconds {
			out = append(out, splitFragment(item, "a", left))
		}
		if !inserted {
			out = append(out, block)
			inserted = true
		}
		if right := itemEnd - end; right > sliverSeconds {
			out = append(out, splitFragment(item, "b", right))
		}
	}

	if !inserted {
		out = append(out, block)
	}
	tl.Items = out
}

// insertBlockAt inserts a default-length empty item immediately before the
// item currently at index. Out-of-range indexes clamp to the ends.
func insertBlockAt(tl *model.Timeline, index int) {
	if index < 0 {
		index = 0
	}
	if index > len(tl.Items) {
		index = len(tl.Items)
	}
	block := newEmptyItem(DefaultBlockSeconds)
	tl.Items = append(tl.Items, model.TimelineItem{})
	copy(tl.Items[index+1:], tl.Items[index:])
	tl.Items[index] = block
}

// removeRange removes every item whose temporal midpoint falls inside
// [start, end). This is deliberately coarse and item-granular: items that
// only partially overlap the range are kept whole, not split.
func removeRange(tl *model.Timeline, start, end float64) {
	out := tl.Items[:0]
	var elapsed float64
	for i := range tl.Items {
		item := tl.Items[i]
		mid := elapsed + item.DurationSeconds/2
		elapsed += item.DurationSeconds
		if mid >= start && mid < end {
			continue
		}
		out = append(out, item)
	}
	tl.Items = out
}

// removeItem removes the item with the given id. Unknown ids are a no-op.
func removeItem(tl *model.Timeline, id string) bool {
	idx := tl.IndexOf(id)
	if idx < 0 {
		return false
	}
	tl.Items = append(tl.Items[:idx], tl.Items[idx+1:]...)
	return true
}

// reorder swaps the sequence positions of two items. This is the single-track
// "magnetic" policy: a discrete bump, never a free re-timing.
func reorder(tl *model.Timeline, draggedID, collidedID string) bool {
	i := tl.IndexOf(draggedID)
	j := tl.IndexOf(collidedID)
	if i < 0 || j < 0 || i == j {
		return false
	}
	tl.Items[i], tl.Items[j] = tl.Items[j], tl.Items[i]
	return true
}

// findCollision compares the dragged item's prospective interval against
// every other item's current interval, in current scan order, and returns the
// first overlapping neighbor.
func findCollision(tl *model.Timeline, draggedID string, prospectiveStart float64) (string, bool) {
	idx := tl.IndexOf(draggedID)
	if idx < 0 {
		return "", false
	}
	prospectiveEnd := prospectiveStart + tl.Items[idx].DurationSeconds
	var elapsed float64
	for i := range tl.Items {
		item := tl.Items[i]
		itemStart := elapsed
		itemEnd := elapsed + item.DurationSeconds
		elapsed = itemEnd
		if item.ID == draggedID {
			continue
		}
		if prospectiveStart < itemEnd && prospectiveEnd > itemStart {
			return item.ID, true
		}
	}
	return "", false
}

// applyPatch merges an id-scoped partial update into the timeline. Patches
// for ids that no longer exist are dropped (stale fill-in results). Duration
// patches only ever grow an item, and empty items never take on assets or
// generation flags.
func applyPatch(tl *model.Timeline, p model.ItemPatch) bool {
	idx := tl.IndexOf(p.ItemID)
	if idx < 0 {
		return false
	}
	item := &tl.Items[idx]

	if p.Text != nil {
		item.Text = *p.Text
	}
	if p.Notes != nil {
		item.Notes = *p.Notes
	}
	if p.Transition != nil {
		item.Transition = *p.Transition
	}
	if p.Effect != nil {
		item.Effect = *p.Effect
	}
	if p.DurationSeconds != nil && *p.DurationSeconds > item.DurationSeconds {
		item.DurationSeconds = *p.DurationSeconds
	}
	if item.Kind == model.ItemKindEmpty {
		return true
	}
	if p.ImageRef != nil {
		item.ImageRef = *p.ImageRef
	}
	if p.AudioRef != nil {
		item.AudioRef = *p.AudioRef
	}
	if p.GeneratingAudio != nil {
		item.GeneratingAudio = *p.GeneratingAudio
	}
	if p.GeneratingVisual != nil {
		item.GeneratingVisual = *p.GeneratingVisual
	}
	return true
}
