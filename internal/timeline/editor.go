package timeline

import (
	"sync"

	"github.com/storyreel/api/internal/model"
)

type gesturePhase int

const (
	gestureIdle gesturePhase = iota
	gestureDragging
	gestureSelecting
)

// Editor is the single-writer owner of one storyboard's editing state:
// timeline, playback, zoom, selection and drag. Every mutation — gesture
// resolution, explicit edit operations, clock ticks and fill-in patches —
// serializes through its mutex, so no two writers ever interleave a
// structural edit.
type Editor struct {
	mu sync.Mutex

	timeline  model.Timeline
	playback  model.PlaybackState
	zoom      float64
	selection *model.Selection
	drag      *model.DragState
	gesture   gesturePhase

	audio AudioHandle

	clockStop chan struct{}
}

// NewEditor creates an editor owning the given timeline.
func NewEditor(tl model.Timeline) *Editor {
	return &Editor{
		timeline: tl,
		zoom:     1.0,
	}
}

// SetAudioHandle attaches the external audio-rendering handle. The handle is
// exclusively owned by the editor's playback synchronizer from then on.
func (e *Editor) SetAudioHandle(h AudioHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.audio = h
}

// State returns a deep copy of the externally visible editor state.
func (e *Editor) State() model.EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := model.EditorState{
		Timeline:  e.snapshotLocked(),
		Playback:  e.playback,
		ZoomLevel: e.zoom,
	}
	if e.selection != nil {
		sel := *e.selection
		st.Selection = &sel
	}
	if e.drag != nil {
		drag := *e.drag
		st.Drag = &drag
	}
	return st
}

// Snapshot returns a deep copy of the current timeline.
func (e *Editor) Snapshot() model.Timeline {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Editor) snapshotLocked() model.Timeline {
	items := make([]model.TimelineItem, len(e.timeline.Items))
	copy(items, e.timeline.Items)
	return model.Timeline{Items: items}
}

// ItemAt resolves the item containing the given absolute time.
func (e *Editor) ItemAt(t float64) (model.TimelineItem, float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx, start, ok := itemAt(&e.timeline, t)
	if !ok {
		return model.TimelineItem{}, 0, false
	}
	return e.timeline.Items[idx], start, true
}

// InsertBlock draws a new empty block over [start, end) and moves the
// play-head to the block's start. Requests under the 0.5s floor are defined
// as seeks, not edits, which ties play-head movement to ordinary clicks.
func (e *Editor) InsertBlock(start, end float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.insertBlockLocked(start, end)
}

func (e *Editor) insertBlockLocked(start, end float64) {
	if end < start {
		start, end = end, start
	}
	if end-start < MinBlockSeconds {
		e.seekLocked(start)
		return
	}
	insertBlock(&e.timeline, start, end)
	e.seekLocked(start)
}

// InsertBlockAt inserts a default 5s empty block before the item at index.
func (e *Editor) InsertBlockAt(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	insertBlockAt(&e.timeline, index)
}

// RemoveRange removes every item whose midpoint falls inside [start, end).
func (e *Editor) RemoveRange(start, end float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	removeRange(&e.timeline, start, end)
	e.clampPlayheadLocked()
}

// RemoveItem removes a single item by id. Unknown ids are a no-op.
func (e *Editor) RemoveItem(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ok := removeItem(&e.timeline, id)
	e.clampPlayheadLocked()
	return ok
}

// Reorder swaps two items' sequence positions.
func (e *Editor) Reorder(draggedID, collidedID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return reorder(&e.timeline, draggedID, collidedID)
}

// ApplyPatch merges an id-scoped partial update. Returns false when the
// target item no longer exists and the patch was dropped.
func (e *Editor) ApplyPatch(p model.ItemPatch) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return applyPatch(&e.timeline, p)
}

// TotalDuration returns the current canvas length (content plus run-out).
func (e *Editor) TotalDuration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return TotalDuration(&e.timeline)
}

// ZoomLevel returns the current zoom multiplier.
func (e *Editor) ZoomLevel() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.zoom
}

func (e *Editor) seekLocked(t float64) {
	total := TotalDuration(&e.timeline)
	if t < 0 {
		t = 0
	}
	if t > total {
		t = total
	}
	e.playback.CurrentTime = t
	e.syncAudioLocked()
}

func (e *Editor) clampPlayheadLocked() {
	total := TotalDuration(&e.timeline)
	if e.playback.CurrentTime > total {
		e.playback.CurrentTime = total
	}
}
