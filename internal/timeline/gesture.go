package timeline

import "github.com/storyreel/api/internal/model"

// The creation band is the middle 60% of the track's height: pointer-downs in
// the top or bottom 20% margins that miss every item are ignored for editing.
const (
	creationBandTop    = 0.2
	creationBandBottom = 0.8
)

// PointerDown begins a gesture. x and y are normalized gesture-surface
// coordinates: x maps over the timeline canvas, y over the track height.
// A down inside an existing item starts a drag and immediately seeks there,
// so a click without movement already registers as a seek. A down in the
// creation band outside any item starts a range selection. Anything else is
// ignored.
func (e *Editor) PointerDown(x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := FractionToTime(x, TotalDuration(&e.timeline))
	if idx, start, ok := itemAt(&e.timeline, t); ok {
		e.drag = &model.DragState{
			ItemID:        e.timeline.Items[idx].ID,
			PointerOffset: t - start,
		}
		e.gesture = gestureDragging
		e.seekLocked(t)
		return
	}

	if y >= creationBandTop && y <= creationBandBottom {
		e.selection = &model.Selection{Start: t, End: t}
		e.gesture = gestureSelecting
		return
	}
	// Margin click: no gesture.
}

// PointerMove advances the active gesture. While dragging, the candidate new
// start follows the pointer anchored by the original grab offset, and
// collision detection re-runs on every move so the dragged item hops past
// obstacles instead of overlapping them. While selecting, the selection end
// tracks the pointer but freezes at its last in-bounds value once the pointer
// leaves the surface.
func (e *Editor) PointerMove(x, y float64, inBounds bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.gesture {
	case gestureDragging:
		if e.drag == nil {
			return
		}
		t := FractionToTime(x, TotalDuration(&e.timeline))
		candidate := t - e.drag.PointerOffset
		if candidate < 0 {
			candidate = 0
		}
		if collidedID, ok := findCollision(&e.timeline, e.drag.ItemID, candidate); ok {
			reorder(&e.timeline, e.drag.ItemID, collidedID)
		}

	case gestureSelecting:
		if e.selection == nil || !inBounds {
			return
		}
		e.selection.End = FractionToTime(x, TotalDuration(&e.timeline))
	}
}

// PointerUp resolves the active gesture. Drags end without further mutation
// (reorders already happened during movement). Selections above the 0.5s
// floor become inserted blocks; shorter ones are a plain seek to the
// selection anchor. The selection is cleared either way.
func (e *Editor) PointerUp() {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.gesture {
	case gestureDragging:
		e.drag = nil

	case gestureSelecting:
		if e.selection != nil {
			sel := e.selection.Normalized()
			if sel.Length() > MinBlockSeconds {
				e.insertBlockLocked(sel.Start, sel.End)
			} else {
				e.seekLocked(e.selection.Start)
			}
			e.selection = nil
		}
	}
	e.gesture = gestureIdle
}

// DoubleClick is a separate, stateless gesture: it inserts a default 5s
// block at the clicked time, unless that time falls inside an existing item.
func (e *Editor) DoubleClick(x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := FractionToTime(x, TotalDuration(&e.timeline))
	if _, _, ok := itemAt(&e.timeline, t); ok {
		return
	}
	e.insertBlockLocked(t, t+DefaultBlockSeconds)
}

// Key handles global keyboard shortcuts. All shortcuts are suppressed while
// a text input has focus.
func (e *Editor) Key(key string, ctrl, textInputFocused bool) {
	if textInputFocused {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch key {
	case " ", "Space":
		e.playback.IsPlaying = !e.playback.IsPlaying
		e.syncAudioLocked()

	case "Delete", "Backspace":
		if e.selection != nil && e.selection.Length() > sliverSeconds {
			sel := e.selection.Normalized()
			removeRange(&e.timeline, sel.Start, sel.End)
			e.selection = nil
			e.clampPlayheadLocked()
			return
		}
		if idx, _, ok := itemAt(&e.timeline, e.playback.CurrentTime); ok {
			removeItem(&e.timeline, e.timeline.Items[idx].ID)
			e.clampPlayheadLocked()
		}

	case "=", "+":
		if ctrl {
			e.zoom = ClampZoom(e.zoom * ZoomStep)
		}

	case "-", "_":
		if ctrl {
			e.zoom = ClampZoom(e.zoom / ZoomStep)
		}
	}
}
