package model

// Selection is a transient half-open time range [Start, End) in absolute
// timeline seconds. It is cleared after being consumed by an edit or a plain
// click.
type Selection struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Length returns the absolute length of the selection in seconds.
func (s Selection) Length() float64 {
	if s.End >= s.Start {
		return s.End - s.Start
	}
	return s.Start - s.End
}

// Normalized returns the selection with Start <= End.
func (s Selection) Normalized() Selection {
	if s.End < s.Start {
		return Selection{Start: s.End, End: s.Start}
	}
	return s
}

// DragState exists only during an active pointer-drag gesture.
type DragState struct {
	ItemID string `json:"itemId"`
	// Offset of the initial grab point from the item's start, in seconds.
	PointerOffset float64 `json:"pointerOffsetWithinItem"`
}

// PlaybackState is created at editor start and mutated by the clock tick and
// by click/drag resolution. CurrentTime is always clamped to
// [0, totalDuration].
type PlaybackState struct {
	CurrentTime float64 `json:"currentTime"`
	IsPlaying   bool    `json:"isPlaying"`
}

// EditorState is the full externally visible state of one editor instance.
type EditorState struct {
	Timeline  Timeline      `json:"timeline"`
	Playback  PlaybackState `json:"playback"`
	ZoomLevel float64       `json:"zoomLevel"`
	Selection *Selection    `json:"selection,omitempty"`
	Drag      *DragState    `json:"drag,omitempty"`
}
