package model

// TimelineItem is one clip on the single-track timeline. An "empty" item is a
// placeholder awaiting user-authored context and never carries generated
// assets.
type TimelineItem struct {
	ID              string     `json:"id"`
	Kind            ItemKind   `json:"kind"`
	DurationSeconds float64    `json:"durationSeconds"`
	Text            string     `json:"text,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	ImageRef        string     `json:"imageRef,omitempty"`
	AudioRef        string     `json:"audioRef,omitempty"`
	Transition      Transition `json:"transition"`
	Effect          Effect     `json:"effect,omitempty"`

	// Transient generation progress flags. Never persisted across sessions.
	GeneratingAudio  bool `json:"isGeneratingAudio,omitempty"`
	GeneratingVisual bool `json:"isGeneratingVisual,omitempty"`
}

// Timeline is the ordered, contiguous sequence of items. Order is screen-time
// order: item i starts at the sum of durations of items 0..i-1.
type Timeline struct {
	Items []TimelineItem `json:"items"`
}

// ContentDuration returns the sum of all item durations.
func (t *Timeline) ContentDuration() float64 {
	var total float64
	for i := range t.Items {
		total += t.Items[i].DurationSeconds
	}
	return total
}

// StartOf returns the absolute start time of the item at index i.
func (t *Timeline) StartOf(i int) float64 {
	var start float64
	for j := 0; j < i && j < len(t.Items); j++ {
		start += t.Items[j].DurationSeconds
	}
	return start
}

// IndexOf returns the position of the item with the given id, or -1.
func (t *Timeline) IndexOf(id string) int {
	for i := range t.Items {
		if t.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// ItemPatch is an id-scoped partial update merged into the timeline by the
// editor. Nil fields are left untouched. Patches for ids that no longer exist
// are dropped.
type ItemPatch struct {
	ItemID           string      `json:"itemId"`
	Text             *string     `json:"text,omitempty"`
	Notes            *string     `json:"notes,omitempty"`
	ImageRef         *string     `json:"imageRef,omitempty"`
	AudioRef         *string     `json:"audioRef,omitempty"`
	Transition       *Transition `json:"transition,omitempty"`
	Effect           *Effect     `json:"effect,omitempty"`
	DurationSeconds  *float64    `json:"durationSeconds,omitempty"`
	GeneratingAudio  *bool       `json:"isGeneratingAudio,omitempty"`
	GeneratingVisual *bool       `json:"isGeneratingVisual,omitempty"`
}
