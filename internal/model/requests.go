package model

import "time"

// SceneSeed is one scene of an initial script used to seed a new session's
// timeline.
type SceneSeed struct {
	Text            string  `json:"text" validate:"required,min=1,max=2000"`
	Notes           string  `json:"notes" validate:"omitempty,max=2000"`
	DurationSeconds float64 `json:"durationSeconds" validate:"omitempty,gt=0,max=600"`
}

// SessionCreateRequest creates a new storyboard session, optionally seeded
// with scenes.
type SessionCreateRequest struct {
	Name   string      `json:"name" validate:"required,min=1,max=200"`
	Scenes []SceneSeed `json:"scenes" validate:"omitempty,max=100,dive"`
}

// SessionResponse is returned for create/get/save.
type SessionResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ItemCount int       `json:"itemCount"`
	Duration  float64   `json:"duration"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InsertBlockRequest draws a new empty block over [start, end). Requests
// shorter than the 0.5s floor are treated as a seek.
type InsertBlockRequest struct {
	Start float64 `json:"start" validate:"min=0"`
	End   float64 `json:"end" validate:"min=0"`
}

// InsertBlockAtRequest inserts a default 5s empty block before the item at
// Index.
type InsertBlockAtRequest struct {
	Index int `json:"index" validate:"min=0"`
}

// RemoveRangeRequest removes every item whose midpoint falls inside
// [start, end).
type RemoveRangeRequest struct {
	Start float64 `json:"start" validate:"min=0"`
	End   float64 `json:"end" validate:"min=0,gtefield=Start"`
}

// UpdateItemRequest carries user-authored edits for a single item.
type UpdateItemRequest struct {
	Text       *string     `json:"text" validate:"omitempty,max=2000"`
	Notes      *string     `json:"notes" validate:"omitempty,max=2000"`
	Transition *Transition `json:"transition" validate:"omitempty,oneof=cut fade dissolve wipe"`
	Effect     *Effect     `json:"effect" validate:"omitempty,oneof=zoom-in zoom-out pan-left pan-right static"`
}

// PointerEventRequest is a raw pointer event in normalized gesture-surface
// coordinates: X is the horizontal fraction of the rendered track width,
// Y the vertical fraction of the track height, both in [0,1]. X may exceed
// [0,1] when the pointer leaves the surface mid-gesture.
type PointerEventRequest struct {
	Phase string  `json:"phase" validate:"required,oneof=down move up"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	// InBounds is false when the pointer has left the gesture surface.
	InBounds bool `json:"inBounds"`
}

// DoubleClickRequest is the stateless double-click gesture.
type DoubleClickRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// KeyEventRequest is a global keyboard shortcut event.
type KeyEventRequest struct {
	Key string `json:"key" validate:"required"`
	// Ctrl covers both Ctrl and Cmd.
	Ctrl bool `json:"ctrl"`
	// TextInputFocused suppresses all shortcuts.
	TextInputFocused bool `json:"textInputFocused"`
}

// PlaybackRequest controls the playback synchronizer.
type PlaybackRequest struct {
	Action string   `json:"action" validate:"required,oneof=play pause toggle seek"`
	Time   *float64 `json:"time" validate:"omitempty,min=0"`
}

// FillInStartRequest starts a fill-in job for a session.
type FillInStartRequest struct {
	SessionID     string `json:"sessionId" validate:"required,uuid"`
	AssignEffects bool   `json:"assignEffects"`
}

// FillInStartResponse is returned when a fill-in job is queued.
type FillInStartResponse struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// JobStatusResponse reports a job's progress.
type JobStatusResponse struct {
	JobID       string     `json:"jobId"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
	RetryCount  int        `json:"retryCount"`
}

// ExportRequest exports a session's timeline as FCPXML.
type ExportRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
}

// TimelineResponse is the render-facing view of the editor: items with their
// derived absolute start times, playback state and zoom.
type TimelineResponse struct {
	Items         []TimelineItemView `json:"items"`
	TotalDuration float64            `json:"totalDuration"`
	Playback      PlaybackState      `json:"playback"`
	ZoomLevel     float64            `json:"zoomLevel"`
	Selection     *Selection         `json:"selection,omitempty"`
}

// TimelineItemView is a TimelineItem plus its derived start time.
type TimelineItemView struct {
	TimelineItem
	Start float64 `json:"start"`
}
