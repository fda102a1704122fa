package model

import "time"

// Job represents a background fill-in job.
type Job struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error,omitempty"`
	Payload     []byte     `json:"payload,omitempty"` // JSON, base64 in the record
	Result      []byte     `json:"result,omitempty"`  // JSON, base64 in the record
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	RetryCount  int        `json:"retryCount"`
}

// Job types
const (
	JobTypeFillIn = "fillin"
)

// FillInJobPayload contains the data for a fill-in job.
type FillInJobPayload struct {
	SessionID     string `json:"sessionId"`
	AssignEffects bool   `json:"assignEffects"`
}

// FillInResult is the result of a completed fill-in job.
type FillInResult struct {
	SessionID       string    `json:"sessionId"`
	AudioGenerated  int       `json:"audioGenerated"`
	AudioFailed     int       `json:"audioFailed"`
	VisualGenerated int       `json:"visualGenerated"`
	VisualFailed    int       `json:"visualFailed"`
	ContentDuration float64   `json:"contentDuration"`
	CompletedAt     time.Time `json:"completedAt"`
}
