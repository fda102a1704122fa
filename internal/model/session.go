package model

import "time"

// ChatMessage is one entry of the session's chat/context history. The core
// never interprets these; they ride along with the timeline in the session
// record.
type ChatMessage struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sentAt"`
}

// Session is the opaque named record persisted per storyboard: the timeline
// plus its chat context. Generation flags are stripped before persisting.
type Session struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Timeline  Timeline      `json:"timeline"`
	Chat      []ChatMessage `json:"chat,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
