package model

// WebSocket message types
const (
	WSMessageTypeProgress   = "progress"
	WSMessageTypeItemUpdate = "item_update"
	WSMessageTypeComplete   = "complete"
	WSMessageTypeError      = "error"
	WSMessageTypePing       = "ping"
	WSMessageTypePong       = "pong"

	// Audio synchronization between the playback clock and the client-side
	// audio element.
	WSMessageTypeAudioCommand  = "audio_command"
	WSMessageTypeAudioPosition = "audio_position"
)

// Audio command verbs
const (
	AudioCommandBind  = "bind"
	AudioCommandSeek  = "seek"
	AudioCommandPlay  = "play"
	AudioCommandPause = "pause"
)

// WSMessage is the minimal envelope used for ping/pong.
type WSMessage struct {
	Type string `json:"type"`
}

// WSProgressMessage reports fill-in job progress.
type WSProgressMessage struct {
	Type        string    `json:"type"`
	JobID       string    `json:"jobId"`
	Progress    int       `json:"progress"`
	Status      JobStatus `json:"status"`
	CurrentStep string    `json:"currentStep,omitempty"`
}

// WSItemUpdateMessage pushes an applied item patch to session subscribers so
// the editor surface can refresh a single clip without refetching.
type WSItemUpdateMessage struct {
	Type   string    `json:"type"`
	ItemID string    `json:"itemId"`
	Patch  ItemPatch `json:"patch"`
}

// WSCompleteMessage signals job completion with its result.
type WSCompleteMessage struct {
	Type   string      `json:"type"`
	JobID  string      `json:"jobId"`
	Result interface{} `json:"result"`
}

// WSAudioCommandMessage instructs the client-side audio renderer.
type WSAudioCommandMessage struct {
	Type    string  `json:"type"`
	Command string  `json:"command"`
	Ref     string  `json:"ref,omitempty"`
	Offset  float64 `json:"offset,omitempty"`
}

// WSAudioPositionMessage is the client's periodic position report.
type WSAudioPositionMessage struct {
	Type     string  `json:"type"`
	Position float64 `json:"position"`
}

// WSError carries an error code and message.
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WSErrorMessage signals a job error.
type WSErrorMessage struct {
	Type  string  `json:"type"`
	JobID string  `json:"jobId"`
	Error WSError `json:"error"`
}
