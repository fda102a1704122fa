package model

// Item kinds
type ItemKind string

const (
	ItemKindScene ItemKind = "scene"
	ItemKindEmpty ItemKind = "empty"
)

// Transition describes how playback enters an item.
type Transition string

const (
	TransitionCut      Transition = "cut"
	TransitionFade     Transition = "fade"
	TransitionDissolve Transition = "dissolve"
	TransitionWipe     Transition = "wipe"
)

var ValidTransitions = []Transition{
	TransitionCut, TransitionFade, TransitionDissolve, TransitionWipe,
}

// Effect is a ken-burns style presentation effect applied while playing.
type Effect string

const (
	EffectZoomIn   Effect = "zoom-in"
	EffectZoomOut  Effect = "zoom-out"
	EffectPanLeft  Effect = "pan-left"
	EffectPanRight Effect = "pan-right"
	EffectStatic   Effect = "static"
)

var ValidEffects = []Effect{
	EffectZoomIn, EffectZoomOut, EffectPanLeft, EffectPanRight, EffectStatic,
}

// Job status
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Asset kinds requested during fill-in
type AssetKind string

const (
	AssetKindAudio  AssetKind = "audio"
	AssetKindVisual AssetKind = "visual"
)
