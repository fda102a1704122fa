package timeline

import (
	"math"
	"time"
)

// Playback clock constants. Each tick is a fast synchronous state update; the
// editor mutex guarantees a tick is never re-entered while a prior one runs.
const (
	TickInterval = 100 * time.Millisecond
	tickSeconds  = 0.1
	// driftThresholdSeconds is the tolerated gap between the audio handle's
	// reported position and the expected intra-item offset before forcing a
	// hard seek. Constant micro-seeking causes audible stutter.
	driftThresholdSeconds = 0.3
)

// AudioHandle is the external audio-rendering handle driven by the playback
// synchronizer. No other component touches it.
type AudioHandle interface {
	// Bind points the handle at a generated audio asset.
	Bind(ref string)
	// BoundRef reports the asset the handle is currently bound to, or "".
	BoundRef() string
	// SeekTo hard-seeks to an intra-asset offset in seconds.
	SeekTo(offset float64)
	// Position reports the handle's current intra-asset position in seconds.
	Position() float64
	Play()
	Pause()
}

// Play starts playback from the current play-head position.
func (e *Editor) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playback.IsPlaying = true
	e.syncAudioLocked()
}

// Pause stops playback, keeping the play-head where it is.
func (e *Editor) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playback.IsPlaying = false
	e.syncAudioLocked()
}

// TogglePlay flips between Playing and Stopped.
func (e *Editor) TogglePlay() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playback.IsPlaying = !e.playback.IsPlaying
	e.syncAudioLocked()
}

// Seek moves the play-head, clamped to [0, totalDuration].
func (e *Editor) Seek(t float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seekLocked(t)
}

// Tick advances playback by one clock period. Reaching or passing the end of
// content stops playback and resets the play-head to 0 — loop-to-start on
// stop, not continuous looping.
func (e *Editor) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.playback.IsPlaying {
		return
	}

	e.playback.CurrentTime += tickSeconds
	if e.playback.CurrentTime >= e.timeline.ContentDuration() {
		e.playback.IsPlaying = false
		e.playback.CurrentTime = 0
		if e.audio != nil {
			e.audio.Pause()
		}
		return
	}
	e.syncAudioLocked()
}

// syncAudioLocked keeps the external audio handle aligned with the active
// item. Rebinding always hard-seeks; an already correct binding is only
// re-seeked when drift exceeds the threshold.
func (e *Editor) syncAudioLocked() {
	if e.audio == nil {
		return
	}
	if !e.playback.IsPlaying {
		e.audio.Pause()
		return
	}

	idx, start, ok := itemAt(&e.timeline, e.playback.CurrentTime)
	if !ok || e.timeline.Items[idx].AudioRef == "" {
		e.audio.Pause()
		return
	}

	ref := e.timeline.Items[idx].AudioRef
	offset := e.playback.CurrentTime - start
	if e.audio.BoundRef() != ref {
		e.audio.Bind(ref)
		e.audio.SeekTo(offset)
		e.audio.Play()
		return
	}
	if math.Abs(e.audio.Position()-offset) > driftThresholdSeconds {
		e.audio.SeekTo(offset)
	}
	e.audio.Play()
}

// StartClock launches the periodic tick driving playback. Idempotent.
func (e *Editor) StartClock() {
	e.mu.Lock()
	if e.clockStop != nil {
		e.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	e.clockStop = stop
	e.mu.Unlock()

	go func() {
		ticker := time.NewTicker(TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e.Tick()
			}
		}
	}()
}

// StopClock halts the periodic tick. Idempotent.
func (e *Editor) StopClock() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.clockStop != nil {
		close(e.clockStop)
		e.clockStop = nil
	}
}
