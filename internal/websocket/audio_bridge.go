package websocket

import (
	"sync"
	"time"

	"github.com/storyreel/api/internal/model"
)

// AudioBridge implements the playback synchronizer's audio handle over the
// session's websocket topic: commands go out as audio_command messages, and
// the client's audio_position reports flow back in through the hub reader.
// Between reports the position is extrapolated from wall-clock time so the
// drift check stays meaningful.
type AudioBridge struct {
	hub   *Hub
	topic string

	mu         sync.Mutex
	boundRef   string
	position   float64
	reportedAt time.Time
	playing    bool
}

// NewAudioBridge creates and registers a bridge for a session. The returned
// bridge is exclusively driven by one editor's playback synchronizer.
func NewAudioBridge(hub *Hub, sessionID string) *AudioBridge {
	b := &AudioBridge{
		hub:        hub,
		topic:      SessionTopic(sessionID),
		reportedAt: time.Now(),
	}
	hub.mu.Lock()
	hub.bridges[b.topic] = b
	hub.mu.Unlock()
	return b
}

// Close detaches the bridge from the hub.
func (b *AudioBridge) Close() {
	b.hub.mu.Lock()
	delete(b.hub.bridges, b.topic)
	b.hub.mu.Unlock()
}

func (b *AudioBridge) send(command, ref string, offset float64) {
	b.hub.Broadcast(b.topic, model.WSAudioCommandMessage{
		Type:    model.WSMessageTypeAudioCommand,
		Command: command,
		Ref:     ref,
		Offset:  offset,
	})
}

func (b *AudioBridge) reportPosition(position float64) {
	b.mu.Lock()
	b.position = position
	b.reportedAt = time.Now()
	b.mu.Unlock()
}

// Bind points the client audio element at an asset.
func (b *AudioBridge) Bind(ref string) {
	b.mu.Lock()
	b.boundRef = ref
	b.position = 0
	b.reportedAt = time.Now()
	b.mu.Unlock()
	b.send(model.AudioCommandBind, ref, 0)
}

// BoundRef reports the asset the bridge is currently bound to.
func (b *AudioBridge) BoundRef() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.boundRef
}

// SeekTo hard-seeks the client audio element.
func (b *AudioBridge) SeekTo(offset float64) {
	b.mu.Lock()
	b.position = offset
	b.reportedAt = time.Now()
	b.mu.Unlock()
	b.send(model.AudioCommandSeek, "", offset)
}

// Position extrapolates the last reported position.
func (b *AudioBridge) Position() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.playing {
		return b.position
	}
	return b.position + time.Since(b.reportedAt).Seconds()
}

// Play resumes the client audio element.
func (b *AudioBridge) Play() {
	b.mu.Lock()
	already := b.playing
	if !already {
		b.playing = true
		b.reportedAt = time.Now()
	}
	b.mu.Unlock()
	if !already {
		b.send(model.AudioCommandPlay, "", 0)
	}
}

// Pause halts the client audio element.
func (b *AudioBridge) Pause() {
	b.mu.Lock()
	already := !b.playing
	if !already {
		// Fold elapsed wall-clock into the stored position before stopping.
		b.position += time.Since(b.reportedAt).Seconds()
		b.reportedAt = time.Now()
		b.playing = false
	}
	b.mu.Unlock()
	if !already {
		b.send(model.AudioCommandPause, "", 0)
	}
}
