package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/storyreel/api/internal/model"
	"github.com/storyreel/api/internal/timeline"
)

const sessionTTL = 30 * 24 * time.Hour

// EditorHook is called once per session when its live editor is created, so
// the caller can attach transport-level concerns (audio bridge, clock).
type EditorHook func(sessionID string, ed *timeline.Editor)

// SessionService manages storyboard session records and their live editors.
// Records live in Redis; at most one editor exists per session in this
// process, created lazily on first use.
type SessionService struct {
	redis *redis.Client

	mu       sync.Mutex
	editors  map[string]*timeline.Editor
	lastUsed map[string]time.Time
	hook     EditorHook
	release  EditorHook
}

func NewSessionService(redisClient *redis.Client) *SessionService {
	return &SessionService{
		redis:    redisClient,
		editors:  make(map[string]*timeline.Editor),
		lastUsed: make(map[string]time.Time),
	}
}

// SetEditorHook registers the per-editor setup callback. Must be called
// before any editor is created.
func (s *SessionService) SetEditorHook(hook EditorHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = hook
}

// SetEditorReleaseHook registers the teardown callback invoked whenever a
// live editor is discarded: session delete, idle eviction or shutdown.
func (s *SessionService) SetEditorReleaseHook(hook EditorHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release = hook
}

// Create builds a new session, optionally seeded with script scenes, and
// persists it.
func (s *SessionService) Create(ctx context.Context, req *model.SessionCreateRequest) (*model.Session, error) {
	now := time.Now()
	session := &model.Session{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Timeline:  seedTimeline(req.Scenes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.saveRecord(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}

func seedTimeline(scenes []model.SceneSeed) model.Timeline {
	items := make([]model.TimelineItem, 0, len(scenes))
	for _, scene := range scenes {
		duration := scene.DurationSeconds
		if duration <= 0 {
			duration = timeline.DefaultBlockSeconds
		}
		items = append(items, model.TimelineItem{
			ID:              uuid.New().String(),
			Kind:            model.ItemKindScene,
			DurationSeconds: duration,
			Text:            scene.Text,
			Notes:           scene.Notes,
			Transition:      model.TransitionCut,
		})
	}
	return model.Timeline{Items: items}
}

// Get loads a session record. The live editor, if any, supersedes the
// persisted timeline.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.getRecord(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	ed := s.editors[sessionID]
	s.mu.Unlock()
	if ed != nil {
		session.Timeline = ed.Snapshot()
	}
	return session, nil
}

// List returns summaries for all known sessions.
func (s *SessionService) List(ctx context.Context) ([]model.SessionResponse, error) {
	ids, err := s.redis.SMembers(ctx, "sessions").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	summaries := make([]model.SessionResponse, 0, len(ids))
	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if err != nil {
			// Expired record still in the set; drop the reference.
			s.redis.SRem(ctx, "sessions", id)
			continue
		}
		summaries = append(summaries, model.SessionResponse{
			ID:        session.ID,
			Name:      session.Name,
			ItemCount: len(session.Timeline.Items),
			Duration:  session.Timeline.ContentDuration(),
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}
	return summaries, nil
}

// Editor returns the live editor for a session, creating it from the
// persisted record on first use.
func (s *SessionService) Editor(ctx context.Context, sessionID string) (*timeline.Editor, error) {
	s.mu.Lock()
	if ed, ok := s.editors[sessionID]; ok {
		s.lastUsed[sessionID] = time.Now()
		s.mu.Unlock()
		return ed, nil
	}
	hook := s.hook
	s.mu.Unlock()

	session, err := s.getRecord(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have raced us here.
	if ed, ok := s.editors[sessionID]; ok {
		s.lastUsed[sessionID] = time.Now()
		return ed, nil
	}
	ed := timeline.NewEditor(session.Timeline)
	if hook != nil {
		hook(sessionID, ed)
	}
	ed.StartClock()
	s.editors[sessionID] = ed
	s.lastUsed[sessionID] = time.Now()
	return ed, nil
}

// Save persists the live editor's timeline back into the session record.
// Generation flags are transient and stripped before writing.
func (s *SessionService) Save(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.getRecord(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	ed := s.editors[sessionID]
	s.mu.Unlock()
	if ed != nil {
		tl := ed.Snapshot()
		for i := range tl.Items {
			tl.Items[i].GeneratingAudio = false
			tl.Items[i].GeneratingVisual = false
		}
		session.Timeline = tl
	}

	session.UpdatedAt = time.Now()
	if err := s.saveRecord(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}

// Delete removes a session record and tears down its live editor. The editor
// is released even when the record is already gone (expired TTL).
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	s.releaseLocked(sessionID)
	s.mu.Unlock()

	if _, err := s.getRecord(ctx, sessionID); err != nil {
		return err
	}

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return err
	}
	return s.redis.SRem(ctx, "sessions", sessionID).Err()
}

// EvictIdle releases editors that have not served a request for maxIdle,
// persisting their timelines first. Editors that are currently playing are
// kept regardless of age. Returns how many editors were released.
func (s *SessionService) EvictIdle(ctx context.Context, maxIdle time.Duration) int {
	now := time.Now()

	s.mu.Lock()
	var victims []string
	for id, ed := range s.editors {
		if now.Sub(s.lastUsed[id]) < maxIdle {
			continue
		}
		if ed.State().Playback.IsPlaying {
			continue
		}
		victims = append(victims, id)
	}
	s.mu.Unlock()

	released := 0
	for _, id := range victims {
		// Flush unsaved edits. A missing record is not a reason to keep the
		// editor alive.
		_, _ = s.Save(ctx, id)

		s.mu.Lock()
		// A request may have touched the editor since the scan.
		if ts, ok := s.lastUsed[id]; ok && now.Sub(ts) >= maxIdle {
			s.releaseLocked(id)
			released++
		}
		s.mu.Unlock()
	}
	return released
}

// Close tears down every live editor. Called on shutdown.
func (s *SessionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.editors {
		s.releaseLocked(id)
	}
}

// releaseLocked stops an editor's clock, runs the release hook and drops the
// registry entries. Callers hold s.mu.
func (s *SessionService) releaseLocked(sessionID string) {
	ed, ok := s.editors[sessionID]
	if !ok {
		return
	}
	ed.StopClock()
	if s.release != nil {
		s.release(sessionID, ed)
	}
	delete(s.editors, sessionID)
	delete(s.lastUsed, sessionID)
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *SessionService) saveRecord(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, sessionKey(session.ID), data, sessionTTL).Err(); err != nil {
		return err
	}
	return s.redis.SAdd(ctx, "sessions", session.ID).Err()
}

func (s *SessionService) getRecord(ctx context.Context, sessionID string) (*model.Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("session not found")
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
