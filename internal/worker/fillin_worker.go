package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/storyreel/api/internal/client"
	"github.com/storyreel/api/internal/model"
	"github.com/storyreel/api/internal/service"
	"github.com/storyreel/api/internal/timeline"
	"github.com/storyreel/api/internal/websocket"
)

// FillInWorker processes fill-in jobs
type FillInWorker struct {
	fillInService *service.FillInService
	sessions      *service.SessionService
	speechClient  *client.SpeechClient
	imageClient   *client.ImageClient
	hub           *websocket.Hub
}

// NewFillInWorker creates a new fill-in worker
func NewFillInWorker(fillInService *service.FillInService, sessions *service.SessionService, speechClient *client.SpeechClient, imageClient *client.ImageClient, hub *websocket.Hub) *FillInWorker {
	return &FillInWorker{
		fillInService: fillInService,
		sessions:      sessions,
		speechClient:  speechClient,
		imageClient:   imageClient,
		hub:           hub,
	}
}

// ProcessTask handles fill-in task processing
func (w *FillInWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var taskPayload struct {
		JobID   string          `json:"jobId"`
		Payload json.RawMessage `json:"payload"`
	}

	if err := json.Unmarshal(t.Payload(), &taskPayload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	jobID := taskPayload.JobID
	log.Printf("Starting fill-in job: %s", jobID)

	var payload model.FillInJobPayload
	if err := json.Unmarshal(taskPayload.Payload, &payload); err != nil {
		w.failJob(ctx, jobID, "Invalid payload")
		return fmt.Errorf("failed to unmarshal fill-in payload: %w", err)
	}

	editor, err := w.sessions.Editor(ctx, payload.SessionID)
	if err != nil {
		w.failJob(ctx, jobID, fmt.Sprintf("Session unavailable: %v", err))
		return err
	}

	w.updateProgress(ctx, jobID, 0, "Scanning timeline...")

	orch := timeline.NewOrchestrator(editor, w.speech(), w.images())
	orch.OnPatch(func(p model.ItemPatch) {
		w.hub.BroadcastItemUpdate(payload.SessionID, p)
	})
	orch.OnProgress(func(done, total int) {
		progress := done * 100 / total
		step := fmt.Sprintf("Generating assets (%d/%d)...", done, total)
		w.updateProgress(ctx, jobID, progress, step)
	})

	stats := orch.Run(ctx, payload.AssignEffects)

	// Persist the filled timeline so a restart doesn't lose the refs.
	if _, err := w.sessions.Save(ctx, payload.SessionID); err != nil {
		log.Printf("Failed to persist session %s after fill-in: %v", payload.SessionID, err)
	}

	snapshot := editor.Snapshot()
	result := &model.FillInResult{
		SessionID:       payload.SessionID,
		AudioGenerated:  stats.AudioGenerated,
		AudioFailed:     stats.AudioFailed,
		VisualGenerated: stats.VisualGenerated,
		VisualFailed:    stats.VisualFailed,
		ContentDuration: snapshot.ContentDuration(),
		CompletedAt:     time.Now(),
	}

	if err := w.fillInService.CompleteJob(ctx, jobID, result); err != nil {
		w.failJob(ctx, jobID, "Failed to save result")
		return err
	}

	w.hub.BroadcastComplete(jobID, result)
	log.Printf("Fill-in job %s completed: %d audio, %d visual, %d failed",
		jobID, stats.AudioGenerated, stats.VisualGenerated, stats.AudioFailed+stats.VisualFailed)
	return nil
}

// speech returns the synthesizer backing fill-in audio, falling back to a
// deterministic mock when no TTS service is configured.
func (w *FillInWorker) speech() timeline.SpeechSynthesizer {
	if w.speechClient == nil || !w.speechClient.IsConfigured() {
		return &mockSpeech{}
	}
	return &speechAdapter{client: w.speechClient}
}

// images returns the generator backing fill-in visuals, falling back to a
// mock when no image service is configured.
func (w *FillInWorker) images() timeline.ImageGenerator {
	if w.imageClient == nil || !w.imageClient.IsConfigured() {
		return &mockImages{}
	}
	return &imageAdapter{client: w.imageClient}
}

type speechAdapter struct {
	client *client.SpeechClient
}

func (a *speechAdapter) Synthesize(ctx context.Context, text string) (string, float64, error) {
	resp, err := a.client.Synthesize(ctx, &client.SynthesizeRequest{Text: text})
	if err != nil {
		return "", 0, err
	}
	return resp.AudioURL, resp.Duration, nil
}

type imageAdapter struct {
	client *client.ImageClient
}

func (a *imageAdapter) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.GenerateImage(ctx, &client.GenerateImageRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}
	return resp.ImageURL, nil
}

// mockSpeech fakes narration for development. Duration scales with word
// count at a rough reading pace.
type mockSpeech struct{}

func (m *mockSpeech) Synthesize(ctx context.Context, text string) (string, float64, error) {
	select {
	case <-ctx.Done():
		return "", 0, ctx.Err()
	case <-time.After(200 * time.Millisecond):
	}

	words := len(strings.Fields(text))
	duration := 0.5 + float64(words)*0.4
	if duration < 1 {
		duration = 1
	}
	return fmt.Sprintf("mock://audio/%s.mp3", uuid.New().String()), duration, nil
}

// mockImages fakes still-image generation for development.
type mockImages struct{}

func (m *mockImages) GenerateImage(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(300 * time.Millisecond):
	}
	return fmt.Sprintf("mock://image/%s.png", uuid.New().String()), nil
}

func (w *FillInWorker) updateProgress(ctx context.Context, jobID string, progress int, step string) {
	if err := w.fillInService.UpdateJobProgress(ctx, jobID, progress, step); err != nil {
		log.Printf("Failed to update progress: %v", err)
	}
	w.hub.BroadcastProgress(jobID, progress, model.JobStatusRunning, step)
}

func (w *FillInWorker) failJob(ctx context.Context, jobID, errMsg string) {
	if err := w.fillInService.FailJob(ctx, jobID, errMsg); err != nil {
		log.Printf("Failed to mark job as failed: %v", err)
	}
	w.hub.BroadcastError(jobID, "FILLIN_FAILED", errMsg)
}
