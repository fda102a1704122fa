package timeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/storyreel/api/internal/model"
)

// fakeSpeech synthesizes deterministic assets, optionally failing per text.
type fakeSpeech struct {
	mu       sync.Mutex
	duration float64
	failFor  map[string]bool
	calls    int
	barrier  chan struct{} // when set, Synthesize blocks until closed
}

func (f *fakeSpeech) Synthesize(ctx context.Context, text string) (string, float64, error) {
	if f.barrier != nil {
		<-f.barrier
	}
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.failFor[text] {
		return "", 0, errors.New("speech service unavailable")
	}
	return "audio://" + text, f.duration, nil
}

type fakeImages struct {
	mu      sync.Mutex
	failFor map[string]bool
	calls   int
	prompts []string
}

func (f *fakeImages) GenerateImage(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.failFor[prompt] {
		return "", errors.New("image service unavailable")
	}
	return "image://" + prompt, nil
}

func TestFillInGeneratesMissingAssets(t *testing.T) {
	a := scene("a", 3)
	b := scene("b", 4)
	b.AudioRef = "audio://existing"
	empty := newEmptyItem(5)
	e := NewEditor(timelineOf(a, b, empty))

	speech := &fakeSpeech{duration: 2}
	images := &fakeImages{}
	orch := NewOrchestrator(e, speech, images)

	stats := orch.Run(context.Background(), false)

	// a needs audio+visual, b only visual, empty nothing.
	if stats.AudioGenerated != 1 || stats.VisualGenerated != 2 {
		t.Errorf("stats = %+v, want 1 audio and 2 visuals", stats)
	}
	snap := e.Snapshot()
	if snap.Items[0].AudioRef == "" || snap.Items[0].ImageRef == "" {
		t.Errorf("item a missing assets: %+v", snap.Items[0])
	}
	if snap.Items[1].AudioRef != "audio://existing" {
		t.Error("existing audio asset must not be replaced")
	}
	if snap.Items[2].AudioRef != "" || snap.Items[2].ImageRef != "" {
		t.Error("empty items must not receive assets")
	}
	for i := range snap.Items {
		if snap.Items[i].GeneratingAudio || snap.Items[i].GeneratingVisual {
			t.Errorf("generation flags must clear after completion: %+v", snap.Items[i])
		}
	}
}

func TestFillInGrowsDurationToCeiling(t *testing.T) {
	e := NewEditor(timelineOf(scene("a", 3)))
	orch := NewOrchestrator(e, &fakeSpeech{duration: 4.2}, &fakeImages{})

	orch.Run(context.Background(), false)

	if got := e.Snapshot().Items[0].DurationSeconds; got != 5 {
		t.Errorf("duration = %v, want ceil(4.2) = 5", got)
	}
}

func TestFillInNeverShrinksDuration(t *testing.T) {
	e := NewEditor(timelineOf(scene("a", 3)))
	orch := NewOrchestrator(e, &fakeSpeech{duration: 1.5}, &fakeImages{})

	orch.Run(context.Background(), false)

	if got := e.Snapshot().Items[0].DurationSeconds; got != 3 {
		t.Errorf("duration = %v, want unchanged 3", got)
	}
}

func TestFillInFailureIsolated(t *testing.T) {
	a := scene("a", 3)
	b := scene("b", 3)
	e := NewEditor(timelineOf(a, b))

	speech := &fakeSpeech{duration: 2, failFor: map[string]bool{a.Text: true}}
	orch := NewOrchestrator(e, speech, &fakeImages{})

	stats := orch.Run(context.Background(), false)

	if stats.AudioFailed != 1 || stats.AudioGenerated != 1 {
		t.Errorf("stats = %+v, want one failure and one success", stats)
	}
	snap := e.Snapshot()
	if snap.Items[0].AudioRef != "" {
		t.Error("failed item must keep its ref unset for retry")
	}
	if snap.Items[0].GeneratingAudio {
		t.Error("failed item must clear its generating flag")
	}
	if snap.Items[1].AudioRef == "" {
		t.Error("sibling operations must not be aborted by a failure")
	}
}

func TestFillInVisualPromptFallsBackToText(t *testing.T) {
	withNotes := scene("a", 3)
	withNotes.Notes = "wide shot of a harbor"
	plain := scene("b", 3)
	e := NewEditor(timelineOf(withNotes, plain))

	images := &fakeImages{}
	orch := NewOrchestrator(e, &fakeSpeech{duration: 1}, images)
	orch.Run(context.Background(), false)

	images.mu.Lock()
	defer images.mu.Unlock()
	seen := make(map[string]bool, len(images.prompts))
	for _, p := range images.prompts {
		seen[p] = true
	}
	if !seen["wide shot of a harbor"] {
		t.Error("notes must be preferred as the visual prompt")
	}
	if !seen[plain.Text] {
		t.Error("text must be the fallback prompt when notes are empty")
	}
}

func TestFillInAssignsEffects(t *testing.T) {
	preset := scene("a", 3)
	preset.Effect = model.EffectStatic
	blank := scene("b", 3)
	e := NewEditor(timelineOf(preset, blank))

	orch := NewOrchestrator(e, &fakeSpeech{duration: 1}, &fakeImages{})
	orch.Run(context.Background(), true)

	snap := e.Snapshot()
	if snap.Items[0].Effect != model.EffectStatic {
		t.Errorf("preset effect must be kept, got %v", snap.Items[0].Effect)
	}
	if snap.Items[1].Effect == "" {
		t.Error("expected a pseudo-random effect assigned")
	}
	valid := false
	for _, eff := range model.ValidEffects {
		if snap.Items[1].Effect == eff {
			valid = true
		}
	}
	if !valid {
		t.Errorf("assigned effect %v not in the fixed enumeration", snap.Items[1].Effect)
	}
}

func TestFillInStaleResultDropped(t *testing.T) {
	item := scene("a", 3)
	item.ImageRef = "image://done" // only the audio task runs
	e := NewEditor(timelineOf(item))

	barrier := make(chan struct{})
	speech := &fakeSpeech{duration: 2, barrier: barrier}
	orch := NewOrchestrator(e, speech, &fakeImages{})

	var patches []model.ItemPatch
	var mu sync.Mutex
	orch.OnPatch(func(p model.ItemPatch) {
		mu.Lock()
		patches = append(patches, p)
		mu.Unlock()
	})

	done := make(chan FillInStats)
	go func() { done <- orch.Run(context.Background(), false) }()

	// Delete the item while its request is in flight, then release it.
	e.RemoveItem("a")
	close(barrier)
	<-done

	if got := len(e.Snapshot().Items); got != 0 {
		t.Fatalf("expected empty timeline, got %d items", got)
	}
	mu.Lock()
	defer mu.Unlock()
	for _, p := range patches {
		if p.AudioRef != nil {
			t.Error("result patch for a deleted item must be dropped, not delivered")
		}
	}
}

func TestFillInReportsProgress(t *testing.T) {
	e := NewEditor(timelineOf(scene("a", 3), scene("b", 3)))
	orch := NewOrchestrator(e, &fakeSpeech{duration: 1}, &fakeImages{})

	var mu sync.Mutex
	var last, total int
	orch.OnProgress(func(done, t int) {
		mu.Lock()
		last, total = done, t
		mu.Unlock()
	})

	stats := orch.Run(context.Background(), false)

	if stats.Total() != 4 {
		t.Fatalf("expected 4 settled requests, got %d", stats.Total())
	}
	mu.Lock()
	defer mu.Unlock()
	if last != 4 || total != 4 {
		t.Errorf("final progress = %d/%d, want 4/4", last, total)
	}
}

func TestFillInNothingToDo(t *testing.T) {
	item := sceneWithAudio("a", 3, "audio://a")
	item.ImageRef = "image://a"
	e := NewEditor(timelineOf(item))

	orch := NewOrchestrator(e, &fakeSpeech{duration: 1}, &fakeImages{})
	if stats := orch.Run(context.Background(), false); stats.Total() != 0 {
		t.Errorf("expected no requests, got %+v", stats)
	}
}

func TestFillInConcurrentWithEdits(t *testing.T) {
	items := make([]model.TimelineItem, 0, 8)
	for i := 0; i < 8; i++ {
		items = append(items, scene(fmt.Sprintf("s%d", i), 3))
	}
	e := NewEditor(timelineOf(items...))
	orch := NewOrchestrator(e, &fakeSpeech{duration: 2}, &fakeImages{})

	done := make(chan FillInStats)
	go func() { done <- orch.Run(context.Background(), false) }()

	// Structural edits race the fill-in; the single-writer editor must keep
	// the timeline contiguous and well-formed throughout.
	e.InsertBlock(1, 4)
	e.RemoveItem("s3")
	e.Reorder("s5", "s6")
	<-done

	snap := e.Snapshot()
	assertContiguous(t, &snap)
}
