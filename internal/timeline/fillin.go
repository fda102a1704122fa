package timeline

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/storyreel/api/internal/model"
)

// SpeechSynthesizer produces an audio asset for a narration text. The
// returned asset exposes its natural duration in seconds.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (ref string, naturalSeconds float64, err error)
}

// ImageGenerator produces a still-image asset for a visual prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (ref string, err error)
}

// FillInStats summarizes a completed fill-in run.
type FillInStats struct {
	AudioGenerated  int
	AudioFailed     int
	VisualGenerated int
	VisualFailed    int
}

// Total returns how many requests were submitted.
func (s FillInStats) Total() int {
	return s.AudioGenerated + s.AudioFailed + s.VisualGenerated + s.VisualFailed
}

// Orchestrator fills in missing per-item assets. Every item's audio request
// and visual request are independent concurrent operations; results merge
// back into the editor as id-scoped patches, so items deleted mid-flight
// simply drop their late results.
type Orchestrator struct {
	editor *Editor
	speech SpeechSynthesizer
	images ImageGenerator

	onPatch    func(model.ItemPatch)
	onProgress func(done, total int)
}

// NewOrchestrator creates an orchestrator bound to one editor.
func NewOrchestrator(editor *Editor, speech SpeechSynthesizer, images ImageGenerator) *Orchestrator {
	return &Orchestrator{
		editor: editor,
		speech: speech,
		images: images,
	}
}

// OnPatch registers a hook invoked after each successfully applied patch.
func (o *Orchestrator) OnPatch(fn func(model.ItemPatch)) {
	o.onPatch = fn
}

// OnProgress registers a hook invoked after each request settles.
func (o *Orchestrator) OnProgress(fn func(done, total int)) {
	o.onProgress = fn
}

type fillTask struct {
	item model.TimelineItem
	kind model.AssetKind
}

// Run requests every missing asset for the current timeline snapshot and
// blocks until all submitted requests have settled. Failures leave the
// corresponding ref unset and never abort sibling operations.
func (o *Orchestrator) Run(ctx context.Context, assignEffects bool) FillInStats {
	snapshot := o.editor.Snapshot()

	var tasks []fillTask
	for i := range snapshot.Items {
		item := snapshot.Items[i]
		if item.Kind == model.ItemKindEmpty {
			continue
		}
		if item.AudioRef == "" {
			tasks = append(tasks, fillTask{item: item, kind: model.AssetKindAudio})
		}
		if item.ImageRef == "" {
			tasks = append(tasks, fillTask{item: item, kind: model.AssetKindVisual})
		}
	}
	if len(tasks) == 0 {
		return FillInStats{}
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		stats FillInStats
		done  int
	)
	total := len(tasks)

	settle := func(update func(*FillInStats)) {
		mu.Lock()
		update(&stats)
		done++
		d := done
		mu.Unlock()
		if o.onProgress != nil {
			o.onProgress(d, total)
		}
	}

	for _, task := range tasks {
		wg.Add(1)
		go func(task fillTask) {
			defer wg.Done()
			switch task.kind {
			case model.AssetKindAudio:
				ok := o.fillAudio(ctx, task.item)
				settle(func(s *FillInStats) {
					if ok {
						s.AudioGenerated++
					} else {
						s.AudioFailed++
					}
				})
			case model.AssetKindVisual:
				ok := o.fillVisual(ctx, task.item, assignEffects)
				settle(func(s *FillInStats) {
					if ok {
						s.VisualGenerated++
					} else {
						s.VisualFailed++
					}
				})
			}
		}(task)
	}

	wg.Wait()
	return stats
}

func (o *Orchestrator) fillAudio(ctx context.Context, item model.TimelineItem) bool {
	o.apply(model.ItemPatch{ItemID: item.ID, GeneratingAudio: boolPtr(true)})

	ref, natural, err := o.speech.Synthesize(ctx, item.Text)
	if err != nil {
		// Ref stays unset; the item remains available for a retry.
		o.apply(model.ItemPatch{ItemID: item.ID, GeneratingAudio: boolPtr(false)})
		return false
	}

	patch := model.ItemPatch{
		ItemID:          item.ID,
		AudioRef:        &ref,
		GeneratingAudio: boolPtr(false),
	}
	// Durations only grow during fill-in, never shrink.
	if grown := math.Ceil(natural); grown > item.DurationSeconds {
		patch.DurationSeconds = &grown
	}
	o.apply(patch)
	return true
}

func (o *Orchestrator) fillVisual(ctx context.Context, item model.TimelineItem, assignEffects bool) bool {
	o.apply(model.ItemPatch{ItemID: item.ID, GeneratingVisual: boolPtr(true)})

	prompt := item.Notes
	if prompt == "" {
		prompt = item.Text
	}
	ref, err := o.images.GenerateImage(ctx, prompt)
	if err != nil {
		o.apply(model.ItemPatch{ItemID: item.ID, GeneratingVisual: boolPtr(false)})
		return false
	}

	patch := model.ItemPatch{
		ItemID:           item.ID,
		ImageRef:         &ref,
		GeneratingVisual: boolPtr(false),
	}
	if assignEffects && item.Effect == "" {
		effect := o.randomEffect()
		patch.Effect = &effect
	}
	o.apply(patch)
	return true
}

func (o *Orchestrator) apply(p model.ItemPatch) {
	if !o.editor.ApplyPatch(p) {
		// Target deleted mid-flight; result dropped.
		return
	}
	if o.onPatch != nil {
		o.onPatch(p)
	}
}

func (o *Orchestrator) randomEffect() model.Effect {
	return model.ValidEffects[rand.Intn(len(model.ValidEffects))]
}

func boolPtr(b bool) *bool { return &b }
