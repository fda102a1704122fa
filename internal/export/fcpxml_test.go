package export

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/storyreel/api/internal/model"
)

func sampleTimeline() model.Timeline {
	return model.Timeline{Items: []model.TimelineItem{
		{
			ID:              "a",
			Kind:            model.ItemKindScene,
			DurationSeconds: 5,
			Text:            "A rover crests the dune",
			Notes:           "wide shot, golden hour",
			ImageRef:        "https://assets.example/a.png",
			AudioRef:        "https://assets.example/a.mp3",
			Transition:      model.TransitionCut,
		},
		{
			ID:              "b",
			Kind:            model.ItemKindEmpty,
			DurationSeconds: 2,
			Transition:      model.TransitionCut,
		},
		{
			ID:              "c",
			Kind:            model.ItemKindScene,
			DurationSeconds: 3,
			Text:            "Night falls over the basin",
			ImageRef:        "https://assets.example/c.png",
			Transition:      model.TransitionDissolve,
		},
	}}
}

func TestMarshalProducesValidDocument(t *testing.T) {
	out, err := Marshal("Mars Story", sampleTimeline())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	doc := string(out)

	if !strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("missing XML declaration")
	}
	if !strings.Contains(doc, "<!DOCTYPE fcpxml>") {
		t.Error("missing DOCTYPE")
	}
	if !strings.Contains(doc, `<fcpxml version="1.10">`) {
		t.Error("missing fcpxml version")
	}
	if !strings.Contains(doc, `width="1920"`) || !strings.Contains(doc, `height="1080"`) {
		t.Error("format resolution not 1920x1080")
	}
	if !strings.Contains(doc, `frameDuration="1/24s"`) {
		t.Error("frame duration not 24fps")
	}
	if !strings.Contains(doc, `<project name="Mars Story">`) {
		t.Error("project name not carried through")
	}
}

func TestMarshalFrameAlignedTimes(t *testing.T) {
	out, err := Marshal("t", sampleTimeline())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	doc := string(out)

	// 5s at 24fps is 120 frames; the second item starts there.
	if !strings.Contains(doc, `duration="120/24s"`) {
		t.Error("expected 5s clip rendered as 120/24s")
	}
	if !strings.Contains(doc, `offset="120/24s"`) {
		t.Error("expected second element offset at 120/24s")
	}
	// Sequence covers the 10s content duration.
	if !strings.Contains(doc, `duration="240/24s"`) {
		t.Error("expected sequence duration 240/24s")
	}
}

func TestMarshalEmptyItemsBecomeGaps(t *testing.T) {
	out, err := Marshal("t", sampleTimeline())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	doc := string(out)

	if strings.Count(doc, "<asset-clip") != 2 {
		t.Errorf("expected 2 asset-clips, got %d", strings.Count(doc, "<asset-clip"))
	}
	if !strings.Contains(doc, `<gap name="Context block 2"`) {
		t.Error("empty item should render as a named gap")
	}
}

func TestMarshalLinksAudioAssets(t *testing.T) {
	out, err := Marshal("t", sampleTimeline())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	doc := string(out)

	if !strings.Contains(doc, `src="https://assets.example/a.mp3"`) {
		t.Error("audio asset not registered in resources")
	}
	if !strings.Contains(doc, `hasAudio="1"`) {
		t.Error("audio asset missing hasAudio attribute")
	}
	if !strings.Contains(doc, "<audio ") {
		t.Error("clip with narration should carry an audio element")
	}
}

func TestMarshalDissolveEmitsTransition(t *testing.T) {
	out, err := Marshal("t", sampleTimeline())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	doc := string(out)

	if strings.Count(doc, "<transition") != 1 {
		t.Errorf("expected exactly 1 transition, got %d", strings.Count(doc, "<transition"))
	}
	if !strings.Contains(doc, `<transition name="Cross Dissolve" offset="168/24s"`) {
		t.Error("transition should sit at the dissolving item's boundary")
	}
}

func TestMarshalEmptyTimeline(t *testing.T) {
	out, err := Marshal("empty", model.Timeline{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	doc := string(out)
	if !strings.Contains(doc, `duration="0/24s"`) {
		t.Error("empty timeline should have zero sequence duration")
	}
	if strings.Contains(doc, "<asset-clip") {
		t.Error("empty timeline should have no clips")
	}
}

func TestClipNameTruncation(t *testing.T) {
	item := model.TimelineItem{
		Kind: model.ItemKindScene,
		Text: "This narration line is far too long to be used verbatim as a clip name",
	}
	name := clipName(item, 0)
	if len([]rune(name)) > 45 {
		t.Errorf("clip name not truncated: %q", name)
	}
	if !strings.HasSuffix(name, "…") {
		t.Errorf("truncated name should end with ellipsis: %q", name)
	}
}

func TestClipNameTruncationMultibyte(t *testing.T) {
	item := model.TimelineItem{
		Kind: model.ItemKindScene,
		Text: strings.Repeat("砂漠の夜明けにローバーが現れる。", 5),
	}
	name := clipName(item, 0)
	if !utf8.ValidString(name) {
		t.Errorf("truncated name is not valid UTF-8: %q", name)
	}
	if got := len([]rune(name)); got > 41 {
		t.Errorf("expected at most 41 runes, got %d", got)
	}
	if !strings.HasSuffix(name, "…") {
		t.Errorf("truncated name should end with ellipsis: %q", name)
	}
}
