// Package export serializes timelines into the FCPXML interchange format so
// storyboards can be handed off to a professional NLE.
package export

import (
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"github.com/storyreel/api/internal/model"
)

// Exporter constants. Frame rate and base resolution are fixed by the
// exporter, not derived from the timeline.
const (
	FrameRate = 24
	Width     = 1920
	Height    = 1080
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
	`<!DOCTYPE fcpxml>` + "\n"

type fcpxml struct {
	XMLName   xml.Name  `xml:"fcpxml"`
	Version   string    `xml:"version,attr"`
	Resources resources `xml:"resources"`
	Library   library   `xml:"library"`
}

type resources struct {
	Formats []format `xml:"format"`
	Assets  []asset  `xml:"asset"`
	Effects []effect `xml:"effect"`
}

type format struct {
	ID            string `xml:"id,attr"`
	Name          string `xml:"name,attr"`
	FrameDuration string `xml:"frameDuration,attr"`
	Width         int    `xml:"width,attr"`
	Height        int    `xml:"height,attr"`
}

type asset struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr"`
	Src      string `xml:"src,attr"`
	Duration string `xml:"duration,attr,omitempty"`
	HasVideo int    `xml:"hasVideo,attr,omitempty"`
	HasAudio int    `xml:"hasAudio,attr,omitempty"`
}

type effect struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
	UID  string `xml:"uid,attr"`
}

type library struct {
	Events []event `xml:"event"`
}

type event struct {
	Name     string    `xml:"name,attr"`
	Projects []project `xml:"project"`
}

type project struct {
	Name      string   `xml:"name,attr"`
	Sequences sequence `xml:"sequence"`
}

type sequence struct {
	Format   string `xml:"format,attr"`
	Duration string `xml:"duration,attr"`
	Spine    spine  `xml:"spine"`
}

type spine struct {
	Elements []interface{}
}

// MarshalXML flattens the spine's heterogeneous children in order.
func (s spine) MarshalXML(enc *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "spine"
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, el := range s.Elements {
		if err := enc.Encode(el); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

type assetClip struct {
	XMLName  xml.Name   `xml:"asset-clip"`
	Ref      string     `xml:"ref,attr"`
	Name     string     `xml:"name,attr"`
	Offset   string     `xml:"offset,attr"`
	Duration string     `xml:"duration,attr"`
	Note     string     `xml:"note,omitempty"`
	Audio    *audioRole `xml:"audio,omitempty"`
}

type audioRole struct {
	Ref      string `xml:"ref,attr"`
	Duration string `xml:"duration,attr"`
}

type gap struct {
	XMLName  xml.Name `xml:"gap"`
	Name     string   `xml:"name,attr"`
	Offset   string   `xml:"offset,attr"`
	Duration string   `xml:"duration,attr"`
	Note     string   `xml:"note,omitempty"`
}

type transitionEl struct {
	XMLName  xml.Name `xml:"transition"`
	Name     string   `xml:"name,attr"`
	Offset   string   `xml:"offset,attr"`
	Duration string   `xml:"duration,attr"`
}

// rational renders seconds as a frame-aligned FCPXML rational time value.
func rational(seconds float64) string {
	frames := int(math.Round(seconds * FrameRate))
	if frames < 0 {
		frames = 0
	}
	return fmt.Sprintf("%d/%ds", frames, FrameRate)
}

// clipName derives a display name from the item's narration, falling back to
// a placeholder label for context blocks.
func clipName(item model.TimelineItem, index int) string {
	if item.Kind == model.ItemKindEmpty {
		return fmt.Sprintf("Context block %d", index+1)
	}
	name := strings.TrimSpace(item.Text)
	if name == "" {
		return fmt.Sprintf("Scene %d", index+1)
	}
	if runes := []rune(name); len(runes) > 40 {
		name = strings.TrimSpace(string(runes[:40])) + "…"
	}
	return name
}

// transitionDuration is the fixed length of rendered fades and dissolves.
const transitionDuration = 0.5

// Marshal serializes a timeline into an FCPXML document.
func Marshal(projectName string, tl model.Timeline) ([]byte, error) {
	doc := fcpxml{
		Version: "1.10",
		Resources: resources{
			Formats: []format{{
				ID:            "r1",
				Name:          fmt.Sprintf("FFVideoFormat%dp%d", Height, FrameRate),
				FrameDuration: fmt.Sprintf("1/%ds", FrameRate),
				Width:         Width,
				Height:        Height,
			}},
			Effects: []effect{{
				ID:   "r2",
				Name: "Cross Dissolve",
				UID:  "FxPlug:4edb45f2-b5ed-4a44-93d8-9536af56ff56",
			}},
		},
	}

	var elements []interface{}
	assetIDs := make(map[string]string)
	nextResource := 3

	internAsset := func(src, name string, duration float64, video bool) string {
		if id, ok := assetIDs[src]; ok {
			return id
		}
		id := fmt.Sprintf("r%d", nextResource)
		nextResource++
		a := asset{ID: id, Name: name, Src: src, Duration: rational(duration)}
		if video {
			a.HasVideo = 1
		} else {
			a.HasAudio = 1
		}
		doc.Resources.Assets = append(doc.Resources.Assets, a)
		assetIDs[src] = id
		return id
	}

	var elapsed float64
	for i := range tl.Items {
		item := tl.Items[i]
		offset := rational(elapsed)
		duration := rational(item.DurationSeconds)
		name := clipName(item, i)

		if item.Transition == model.TransitionFade || item.Transition == model.TransitionDissolve {
			elements = append(elements, transitionEl{
				Name:     "Cross Dissolve",
				Offset:   offset,
				Duration: rational(transitionDuration),
			})
		}

		if item.ImageRef == "" {
			elements = append(elements, gap{
				Name:     name,
				Offset:   offset,
				Duration: duration,
				Note:     item.Notes,
			})
		} else {
			clip := assetClip{
				Ref:      internAsset(item.ImageRef, name, item.DurationSeconds, true),
				Name:     name,
				Offset:   offset,
				Duration: duration,
				Note:     item.Notes,
			}
			if item.AudioRef != "" {
				clip.Audio = &audioRole{
					Ref:      internAsset(item.AudioRef, name+" narration", item.DurationSeconds, false),
					Duration: duration,
				}
			}
			elements = append(elements, clip)
		}

		elapsed += item.DurationSeconds
	}

	doc.Library = library{
		Events: []event{{
			Name: projectName,
			Projects: []project{{
				Name: projectName,
				Sequences: sequence{
					Format:   "r1",
					Duration: rational(tl.ContentDuration()),
					Spine:    spine{Elements: elements},
				},
			}},
		}},
	}

	body, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fcpxml: %w", err)
	}
	return append([]byte(xmlHeader), append(body, '\n')...), nil
}
