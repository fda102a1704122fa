package timeline

import "github.com/storyreel/api/internal/model"

// Zoom bounds and step. Zoom only rescales how many screen pixels correspond
// to one second; all time arithmetic is zoom-independent.
const (
	MinZoom  = 0.2
	MaxZoom  = 5.0
	ZoomStep = 1.2
)

const (
	// Minimum visible canvas in seconds.
	minCanvasSeconds = 10.0
	// Trailing run-out room appended after the last item.
	trailingPadSeconds = 10.0
)

// TotalDuration returns the addressable canvas length for a timeline:
// max(content, 10) + 10. Recomputed from the model on every use rather than
// cached, so it is always consistent with the current items.
func TotalDuration(tl *model.Timeline) float64 {
	content := tl.ContentDuration()
	if content < minCanvasSeconds {
		content = minCanvasSeconds
	}
	return content + trailingPadSeconds
}

// TimeToFraction maps an absolute time to a normalized [0,1] canvas position.
func TimeToFraction(t, totalDuration float64) float64 {
	if totalDuration <= 0 {
		return 0
	}
	f := t / totalDuration
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// FractionToTime maps a normalized canvas position back to absolute seconds.
// Fractions outside [0,1] clamp to the canvas edges.
func FractionToTime(f, totalDuration float64) float64 {
	if totalDuration <= 0 {
		return 0
	}
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return f * totalDuration
}

// ClampZoom bounds a zoom multiplier to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
