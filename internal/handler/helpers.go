package handler

import (
	"github.com/go-playground/validator/v10"

	"github.com/storyreel/api/internal/model"
	"github.com/storyreel/api/internal/timeline"
)

func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}

// timelineView projects editor state into the render-facing response: items
// with derived start times, canvas length, playback and zoom.
func timelineView(st model.EditorState) *model.TimelineResponse {
	items := make([]model.TimelineItemView, 0, len(st.Timeline.Items))
	var elapsed float64
	for _, item := range st.Timeline.Items {
		items = append(items, model.TimelineItemView{
			TimelineItem: item,
			Start:        elapsed,
		})
		elapsed += item.DurationSeconds
	}

	return &model.TimelineResponse{
		Items:         items,
		TotalDuration: timeline.TotalDuration(&st.Timeline),
		Playback:      st.Playback,
		ZoomLevel:     st.ZoomLevel,
		Selection:     st.Selection,
	}
}
