package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/storyreel/api/internal/model"
	"github.com/storyreel/api/internal/service"
	"github.com/storyreel/api/pkg/response"
)

type PlaybackHandler struct {
	sessions  *service.SessionService
	validator *validator.Validate
}

func NewPlaybackHandler(sessions *service.SessionService, v *validator.Validate) *PlaybackHandler {
	return &PlaybackHandler{
		sessions:  sessions,
		validator: v,
	}
}

// Control handles POST /api/sessions/:id/playback
func (h *PlaybackHandler) Control(c *fiber.Ctx) error {
	ed, err := sessionEditor(c, h.sessions)
	if err != nil {
		return err
	}

	var req model.PlaybackRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	switch req.Action {
	case "play":
		ed.Play()
	case "pause":
		ed.Pause()
	case "toggle":
		ed.TogglePlay()
	case "seek":
		if req.Time == nil {
			return response.ValidationError(c, "Seek requires a time", nil)
		}
		ed.Seek(*req.Time)
	}

	return response.OK(c, timelineView(ed.State()))
}
