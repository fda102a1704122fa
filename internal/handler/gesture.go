package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/storyreel/api/internal/model"
	"github.com/storyreel/api/internal/service"
	"github.com/storyreel/api/pkg/response"
)

// GestureHandler feeds raw surface events into the editor's gesture state
// machine. Events carry normalized coordinates so the handler never needs to
// know pixel dimensions.
type GestureHandler struct {
	sessions  *service.SessionService
	validator *validator.Validate
}

func NewGestureHandler(sessions *service.SessionService, v *validator.Validate) *GestureHandler {
	return &GestureHandler{
		sessions:  sessions,
		validator: v,
	}
}

// Pointer handles POST /api/sessions/:id/pointer
func (h *GestureHandler) Pointer(c *fiber.Ctx) error {
	ed, err := sessionEditor(c, h.sessions)
	if err != nil {
		return err
	}

	var req model.PointerEventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	switch req.Phase {
	case "down":
		ed.PointerDown(req.X, req.Y)
	case "move":
		ed.PointerMove(req.X, req.Y, req.InBounds)
	case "up":
		ed.PointerUp()
	}

	return response.OK(c, timelineView(ed.State()))
}

// DoubleClick handles POST /api/sessions/:id/doubleclick
func (h *GestureHandler) DoubleClick(c *fiber.Ctx) error {
	ed, err := sessionEditor(c, h.sessions)
	if err != nil {
		return err
	}

	var req model.DoubleClickRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	ed.DoubleClick(req.X, req.Y)
	return response.OK(c, timelineView(ed.State()))
}

// Key handles POST /api/sessions/:id/key
func (h *GestureHandler) Key(c *fiber.Ctx) error {
	ed, err := sessionEditor(c, h.sessions)
	if err != nil {
		return err
	}

	var req model.KeyEventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	ed.Key(req.Key, req.Ctrl, req.TextInputFocused)
	return response.OK(c, timelineView(ed.State()))
}
