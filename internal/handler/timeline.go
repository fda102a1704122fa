package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/storyreel/api/internal/model"
	"github.com/storyreel/api/internal/service"
	"github.com/storyreel/api/internal/timeline"
	"github.com/storyreel/api/pkg/response"
)

// TimelineHandler exposes the editor's structural operations.
type TimelineHandler struct {
	sessions  *service.SessionService
	validator *validator.Validate
}

func NewTimelineHandler(sessions *service.SessionService, v *validator.Validate) *TimelineHandler {
	return &TimelineHandler{
		sessions:  sessions,
		validator: v,
	}
}

// sessionEditor resolves the live editor for the :id route param. The error
// return is already a written fiber response.
func sessionEditor(c *fiber.Ctx, sessions *service.SessionService) (*timeline.Editor, error) {
	sessionID := c.Params("id")
	if sessionID == "" {
		return nil, response.ValidationError(c, "Session ID is required", nil)
	}
	ed, err := sessions.Editor(c.Context(), sessionID)
	if err != nil {
		if err.Error() == "session not found" {
			return nil, response.NotFound(c, "Session not found")
		}
		return nil, response.ServiceError(c, err.Error())
	}
	return ed, nil
}

// Get handles GET /api/sessions/:id/timeline
func (h *TimelineHandler) Get(c *fiber.Ctx) error {
	ed, err := sessionEditor(c, h.sessions)
	if err != nil {
		return err
	}
	return response.OK(c, timelineView(ed.State()))
}

// InsertBlock handles POST /api/sessions/:id/blocks
func (h *TimelineHandler) InsertBlock(c *fiber.Ctx) error {
	ed, err := sessionEditor(c, h.sessions)
	if err != nil {
		return err
	}

	var req model.InsertBlockRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	ed.InsertBlock(req.Start, req.End)
	return response.OK(c, timelineView(ed.State()))
}

// InsertBlockAt handles POST /api/sessions/:id/blocks/index
func (h *TimelineHandler) InsertBlockAt(c *fiber.Ctx) error {
	ed, err := sessionEditor(c, h.sessions)
	if err != nil {
		return err
	}

	var req model.InsertBlockAtRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	ed.InsertBlockAt(req.Index)
	return response.OK(c, timelineView(ed.State()))
}

// RemoveRange handles DELETE /api/sessions/:id/range
func (h *TimelineHandler) RemoveRange(c *fiber.Ctx) error {
	ed, err := sessionEditor(c, h.sessions)
	if err != nil {
		return err
	}

	var req model.RemoveRangeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	ed.RemoveRange(req.Start, req.End)
	return response.OK(c, timelineView(ed.State()))
}

// RemoveItem handles DELETE /api/sessions/:id/items/:itemId
func (h *TimelineHandler) RemoveItem(c *fiber.Ctx) error {
	ed, err := sessionEditor(c, h.sessions)
	if err != nil {
		return err
	}

	itemID := c.Params("itemId")
	if itemID == "" {
		return response.ValidationError(c, "Item ID is required", nil)
	}

	if !ed.RemoveItem(itemID) {
		return response.NotFound(c, "Item not found")
	}
	return response.OK(c, timelineView(ed.State()))
}

// UpdateItem handles PATCH /api/sessions/:id/items/:itemId
func (h *TimelineHandler) UpdateItem(c *fiber.Ctx) error {
	ed, err := sessionEditor(c, h.sessions)
	if err != nil {
		return err
	}

	itemID := c.Params("itemId")
	if itemID == "" {
		return response.ValidationError(c, "Item ID is required", nil)
	}

	var req model.UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	patch := model.ItemPatch{
		ItemID:     itemID,
		Text:       req.Text,
		Notes:      req.Notes,
		Transition: req.Transition,
		Effect:     req.Effect,
	}
	if !ed.ApplyPatch(patch) {
		return response.NotFound(c, "Item not found")
	}
	return response.OK(c, timelineView(ed.State()))
}
