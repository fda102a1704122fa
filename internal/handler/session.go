package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/storyreel/api/internal/model"
	"github.com/storyreel/api/internal/service"
	"github.com/storyreel/api/pkg/response"
)

type SessionHandler struct {
	service   *service.SessionService
	validator *validator.Validate
}

func NewSessionHandler(svc *service.SessionService, v *validator.Validate) *SessionHandler {
	return &SessionHandler{
		service:   svc,
		validator: v,
	}
}

// Create handles POST /api/sessions
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	var req model.SessionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	session, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Created(c, model.SessionResponse{
		ID:        session.ID,
		Name:      session.Name,
		ItemCount: len(session.Timeline.Items),
		Duration:  session.Timeline.ContentDuration(),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	})
}

// List handles GET /api/sessions
func (h *SessionHandler) List(c *fiber.Ctx) error {
	sessions, err := h.service.List(c.Context())
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, sessions)
}

// Get handles GET /api/sessions/:id
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return response.ValidationError(c, "Session ID is required", nil)
	}

	session, err := h.service.Get(c.Context(), sessionID)
	if err != nil {
		if err.Error() == "session not found" {
			return response.NotFound(c, "Session not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, session)
}

// Save handles PUT /api/sessions/:id
func (h *SessionHandler) Save(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return response.ValidationError(c, "Session ID is required", nil)
	}

	session, err := h.service.Save(c.Context(), sessionID)
	if err != nil {
		if err.Error() == "session not found" {
			return response.NotFound(c, "Session not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, model.SessionResponse{
		ID:        session.ID,
		Name:      session.Name,
		ItemCount: len(session.Timeline.Items),
		Duration:  session.Timeline.ContentDuration(),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	})
}

// Delete handles DELETE /api/sessions/:id
func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return response.ValidationError(c, "Session ID is required", nil)
	}

	if err := h.service.Delete(c.Context(), sessionID); err != nil {
		if err.Error() == "session not found" {
			return response.NotFound(c, "Session not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.NoContent(c)
}
