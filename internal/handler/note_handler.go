package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campoverde/plano-api/internal/dto"
	"github.com/campoverde/plano-api/internal/middleware"
	"github.com/campoverde/plano-api/internal/service"
	"github.com/campoverde/plano-api/internal/utils"
)

// NoteHandler wires the collaborative note endpoints.
type NoteHandler struct {
	service service.NoteService
	logger  zerolog.Logger
}

// NewNoteHandler constructs the handler.
func NewNoteHandler(service service.NoteService, logger zerolog.Logger) *NoteHandler {
	return &NoteHandler{
		service: service,
		logger:  logger.With().Str("component", "note_handler").Logger(),
	}
}

// Register attaches note endpoints to the organization-scoped group.
func (h *NoteHandler) Register(router fiber.Router, view, edit fiber.Handler) {
	router.Get("/notes/:kind", view, h.get)
	router.Put("/notes/:kind", edit, h.set)
}

func (h *NoteHandler) get(c *fiber.Ctx) error {
	orgID, err := parseUintParam(c, "orgID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	note, err := h.service.Get(c.Context(), orgID, c.Params("kind"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "note retrieved", note)
}

func (h *NoteHandler) set(c *fiber.Ctx) error {
	orgID, err := parseUintParam(c, "orgID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.NoteUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	note, err := h.service.Set(c.Context(), orgID, c.Params("kind"), payload.Text, middleware.Actor(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "note updated", note)
}

func (h *NoteHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrOrganizationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "organization not found")
	case errors.Is(err, service.ErrUnknownNoteKind):
		return utils.SendError(c, fiber.StatusBadRequest, "unknown note kind")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
