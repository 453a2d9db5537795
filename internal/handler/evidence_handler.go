package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campoverde/plano-api/internal/middleware"
	"github.com/campoverde/plano-api/internal/service"
	"github.com/campoverde/plano-api/internal/utils"
)

// EvidenceHandler wires the evidence upload, download and delete endpoints.
type EvidenceHandler struct {
	service service.EvidenceService
	logger  zerolog.Logger
}

// NewEvidenceHandler constructs the handler.
func NewEvidenceHandler(service service.EvidenceService, logger zerolog.Logger) *EvidenceHandler {
	return &EvidenceHandler{
		service: service,
		logger:  logger.With().Str("component", "evidence_handler").Logger(),
	}
}

// Register attaches evidence endpoints to the organization-scoped group.
func (h *EvidenceHandler) Register(router fiber.Router, view, edit fiber.Handler) {
	router.Post("/evidence", edit, h.upload)
	router.Get("/evidence/:evidenceID/download", view, h.download)
	router.Delete("/evidence/:evidenceID", edit, h.delete)
}

func (h *EvidenceHandler) upload(c *fiber.Ctx) error {
	orgID, err := parseUintParam(c, "orgID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	evidenceType := strings.TrimSpace(c.FormValue("type"))
	var description *string
	if value := c.FormValue("description"); value != "" {
		description = &value
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	evidence, err := h.service.Upload(c.Context(), orgID, file, evidenceType, description, middleware.Actor(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "evidence uploaded", evidence)
}

func (h *EvidenceHandler) download(c *fiber.Ctx) error {
	orgID, err := parseUintParam(c, "orgID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	evidenceID, err := parseUintParam(c, "evidenceID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	url, err := h.service.DownloadURL(c.Context(), orgID, evidenceID)
	if err != nil {
		return h.handleError(c, err)
	}

	return c.Redirect(url, fiber.StatusFound)
}

func (h *EvidenceHandler) delete(c *fiber.Ctx) error {
	orgID, err := parseUintParam(c, "orgID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	evidenceID, err := parseUintParam(c, "evidenceID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), orgID, evidenceID, middleware.Actor(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evidence deleted", fiber.Map{"id": evidenceID})
}

func (h *EvidenceHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrOrganizationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "organization not found")
	case errors.Is(err, service.ErrEvidenceNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "evidence not found")
	case errors.Is(err, service.ErrUnknownEvidenceType):
		return utils.SendError(c, fiber.StatusBadRequest, "unknown evidence type")
	case errors.Is(err, service.ErrEvidenceTypeNotAllowed):
		return utils.SendError(c, fiber.StatusBadRequest, "file type not allowed for this evidence kind")
	case errors.Is(err, service.ErrEvidenceTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds maximum allowed size")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
