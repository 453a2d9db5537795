package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campoverde/plano-api/internal/dto"
	"github.com/campoverde/plano-api/internal/middleware"
	"github.com/campoverde/plano-api/internal/service"
	"github.com/campoverde/plano-api/internal/utils"
	"github.com/campoverde/plano-api/pkg/pdfrender"
)

// PlanHandler wires the merged plan view, the action mutation endpoints and
// the PDF export.
type PlanHandler struct {
	service   service.PlanService
	renderer  pdfrender.Renderer
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewPlanHandler constructs the handler. The renderer may be nil, in which
// case the PDF endpoint reports the collaborator as unavailable.
func NewPlanHandler(service service.PlanService, renderer pdfrender.Renderer, validator *validator.Validate, logger zerolog.Logger) *PlanHandler {
	return &PlanHandler{
		service:   service,
		renderer:  renderer,
		validator: validator,
		logger:    logger.With().Str("component", "plan_handler").Logger(),
	}
}

// Register attaches the plan endpoints to the organization-scoped group.
// Suppression and custom-action routes are registered before the override
// route so its :definitionID wildcard cannot shadow them.
func (h *PlanHandler) Register(router fiber.Router, view, edit fiber.Handler) {
	router.Get("", view, h.getPlanView)
	router.Get("/pdf", view, h.exportPDF)
	router.Put("/actions/suppression", edit, h.setSuppression)
	router.Post("/actions/custom", edit, h.createCustomAction)
	router.Put("/actions/custom/:customID", edit, h.updateCustomAction)
	router.Delete("/actions/custom/:customID", edit, h.deleteCustomAction)
	router.Put("/actions/:definitionID", edit, h.upsertOverride)
}

func (h *PlanHandler) getPlanView(c *fiber.Ctx) error {
	orgID, err := parseUintParam(c, "orgID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	view, err := h.service.GetPlanView(c.Context(), orgID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "plan retrieved", view)
}

func (h *PlanHandler) upsertOverride(c *fiber.Ctx) error {
	orgID, err := parseUintParam(c, "orgID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	definitionID := c.Params("definitionID")

	var patch dto.ActionPatchRequest
	if err := c.BodyParser(&patch); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	action, err := h.service.UpsertOverride(c.Context(), orgID, definitionID, patch, middleware.Actor(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "action updated", action)
}

func (h *PlanHandler) createCustomAction(c *fiber.Ctx) error {
	orgID, err := parseUintParam(c, "orgID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CustomActionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	action, err := h.service.CreateCustomAction(c.Context(), orgID, payload, middleware.Actor(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "custom action created", action)
}

func (h *PlanHandler) updateCustomAction(c *fiber.Ctx) error {
	orgID, err := parseUintParam(c, "orgID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	customID, err := parseUintParam(c, "customID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var patch dto.ActionPatchRequest
	if err := c.BodyParser(&patch); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	action, err := h.service.UpdateCustomAction(c.Context(), orgID, customID, patch, middleware.Actor(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "custom action updated", action)
}

func (h *PlanHandler) deleteCustomAction(c *fiber.Ctx) error {
	orgID, err := parseUintParam(c, "orgID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	customID, err := parseUintParam(c, "customID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteCustomAction(c.Context(), orgID, customID, middleware.Actor(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "custom action deleted", fiber.Map{"id": customID})
}

func (h *PlanHandler) setSuppression(c *fiber.Ctx) error {
	orgID, err := parseUintParam(c, "orgID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SuppressionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	action, err := h.service.SetSuppressed(c.Context(), orgID, payload.ActionKey, *payload.Suppressed, middleware.Actor(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "suppression updated", action)
}

func (h *PlanHandler) exportPDF(c *fiber.Ctx) error {
	if h.renderer == nil {
		return utils.SendError(c, fiber.StatusServiceUnavailable, "pdf rendering unavailable")
	}

	orgID, err := parseUintParam(c, "orgID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	view, err := h.service.GetPlanView(c.Context(), orgID)
	if err != nil {
		return h.handleError(c, err)
	}

	stream, err := h.renderer.Render(c.Context(), view)
	if err != nil {
		h.logger.Error().Err(err).Uint("organization_id", orgID).Msg("pdf render failed")
		return utils.SendError(c, fiber.StatusBadGateway, "pdf rendering failed")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="plano-de-gestao.pdf"`)
	return c.SendStream(stream)
}

func (h *PlanHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrOrganizationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "organization not found")
	case errors.Is(err, service.ErrActionDefinitionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "action definition not found")
	case errors.Is(err, service.ErrCustomActionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "custom action not found")
	case errors.Is(err, service.ErrUnknownPlanType):
		return utils.SendError(c, fiber.StatusBadRequest, "unknown plan type")
	case errors.Is(err, service.ErrMalformedActionKey):
		return utils.SendError(c, fiber.StatusBadRequest, "malformed action key")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
