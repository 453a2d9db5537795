package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campoverde/plano-api/internal/utils"
)

// Capabilities granted per organization through the `org_roles` token claim.
// An editor can do everything a viewer can.
const (
	CapabilityView = "viewer"
	CapabilityEdit = "editor"
)

// RequireOrgCapability guards a route group against the organization named in
// the :orgID path parameter. The capability check itself belongs to the
// authorization service; this middleware only enforces what the token states.
func RequireOrgCapability(capability string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orgID := strings.TrimSpace(c.Params("orgID"))
		if orgID == "" {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid organization identifier")
		}

		role := orgRole(c, orgID)
		switch capability {
		case CapabilityView:
			if role == CapabilityView || role == CapabilityEdit {
				return c.Next()
			}
		case CapabilityEdit:
			if role == CapabilityEdit {
				return c.Next()
			}
		}

		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions for this organization")
	}
}

func orgRole(c *fiber.Ctx, orgID string) string {
	value := c.Locals("org_roles")
	roles, ok := value.(map[string]string)
	if !ok {
		return ""
	}
	return roles[orgID]
}
