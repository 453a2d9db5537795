package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/campoverde/plano-api/internal/utils"
)

// JWTProtected returns a middleware that validates JWT bearer tokens issued by
// the authorization service. Tokens carry the actor identity and an
// `org_roles` claim mapping organization id to the granted capability
// (viewer or editor).
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		if actor := extractActorFromClaims(claims); actor != "" {
			c.Locals("actor", actor)
		}
		c.Locals("org_roles", extractOrgRolesFromClaims(claims))

		return c.Next()
	}
}

// Actor returns the authenticated actor identity bound to the request.
func Actor(c *fiber.Ctx) string {
	if value := c.Locals("actor"); value != nil {
		if actor, ok := value.(string); ok {
			return actor
		}
	}
	return ""
}

func extractActorFromClaims(claims jwt.MapClaims) string {
	keys := []string{"email", "name", "sub"}
	for _, key := range keys {
		if value, ok := claims[key]; ok {
			if s, ok := value.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

func extractOrgRolesFromClaims(claims jwt.MapClaims) map[string]string {
	roles := map[string]string{}
	raw, ok := claims["org_roles"]
	if !ok {
		return roles
	}

	mapped, ok := raw.(map[string]interface{})
	if !ok {
		return roles
	}

	for orgID, value := range mapped {
		if role, ok := value.(string); ok {
			normalized := strings.ToLower(strings.TrimSpace(role))
			if normalized != "" {
				roles[strings.TrimSpace(orgID)] = normalized
			}
		}
	}

	return roles
}
