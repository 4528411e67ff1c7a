package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dudhwala/milkbook/internal/domain"
	"github.com/dudhwala/milkbook/internal/service"
)

const claimsKey = "claims"

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
}

// RequireRole admits only requests carrying a valid token with the given role.
func RequireRole(tokens *service.TokenIssuer, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := tokens.Verify(bearerToken(c))
		if err != nil || claims.Role != role {
			return unauthorized(c)
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// RequireSelfOrOwner admits the owner, or a customer addressing their own id
// in the :id route parameter.
func RequireSelfOrOwner(tokens *service.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := tokens.Verify(bearerToken(c))
		if err != nil {
			return unauthorized(c)
		}
		if claims.Role != domain.RoleOwner {
			id, perr := strconv.ParseInt(c.Params("id"), 10, 64)
			if perr != nil || id != claims.AccountID {
				return unauthorized(c)
			}
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}
