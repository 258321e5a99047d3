package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/bazaar/internal/utils"
)

const claimsContextKey = "sessionClaims"

// Authenticated requires a valid session token. The token is read from the
// "auth" header, falling back to "Authorization", with or without a Bearer prefix.
func Authenticated(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := authenticate(c, secret)
		if err != nil {
			return err
		}
		c.Locals(claimsContextKey, claims)
		return c.Next()
	}
}

// AdminOnly requires a valid session token carrying the admin role.
func AdminOnly(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := authenticate(c, secret)
		if err != nil {
			return err
		}
		if !claims.Role.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}
		c.Locals(claimsContextKey, claims)
		return c.Next()
	}
}

// CurrentUser returns the claims stored by Authenticated or AdminOnly.
func CurrentUser(c *fiber.Ctx) (utils.Claims, bool) {
	claims, ok := c.Locals(claimsContextKey).(utils.Claims)
	return claims, ok
}

func authenticate(c *fiber.Ctx, secret string) (utils.Claims, error) {
	token := bearerToken(c)
	if token == "" {
		return utils.Claims{}, fiber.NewError(fiber.StatusUnauthorized, "missing session token")
	}

	claims, err := utils.ParseToken(secret, token)
	if err != nil {
		return utils.Claims{}, fiber.NewError(fiber.StatusUnauthorized, "invalid or expired session token")
	}
	return claims, nil
}

func bearerToken(c *fiber.Ctx) string {
	raw := strings.TrimSpace(c.Get("auth"))
	if raw == "" {
		raw = strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	}
	if raw == "" {
		return ""
	}

	if scheme, rest, ok := strings.Cut(raw, " "); ok {
		if !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(rest)
	}
	return raw
}
