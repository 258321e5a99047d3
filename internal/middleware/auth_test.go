package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/utils"
)

const secret = "test-secret"

func token(t *testing.T, role models.Role, ttl time.Duration) string {
	t.Helper()
	signed, _, err := utils.GenerateToken(secret, uuid.New(), role, ttl)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return signed
}

func newApp() *fiber.App {
	app := fiber.New()
	ok := func(c *fiber.Ctx) error {
		claims, found := CurrentUser(c)
		if !found {
			return fiber.NewError(fiber.StatusInternalServerError, "claims missing")
		}
		return c.SendString(string(claims.Role))
	}
	app.Get("/me", Authenticated(secret), ok)
	app.Get("/admin", AdminOnly(secret), ok)
	return app
}

func TestGuards(t *testing.T) {
	app := newApp()
	customer := token(t, models.RoleCustomer, time.Hour)
	admin := token(t, models.RoleAdmin, time.Hour)
	expired := token(t, models.RoleAdmin, -time.Minute)

	tests := []struct {
		name   string
		path   string
		header string
		value  string
		want   int
	}{
		{"no token", "/me", "", "", fiber.StatusUnauthorized},
		{"auth header with bearer", "/me", "auth", "Bearer " + customer, fiber.StatusOK},
		{"auth header raw", "/me", "auth", customer, fiber.StatusOK},
		{"authorization fallback", "/me", "Authorization", "Bearer " + customer, fiber.StatusOK},
		{"wrong scheme", "/me", "Authorization", "Basic " + customer, fiber.StatusUnauthorized},
		{"garbage", "/me", "auth", "Bearer nope", fiber.StatusUnauthorized},
		{"expired", "/me", "auth", expired, fiber.StatusUnauthorized},
		{"admin route without token", "/admin", "", "", fiber.StatusUnauthorized},
		{"admin route as customer", "/admin", "auth", customer, fiber.StatusForbidden},
		{"admin route as admin", "/admin", "auth", "Bearer " + admin, fiber.StatusOK},
		{"admin route expired", "/admin", "auth", expired, fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
