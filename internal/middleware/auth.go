package middleware

import (
	"strings"

	"collect-api/internal/auth"

	"github.com/gofiber/fiber/v2"
	pkgConfig "github.com/kerimovok/go-pkg-utils/config"
	"github.com/kerimovok/go-pkg-utils/httpx"
)

const identityKey = "identity"

// RequireAuth decodes the bearer token and stores the caller identity in
// the request context. Requests without a valid token are rejected.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response := httpx.Unauthorized("Access token required")
			return httpx.SendResponse(c, response)
		}

		identity, err := auth.ParseToken(pkgConfig.GetEnv("JWT_SECRET"), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response := httpx.Unauthorized("Invalid or expired token")
			return httpx.SendResponse(c, response)
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// CallerIdentity returns the identity stored by RequireAuth.
func CallerIdentity(c *fiber.Ctx) (auth.Identity, bool) {
	identity, ok := c.Locals(identityKey).(auth.Identity)
	return identity, ok
}
