// Package middleware provides HTTP middleware for authentication, logging,
// metrics and tracing.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"pulse/internal/auth"
	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthRequired.
const (
	LocalIdentity = "identity"
	LocalUserID   = "userID"
)

// AuthRequired enforces a valid bearer token. An expired token fails with
// TOKEN_EXPIRED, anything else with UNAUTHORIZED. On success the verified
// identity is stored in Fiber locals and in the request context.
func AuthRequired(verifier auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		identity, err := verifier.Verify(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewTokenExpiredError())
			}
			Logger.DebugContext(c.UserContext(), "token rejected", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token"))
		}

		c.Locals(LocalIdentity, identity)
		c.Locals(LocalUserID, identity.UserID)

		ctx := context.WithValue(c.UserContext(), UserIDKey, identity.UserID)
		c.SetUserContext(auth.WithIdentity(ctx, identity))

		return c.Next()
	}
}

// IdentityFromCtx returns the identity attached by AuthRequired.
func IdentityFromCtx(c *fiber.Ctx) (auth.Identity, bool) {
	identity, ok := c.Locals(LocalIdentity).(auth.Identity)
	return identity, ok
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
