package middleware

import (
	"errors"

	"folio/internal/services"
	appErr "folio/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const identityKey = "user"

// AuthRequired is a Fiber middleware that admits only requests carrying a
// valid "Bearer <token>" Authorization header. The verified identity is
// stored in the request locals for CurrentUser.
func AuthRequired(tokens *services.TokenService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := tokens.VerifyHeader(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			message := "Invalid token format"
			var ae *appErr.AppError
			if errors.As(err, &ae) {
				message = ae.Message
			}
			log.Debug("rejected token",
				zap.String("path", c.Path()),
				zap.String("code", string(appErr.CodeOf(err))),
				zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": message,
			})
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// CurrentUser returns the identity stored by AuthRequired.
func CurrentUser(c *fiber.Ctx) (services.Identity, bool) {
	identity, ok := c.Locals(identityKey).(services.Identity)
	return identity, ok
}
