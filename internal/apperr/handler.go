package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// FiberHandler builds the app-wide fiber ErrorHandler. Upstream and internal
// errors are logged with their cause; the client sees only the public message.
func FiberHandler(logger *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := Status(err)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		if status >= 500 {
			logger.Errorw("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"error", err,
			)
		}
		return c.Status(status).JSON(fiber.Map{"success": false, "message": Public(err)})
	}
}
