package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kinhub/kinhub/internal/apperr"
)

const (
	localsUserID = "user_id"
	localsRole   = "role"
)

// Middleware verifies the bearer token and stashes user id and role in Locals.
func Middleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return apperr.Auth("missing authorization header")
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperr.Auth("invalid authorization header")
		}
		claims, err := ParseAccessToken(parts[1], secret)
		if err != nil {
			return apperr.Auth("invalid token")
		}
		c.Locals(localsUserID, claims.UserID)
		c.Locals(localsRole, claims.Role)
		return c.Next()
	}
}

// RequireRole guards a route group behind a platform role.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(localsRole).(string)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return apperr.Forbidden("insufficient role")
	}
}

// UserID returns the authenticated user's ObjectID from Locals.
func UserID(c *fiber.Ctx) (primitive.ObjectID, error) {
	raw, _ := c.Locals(localsUserID).(string)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Auth("invalid token subject")
	}
	return id, nil
}

// Role returns the authenticated user's platform role from Locals.
func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(localsRole).(string)
	return role
}
