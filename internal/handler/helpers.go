package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/courseflow/courseflow-api/internal/identity"
)

func parseParamUint(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid " + key)
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func sessionIDFromContext(c *fiber.Ctx) string {
	if v := c.Locals("session_id"); v != nil {
		if handle, ok := v.(string); ok {
			return strings.TrimSpace(handle)
		}
	}
	return ""
}

// identityFromContext builds the discriminated identity: an authenticated
// user id when the JWT middleware resolved one, otherwise the anonymous
// session handle.
func identityFromContext(c *fiber.Ctx) identity.Identity {
	if userID := userIDFromContext(c); userID != 0 {
		return identity.Authenticated(userID)
	}
	return identity.Anonymous(sessionIDFromContext(c))
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
