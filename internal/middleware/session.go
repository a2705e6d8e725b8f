package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionCookieName carries the anonymous visitor's session handle.
const SessionCookieName = "courseflow_session"

// AnonymousSession guarantees every request carries a session handle, minting
// one for first-time visitors. The handle is only used as a storage key for
// ephemeral progress; it carries no identity claims.
func AnonymousSession(ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		handle := strings.TrimSpace(c.Cookies(SessionCookieName))
		if _, err := uuid.Parse(handle); err != nil {
			handle = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     SessionCookieName,
				Value:    handle,
				Expires:  time.Now().Add(ttl),
				HTTPOnly: true,
				SameSite: "Lax",
			})
		}

		c.Locals("session_id", handle)
		return c.Next()
	}
}
