package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/courseflow/courseflow-api/internal/middleware"
)

func sessionApp(capture *string) *fiber.App {
	app := fiber.New()
	app.Use(middleware.AnonymousSession(time.Hour))
	app.Get("/", func(c *fiber.Ctx) error {
		if v, ok := c.Locals("session_id").(string); ok {
			*capture = v
		}
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestAnonymousSessionMintsHandleForNewVisitors(t *testing.T) {
	var handle string
	app := sessionApp(&handle)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	_, err = uuid.Parse(handle)
	require.NoError(t, err, "minted handle must be a uuid")

	var cookie string
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			cookie = c.Value
		}
	}
	require.Equal(t, handle, cookie, "cookie and locals must agree")
}

func TestAnonymousSessionKeepsExistingHandle(t *testing.T) {
	var handle string
	app := sessionApp(&handle)
	existing := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: existing})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, existing, handle)
	for _, c := range resp.Cookies() {
		require.NotEqual(t, middleware.SessionCookieName, c.Name, "no replacement cookie for a valid handle")
	}
}

func TestAnonymousSessionReplacesMalformedHandle(t *testing.T) {
	var handle string
	app := sessionApp(&handle)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "not-a-uuid"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NotEqual(t, "not-a-uuid", handle)
	_, err = uuid.Parse(handle)
	require.NoError(t, err)
}
