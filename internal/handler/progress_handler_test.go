package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/courseflow/courseflow-api/internal/dto"
	"github.com/courseflow/courseflow-api/internal/handler"
	"github.com/courseflow/courseflow-api/internal/identity"
	"github.com/courseflow/courseflow-api/internal/models"
	"github.com/courseflow/courseflow-api/internal/service"
	"github.com/courseflow/courseflow-api/internal/utils"
)

type stubProgressService struct {
	getResp    dto.CourseProgressResponse
	getErr     error
	recordResp dto.ProgressItemResponse
	recordErr  error
	lastWho    identity.Identity
	lastReq    dto.RecordItemProgressRequest
}

func (s *stubProgressService) GetProgress(_ context.Context, who identity.Identity, _ uint) (dto.CourseProgressResponse, error) {
	s.lastWho = who
	return s.getResp, s.getErr
}

func (s *stubProgressService) RecordItemProgress(_ context.Context, who identity.Identity, _ uint, req dto.RecordItemProgressRequest) (dto.ProgressItemResponse, error) {
	s.lastWho = who
	s.lastReq = req
	return s.recordResp, s.recordErr
}

// newTestApp mounts the handler behind a middleware that injects the resolved
// identity the way the JWT and session middlewares would.
func newTestApp(stub *stubProgressService, userID uint, sessionID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals("user_id", userID)
		}
		if sessionID != "" {
			c.Locals("session_id", sessionID)
		}
		return c.Next()
	})

	h := handler.NewProgressHandler(stub, zerolog.Nop())
	h.Register(app.Group("/courses"))
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, utils.APIResponse) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var envelope utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp, envelope
}

func TestGetProgressReturnsEnvelope(t *testing.T) {
	stub := &stubProgressService{
		getResp: dto.CourseProgressResponse{
			Progress: dto.CourseProgressView{CourseID: 10, Status: models.ProgressStatusInProgress},
		},
	}
	app := newTestApp(stub, 42, "")

	resp, envelope := doRequest(t, app, http.MethodGet, "/courses/10/progress", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, envelope.Success)
	require.True(t, stub.lastWho.IsAuthenticated())
}

func TestGetProgressFallsBackToSessionIdentity(t *testing.T) {
	stub := &stubProgressService{}
	app := newTestApp(stub, 0, "visitor-session")

	resp, _ := doRequest(t, app, http.MethodGet, "/courses/10/progress", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.False(t, stub.lastWho.IsAuthenticated())
	require.Equal(t, "visitor-session", stub.lastWho.Session())
}

func TestGetProgressRejectsMissingIdentity(t *testing.T) {
	app := newTestApp(&stubProgressService{}, 0, "")

	resp, envelope := doRequest(t, app, http.MethodGet, "/courses/10/progress", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.False(t, envelope.Success)
}

func TestGetProgressRejectsBadCourseID(t *testing.T) {
	app := newTestApp(&stubProgressService{}, 42, "")

	resp, _ := doRequest(t, app, http.MethodGet, "/courses/abc/progress", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetProgressMapsCourseNotFound(t *testing.T) {
	stub := &stubProgressService{getErr: service.ErrCourseNotFound}
	app := newTestApp(stub, 42, "")

	resp, envelope := doRequest(t, app, http.MethodGet, "/courses/999/progress", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "course not found", envelope.Message)
}

func TestRecordItemMapsServiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown item", service.ErrCurriculumItemNotFound, http.StatusNotFound},
		{"type mismatch", service.ErrItemTypeMismatch, http.StatusUnprocessableEntity},
		{"validation", validator.New().Struct(dto.RecordItemProgressRequest{ItemType: "assignment"}), http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(&stubProgressService{recordErr: tc.err}, 42, "")

			resp, envelope := doRequest(t, app, http.MethodPost, "/courses/10/progress/items",
				`{"item_id":101,"item_type":"lesson","completed":true}`)
			require.Equal(t, tc.status, resp.StatusCode)
			require.False(t, envelope.Success)
		})
	}
}

func TestRecordItemForwardsPayload(t *testing.T) {
	stub := &stubProgressService{
		recordResp: dto.ProgressItemResponse{
			Item: dto.ProgressItemView{CourseID: 10, ItemID: 101, ItemType: models.ItemTypeLesson, Completed: true},
		},
	}
	app := newTestApp(stub, 42, "")

	resp, envelope := doRequest(t, app, http.MethodPost, "/courses/10/progress/items",
		`{"item_id":101,"item_type":"lesson","completed":true,"resume_position":30,"note":"revisit"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, envelope.Success)

	require.Equal(t, uint(101), stub.lastReq.ItemID)
	require.Equal(t, models.ItemTypeLesson, stub.lastReq.ItemType)
	require.True(t, stub.lastReq.Completed)
	require.Equal(t, 30, stub.lastReq.ResumePosition)
	require.Equal(t, "revisit", stub.lastReq.Note)
}

func TestRecordItemRejectsMalformedBody(t *testing.T) {
	app := newTestApp(&stubProgressService{}, 42, "")

	resp, _ := doRequest(t, app, http.MethodPost, "/courses/10/progress/items", `{"item_id":`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
