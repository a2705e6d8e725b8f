package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/courseflow/courseflow-api/internal/dto"
	"github.com/courseflow/courseflow-api/internal/service"
	"github.com/courseflow/courseflow-api/internal/utils"
)

// ProgressHandler exposes course progress endpoints.
type ProgressHandler struct {
	service service.ProgressService
	logger  zerolog.Logger
}

// NewProgressHandler constructs a progress handler.
func NewProgressHandler(svc service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: svc,
		logger:  logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register wires progress routes under a course-scoped group.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Get("/:courseID/progress", h.getProgress)
	router.Post("/:courseID/progress/items", h.recordItem)
}

func (h *ProgressHandler) getProgress(c *fiber.Ctx) error {
	courseID, err := parseParamUint(c, "courseID")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid course id", nil)
	}

	who := identityFromContext(c)
	if who.IsZero() {
		return utils.Fail(c, fiber.StatusUnauthorized, "session not established", nil)
	}

	result, err := h.service.GetProgress(c.Context(), who, courseID)
	if err != nil {
		return h.mapError(c, err, "failed to fetch course progress")
	}

	return utils.OK(c, result, "course progress retrieved", nil)
}

func (h *ProgressHandler) recordItem(c *fiber.Ctx) error {
	courseID, err := parseParamUint(c, "courseID")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid course id", nil)
	}

	who := identityFromContext(c)
	if who.IsZero() {
		return utils.Fail(c, fiber.StatusUnauthorized, "session not established", nil)
	}

	var req dto.RecordItemProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid request body", nil)
	}

	result, err := h.service.RecordItemProgress(c.Context(), who, courseID, req)
	if err != nil {
		return h.mapError(c, err, "failed to record item progress")
	}

	return utils.OK(c, result, "item progress recorded", nil)
}

func (h *ProgressHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.Fail(c, fiber.StatusNotFound, "course not found", nil)
	case errors.Is(err, service.ErrCurriculumItemNotFound):
		return utils.Fail(c, fiber.StatusNotFound, "curriculum item not found", nil)
	case errors.Is(err, service.ErrItemTypeMismatch):
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "item type does not match curriculum", nil)
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", err.Error())
	default:
		h.logger.Error().Err(err).Msg(fallback)
		return utils.Fail(c, fiber.StatusInternalServerError, fallback, nil)
	}
}
