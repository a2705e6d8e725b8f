package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/courseflow/courseflow-api/internal/dto"
	"github.com/courseflow/courseflow-api/internal/identity"
	"github.com/courseflow/courseflow-api/internal/models"
	"github.com/courseflow/courseflow-api/internal/observability"
	"github.com/courseflow/courseflow-api/internal/repository"
)

var (
	// ErrCourseNotFound signals that the course id does not resolve.
	ErrCourseNotFound = errors.New("course not found")
	// ErrCurriculumItemNotFound signals an item id outside the course's curriculum.
	ErrCurriculumItemNotFound = errors.New("curriculum item not found")
	// ErrItemTypeMismatch signals a declared type that contradicts the curriculum.
	ErrItemTypeMismatch = errors.New("item type does not match curriculum")
)

// ProgressService is the only entry point external callers use to read or
// mutate course progress. It selects the storage variant from the caller's
// identity: authenticated learners write durable activity rows, anonymous
// visitors write session-scoped state.
type ProgressService interface {
	GetProgress(ctx context.Context, who identity.Identity, courseID uint) (dto.CourseProgressResponse, error)
	RecordItemProgress(ctx context.Context, who identity.Identity, courseID uint, req dto.RecordItemProgressRequest) (dto.ProgressItemResponse, error)
}

type progressService struct {
	curriculum CurriculumService
	persistent repository.ProgressStore
	session    repository.ProgressStore
	items      *repository.ProgressItemRepository
	aggregates *repository.ProgressAggregateRepository
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewProgressService wires the orchestrator over both storage variants.
func NewProgressService(
	curriculum CurriculumService,
	persistent repository.ProgressStore,
	session repository.ProgressStore,
	items *repository.ProgressItemRepository,
	aggregates *repository.ProgressAggregateRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) ProgressService {
	return &progressService{
		curriculum: curriculum,
		persistent: persistent,
		session:    session,
		items:      items,
		aggregates: aggregates,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "progress_service").Logger(),
		tracer:     otel.Tracer("github.com/courseflow/courseflow-api/internal/service/progress"),
		now:        time.Now,
	}
}

func (s *progressService) GetProgress(ctx context.Context, who identity.Identity, courseID uint) (dto.CourseProgressResponse, error) {
	start := time.Now()
	defer func() {
		observability.ProgressLatency().WithLabelValues("get_progress").Observe(time.Since(start).Seconds())
	}()

	spanCtx, span := s.tracer.Start(ctx, "progress.get", trace.WithAttributes(
		attribute.Int64("course.id", int64(courseID)),
		attribute.Bool("identity.authenticated", who.IsAuthenticated()),
	))
	defer span.End()

	exists, err := s.curriculum.CourseExists(spanCtx, courseID)
	if err != nil {
		return dto.CourseProgressResponse{}, s.fail(span, "get_progress", err)
	}
	if !exists {
		observability.ProgressRequests().WithLabelValues("get_progress", "not_found").Inc()
		return dto.CourseProgressResponse{}, ErrCourseNotFound
	}

	curriculum, err := s.curriculum.Resolve(spanCtx, courseID)
	if err != nil {
		return dto.CourseProgressResponse{}, s.fail(span, "get_progress", err)
	}

	store := s.storeFor(who)
	records, err := s.items.LoadItems(spanCtx, store, who, courseID)
	if err != nil {
		return dto.CourseProgressResponse{}, s.fail(span, "get_progress", err)
	}

	summary := Summarize(curriculum, records)

	progress, started, err := s.aggregates.Load(spanCtx, store, who, courseID)
	if err != nil {
		return dto.CourseProgressResponse{}, s.fail(span, "get_progress", err)
	}

	// Recomputation is idempotent; a raced transition elsewhere results in a
	// no-op here because NextStatus leaves completed aggregates alone.
	if started {
		if next, changed := NextStatus(progress, summary, s.now()); changed {
			progress, err = s.aggregates.Save(spanCtx, store, who, next)
			if err != nil {
				return dto.CourseProgressResponse{}, s.fail(span, "get_progress", err)
			}
			observability.CourseCompletions().Inc()
			s.logger.Info().Uint("course_id", courseID).Msg("course auto-completed on read")
		}
	}

	observability.ProgressRequests().WithLabelValues("get_progress", "ok").Inc()
	return dto.CourseProgressResponse{
		Progress:   dto.NewCourseProgressView(withCourse(progress, courseID), started),
		Summary:    summary,
		Curriculum: enrichCurriculum(curriculum, records),
	}, nil
}

func (s *progressService) RecordItemProgress(ctx context.Context, who identity.Identity, courseID uint, req dto.RecordItemProgressRequest) (dto.ProgressItemResponse, error) {
	start := time.Now()
	defer func() {
		observability.ProgressLatency().WithLabelValues("record_item").Observe(time.Since(start).Seconds())
	}()

	if err := s.validator.Struct(req); err != nil {
		observability.ProgressRequests().WithLabelValues("record_item", "invalid").Inc()
		return dto.ProgressItemResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "progress.record_item", trace.WithAttributes(
		attribute.Int64("course.id", int64(courseID)),
		attribute.Int64("item.id", int64(req.ItemID)),
		attribute.String("item.type", req.ItemType),
		attribute.Bool("item.completed", req.Completed),
	))
	defer span.End()

	exists, err := s.curriculum.CourseExists(spanCtx, courseID)
	if err != nil {
		return dto.ProgressItemResponse{}, s.fail(span, "record_item", err)
	}
	if !exists {
		observability.ProgressRequests().WithLabelValues("record_item", "not_found").Inc()
		return dto.ProgressItemResponse{}, ErrCourseNotFound
	}

	curriculum, err := s.curriculum.Resolve(spanCtx, courseID)
	if err != nil {
		return dto.ProgressItemResponse{}, s.fail(span, "record_item", err)
	}

	// Both validations happen before any write; a rejected report leaves the
	// stores untouched.
	entry, ok := findCurriculumItem(curriculum, req.ItemID)
	if !ok {
		observability.ProgressRequests().WithLabelValues("record_item", "not_found").Inc()
		return dto.ProgressItemResponse{}, ErrCurriculumItemNotFound
	}
	if entry.Type != req.ItemType {
		observability.ProgressRequests().WithLabelValues("record_item", "type_mismatch").Inc()
		return dto.ProgressItemResponse{}, ErrItemTypeMismatch
	}

	store := s.storeFor(who)
	saved, err := s.items.SaveItem(spanCtx, store, who, models.CourseProgressItem{
		CourseID:       courseID,
		ItemID:         req.ItemID,
		ItemType:       req.ItemType,
		Completed:      req.Completed,
		ResumePosition: req.ResumePosition,
		Note:           strings.TrimSpace(s.sanitizer.Sanitize(req.Note)),
	})
	if err != nil {
		return dto.ProgressItemResponse{}, s.fail(span, "record_item", err)
	}

	progress, summary, err := s.refreshAggregate(spanCtx, store, who, courseID, curriculum)
	if err != nil {
		return dto.ProgressItemResponse{}, s.fail(span, "record_item", err)
	}

	observability.ProgressRequests().WithLabelValues("record_item", "ok").Inc()
	return dto.ProgressItemResponse{
		Item:     dto.NewProgressItemView(saved),
		Summary:  summary,
		Progress: dto.NewCourseProgressView(progress, true),
	}, nil
}

// refreshAggregate re-derives the course-level record after an item write,
// creating it on the first interaction with the course.
func (s *progressService) refreshAggregate(ctx context.Context, store repository.ProgressStore, who identity.Identity, courseID uint, curriculum []models.CurriculumItem) (models.CourseProgress, dto.ProgressSummary, error) {
	records, err := s.items.LoadItems(ctx, store, who, courseID)
	if err != nil {
		return models.CourseProgress{}, dto.ProgressSummary{}, err
	}
	summary := Summarize(curriculum, records)

	progress, found, err := s.aggregates.Load(ctx, store, who, courseID)
	if err != nil {
		return models.CourseProgress{}, dto.ProgressSummary{}, err
	}
	if !found {
		progress = models.CourseProgress{CourseID: courseID}
	}

	next, completed := NextStatus(progress, summary, s.now())
	saved, err := s.aggregates.Save(ctx, store, who, next)
	if err != nil {
		return models.CourseProgress{}, dto.ProgressSummary{}, err
	}
	if completed {
		observability.CourseCompletions().Inc()
		s.logger.Info().Uint("course_id", courseID).Msg("course completed")
	}

	return withCourse(saved, courseID), summary, nil
}

func (s *progressService) storeFor(who identity.Identity) repository.ProgressStore {
	if who.IsAuthenticated() {
		return s.persistent
	}
	return s.session
}

func (s *progressService) fail(span trace.Span, operation string, err error) error {
	span.RecordError(err)
	observability.ProgressRequests().WithLabelValues(operation, "error").Inc()
	return err
}

func withCourse(progress models.CourseProgress, courseID uint) models.CourseProgress {
	if progress.CourseID == 0 {
		progress.CourseID = courseID
	}
	return progress
}

func findCurriculumItem(curriculum []models.CurriculumItem, itemID uint) (models.CurriculumItem, bool) {
	for _, entry := range curriculum {
		if entry.ID == itemID {
			return entry, true
		}
	}
	return models.CurriculumItem{}, false
}

func enrichCurriculum(curriculum []models.CurriculumItem, records []models.CourseProgressItem) []dto.CurriculumItemView {
	byID := make(map[uint]models.CourseProgressItem, len(records))
	for _, record := range records {
		byID[record.ItemID] = record
	}

	views := make([]dto.CurriculumItemView, 0, len(curriculum))
	for _, entry := range curriculum {
		view := dto.CurriculumItemView{
			ID:           entry.ID,
			Type:         entry.Type,
			Title:        entry.Title,
			SectionID:    entry.SectionID,
			SectionTitle: entry.SectionTitle,
			Attributes:   entry.Attributes,
		}
		if record, ok := byID[entry.ID]; ok && record.ItemType == entry.Type {
			view.Completed = record.Completed
			view.CompletedAt = record.CompletedAt
			view.ResumePosition = record.ResumePosition
		}
		views = append(views, view)
	}
	return views
}
