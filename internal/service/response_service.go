package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
	"github.com/spec-kit/citizen-feedback-service/internal/events"
	"github.com/spec-kit/citizen-feedback-service/internal/repository"
	apperrors "github.com/spec-kit/citizen-feedback-service/pkg/util"
)

// ResponseService manages official staff responses. A response carrying
// a statusUpdate advances the feedback's lifecycle in the same call.
type ResponseService struct {
	responses repository.ResponseRepository
	feedbacks repository.FeedbackRepository
	history   repository.FeedbackHistoryRepository
	bus       events.Bus
}

// ResponseDependencies bundles repositories for response service.
type ResponseDependencies struct {
	ResponseRepo repository.ResponseRepository
	FeedbackRepo repository.FeedbackRepository
	HistoryRepo  repository.FeedbackHistoryRepository
	Bus          events.Bus
}

// ResponseCreateInput describes response creation payload.
type ResponseCreateInput struct {
	FeedbackID   string
	Message      string
	StatusUpdate *domain.FeedbackStatus
}

// NewResponseService constructs the service.
func NewResponseService(deps ResponseDependencies) *ResponseService {
	return &ResponseService{
		responses: deps.ResponseRepo,
		feedbacks: deps.FeedbackRepo,
		history:   deps.HistoryRepo,
		bus:       deps.Bus,
	}
}

// Create posts an official response. Staff only, enforced at the route.
func (s *ResponseService) Create(ctx context.Context, actor *domain.User, input ResponseCreateInput) (*domain.Response, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}
	if input.StatusUpdate != nil && !domain.ValidStatus(*input.StatusUpdate) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.StatusUpdate})
	}
	feedback, err := s.getFeedback(ctx, input.FeedbackID)
	if err != nil {
		return nil, err
	}

	response := &domain.Response{
		FeedbackID:   feedback.ID,
		ByID:         actor.ID,
		Message:      message,
		StatusUpdate: input.StatusUpdate,
	}
	if err := s.responses.Create(ctx, response); err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.bus, events.Event{
		Type:       events.EventResponseAdded,
		FeedbackID: feedback.ID,
		ActorID:    &actor.ID,
		Payload: events.ResponseAddedPayload{
			ResponseID:   response.ID,
			StatusUpdate: response.StatusUpdate,
			Preview:      preview(response.Message, 120),
		},
	}, feedbackTopics(feedback.ID, feedback.AuthorID)...)

	if input.StatusUpdate != nil && *input.StatusUpdate != feedback.Status {
		if _, err := applyStatusChange(ctx, s.feedbacks, s.history, s.bus, &actor.ID, feedback, *input.StatusUpdate, "response"); err != nil {
			return nil, err
		}
	}
	return response, nil
}

// Update edits a response's message. Author only.
func (s *ResponseService) Update(ctx context.Context, actor *domain.User, responseID, message string) (*domain.Response, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}
	response, err := s.getResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if response.ByID != actor.ID {
		return nil, apperrors.NewForbidden("not the author")
	}
	updated, err := s.responses.UpdateMessage(ctx, responseID, message)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return updated, nil
}

// Delete removes a response. Author or admin.
func (s *ResponseService) Delete(ctx context.Context, actor *domain.User, responseID string) error {
	response, err := s.getResponse(ctx, responseID)
	if err != nil {
		return err
	}
	if response.ByID != actor.ID && !actor.IsAdmin() {
		return apperrors.NewForbidden("not the author")
	}
	if err := s.responses.Delete(ctx, responseID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListByFeedback returns a feedback's responses in chronological order.
func (s *ResponseService) ListByFeedback(ctx context.Context, feedbackID string) ([]domain.Response, error) {
	if _, err := s.getFeedback(ctx, feedbackID); err != nil {
		return nil, err
	}
	return s.responses.ListByFeedback(ctx, feedbackID)
}

func (s *ResponseService) getFeedback(ctx context.Context, id string) (*domain.Feedback, error) {
	feedback, err := s.feedbacks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("feedback", map[string]any{"feedback_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return feedback, nil
}

func (s *ResponseService) getResponse(ctx context.Context, id string) (*domain.Response, error) {
	response, err := s.responses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("response", map[string]any{"response_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return response, nil
}
