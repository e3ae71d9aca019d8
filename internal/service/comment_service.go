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

// CommentService manages the comment thread under a feedback.
type CommentService struct {
	comments  repository.CommentRepository
	feedbacks repository.FeedbackRepository
	bus       events.Bus
}

// CommentDependencies bundles repositories for comment service.
type CommentDependencies struct {
	CommentRepo  repository.CommentRepository
	FeedbackRepo repository.FeedbackRepository
	Bus          events.Bus
}

// CommentCreateInput describes comment creation payload.
type CommentCreateInput struct {
	FeedbackID  string
	ParentID    *string
	Message     string
	Attachments []string
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments:  deps.CommentRepo,
		feedbacks: deps.FeedbackRepo,
		bus:       deps.Bus,
	}
}

// Create posts a comment. The author's display name is captured as a
// snapshot; later profile renames do not rewrite old comments.
func (s *CommentService) Create(ctx context.Context, actor *domain.User, input CommentCreateInput) (*domain.Comment, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}
	feedback, err := s.getFeedback(ctx, input.FeedbackID)
	if err != nil {
		return nil, err
	}
	if input.ParentID != nil {
		parent, err := s.getComment(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.FeedbackID != feedback.ID {
			return nil, apperrors.NewValidationError("parent comment belongs to a different feedback", nil)
		}
		if parent.ParentID != nil {
			// replies nest at most one level deep
			return nil, apperrors.NewValidationError("cannot reply to a reply", nil)
		}
	}

	comment := &domain.Comment{
		FeedbackID:  feedback.ID,
		ParentID:    input.ParentID,
		AuthorID:    actor.ID,
		AuthorName:  actor.Name,
		Message:     message,
		Attachments: input.Attachments,
	}
	if comment.Attachments == nil {
		comment.Attachments = []string{}
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishCommentAdded(ctx, feedback, comment)
	return comment, nil
}

// CreateFromChat persists a relayed chat message as a comment. The chat
// relay re-validates chatEnabled before every send.
func (s *CommentService) CreateFromChat(ctx context.Context, feedbackID, authorID, authorName, message string) (*domain.Comment, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}
	feedback, err := s.getFeedback(ctx, feedbackID)
	if err != nil {
		return nil, err
	}
	if !feedback.ChatEnabled {
		return nil, apperrors.NewForbidden("chat is disabled for this feedback")
	}

	comment := &domain.Comment{
		FeedbackID:  feedback.ID,
		AuthorID:    authorID,
		AuthorName:  authorName,
		Message:     message,
		Attachments: []string{},
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishCommentAdded(ctx, feedback, comment)
	return comment, nil
}

// Edit updates a comment's message. Author only.
func (s *CommentService) Edit(ctx context.Context, actor *domain.User, commentID, message string) (*domain.Comment, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actor.ID {
		return nil, apperrors.NewForbidden("not the author")
	}
	updated, err := s.comments.UpdateMessage(ctx, commentID, message)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return updated, nil
}

// Delete removes a comment. Author or admin.
func (s *CommentService) Delete(ctx context.Context, actor *domain.User, commentID string) error {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != actor.ID && !actor.IsAdmin() {
		return apperrors.NewForbidden("not the author")
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListByFeedback returns a feedback's comments in chronological order.
func (s *CommentService) ListByFeedback(ctx context.Context, feedbackID string) ([]domain.Comment, error) {
	if _, err := s.getFeedback(ctx, feedbackID); err != nil {
		return nil, err
	}
	return s.comments.ListByFeedback(ctx, feedbackID)
}

func (s *CommentService) getFeedback(ctx context.Context, id string) (*domain.Feedback, error) {
	feedback, err := s.feedbacks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("feedback", map[string]any{"feedback_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return feedback, nil
}

func (s *CommentService) getComment(ctx context.Context, id string) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("comment", map[string]any{"comment_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

func (s *CommentService) publishCommentAdded(ctx context.Context, feedback *domain.Feedback, comment *domain.Comment) {
	publish(ctx, s.bus, events.Event{
		Type:       events.EventCommentAdded,
		FeedbackID: feedback.ID,
		ActorID:    &comment.AuthorID,
		Payload: events.CommentAddedPayload{
			CommentID:  comment.ID,
			ParentID:   comment.ParentID,
			AuthorName: comment.AuthorName,
			Preview:    preview(comment.Message, 120),
		},
	}, feedbackTopics(feedback.ID, feedback.AuthorID)...)
}
