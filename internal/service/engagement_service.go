package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
	"github.com/spec-kit/citizen-feedback-service/internal/events"
	"github.com/spec-kit/citizen-feedback-service/internal/repository"
	apperrors "github.com/spec-kit/citizen-feedback-service/pkg/util"
)

// EngagementService maintains the like and follow membership sets across
// feedbacks, comments and responses. Every mutation is a single guarded
// update in the repository; this layer only classifies a non-matching
// guard into NotFound vs the idempotency-violation errors and publishes
// the change.
type EngagementService struct {
	feedbacks repository.FeedbackRepository
	comments  repository.CommentRepository
	responses repository.ResponseRepository
	bus       events.Bus
}

// EngagementDependencies bundles repositories for the engagement service.
type EngagementDependencies struct {
	FeedbackRepo repository.FeedbackRepository
	CommentRepo  repository.CommentRepository
	ResponseRepo repository.ResponseRepository
	Bus          events.Bus
}

// NewEngagementService constructs the service.
func NewEngagementService(deps EngagementDependencies) *EngagementService {
	return &EngagementService{
		feedbacks: deps.FeedbackRepo,
		comments:  deps.CommentRepo,
		responses: deps.ResponseRepo,
		bus:       deps.Bus,
	}
}

// LikeFeedback adds the caller to the feedback's like set.
func (s *EngagementService) LikeFeedback(ctx context.Context, userID, feedbackID string) (*domain.Feedback, error) {
	feedback, err := s.feedbacks.AddLike(ctx, feedbackID, userID)
	if err != nil {
		return nil, s.classifyFeedback(ctx, feedbackID, err, apperrors.NewAlreadyLiked(map[string]any{"feedback_id": feedbackID}))
	}
	s.publishFeedbackUpdated(ctx, feedback, userID)
	return feedback, nil
}

// UnlikeFeedback removes the caller from the feedback's like set.
func (s *EngagementService) UnlikeFeedback(ctx context.Context, userID, feedbackID string) (*domain.Feedback, error) {
	feedback, err := s.feedbacks.RemoveLike(ctx, feedbackID, userID)
	if err != nil {
		return nil, s.classifyFeedback(ctx, feedbackID, err, apperrors.NewNotLiked(map[string]any{"feedback_id": feedbackID}))
	}
	s.publishFeedbackUpdated(ctx, feedback, userID)
	return feedback, nil
}

// FollowFeedback subscribes the caller to the feedback's follower set.
func (s *EngagementService) FollowFeedback(ctx context.Context, userID, feedbackID string) (*domain.Feedback, error) {
	feedback, err := s.feedbacks.AddFollower(ctx, feedbackID, userID)
	if err != nil {
		return nil, s.classifyFeedback(ctx, feedbackID, err, apperrors.NewAlreadyFollowing(map[string]any{"feedback_id": feedbackID}))
	}
	s.publishFeedbackUpdated(ctx, feedback, userID)
	return feedback, nil
}

// UnfollowFeedback removes the caller from the follower set.
func (s *EngagementService) UnfollowFeedback(ctx context.Context, userID, feedbackID string) (*domain.Feedback, error) {
	feedback, err := s.feedbacks.RemoveFollower(ctx, feedbackID, userID)
	if err != nil {
		return nil, s.classifyFeedback(ctx, feedbackID, err, apperrors.NewNotFollowing(map[string]any{"feedback_id": feedbackID}))
	}
	s.publishFeedbackUpdated(ctx, feedback, userID)
	return feedback, nil
}

// LikeComment adds the caller to a comment's like set.
func (s *EngagementService) LikeComment(ctx context.Context, userID, commentID string) (*domain.Comment, error) {
	comment, err := s.comments.AddLike(ctx, commentID, userID)
	if err != nil {
		return nil, s.classifyComment(ctx, commentID, err, apperrors.NewAlreadyLiked(map[string]any{"comment_id": commentID}))
	}
	s.publishEntityUpdated(ctx, comment.FeedbackID, userID)
	return comment, nil
}

// UnlikeComment removes the caller from a comment's like set.
func (s *EngagementService) UnlikeComment(ctx context.Context, userID, commentID string) (*domain.Comment, error) {
	comment, err := s.comments.RemoveLike(ctx, commentID, userID)
	if err != nil {
		return nil, s.classifyComment(ctx, commentID, err, apperrors.NewNotLiked(map[string]any{"comment_id": commentID}))
	}
	s.publishEntityUpdated(ctx, comment.FeedbackID, userID)
	return comment, nil
}

// LikeResponse adds the caller to a response's like set.
func (s *EngagementService) LikeResponse(ctx context.Context, userID, responseID string) (*domain.Response, error) {
	response, err := s.responses.AddLike(ctx, responseID, userID)
	if err != nil {
		return nil, s.classifyResponse(ctx, responseID, err, apperrors.NewAlreadyLiked(map[string]any{"response_id": responseID}))
	}
	s.publishEntityUpdated(ctx, response.FeedbackID, userID)
	return response, nil
}

// UnlikeResponse removes the caller from a response's like set.
func (s *EngagementService) UnlikeResponse(ctx context.Context, userID, responseID string) (*domain.Response, error) {
	response, err := s.responses.RemoveLike(ctx, responseID, userID)
	if err != nil {
		return nil, s.classifyResponse(ctx, responseID, err, apperrors.NewNotLiked(map[string]any{"response_id": responseID}))
	}
	s.publishEntityUpdated(ctx, response.FeedbackID, userID)
	return response, nil
}

// classifyFeedback maps a failed guarded update to NotFound when the row
// is absent, otherwise to the supplied membership-violation error.
func (s *EngagementService) classifyFeedback(ctx context.Context, feedbackID string, err, violation error) error {
	if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	if _, getErr := s.feedbacks.GetByID(ctx, feedbackID); getErr != nil {
		if errors.Is(getErr, pgx.ErrNoRows) {
			return apperrors.NewNotFound("feedback", map[string]any{"feedback_id": feedbackID})
		}
		return apperrors.MapError(getErr)
	}
	return violation
}

func (s *EngagementService) classifyComment(ctx context.Context, commentID string, err, violation error) error {
	if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	if _, getErr := s.comments.GetByID(ctx, commentID); getErr != nil {
		if errors.Is(getErr, pgx.ErrNoRows) {
			return apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		return apperrors.MapError(getErr)
	}
	return violation
}

func (s *EngagementService) classifyResponse(ctx context.Context, responseID string, err, violation error) error {
	if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	if _, getErr := s.responses.GetByID(ctx, responseID); getErr != nil {
		if errors.Is(getErr, pgx.ErrNoRows) {
			return apperrors.NewNotFound("response", map[string]any{"response_id": responseID})
		}
		return apperrors.MapError(getErr)
	}
	return violation
}

func (s *EngagementService) publishFeedbackUpdated(ctx context.Context, feedback *domain.Feedback, actorID string) {
	publish(ctx, s.bus, events.Event{
		Type:       events.EventFeedbackUpdated,
		FeedbackID: feedback.ID,
		ActorID:    &actorID,
	}, feedbackTopics(feedback.ID, feedback.AuthorID)...)
}

// publishEntityUpdated signals viewers of the parent feedback that a
// child entity's engagement changed.
func (s *EngagementService) publishEntityUpdated(ctx context.Context, feedbackID, actorID string) {
	publish(ctx, s.bus, events.Event{
		Type:       events.EventFeedbackUpdated,
		FeedbackID: feedbackID,
		ActorID:    &actorID,
	}, events.FeedbackTopic(feedbackID))
}
