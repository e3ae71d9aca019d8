package service

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
	"github.com/spec-kit/citizen-feedback-service/internal/events"
	"github.com/spec-kit/citizen-feedback-service/internal/repository"
	apperrors "github.com/spec-kit/citizen-feedback-service/pkg/util"
)

const (
	ticketCodeLength   = 6
	ticketCodeCharset  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	ticketCodeAttempts = 5
	uniqueViolation    = "23505"
)

// FeedbackService coordinates feedback workflows.
type FeedbackService struct {
	feedbacks repository.FeedbackRepository
	history   repository.FeedbackHistoryRepository
	users     repository.UserRepository
	bus       events.Bus
}

// FeedbackDependencies bundles repositories for feedback service.
type FeedbackDependencies struct {
	FeedbackRepo repository.FeedbackRepository
	HistoryRepo  repository.FeedbackHistoryRepository
	UserRepo     repository.UserRepository
	Bus          events.Bus
}

// FeedbackCreateInput describes feedback creation payload.
type FeedbackCreateInput struct {
	Title       string
	Description string
	Type        domain.FeedbackType
	Category    string
	Subcategory *string
	Attachments []string
	ChatEnabled bool
	IsAnonymous bool
	Location    *domain.Location
}

// FeedbackUpdateInput describes editable fields.
type FeedbackUpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Subcategory *string
	Attachments []string
	ChatEnabled *bool
	Location    *domain.Location
}

// FeedbackListFilter describes board listing filters.
type FeedbackListFilter struct {
	AuthorID   *string
	AssignedTo *string
	Types      []domain.FeedbackType
	Statuses   []domain.FeedbackStatus
	Priorities []domain.FeedbackPriority
	Category   *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewFeedbackService constructs the service.
func NewFeedbackService(deps FeedbackDependencies) *FeedbackService {
	return &FeedbackService{
		feedbacks: deps.FeedbackRepo,
		history:   deps.HistoryRepo,
		users:     deps.UserRepo,
		bus:       deps.Bus,
	}
}

// Create submits a new feedback. Priority derives from the type; a
// non-anonymous author is auto-added to the follower set exactly once.
func (s *FeedbackService) Create(ctx context.Context, actor *domain.User, input FeedbackCreateInput) (*domain.Feedback, error) {
	if !domain.ValidType(input.Type) {
		return nil, apperrors.NewValidationError("unknown feedback type", map[string]any{"type": input.Type})
	}
	if !input.IsAnonymous && actor == nil {
		return nil, apperrors.NewAuthenticationRequired("author required for non-anonymous feedback")
	}

	feedback := &domain.Feedback{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Type:        input.Type,
		Status:      domain.FeedbackStatusOpen,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Priority:    domain.DerivePriority(input.Type),
		Attachments: input.Attachments,
		ChatEnabled: input.ChatEnabled,
		IsAnonymous: input.IsAnonymous,
		Location:    input.Location,
		Followers:   []string{},
	}
	if feedback.Attachments == nil {
		feedback.Attachments = []string{}
	}
	if !input.IsAnonymous {
		feedback.AuthorID = &actor.ID
		feedback.Followers = []string{actor.ID}
	}

	if err := s.createWithTicketCode(ctx, feedback); err != nil {
		return nil, err
	}

	publish(ctx, s.bus, events.Event{
		Type:       events.EventFeedbackCreated,
		FeedbackID: feedback.ID,
		ActorID:    feedback.AuthorID,
		Payload: events.FeedbackCreatedPayload{
			TicketCode: feedback.TicketCode,
			Type:       feedback.Type,
			Category:   feedback.Category,
			Priority:   feedback.Priority,
			Title:      feedback.Title,
		},
	}, feedbackTopics(feedback.ID, feedback.AuthorID)...)
	return feedback, nil
}

// createWithTicketCode retries the insert with a fresh code on a
// ticket_code unique violation.
func (s *FeedbackService) createWithTicketCode(ctx context.Context, feedback *domain.Feedback) error {
	for attempt := 0; attempt < ticketCodeAttempts; attempt++ {
		code, err := generateTicketCode()
		if err != nil {
			return apperrors.MapError(err)
		}
		feedback.TicketCode = code
		err = s.feedbacks.Create(ctx, feedback)
		if err == nil {
			return nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && strings.Contains(pgErr.ConstraintName, "ticket_code") {
			continue
		}
		return apperrors.MapError(err)
	}
	return apperrors.NewConflict("could not allocate a unique ticket code", nil)
}

// GetByID fetches a feedback.
func (s *FeedbackService) GetByID(ctx context.Context, id string) (*domain.Feedback, error) {
	feedback, err := s.feedbacks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("feedback", map[string]any{"feedback_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return feedback, nil
}

// GetByTicketCode fetches a feedback by its public ticket code.
func (s *FeedbackService) GetByTicketCode(ctx context.Context, code string) (*domain.Feedback, error) {
	feedback, err := s.feedbacks.GetByTicketCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("feedback", map[string]any{"ticket_code": code})
		}
		return nil, apperrors.MapError(err)
	}
	return feedback, nil
}

// List returns feedbacks matching the filter.
func (s *FeedbackService) List(ctx context.Context, filter FeedbackListFilter) ([]domain.Feedback, error) {
	repoFilter := repository.FeedbackFilter{
		AuthorID:   filter.AuthorID,
		AssignedTo: filter.AssignedTo,
		Types:      filter.Types,
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Category:   filter.Category,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	return s.feedbacks.ListWithFilter(ctx, repoFilter)
}

// Update edits feedback fields, subject to the anonymity rule: anonymous
// feedback is mutable by admins only, otherwise author or admin.
func (s *FeedbackService) Update(ctx context.Context, actor *domain.User, id string, input FeedbackUpdateInput) (*domain.Feedback, error) {
	feedback, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canModify(actor, feedback); err != nil {
		return nil, err
	}

	if input.Title != nil {
		feedback.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		feedback.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		feedback.Category = *input.Category
	}
	if input.Subcategory != nil {
		feedback.Subcategory = input.Subcategory
	}
	if input.Attachments != nil {
		feedback.Attachments = input.Attachments
	}
	if input.ChatEnabled != nil {
		feedback.ChatEnabled = *input.ChatEnabled
	}
	if input.Location != nil {
		feedback.Location = input.Location
	}

	if err := s.feedbacks.Update(ctx, feedback); err != nil {
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.bus, events.Event{
		Type:       events.EventFeedbackUpdated,
		FeedbackID: feedback.ID,
		ActorID:    &actor.ID,
	}, feedbackTopics(feedback.ID, feedback.AuthorID)...)
	return feedback, nil
}

// Delete removes a feedback. Same authorization rule as Update.
func (s *FeedbackService) Delete(ctx context.Context, actor *domain.User, id string) error {
	feedback, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := canModify(actor, feedback); err != nil {
		return err
	}
	if err := s.feedbacks.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	publish(ctx, s.bus, events.Event{
		Type:       events.EventFeedbackDeleted,
		FeedbackID: feedback.ID,
		ActorID:    &actor.ID,
	}, feedbackTopics(feedback.ID, feedback.AuthorID)...)
	return nil
}

// UpdateStatus moves the feedback to a new lifecycle state. Transitions
// are free-form, the history log is append-only regardless.
func (s *FeedbackService) UpdateStatus(ctx context.Context, actor *domain.User, id string, newStatus domain.FeedbackStatus, note string) (*domain.Feedback, error) {
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}
	feedback, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canModify(actor, feedback); err != nil {
		return nil, err
	}
	return applyStatusChange(ctx, s.feedbacks, s.history, s.bus, &actor.ID, feedback, newStatus, note)
}

// Assign routes the feedback to a staff account. Admin only, enforced at
// the route; the assignee must be an active admin.
func (s *FeedbackService) Assign(ctx context.Context, actor *domain.User, id, assigneeID string) (*domain.Feedback, error) {
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": assigneeID})
		}
		return nil, apperrors.MapError(err)
	}
	if !assignee.IsAdmin() || !assignee.IsActive {
		return nil, apperrors.NewConflict("assignee must be an active staff account", map[string]any{"user_id": assigneeID})
	}
	feedback, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	feedback.AssignedTo = &assignee.ID
	if err := s.feedbacks.Update(ctx, feedback); err != nil {
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.bus, events.Event{
		Type:       events.EventFeedbackUpdated,
		FeedbackID: feedback.ID,
		ActorID:    &actor.ID,
	}, feedbackTopics(feedback.ID, feedback.AuthorID)...)
	return feedback, nil
}

// History returns the append-only status log.
func (s *FeedbackService) History(ctx context.Context, id string) ([]domain.FeedbackHistory, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.history.ListByFeedback(ctx, id)
}

// canModify enforces the anonymity rule shared by update, delete and
// status changes.
func canModify(actor *domain.User, feedback *domain.Feedback) error {
	if actor == nil {
		return apperrors.NewAuthenticationRequired("login required")
	}
	if actor.IsAdmin() {
		return nil
	}
	if feedback.IsAnonymous {
		return apperrors.NewForbidden("anonymous feedback is managed by staff only")
	}
	if feedback.AuthorID == nil || *feedback.AuthorID != actor.ID {
		return apperrors.NewForbidden("not the author")
	}
	return nil
}

// applyStatusChange persists the transition, appends the audit entry and
// publishes the change. Shared with the response flow, which advances
// status implicitly.
func applyStatusChange(ctx context.Context, feedbacks repository.FeedbackRepository, history repository.FeedbackHistoryRepository, bus events.Bus, actorID *string, feedback *domain.Feedback, newStatus domain.FeedbackStatus, note string) (*domain.Feedback, error) {
	oldStatus := feedback.Status
	updated, err := feedbacks.UpdateStatus(ctx, feedback.ID, newStatus)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	entry := &domain.FeedbackHistory{
		FeedbackID: feedback.ID,
		ChangedBy:  actorID,
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		Note:       note,
	}
	if err := history.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	publish(ctx, bus, events.Event{
		Type:       events.EventFeedbackStatusChanged,
		FeedbackID: feedback.ID,
		ActorID:    actorID,
		Payload: events.FeedbackStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Note:      note,
		},
	}, feedbackTopics(feedback.ID, feedback.AuthorID)...)
	return updated, nil
}

func generateTicketCode() (string, error) {
	buf := make([]byte, ticketCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, ticketCodeLength)
	for i, b := range buf {
		code[i] = ticketCodeCharset[int(b)%len(ticketCodeCharset)]
	}
	return string(code), nil
}
