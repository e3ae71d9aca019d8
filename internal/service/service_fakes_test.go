package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
	"github.com/spec-kit/citizen-feedback-service/internal/events"
	"github.com/spec-kit/citizen-feedback-service/internal/repository"
)

// The fakes mirror the repository contracts, including the guarded
// update semantics: a like/follow mutation whose guard does not match
// reports pgx.ErrNoRows exactly like the SQL implementations do.

type fakeBus struct {
	mu        sync.Mutex
	published []busRecord
}

type busRecord struct {
	topic string
	event events.Event
}

func newFakeBus() *fakeBus {
	return &fakeBus{}
}

func (b *fakeBus) Publish(_ context.Context, topic string, event events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, busRecord{topic: topic, event: event})
	return nil
}

func (b *fakeBus) Subscribe(string) (<-chan events.Event, func()) {
	ch := make(chan events.Event)
	close(ch)
	return ch, func() {}
}

func (b *fakeBus) topicsFor(eventType events.EventType) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var topics []string
	for _, rec := range b.published {
		if rec.event.Type == eventType {
			topics = append(topics, rec.topic)
		}
	}
	return topics
}

func (b *fakeBus) countByType(eventType events.EventType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, rec := range b.published {
		if rec.event.Type == eventType {
			n++
		}
	}
	return n
}

type fakeFeedbackRepo struct {
	mu         sync.Mutex
	items      map[string]*domain.Feedback
	nextID     int
	createErrs []error
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{items: make(map[string]*domain.Feedback)}
}

func (r *fakeFeedbackRepo) Create(_ context.Context, feedback *domain.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return err
		}
	}
	r.nextID++
	feedback.ID = fmt.Sprintf("fb-%d", r.nextID)
	feedback.CreatedAt = time.Now()
	feedback.UpdatedAt = feedback.CreatedAt
	clone := *feedback
	r.items[feedback.ID] = &clone
	return nil
}

func (r *fakeFeedbackRepo) Update(_ context.Context, feedback *domain.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[feedback.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *feedback
	r.items[feedback.ID] = &clone
	return nil
}

func (r *fakeFeedbackRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

func (r *fakeFeedbackRepo) GetByID(_ context.Context, id string) (*domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *item
	return &clone, nil
}

func (r *fakeFeedbackRepo) GetByTicketCode(_ context.Context, code string) (*domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.TicketCode == code {
			clone := *item
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeFeedbackRepo) ListWithFilter(_ context.Context, filter repository.FeedbackFilter) ([]domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Feedback
	for _, item := range r.items {
		if filter.Category != nil && item.Category != *filter.Category {
			continue
		}
		if filter.AuthorID != nil && (item.AuthorID == nil || *item.AuthorID != *filter.AuthorID) {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (r *fakeFeedbackRepo) UpdateStatus(_ context.Context, id string, status domain.FeedbackStatus) (*domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	item.Status = status
	item.UpdatedAt = time.Now()
	clone := *item
	return &clone, nil
}

func (r *fakeFeedbackRepo) AddLike(_ context.Context, id, userID string) (*domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || contains(item.LikedBy, userID) {
		return nil, pgx.ErrNoRows
	}
	item.LikedBy = append(item.LikedBy, userID)
	item.Likes = len(item.LikedBy)
	clone := *item
	return &clone, nil
}

func (r *fakeFeedbackRepo) RemoveLike(_ context.Context, id, userID string) (*domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || !contains(item.LikedBy, userID) {
		return nil, pgx.ErrNoRows
	}
	item.LikedBy = remove(item.LikedBy, userID)
	item.Likes = len(item.LikedBy)
	clone := *item
	return &clone, nil
}

func (r *fakeFeedbackRepo) AddFollower(_ context.Context, id, userID string) (*domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || contains(item.Followers, userID) {
		return nil, pgx.ErrNoRows
	}
	item.Followers = append(item.Followers, userID)
	clone := *item
	return &clone, nil
}

func (r *fakeFeedbackRepo) RemoveFollower(_ context.Context, id, userID string) (*domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || !contains(item.Followers, userID) {
		return nil, pgx.ErrNoRows
	}
	item.Followers = remove(item.Followers, userID)
	clone := *item
	return &clone, nil
}

func (r *fakeFeedbackRepo) seed(feedback *domain.Feedback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *feedback
	r.items[feedback.ID] = &clone
}

type fakeCommentRepo struct {
	mu     sync.Mutex
	items  map[string]*domain.Comment
	nextID int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{items: make(map[string]*domain.Comment)}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	comment.ID = fmt.Sprintf("cm-%d", r.nextID)
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	clone := *comment
	r.items[comment.ID] = &clone
	return nil
}

func (r *fakeCommentRepo) UpdateMessage(_ context.Context, id, message string) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	item.Message = message
	item.UpdatedAt = time.Now()
	clone := *item
	return &clone, nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *item
	return &clone, nil
}

func (r *fakeCommentRepo) ListByFeedback(_ context.Context, feedbackID string) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Comment
	for _, item := range r.items {
		if item.FeedbackID == feedbackID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) AddLike(_ context.Context, id, userID string) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || contains(item.LikedBy, userID) {
		return nil, pgx.ErrNoRows
	}
	item.LikedBy = append(item.LikedBy, userID)
	item.Likes = len(item.LikedBy)
	clone := *item
	return &clone, nil
}

func (r *fakeCommentRepo) RemoveLike(_ context.Context, id, userID string) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || !contains(item.LikedBy, userID) {
		return nil, pgx.ErrNoRows
	}
	item.LikedBy = remove(item.LikedBy, userID)
	item.Likes = len(item.LikedBy)
	clone := *item
	return &clone, nil
}

type fakeResponseRepo struct {
	mu     sync.Mutex
	items  map[string]*domain.Response
	nextID int
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{items: make(map[string]*domain.Response)}
}

func (r *fakeResponseRepo) Create(_ context.Context, response *domain.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	response.ID = fmt.Sprintf("rs-%d", r.nextID)
	response.CreatedAt = time.Now()
	response.UpdatedAt = response.CreatedAt
	clone := *response
	r.items[response.ID] = &clone
	return nil
}

func (r *fakeResponseRepo) UpdateMessage(_ context.Context, id, message string) (*domain.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	item.Message = message
	clone := *item
	return &clone, nil
}

func (r *fakeResponseRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

func (r *fakeResponseRepo) GetByID(_ context.Context, id string) (*domain.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *item
	return &clone, nil
}

func (r *fakeResponseRepo) ListByFeedback(_ context.Context, feedbackID string) ([]domain.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Response
	for _, item := range r.items {
		if item.FeedbackID == feedbackID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeResponseRepo) AddLike(_ context.Context, id, userID string) (*domain.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || contains(item.LikedBy, userID) {
		return nil, pgx.ErrNoRows
	}
	item.LikedBy = append(item.LikedBy, userID)
	item.Likes = len(item.LikedBy)
	clone := *item
	return &clone, nil
}

func (r *fakeResponseRepo) RemoveLike(_ context.Context, id, userID string) (*domain.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || !contains(item.LikedBy, userID) {
		return nil, pgx.ErrNoRows
	}
	item.LikedBy = remove(item.LikedBy, userID)
	item.Likes = len(item.LikedBy)
	clone := *item
	return &clone, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.FeedbackHistory
	nextID  int
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.FeedbackHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = fmt.Sprintf("hist-%d", r.nextID)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByFeedback(_ context.Context, feedbackID string) ([]domain.FeedbackHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.FeedbackHistory
	for _, entry := range r.entries {
		if entry.FeedbackID == feedbackID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	items  map[string]*domain.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.items[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.items[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *item
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if strings.EqualFold(item.Email, email) {
			clone := *item
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, item := range r.items {
		out = append(out, *item)
	}
	return out, nil
}

func (r *fakeUserRepo) seed(user *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.items[user.ID] = &clone
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func remove(set []string, v string) []string {
	out := set[:0]
	for _, s := range set {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
