package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
)

const feedbackColumns = `id, ticket_code, title, description, type, status, category, subcategory,
               priority, author_id, assigned_to, attachments, chat_enabled, likes, liked_by,
               followers, is_anonymous, location, created_at, updated_at`

// FeedbackFilter captures board/search parameters.
type FeedbackFilter struct {
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

// FeedbackRepository encapsulates feedback persistence. AddLike,
// RemoveLike, AddFollower and RemoveFollower each mutate the membership
// set and the counter in one guarded UPDATE; pgx.ErrNoRows from those
// means the guard did not match (absent row or membership violation) and
// the caller classifies.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	Update(ctx context.Context, feedback *domain.Feedback) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Feedback, error)
	GetByTicketCode(ctx context.Context, code string) (*domain.Feedback, error)
	ListWithFilter(ctx context.Context, filter FeedbackFilter) ([]domain.Feedback, error)
	UpdateStatus(ctx context.Context, id string, status domain.FeedbackStatus) (*domain.Feedback, error)
	AddLike(ctx context.Context, id, userID string) (*domain.Feedback, error)
	RemoveLike(ctx context.Context, id, userID string) (*domain.Feedback, error)
	AddFollower(ctx context.Context, id, userID string) (*domain.Feedback, error)
	RemoveFollower(ctx context.Context, id, userID string) (*domain.Feedback, error)
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository instantiates repository.
func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO feedbacks (ticket_code, title, description, type, status, category, subcategory,
            priority, author_id, assigned_to, attachments, chat_enabled, followers, is_anonymous, location)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, likes, liked_by, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		feedback.TicketCode,
		feedback.Title,
		feedback.Description,
		feedback.Type,
		feedback.Status,
		feedback.Category,
		feedback.Subcategory,
		feedback.Priority,
		feedback.AuthorID,
		feedback.AssignedTo,
		feedback.Attachments,
		feedback.ChatEnabled,
		feedback.Followers,
		feedback.IsAnonymous,
		feedback.Location,
	).Scan(&feedback.ID, &feedback.Likes, &feedback.LikedBy, &feedback.CreatedAt, &feedback.UpdatedAt)
}

func (r *feedbackRepository) Update(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        UPDATE feedbacks SET title=$1, description=$2, type=$3, category=$4, subcategory=$5,
            priority=$6, assigned_to=$7, attachments=$8, chat_enabled=$9, location=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		feedback.Title,
		feedback.Description,
		feedback.Type,
		feedback.Category,
		feedback.Subcategory,
		feedback.Priority,
		feedback.AssignedTo,
		feedback.Attachments,
		feedback.ChatEnabled,
		feedback.Location,
		feedback.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *feedbackRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM feedbacks WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *feedbackRepository) GetByID(ctx context.Context, id string) (*domain.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedbacks WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *feedbackRepository) GetByTicketCode(ctx context.Context, code string) (*domain.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedbacks WHERE ticket_code=$1`
	return r.fetchSingle(ctx, query, code)
}

// UpdateStatus sets the status without touching other fields.
func (r *feedbackRepository) UpdateStatus(ctx context.Context, id string, status domain.FeedbackStatus) (*domain.Feedback, error) {
	query := `UPDATE feedbacks SET status=$2, updated_at=NOW() WHERE id=$1 RETURNING ` + feedbackColumns
	return r.fetchSingle(ctx, query, id, status)
}

// AddLike inserts userID into liked_by and bumps the counter atomically.
// The guard keeps the set duplicate-free: concurrent calls for the same
// user resolve to exactly one winning row.
func (r *feedbackRepository) AddLike(ctx context.Context, id, userID string) (*domain.Feedback, error) {
	query := `
        UPDATE feedbacks
        SET liked_by = array_append(liked_by, $2), likes = likes + 1, updated_at = NOW()
        WHERE id = $1 AND NOT ($2 = ANY(liked_by))
        RETURNING ` + feedbackColumns
	return r.fetchSingle(ctx, query, id, userID)
}

// RemoveLike removes userID and decrements the counter atomically. The
// membership guard means likes can never go negative.
func (r *feedbackRepository) RemoveLike(ctx context.Context, id, userID string) (*domain.Feedback, error) {
	query := `
        UPDATE feedbacks
        SET liked_by = array_remove(liked_by, $2), likes = likes - 1, updated_at = NOW()
        WHERE id = $1 AND $2 = ANY(liked_by)
        RETURNING ` + feedbackColumns
	return r.fetchSingle(ctx, query, id, userID)
}

func (r *feedbackRepository) AddFollower(ctx context.Context, id, userID string) (*domain.Feedback, error) {
	query := `
        UPDATE feedbacks
        SET followers = array_append(followers, $2), updated_at = NOW()
        WHERE id = $1 AND NOT ($2 = ANY(followers))
        RETURNING ` + feedbackColumns
	return r.fetchSingle(ctx, query, id, userID)
}

func (r *feedbackRepository) RemoveFollower(ctx context.Context, id, userID string) (*domain.Feedback, error) {
	query := `
        UPDATE feedbacks
        SET followers = array_remove(followers, $2), updated_at = NOW()
        WHERE id = $1 AND $2 = ANY(followers)
        RETURNING ` + feedbackColumns
	return r.fetchSingle(ctx, query, id, userID)
}

func (r *feedbackRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Feedback, error) {
	var feedback domain.Feedback
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&feedback.ID,
		&feedback.TicketCode,
		&feedback.Title,
		&feedback.Description,
		&feedback.Type,
		&feedback.Status,
		&feedback.Category,
		&feedback.Subcategory,
		&feedback.Priority,
		&feedback.AuthorID,
		&feedback.AssignedTo,
		&feedback.Attachments,
		&feedback.ChatEnabled,
		&feedback.Likes,
		&feedback.LikedBy,
		&feedback.Followers,
		&feedback.IsAnonymous,
		&feedback.Location,
		&feedback.CreatedAt,
		&feedback.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *feedbackRepository) ListWithFilter(ctx context.Context, filter FeedbackFilter) ([]domain.Feedback, error) {
	base := `SELECT ` + feedbackColumns + ` FROM feedbacks`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		clauses = append(clauses, fmt.Sprintf("author_id=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			args = append(args, t)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("type IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFeedbacks(rows)
}

func scanFeedbacks(rows pgx.Rows) ([]domain.Feedback, error) {
	var result []domain.Feedback
	for rows.Next() {
		var feedback domain.Feedback
		if err := rows.Scan(
			&feedback.ID,
			&feedback.TicketCode,
			&feedback.Title,
			&feedback.Description,
			&feedback.Type,
			&feedback.Status,
			&feedback.Category,
			&feedback.Subcategory,
			&feedback.Priority,
			&feedback.AuthorID,
			&feedback.AssignedTo,
			&feedback.Attachments,
			&feedback.ChatEnabled,
			&feedback.Likes,
			&feedback.LikedBy,
			&feedback.Followers,
			&feedback.IsAnonymous,
			&feedback.Location,
			&feedback.CreatedAt,
			&feedback.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, feedback)
	}
	return result, rows.Err()
}
