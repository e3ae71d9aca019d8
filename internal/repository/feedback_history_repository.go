package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
)

// FeedbackHistoryRepository stores the append-only status audit log.
// There is deliberately no update or delete.
type FeedbackHistoryRepository interface {
	Create(ctx context.Context, entry *domain.FeedbackHistory) error
	ListByFeedback(ctx context.Context, feedbackID string) ([]domain.FeedbackHistory, error)
}

type feedbackHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackHistoryRepository builds repository.
func NewFeedbackHistoryRepository(pool *pgxpool.Pool) FeedbackHistoryRepository {
	return &feedbackHistoryRepository{pool: pool}
}

func (r *feedbackHistoryRepository) Create(ctx context.Context, entry *domain.FeedbackHistory) error {
	const query = `
        INSERT INTO feedback_history (feedback_id, changed_by, old_status, new_status, note)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.FeedbackID,
		entry.ChangedBy,
		entry.OldStatus,
		entry.NewStatus,
		entry.Note,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *feedbackHistoryRepository) ListByFeedback(ctx context.Context, feedbackID string) ([]domain.FeedbackHistory, error) {
	const query = `
        SELECT id, feedback_id, changed_by, old_status, new_status, note, created_at
        FROM feedback_history WHERE feedback_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, feedbackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.FeedbackHistory
	for rows.Next() {
		var entry domain.FeedbackHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.FeedbackID,
			&entry.ChangedBy,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.Note,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
