package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
)

const responseColumns = `id, feedback_id, by_id, message, status_update, likes, liked_by, created_at, updated_at`

// ResponseRepository manages official staff responses.
type ResponseRepository interface {
	Create(ctx context.Context, response *domain.Response) error
	UpdateMessage(ctx context.Context, id, message string) (*domain.Response, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Response, error)
	ListByFeedback(ctx context.Context, feedbackID string) ([]domain.Response, error)
	AddLike(ctx context.Context, id, userID string) (*domain.Response, error)
	RemoveLike(ctx context.Context, id, userID string) (*domain.Response, error)
}

type responseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository builds repository.
func NewResponseRepository(pool *pgxpool.Pool) ResponseRepository {
	return &responseRepository{pool: pool}
}

func (r *responseRepository) Create(ctx context.Context, response *domain.Response) error {
	const query = `
        INSERT INTO responses (feedback_id, by_id, message, status_update)
        VALUES ($1,$2,$3,$4)
        RETURNING id, likes, liked_by, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		response.FeedbackID,
		response.ByID,
		response.Message,
		response.StatusUpdate,
	).Scan(&response.ID, &response.Likes, &response.LikedBy, &response.CreatedAt, &response.UpdatedAt)
}

func (r *responseRepository) UpdateMessage(ctx context.Context, id, message string) (*domain.Response, error) {
	query := `UPDATE responses SET message=$2, updated_at=NOW() WHERE id=$1 RETURNING ` + responseColumns
	return r.fetchSingle(ctx, query, id, message)
}

func (r *responseRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM responses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *responseRepository) GetByID(ctx context.Context, id string) (*domain.Response, error) {
	query := `SELECT ` + responseColumns + ` FROM responses WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *responseRepository) AddLike(ctx context.Context, id, userID string) (*domain.Response, error) {
	query := `
        UPDATE responses
        SET liked_by = array_append(liked_by, $2), likes = likes + 1, updated_at = NOW()
        WHERE id = $1 AND NOT ($2 = ANY(liked_by))
        RETURNING ` + responseColumns
	return r.fetchSingle(ctx, query, id, userID)
}

func (r *responseRepository) RemoveLike(ctx context.Context, id, userID string) (*domain.Response, error) {
	query := `
        UPDATE responses
        SET liked_by = array_remove(liked_by, $2), likes = likes - 1, updated_at = NOW()
        WHERE id = $1 AND $2 = ANY(liked_by)
        RETURNING ` + responseColumns
	return r.fetchSingle(ctx, query, id, userID)
}

func (r *responseRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Response, error) {
	var response domain.Response
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&response.ID,
		&response.FeedbackID,
		&response.ByID,
		&response.Message,
		&response.StatusUpdate,
		&response.Likes,
		&response.LikedBy,
		&response.CreatedAt,
		&response.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepository) ListByFeedback(ctx context.Context, feedbackID string) ([]domain.Response, error) {
	query := `SELECT ` + responseColumns + ` FROM responses WHERE feedback_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, feedbackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Response
	for rows.Next() {
		var response domain.Response
		if err := rows.Scan(
			&response.ID,
			&response.FeedbackID,
			&response.ByID,
			&response.Message,
			&response.StatusUpdate,
			&response.Likes,
			&response.LikedBy,
			&response.CreatedAt,
			&response.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, response)
	}
	return result, rows.Err()
}
