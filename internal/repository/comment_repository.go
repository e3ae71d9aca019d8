package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
)

const commentColumns = `id, feedback_id, parent_id, author_id, author_name, message, attachments,
               likes, liked_by, created_at, updated_at`

// CommentRepository manages feedback comments. Like operations follow
// the same guarded-update contract as FeedbackRepository.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	UpdateMessage(ctx context.Context, id, message string) (*domain.Comment, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	ListByFeedback(ctx context.Context, feedbackID string) ([]domain.Comment, error)
	AddLike(ctx context.Context, id, userID string) (*domain.Comment, error)
	RemoveLike(ctx context.Context, id, userID string) (*domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (feedback_id, parent_id, author_id, author_name, message, attachments)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, likes, liked_by, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		comment.FeedbackID,
		comment.ParentID,
		comment.AuthorID,
		comment.AuthorName,
		comment.Message,
		comment.Attachments,
	).Scan(&comment.ID, &comment.Likes, &comment.LikedBy, &comment.CreatedAt, &comment.UpdatedAt)
}

func (r *commentRepository) UpdateMessage(ctx context.Context, id, message string) (*domain.Comment, error) {
	query := `UPDATE comments SET message=$2, updated_at=NOW() WHERE id=$1 RETURNING ` + commentColumns
	return r.fetchSingle(ctx, query, id, message)
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *commentRepository) AddLike(ctx context.Context, id, userID string) (*domain.Comment, error) {
	query := `
        UPDATE comments
        SET liked_by = array_append(liked_by, $2), likes = likes + 1, updated_at = NOW()
        WHERE id = $1 AND NOT ($2 = ANY(liked_by))
        RETURNING ` + commentColumns
	return r.fetchSingle(ctx, query, id, userID)
}

func (r *commentRepository) RemoveLike(ctx context.Context, id, userID string) (*domain.Comment, error) {
	query := `
        UPDATE comments
        SET liked_by = array_remove(liked_by, $2), likes = likes - 1, updated_at = NOW()
        WHERE id = $1 AND $2 = ANY(liked_by)
        RETURNING ` + commentColumns
	return r.fetchSingle(ctx, query, id, userID)
}

func (r *commentRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&comment.ID,
		&comment.FeedbackID,
		&comment.ParentID,
		&comment.AuthorID,
		&comment.AuthorName,
		&comment.Message,
		&comment.Attachments,
		&comment.Likes,
		&comment.LikedBy,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByFeedback(ctx context.Context, feedbackID string) ([]domain.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE feedback_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, feedbackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.FeedbackID,
			&comment.ParentID,
			&comment.AuthorID,
			&comment.AuthorName,
			&comment.Message,
			&comment.Attachments,
			&comment.Likes,
			&comment.LikedBy,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
