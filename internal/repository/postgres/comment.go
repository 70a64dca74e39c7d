package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
	"github.com/egannguyen/go-bookstore-backend/internal/repository"
)

type commentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a CommentRepository backed by Postgres.
func NewCommentRepository(db *sql.DB) repository.CommentRepository {
	return &commentRepository{db: db}
}

const commentColumns = "id, user_id, book_id, content, star, feeling, image, created_at"

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, user_id, book_id, content, star, feeling, image, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		comment.ID, comment.UserID, comment.BookID, comment.Content,
		comment.Star, comment.Feeling, comment.Image, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (r *commentRepository) FindByID(ctx context.Context, id string) (*entity.Comment, error) {
	var c entity.Comment
	err := r.db.QueryRowContext(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE id = $1", id,
	).Scan(&c.ID, &c.UserID, &c.BookID, &c.Content, &c.Star, &c.Feeling, &c.Image, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entity.NotFoundError{Kind: "comment", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}
	return &c, nil
}

func (r *commentRepository) FindByBook(ctx context.Context, bookID string) ([]entity.Comment, error) {
	return r.queryComments(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE book_id = $1 ORDER BY created_at DESC", bookID)
}

func (r *commentRepository) FindAll(ctx context.Context, offset, limit int) ([]entity.Comment, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	comments, err := r.queryComments(ctx,
		"SELECT "+commentColumns+" FROM comments ORDER BY created_at DESC OFFSET $1 LIMIT $2", offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &entity.NotFoundError{Kind: "comment", ID: id}
	}
	return nil
}

func (r *commentRepository) queryComments(ctx context.Context, query string, args ...any) ([]entity.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []entity.Comment
	for rows.Next() {
		var c entity.Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.BookID, &c.Content, &c.Star, &c.Feeling, &c.Image, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
