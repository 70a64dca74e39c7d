package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
	"github.com/egannguyen/go-bookstore-backend/internal/repository"
	"github.com/lib/pq"
)

type supportRepository struct {
	db *sql.DB
}

// NewSupportRepository creates a SupportRepository backed by Postgres.
func NewSupportRepository(db *sql.DB) repository.SupportRepository {
	return &supportRepository{db: db}
}

const supportColumns = "id, main_issue, detail_issue, email, phone, order_number, subject, description, file_list, status, admin_reply, reply_images, created_at, updated_at"

func scanSupport(row interface{ Scan(...any) error }) (entity.SupportRequest, error) {
	var s entity.SupportRequest
	err := row.Scan(&s.ID, &s.MainIssue, &s.DetailIssue, &s.Email, &s.Phone,
		&s.OrderNumber, &s.Subject, &s.Description, pq.Array(&s.FileList),
		&s.Status, &s.AdminReply, pq.Array(&s.ReplyImages), &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *supportRepository) Create(ctx context.Context, req *entity.SupportRequest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO support_requests (id, main_issue, detail_issue, email, phone, order_number, subject, description, file_list, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		req.ID, req.MainIssue, req.DetailIssue, req.Email, req.Phone,
		req.OrderNumber, req.Subject, req.Description, pq.Array(req.FileList),
		req.Status, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert support request: %w", err)
	}
	return nil
}

func (r *supportRepository) FindByID(ctx context.Context, id string) (*entity.SupportRequest, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+supportColumns+" FROM support_requests WHERE id = $1", id)
	s, err := scanSupport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entity.NotFoundError{Kind: "support request", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan support request: %w", err)
	}
	return &s, nil
}

func (r *supportRepository) FindAll(ctx context.Context, offset, limit int) ([]entity.SupportRequest, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM support_requests").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count support requests: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+supportColumns+" FROM support_requests ORDER BY created_at DESC OFFSET $1 LIMIT $2", offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query support requests: %w", err)
	}
	defer rows.Close()

	var requests []entity.SupportRequest
	for rows.Next() {
		s, err := scanSupport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan support request: %w", err)
		}
		requests = append(requests, s)
	}
	return requests, total, rows.Err()
}

func (r *supportRepository) Reply(ctx context.Context, id, reply string, images []string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE support_requests SET admin_reply = $1, reply_images = $2, status = $3, updated_at = NOW() WHERE id = $4",
		reply, pq.Array(images), entity.SupportStatusAnswered, id,
	)
	if err != nil {
		return fmt.Errorf("failed to reply to support request: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &entity.NotFoundError{Kind: "support request", ID: id}
	}
	return nil
}
