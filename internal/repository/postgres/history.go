package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
	"github.com/egannguyen/go-bookstore-backend/internal/repository"
	"github.com/lib/pq"
)

type historyRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a HistoryRepository backed by Postgres.
// History records are written only through the order transaction; this
// repository is read-only.
func NewHistoryRepository(db *sql.DB) repository.HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) FindByUser(ctx context.Context, userID string) ([]entity.History, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, email, phone, total_price, created_at FROM histories WHERE user_id = $1 ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query histories: %w", err)
	}
	defer rows.Close()

	var histories []entity.History
	var ids []string
	for rows.Next() {
		var h entity.History
		if err := rows.Scan(&h.ID, &h.UserID, &h.Name, &h.Email, &h.Phone, &h.TotalPrice, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		histories = append(histories, h)
		ids = append(ids, h.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating histories: %w", err)
	}
	if len(histories) == 0 {
		return histories, nil
	}

	lineRows, err := r.db.QueryContext(ctx,
		"SELECT history_id, book_id, book_name, quantity FROM history_lines WHERE history_id = ANY($1) ORDER BY id",
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history lines: %w", err)
	}
	defer lineRows.Close()

	byID := make(map[string]*entity.History, len(histories))
	for i := range histories {
		byID[histories[i].ID] = &histories[i]
	}
	for lineRows.Next() {
		var historyID string
		var line entity.OrderLine
		if err := lineRows.Scan(&historyID, &line.BookID, &line.BookName, &line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan history line: %w", err)
		}
		if h, ok := byID[historyID]; ok {
			h.Lines = append(h.Lines, line)
		}
	}
	return histories, lineRows.Err()
}

func (r *historyRepository) HasPurchased(ctx context.Context, userID, bookID string) (bool, error) {
	var purchased bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM history_lines l
			JOIN histories h ON h.id = l.history_id
			WHERE h.user_id = $1 AND l.book_id = $2
		)`,
		userID, bookID,
	).Scan(&purchased)
	if err != nil {
		return false, fmt.Errorf("failed to check purchase history: %w", err)
	}
	return purchased, nil
}
