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

type orderStore struct {
	db *sql.DB
}

// NewOrderStore creates an OrderStore backed by Postgres.
func NewOrderStore(db *sql.DB) repository.OrderStore {
	return &orderStore{db: db}
}

// WithinTx runs fn in one database transaction. Any error from fn, or a
// failed commit, rolls back everything fn wrote.
func (s *orderStore) WithinTx(ctx context.Context, fn func(tx repository.OrderTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&orderTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type orderTx struct {
	tx *sql.Tx
}

// BookForUpdate locks the book row so concurrent orders against the same book
// serialize on the stock check.
func (t *orderTx) BookForUpdate(ctx context.Context, bookID string) (*entity.Book, error) {
	var b entity.Book
	err := t.tx.QueryRowContext(ctx,
		"SELECT id, main_text, author, price, quantity, sold FROM books WHERE id = $1 AND NOT is_deleted FOR UPDATE",
		bookID,
	).Scan(&b.ID, &b.MainText, &b.Author, &b.Price, &b.Quantity, &b.Sold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entity.NotFoundError{Kind: "book", ID: bookID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read book %s: %w", bookID, err)
	}
	return &b, nil
}

func (t *orderTx) AdjustBookStock(ctx context.Context, bookID string, delta int) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE books SET quantity = quantity + $1, sold = sold - $1, updated_at = NOW() WHERE id = $2",
		delta, bookID,
	)
	if err != nil {
		return fmt.Errorf("failed to adjust stock for book %s: %w", bookID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &entity.NotFoundError{Kind: "book", ID: bookID}
	}
	return nil
}

func (t *orderTx) InsertOrder(ctx context.Context, order *entity.Order) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, name, address, phone, type, total_price, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		order.ID, order.UserID, order.Name, order.Address, order.Phone,
		order.Type, order.TotalPrice, order.Status, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, line := range order.Lines {
		_, err = t.tx.ExecContext(ctx,
			"INSERT INTO order_lines (order_id, book_id, book_name, quantity) VALUES ($1, $2, $3, $4)",
			order.ID, line.BookID, line.BookName, line.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order line: %w", err)
		}
	}
	return nil
}

func (t *orderTx) InsertHistory(ctx context.Context, history *entity.History) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO histories (id, user_id, name, email, phone, total_price, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		history.ID, history.UserID, history.Name, history.Email, history.Phone,
		history.TotalPrice, history.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history: %w", err)
	}

	for _, line := range history.Lines {
		_, err = t.tx.ExecContext(ctx,
			"INSERT INTO history_lines (history_id, book_id, book_name, quantity) VALUES ($1, $2, $3, $4)",
			history.ID, line.BookID, line.BookName, line.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert history line: %w", err)
		}
	}
	return nil
}

func (t *orderTx) OrderForUpdate(ctx context.Context, orderID string) (*entity.Order, error) {
	var o entity.Order
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, user_id, name, address, phone, type, total_price, status, created_at, updated_at
		 FROM orders WHERE id = $1 FOR UPDATE`,
		orderID,
	).Scan(&o.ID, &o.UserID, &o.Name, &o.Address, &o.Phone, &o.Type, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entity.NotFoundError{Kind: "order", ID: orderID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read order %s: %w", orderID, err)
	}

	rows, err := t.tx.QueryContext(ctx,
		"SELECT book_id, book_name, quantity FROM order_lines WHERE order_id = $1 ORDER BY id",
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line entity.OrderLine
		if err := rows.Scan(&line.BookID, &line.BookName, &line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		o.Lines = append(o.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order lines: %w", err)
	}
	return &o, nil
}

func (t *orderTx) SetOrderStatus(ctx context.Context, orderID string, status entity.OrderStatus) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

func (s *orderStore) FindByID(ctx context.Context, orderID string) (*entity.Order, error) {
	orders, err := s.queryOrders(ctx, "SELECT id, user_id, name, address, phone, type, total_price, status, created_at, updated_at FROM orders WHERE id = $1", orderID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, &entity.NotFoundError{Kind: "order", ID: orderID}
	}
	return &orders[0], nil
}

func (s *orderStore) FindByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	return s.queryOrders(ctx,
		"SELECT id, user_id, name, address, phone, type, total_price, status, created_at, updated_at FROM orders WHERE user_id = $1 ORDER BY created_at DESC",
		userID,
	)
}

func (s *orderStore) FindAll(ctx context.Context, offset, limit int) ([]entity.Order, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	orders, err := s.queryOrders(ctx,
		"SELECT id, user_id, name, address, phone, type, total_price, status, created_at, updated_at FROM orders ORDER BY created_at DESC OFFSET $1 LIMIT $2",
		offset, limit,
	)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Delete is the admin-only hard delete. The workflow itself never deletes
// orders.
func (s *orderStore) Delete(ctx context.Context, orderID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &entity.NotFoundError{Kind: "order", ID: orderID}
	}
	return nil
}

func (s *orderStore) queryOrders(ctx context.Context, query string, args ...any) ([]entity.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []entity.Order
	var ids []string
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Name, &o.Address, &o.Phone, &o.Type, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	lineRows, err := s.db.QueryContext(ctx,
		"SELECT order_id, book_id, book_name, quantity FROM order_lines WHERE order_id = ANY($1) ORDER BY id",
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer lineRows.Close()

	byID := make(map[string]*entity.Order, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}
	for lineRows.Next() {
		var orderID string
		var line entity.OrderLine
		if err := lineRows.Scan(&orderID, &line.BookID, &line.BookName, &line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Lines = append(o.Lines, line)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order lines: %w", err)
	}
	return orders, nil
}
