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

type bookRepository struct {
	db *sql.DB
}

// NewBookRepository creates a BookRepository backed by Postgres.
func NewBookRepository(db *sql.DB) repository.BookRepository {
	return &bookRepository{db: db}
}

const bookColumns = "id, main_text, author, price, category_id, thumbnail, slider, quantity, sold, created_at, updated_at"

func scanBook(row interface{ Scan(...any) error }) (entity.Book, error) {
	var b entity.Book
	err := row.Scan(&b.ID, &b.MainText, &b.Author, &b.Price, &b.CategoryID,
		&b.Thumbnail, pq.Array(&b.Slider), &b.Quantity, &b.Sold, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *bookRepository) Create(ctx context.Context, book *entity.Book) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO books (id, main_text, author, price, category_id, thumbnail, slider, quantity, sold, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		book.ID, book.MainText, book.Author, book.Price, book.CategoryID,
		book.Thumbnail, pq.Array(book.Slider), book.Quantity, book.Sold, book.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id string) (*entity.Book, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+bookColumns+" FROM books WHERE id = $1 AND NOT is_deleted", id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entity.NotFoundError{Kind: "book", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan book: %w", err)
	}
	return &b, nil
}

func (r *bookRepository) FindAll(ctx context.Context, categoryID string, offset, limit int) ([]entity.Book, int, error) {
	where := "NOT is_deleted"
	args := []any{}
	if categoryID != "" {
		where += " AND category_id = $1"
		args = append(args, categoryID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM books WHERE %s ORDER BY created_at DESC OFFSET $%d LIMIT $%d",
		bookColumns, where, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []entity.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating books: %w", err)
	}
	return books, total, nil
}

func (r *bookRepository) Update(ctx context.Context, book *entity.Book) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE books SET main_text = $1, author = $2, price = $3, category_id = $4,
		 thumbnail = $5, slider = $6, quantity = $7, updated_at = NOW()
		 WHERE id = $8 AND NOT is_deleted`,
		book.MainText, book.Author, book.Price, book.CategoryID,
		book.Thumbnail, pq.Array(book.Slider), book.Quantity, book.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &entity.NotFoundError{Kind: "book", ID: book.ID}
	}
	return nil
}

func (r *bookRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE books SET is_deleted = TRUE, deleted_at = NOW() WHERE id = $1 AND NOT is_deleted", id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &entity.NotFoundError{Kind: "book", ID: id}
	}
	return nil
}

func (r *bookRepository) Seed(ctx context.Context, books []entity.Book) error {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // already seeded
	}

	for _, b := range books {
		if err := r.Create(ctx, &b); err != nil {
			return fmt.Errorf("failed to seed book %s: %w", b.ID, err)
		}
	}
	return nil
}
