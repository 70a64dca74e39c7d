package repository

import (
	"context"
	"time"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
)

// OrderTx is the set of operations available inside one atomic unit of work.
// Every mutation performed through it commits together or not at all.
type OrderTx interface {
	// BookForUpdate reads a book and locks its row for the remainder of the
	// transaction. Returns *entity.NotFoundError if the book does not exist.
	BookForUpdate(ctx context.Context, bookID string) (*entity.Book, error)
	// AdjustBookStock applies quantity += delta and sold -= delta to a book.
	// An order decrement passes a negative delta.
	AdjustBookStock(ctx context.Context, bookID string, delta int) error
	InsertOrder(ctx context.Context, order *entity.Order) error
	InsertHistory(ctx context.Context, history *entity.History) error
	// OrderForUpdate reads an order with its lines and locks the row.
	// Returns *entity.NotFoundError if the order does not exist.
	OrderForUpdate(ctx context.Context, orderID string) (*entity.Order, error)
	SetOrderStatus(ctx context.Context, orderID string, status entity.OrderStatus) error
}

// OrderStore persists orders. WithinTx runs fn inside a single transaction;
// returning an error aborts every mutation fn made.
type OrderStore interface {
	WithinTx(ctx context.Context, fn func(tx OrderTx) error) error
	FindByID(ctx context.Context, orderID string) (*entity.Order, error)
	FindByUser(ctx context.Context, userID string) ([]entity.Order, error)
	FindAll(ctx context.Context, offset, limit int) ([]entity.Order, int, error)
	Delete(ctx context.Context, orderID string) error
}

// BookRepository handles catalog persistence.
type BookRepository interface {
	Create(ctx context.Context, book *entity.Book) error
	FindByID(ctx context.Context, id string) (*entity.Book, error)
	FindAll(ctx context.Context, categoryID string, offset, limit int) ([]entity.Book, int, error)
	Update(ctx context.Context, book *entity.Book) error
	// SoftDelete hides a book from listings without breaking order history.
	SoftDelete(ctx context.Context, id string) error
	Seed(ctx context.Context, books []entity.Book) error
}

// CategoryRepository handles category persistence.
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	FindByID(ctx context.Context, id string) (*entity.Category, error)
	FindAll(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id string) error
}

// UserRepository handles account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByRefreshToken(ctx context.Context, token string) (*entity.User, error)
	FindAll(ctx context.Context, offset, limit int) ([]entity.User, int, error)
	Update(ctx context.Context, user *entity.User) error
	UpdateRefreshToken(ctx context.Context, userID, token string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// HistoryRepository reads the append-only purchase projection. Writes happen
// only through OrderTx.InsertHistory.
type HistoryRepository interface {
	FindByUser(ctx context.Context, userID string) ([]entity.History, error)
	// HasPurchased reports whether any history line owned by userID
	// references bookID.
	HasPurchased(ctx context.Context, userID, bookID string) (bool, error)
}

// CommentRepository handles review persistence.
type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	FindByID(ctx context.Context, id string) (*entity.Comment, error)
	FindByBook(ctx context.Context, bookID string) ([]entity.Comment, error)
	FindAll(ctx context.Context, offset, limit int) ([]entity.Comment, int, error)
	Delete(ctx context.Context, id string) error
}

// SupportRepository handles support ticket persistence.
type SupportRepository interface {
	Create(ctx context.Context, req *entity.SupportRequest) error
	FindByID(ctx context.Context, id string) (*entity.SupportRequest, error)
	FindAll(ctx context.Context, offset, limit int) ([]entity.SupportRequest, int, error)
	// Reply stores the admin answer and flips the ticket to answered.
	Reply(ctx context.Context, id, reply string, images []string) error
}

// AnalyticsRepository runs read-only aggregation queries over committed
// orders. Cancelled orders are excluded from every aggregate.
type AnalyticsRepository interface {
	DashboardStats(ctx context.Context) (*entity.DashboardStats, error)
	RevenueByPeriod(ctx context.Context, from, to time.Time, granularity entity.Granularity) ([]entity.RevenuePoint, error)
	RealTimeRevenue(ctx context.Context, since time.Time) ([]entity.RevenuePoint, error)
	TopSellingBooks(ctx context.Context, from, to time.Time, limit int) ([]entity.TopBook, error)
	RevenueSummary(ctx context.Context, from, to time.Time) (*entity.RevenueSummary, error)
}
