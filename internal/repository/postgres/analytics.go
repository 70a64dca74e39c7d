package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
	"github.com/egannguyen/go-bookstore-backend/internal/repository"
)

type analyticsRepository struct {
	db *sql.DB
}

// NewAnalyticsRepository creates an AnalyticsRepository backed by Postgres.
// All aggregates run over committed orders and exclude cancelled ones.
func NewAnalyticsRepository(db *sql.DB) repository.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) DashboardStats(ctx context.Context) (*entity.DashboardStats, error) {
	var stats entity.DashboardStats
	err := r.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM books WHERE NOT is_deleted)`,
	).Scan(&stats.CountUsers, &stats.CountOrders, &stats.CountBooks)
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard stats: %w", err)
	}
	return &stats, nil
}

func truncUnit(g entity.Granularity) string {
	switch g {
	case entity.GranularityHour:
		return "hour"
	case entity.GranularityMonth:
		return "month"
	}
	return "day"
}

func (r *analyticsRepository) RevenueByPeriod(ctx context.Context, from, to time.Time, granularity entity.Granularity) ([]entity.RevenuePoint, error) {
	query := fmt.Sprintf(
		`SELECT date_trunc('%s', created_at) AS bucket,
			SUM(total_price), COUNT(*), AVG(total_price)
		 FROM orders
		 WHERE created_at >= $1 AND created_at <= $2 AND status <> 'CANCELLED'
		 GROUP BY bucket ORDER BY bucket`,
		truncUnit(granularity),
	)
	return r.queryRevenuePoints(ctx, query, from, to)
}

func (r *analyticsRepository) RealTimeRevenue(ctx context.Context, since time.Time) ([]entity.RevenuePoint, error) {
	return r.queryRevenuePoints(ctx,
		`SELECT date_trunc('minute', created_at) AS bucket,
			SUM(total_price), COUNT(*), AVG(total_price)
		 FROM orders
		 WHERE created_at >= $1 AND status <> 'CANCELLED'
		 GROUP BY bucket ORDER BY bucket`,
		since,
	)
}

func (r *analyticsRepository) queryRevenuePoints(ctx context.Context, query string, args ...any) ([]entity.RevenuePoint, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue: %w", err)
	}
	defer rows.Close()

	var points []entity.RevenuePoint
	for rows.Next() {
		var p entity.RevenuePoint
		if err := rows.Scan(&p.Bucket, &p.Revenue, &p.OrderCount, &p.AvgOrderValue); err != nil {
			return nil, fmt.Errorf("failed to scan revenue point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *analyticsRepository) TopSellingBooks(ctx context.Context, from, to time.Time, limit int) ([]entity.TopBook, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT l.book_id, MIN(l.book_name), SUM(l.quantity) AS total_quantity, SUM(o.total_price)
		 FROM order_lines l
		 JOIN orders o ON o.id = l.order_id
		 WHERE o.created_at >= $1 AND o.created_at <= $2 AND o.status <> 'CANCELLED'
		 GROUP BY l.book_id
		 ORDER BY total_quantity DESC
		 LIMIT $3`,
		from, to, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query top selling books: %w", err)
	}
	defer rows.Close()

	var books []entity.TopBook
	for rows.Next() {
		var b entity.TopBook
		if err := rows.Scan(&b.BookID, &b.BookName, &b.TotalQuantity, &b.TotalRevenue); err != nil {
			return nil, fmt.Errorf("failed to scan top book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *analyticsRepository) RevenueSummary(ctx context.Context, from, to time.Time) (*entity.RevenueSummary, error) {
	var s entity.RevenueSummary
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_price), 0), COUNT(*)
		 FROM orders
		 WHERE created_at >= $1 AND created_at <= $2 AND status <> 'CANCELLED'`,
		from, to,
	).Scan(&s.Revenue, &s.OrderCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue summary: %w", err)
	}
	return &s, nil
}
