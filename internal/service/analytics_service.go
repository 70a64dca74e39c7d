package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/egannguyen/go-bookstore-backend/internal/cache"
	"github.com/egannguyen/go-bookstore-backend/internal/entity"
	"github.com/egannguyen/go-bookstore-backend/internal/repository"
	"golang.org/x/sync/singleflight"
)

// AnalyticsService serves dashboard counters and revenue aggregates. Results
// are cached cache-aside with a short TTL; singleflight collapses concurrent
// cache misses for the same key into one database query.
type AnalyticsService struct {
	analytics repository.AnalyticsRepository
	cache     cache.Cache
	ttl       time.Duration
	group     singleflight.Group
}

func NewAnalyticsService(analytics repository.AnalyticsRepository, c cache.Cache, ttl time.Duration) *AnalyticsService {
	return &AnalyticsService{
		analytics: analytics,
		cache:     c,
		ttl:       ttl,
	}
}

// cached runs fetch behind the cache and singleflight. Cache failures are
// logged and fall through to the database.
func cached[T any](ctx context.Context, s *AnalyticsService, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.Error("Analytics cache read failed", "key", key, "err", err)
	} else if ok {
		var out T
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
		slog.Error("Analytics cache entry corrupt", "key", key)
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		out, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(out); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
				slog.Error("Analytics cache write failed", "key", key, "err", err)
			}
		}
		return out, nil
	})
	if err != nil {
		return zero, err
	}
	return result.(T), nil
}

// DashboardStats returns the headline user/order/book counters.
func (s *AnalyticsService) DashboardStats(ctx context.Context) (*entity.DashboardStats, error) {
	return cached(ctx, s, "analytics:dashboard", s.analytics.DashboardStats)
}

// RevenueByPeriod aggregates revenue between from and to in hour, day or
// month buckets.
func (s *AnalyticsService) RevenueByPeriod(ctx context.Context, from, to time.Time, granularity entity.Granularity) ([]entity.RevenuePoint, error) {
	if from.After(to) {
		return nil, fmt.Errorf("invalid date range: start after end")
	}
	key := fmt.Sprintf("analytics:revenue:%s:%d:%d", granularity, from.Unix(), to.Unix())
	return cached(ctx, s, key, func(ctx context.Context) ([]entity.RevenuePoint, error) {
		return s.analytics.RevenueByPeriod(ctx, from, to, granularity)
	})
}

// RealTimeRevenue returns minute buckets over the last hour. Not cached:
// staleness defeats its purpose.
func (s *AnalyticsService) RealTimeRevenue(ctx context.Context) ([]entity.RevenuePoint, error) {
	return s.analytics.RealTimeRevenue(ctx, time.Now().Add(-time.Hour))
}

// TopSellingBooks ranks books by units sold between from and to.
func (s *AnalyticsService) TopSellingBooks(ctx context.Context, from, to time.Time, limit int) ([]entity.TopBook, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	key := fmt.Sprintf("analytics:top:%d:%d:%d", from.Unix(), to.Unix(), limit)
	return cached(ctx, s, key, func(ctx context.Context) ([]entity.TopBook, error) {
		return s.analytics.TopSellingBooks(ctx, from, to, limit)
	})
}

// SalesPerformance bundles revenue for the current day, week and month.
func (s *AnalyticsService) SalesPerformance(ctx context.Context) (*entity.SalesSummary, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := startOfWeek(now)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	key := fmt.Sprintf("analytics:sales:%d", startOfDay.Unix())
	return cached(ctx, s, key, func(ctx context.Context) (*entity.SalesSummary, error) {
		daily, err := s.analytics.RevenueSummary(ctx, startOfDay, now)
		if err != nil {
			return nil, err
		}
		weekly, err := s.analytics.RevenueSummary(ctx, startOfWeek, now)
		if err != nil {
			return nil, err
		}
		monthly, err := s.analytics.RevenueSummary(ctx, startOfMonth, now)
		if err != nil {
			return nil, err
		}
		return &entity.SalesSummary{Daily: *daily, Weekly: *weekly, Monthly: *monthly}, nil
	})
}

// startOfWeek returns midnight of the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
