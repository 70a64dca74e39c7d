package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
)

type fakeCache struct {
	entries map[string][]byte
	sets    int
	failing bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.failing {
		return nil, false, errors.New("cache down")
	}
	raw, ok := c.entries[key]
	return raw, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.failing {
		return errors.New("cache down")
	}
	c.entries[key] = value
	c.sets++
	return nil
}

type fakeAnalyticsRepo struct {
	stats      *entity.DashboardStats
	statsCalls int

	revenue      []entity.RevenuePoint
	revenueCalls int

	summaryCalls int
}

func (f *fakeAnalyticsRepo) DashboardStats(ctx context.Context) (*entity.DashboardStats, error) {
	f.statsCalls++
	return f.stats, nil
}

func (f *fakeAnalyticsRepo) RevenueByPeriod(ctx context.Context, from, to time.Time, granularity entity.Granularity) ([]entity.RevenuePoint, error) {
	f.revenueCalls++
	return f.revenue, nil
}

func (f *fakeAnalyticsRepo) RealTimeRevenue(ctx context.Context, since time.Time) ([]entity.RevenuePoint, error) {
	f.revenueCalls++
	return f.revenue, nil
}

func (f *fakeAnalyticsRepo) TopSellingBooks(ctx context.Context, from, to time.Time, limit int) ([]entity.TopBook, error) {
	return nil, nil
}

func (f *fakeAnalyticsRepo) RevenueSummary(ctx context.Context, from, to time.Time) (*entity.RevenueSummary, error) {
	f.summaryCalls++
	return &entity.RevenueSummary{Revenue: 100, OrderCount: 2}, nil
}

func TestDashboardStatsIsCached(t *testing.T) {
	repo := &fakeAnalyticsRepo{stats: &entity.DashboardStats{CountUsers: 3, CountOrders: 7, CountBooks: 12}}
	c := newFakeCache()
	svc := NewAnalyticsService(repo, c, time.Minute)

	first, err := svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, first.CountOrders)
	assert.Equal(t, 1, repo.statsCalls)
	assert.Equal(t, 1, c.sets)

	// Second read is served from the cache.
	second, err := svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.statsCalls)
}

func TestCacheFailureFallsThroughToDatabase(t *testing.T) {
	repo := &fakeAnalyticsRepo{stats: &entity.DashboardStats{CountUsers: 1}}
	c := newFakeCache()
	c.failing = true
	svc := NewAnalyticsService(repo, c, time.Minute)

	stats, err := svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CountUsers)
	assert.Equal(t, 1, repo.statsCalls)

	// Still no cache, so the database is hit again.
	_, err = svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.statsCalls)
}

func TestRevenueByPeriodValidatesRange(t *testing.T) {
	svc := NewAnalyticsService(&fakeAnalyticsRepo{}, newFakeCache(), time.Minute)

	now := time.Now()
	_, err := svc.RevenueByPeriod(context.Background(), now, now.Add(-time.Hour), entity.GranularityDay)
	require.Error(t, err)
}

func TestRevenueByPeriodKeyedByRangeAndGranularity(t *testing.T) {
	repo := &fakeAnalyticsRepo{revenue: []entity.RevenuePoint{{Revenue: 50}}}
	c := newFakeCache()
	svc := NewAnalyticsService(repo, c, time.Minute)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	_, err := svc.RevenueByPeriod(context.Background(), from, to, entity.GranularityDay)
	require.NoError(t, err)
	_, err = svc.RevenueByPeriod(context.Background(), from, to, entity.GranularityDay)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.revenueCalls)

	// A different granularity is a different cache entry.
	_, err = svc.RevenueByPeriod(context.Background(), from, to, entity.GranularityMonth)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.revenueCalls)
}

func TestSalesPerformanceBundlesThreeWindows(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	svc := NewAnalyticsService(repo, newFakeCache(), time.Minute)

	summary, err := svc.SalesPerformance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, repo.summaryCalls)
	assert.Equal(t, float64(100), summary.Daily.Revenue)
	assert.Equal(t, 2, summary.Weekly.OrderCount)
}

func TestStartOfWeekIsMonday(t *testing.T) {
	// 2024-03-15 is a Friday.
	friday := time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC)
	monday := startOfWeek(friday)
	assert.Equal(t, time.Monday, monday.Weekday())
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), monday)

	// A Monday maps to itself at midnight.
	assert.Equal(t, monday, startOfWeek(monday.Add(5*time.Hour)))

	// Sunday belongs to the preceding Monday.
	sunday := time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, startOfWeek(sunday))
}
