package entity

import "time"

// Granularity selects the time bucket for revenue aggregation.
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// ParseGranularity validates a client-supplied group-by value, defaulting to
// day.
func ParseGranularity(s string) Granularity {
	switch Granularity(s) {
	case GranularityHour, GranularityMonth:
		return Granularity(s)
	}
	return GranularityDay
}

// DashboardStats are the headline counters on the admin dashboard.
type DashboardStats struct {
	CountUsers  int `json:"count_users"`
	CountOrders int `json:"count_orders"`
	CountBooks  int `json:"count_books"`
}

// RevenuePoint is one time bucket of aggregated order revenue.
type RevenuePoint struct {
	Bucket        time.Time `json:"bucket"`
	Revenue       float64   `json:"revenue"`
	OrderCount    int       `json:"order_count"`
	AvgOrderValue float64   `json:"avg_order_value"`
}

// TopBook is one row of the best-seller ranking.
type TopBook struct {
	BookID        string  `json:"book_id"`
	BookName      string  `json:"book_name"`
	TotalQuantity int     `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// RevenueSummary is total revenue and order count over one window.
type RevenueSummary struct {
	Revenue    float64 `json:"revenue"`
	OrderCount int     `json:"order_count"`
}

// SalesSummary bundles the day/week/month windows shown together on the
// sales performance view.
type SalesSummary struct {
	Daily   RevenueSummary `json:"daily"`
	Weekly  RevenueSummary `json:"weekly"`
	Monthly RevenueSummary `json:"monthly"`
}
