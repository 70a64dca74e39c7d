package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
)

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.DashboardStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// parseDateRange reads from/to query params as RFC 3339 dates, defaulting
// to the last 30 days when absent.
func parseDateRange(r *http.Request) (from, to time.Time, err error) {
	to = time.Now()
	from = to.AddDate(0, 0, -30)

	if v := r.URL.Query().Get("from"); v != "" {
		from, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return from, to, err
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}

func (h *Handler) handleRevenue(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		badRequest(w, "invalid date range")
		return
	}
	granularity := entity.ParseGranularity(r.URL.Query().Get("granularity"))

	points, err := h.analytics.RevenueByPeriod(r.Context(), from, to, granularity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (h *Handler) handleRealTimeRevenue(w http.ResponseWriter, r *http.Request) {
	points, err := h.analytics.RealTimeRevenue(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (h *Handler) handleTopBooks(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		badRequest(w, "invalid date range")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}

	books, err := h.analytics.TopSellingBooks(r.Context(), from, to, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *Handler) handleSalesPerformance(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.SalesPerformance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
