package http

import (
	"net/http"
	"strconv"

	"github.com/egannguyen/go-bookstore-backend/internal/service"
	"github.com/egannguyen/go-bookstore-backend/internal/storage"
)

// Handler holds the HTTP endpoints and their service dependencies.
type Handler struct {
	auth       *service.AuthService
	users      *service.UserService
	books      *service.BookService
	categories *service.CategoryService
	orders     *service.OrderService
	histories  *service.HistoryService
	comments   *service.CommentService
	analytics  *service.AnalyticsService
	payments   *service.PaymentService
	support    *service.SupportService
	uploader   storage.Uploader
}

func NewHandler(
	auth *service.AuthService,
	users *service.UserService,
	books *service.BookService,
	categories *service.CategoryService,
	orders *service.OrderService,
	histories *service.HistoryService,
	comments *service.CommentService,
	analytics *service.AnalyticsService,
	payments *service.PaymentService,
	support *service.SupportService,
	uploader storage.Uploader,
) *Handler {
	return &Handler{
		auth:       auth,
		users:      users,
		books:      books,
		categories: categories,
		orders:     orders,
		histories:  histories,
		comments:   comments,
		analytics:  analytics,
		payments:   payments,
		support:    support,
		uploader:   uploader,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// auth
	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", h.handleRefresh)
	mux.HandleFunc("POST /api/auth/logout", h.requireAuth(h.handleLogout))
	mux.HandleFunc("GET /api/auth/account", h.requireAuth(h.handleAccount))

	// users (admin)
	mux.HandleFunc("GET /api/users", h.requireAdmin(h.handleListUsers))
	mux.HandleFunc("POST /api/users", h.requireAdmin(h.handleCreateUser))
	mux.HandleFunc("DELETE /api/users/{id}", h.requireAdmin(h.handleDeleteUser))
	mux.HandleFunc("PATCH /api/users/me", h.requireAuth(h.handleUpdateMe))
	mux.HandleFunc("POST /api/users/change-password", h.requireAuth(h.handleChangePassword))

	// catalog
	mux.HandleFunc("GET /api/books", h.handleListBooks)
	mux.HandleFunc("GET /api/books/{id}", h.handleGetBook)
	mux.HandleFunc("POST /api/books", h.requireAdmin(h.handleCreateBook))
	mux.HandleFunc("PUT /api/books/{id}", h.requireAdmin(h.handleUpdateBook))
	mux.HandleFunc("DELETE /api/books/{id}", h.requireAdmin(h.handleDeleteBook))
	mux.HandleFunc("GET /api/categories", h.handleListCategories)
	mux.HandleFunc("POST /api/categories", h.requireAdmin(h.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", h.requireAdmin(h.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", h.requireAdmin(h.handleDeleteCategory))

	// orders + history
	mux.HandleFunc("POST /api/orders", h.requireAuth(h.handleCreateOrder))
	mux.HandleFunc("GET /api/orders", h.requireAdmin(h.handleListOrders))
	mux.HandleFunc("GET /api/orders/mine", h.requireAuth(h.handleMyOrders))
	mux.HandleFunc("GET /api/orders/{id}", h.requireAuth(h.handleGetOrder))
	mux.HandleFunc("PATCH /api/orders/{id}/status", h.requireAdmin(h.handleUpdateOrderStatus))
	mux.HandleFunc("DELETE /api/orders/{id}", h.requireAdmin(h.handleDeleteOrder))
	mux.HandleFunc("GET /api/history", h.requireAuth(h.handleMyHistory))

	// comments
	mux.HandleFunc("POST /api/comments", h.requireAuth(h.handleCreateComment))
	mux.HandleFunc("GET /api/books/{id}/comments", h.handleBookComments)
	mux.HandleFunc("GET /api/comments", h.requireAdmin(h.handleListComments))
	mux.HandleFunc("DELETE /api/comments/{id}", h.requireAdmin(h.handleDeleteComment))

	// analytics + dashboard
	mux.HandleFunc("GET /api/dashboard", h.requireAdmin(h.handleDashboard))
	mux.HandleFunc("GET /api/analytics/revenue", h.requireAdmin(h.handleRevenue))
	mux.HandleFunc("GET /api/analytics/realtime", h.requireAdmin(h.handleRealTimeRevenue))
	mux.HandleFunc("GET /api/analytics/top-books", h.requireAdmin(h.handleTopBooks))
	mux.HandleFunc("GET /api/analytics/sales", h.requireAdmin(h.handleSalesPerformance))

	// payment
	mux.HandleFunc("POST /api/payment/create", h.requireAuth(h.handleCreatePayment))
	mux.HandleFunc("GET /api/payment/callback", h.handlePaymentCallback)

	// support + uploads
	mux.HandleFunc("POST /api/support", h.handleCreateSupport)
	mux.HandleFunc("GET /api/support", h.requireAdmin(h.handleListSupport))
	mux.HandleFunc("POST /api/support/{id}/reply", h.requireAdmin(h.handleReplySupport))
	mux.HandleFunc("POST /api/upload", h.requireAuth(h.handleUpload))
}

// pagination mirrors the current/pageSize query contract of the admin UI.
type pageMeta struct {
	Current  int `json:"current"`
	PageSize int `json:"page_size"`
	Pages    int `json:"pages"`
	Total    int `json:"total"`
}

type pagedResponse struct {
	Meta   pageMeta `json:"meta"`
	Result any      `json:"result"`
}

func parsePage(r *http.Request) (current, pageSize int) {
	current, _ = strconv.Atoi(r.URL.Query().Get("current"))
	if current < 1 {
		current = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 10
	}
	return current, pageSize
}

func writePaged(w http.ResponseWriter, result any, current, pageSize, total int) {
	pages := (total + pageSize - 1) / pageSize
	writeJSON(w, http.StatusOK, pagedResponse{
		Meta:   pageMeta{Current: current, PageSize: pageSize, Pages: pages, Total: total},
		Result: result,
	})
}
