package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
)

type contextKey string

const actingUserKey contextKey = "actingUser"

// actingUser pulls the authenticated identity stored by requireAuth.
func actingUser(r *http.Request) entity.ActingUser {
	user, _ := r.Context().Value(actingUserKey).(entity.ActingUser)
	return user
}

// requireAuth verifies the bearer token and attaches the acting user to the
// request context.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}

		user, err := h.auth.VerifyAccessToken(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), actingUserKey, user)
		next(w, r.WithContext(ctx))
	}
}

// requireAdmin is requireAuth plus an ADMIN role check.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return h.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if actingUser(r).Role != entity.RoleAdmin {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin role required"})
			return
		}
		next(w, r)
	})
}

// EnableCORS is middleware to allow the web frontend to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
