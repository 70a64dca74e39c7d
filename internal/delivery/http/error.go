package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps workflow errors to client-facing status codes: missing
// entities are 404, business-rule rejections are 400, bad credentials are
// 401, everything else is a 500 with the detail kept server-side.
func writeError(w http.ResponseWriter, err error) {
	var (
		notFound      *entity.NotFoundError
		noStock       *entity.InsufficientStockError
		badTransition *entity.InvalidTransitionError
	)

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &noStock), errors.As(err, &badTransition),
		errors.Is(err, entity.ErrPurchaseRequired),
		errors.Is(err, entity.ErrEmailTaken):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	default:
		slog.Error("Request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
