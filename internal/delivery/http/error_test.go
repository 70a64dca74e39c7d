package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &entity.NotFoundError{Kind: "book", ID: "b1"}, http.StatusNotFound},
		{"insufficient stock", &entity.InsufficientStockError{BookName: "X", Remaining: 2}, http.StatusBadRequest},
		{"invalid transition", &entity.InvalidTransitionError{From: entity.StatusDelivered, To: entity.StatusPending}, http.StatusBadRequest},
		{"purchase required", entity.ErrPurchaseRequired, http.StatusBadRequest},
		{"email taken", entity.ErrEmailTaken, http.StatusBadRequest},
		{"bad credentials", entity.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)
			assert.Equal(t, tc.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: connection refused"))
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestWriteErrorWrappedErrorsStillMap(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := errors.Join(errors.New("context"), &entity.NotFoundError{Kind: "order", ID: "o1"})
	writeError(rec, wrapped)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
