package http

import (
	"encoding/json"
	"net/http"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
	"github.com/egannguyen/go-bookstore-backend/internal/service"
)

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	order, err := h.orders.Create(r.Context(), &req, actingUser(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	current, pageSize := parsePage(r)
	orders, total, err := h.orders.FindAll(r.Context(), (current-1)*pageSize, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writePaged(w, orders, current, pageSize, total)
}

func (h *Handler) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.FindByUser(r.Context(), actingUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	// Customers can only read their own orders.
	user := actingUser(r)
	if user.Role != entity.RoleAdmin && order.UserID != user.ID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	status, err := entity.ParseOrderStatus(req.Status)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

func (h *Handler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleMyHistory(w http.ResponseWriter, r *http.Request) {
	histories, err := h.histories.FindByUser(r.Context(), actingUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, histories)
}
