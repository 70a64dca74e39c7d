package http

import (
	"encoding/json"
	"net/http"

	"github.com/egannguyen/go-bookstore-backend/internal/service"
)

func (h *Handler) handleCreateSupport(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSupportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	request, err := h.support.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (h *Handler) handleListSupport(w http.ResponseWriter, r *http.Request) {
	current, pageSize := parsePage(r)
	requests, total, err := h.support.FindAll(r.Context(), (current-1)*pageSize, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writePaged(w, requests, current, pageSize, total)
}

type replySupportRequest struct {
	Reply  string   `json:"reply"`
	Images []string `json:"images"`
}

func (h *Handler) handleReplySupport(w http.ResponseWriter, r *http.Request) {
	var req replySupportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	request, err := h.support.Reply(r.Context(), r.PathValue("id"), req.Reply, req.Images)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}
