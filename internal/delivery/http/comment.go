package http

import (
	"encoding/json"
	"net/http"

	"github.com/egannguyen/go-bookstore-backend/internal/service"
)

func (h *Handler) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	comment, err := h.comments.Create(r.Context(), &req, actingUser(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handler) handleBookComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.FindByBook(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	current, pageSize := parsePage(r)
	comments, total, err := h.comments.FindAll(r.Context(), (current-1)*pageSize, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writePaged(w, comments, current, pageSize, total)
}

func (h *Handler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
