package http

import (
	"encoding/json"
	"net"
	"net/http"
)

type createPaymentRequest struct {
	Amount float64 `json:"amount"`
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Handler) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		badRequest(w, "amount must be positive")
		return
	}

	paymentURL, err := h.payments.CreatePaymentURL(req.Amount, clientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"payment_url": paymentURL})
}

func (h *Handler) handlePaymentCallback(w http.ResponseWriter, r *http.Request) {
	result, err := h.payments.VerifyCallback(r.URL.Query())
	if err != nil {
		badRequest(w, "invalid payment signature")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
