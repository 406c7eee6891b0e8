package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"insights-be/internal/domain"
	"insights-be/internal/service"
	apperrors "insights-be/pkg/errors"
	"insights-be/pkg/logger"
)

// AllowListHandler handles the allow-list admin endpoints
type AllowListHandler struct {
	allowList service.AllowListService
	logger    *logger.Logger
}

// NewAllowListHandler creates a new allow-list handler
func NewAllowListHandler(allowList service.AllowListService, logger *logger.Logger) *AllowListHandler {
	return &AllowListHandler{allowList: allowList, logger: logger}
}

// RegisterRoutes registers allow-list routes with the router
func (h *AllowListHandler) RegisterRoutes(r chi.Router) {
	r.Route("/allowlist", func(r chi.Router) {
		r.Get("/", h.List)
		r.Put("/", h.Put)
		r.Delete("/", h.Remove)
	})
}

// allowListResponse is the envelope of the list endpoint
type allowListResponse struct {
	Success bool                    `json:"success"`
	Data    []domain.AllowListEntry `json:"data"`
}

// allowListPutRequest is the body of the put endpoint
type allowListPutRequest struct {
	IPAddress string `json:"ip_address"`
	Note      string `json:"note"`
}

// List handles GET /api/analytics/allowlist
func (h *AllowListHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.allowList.List(r.Context())
	if err != nil {
		writeErrorResponse(w, h.logger, apperrors.NewSourceUnavailableError("failed to load allow-list", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(allowListResponse{Success: true, Data: entries}); err != nil {
		h.logger.WithError(err).Error("Failed to encode allow-list response")
	}
}

// Put handles PUT /api/analytics/allowlist
func (h *AllowListHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req allowListPutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, h.logger, apperrors.NewInvalidQueryError("request body must be valid JSON", nil))
		return
	}
	if req.IPAddress == "" {
		writeErrorResponse(w, h.logger, apperrors.NewInvalidQueryError("ip_address is required", nil))
		return
	}

	if err := h.allowList.Put(r.Context(), req.IPAddress, req.Note); err != nil {
		writeErrorResponse(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"success":true}`))
}

// Remove handles DELETE /api/analytics/allowlist?ip=...
func (h *AllowListHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Query().Get("ip")
	if ip == "" {
		writeErrorResponse(w, h.logger, apperrors.NewInvalidQueryError("'ip' is required", nil))
		return
	}

	if err := h.allowList.Remove(r.Context(), ip); err != nil {
		writeErrorResponse(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"success":true}`))
}
