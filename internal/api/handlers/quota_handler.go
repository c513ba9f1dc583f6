package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Cheertaboi/tips-console/internal/models"
	"github.com/Cheertaboi/tips-console/internal/service"
)

type QuotaHandler struct {
	quota  *service.QuotaManager
	logger *slog.Logger
}

func NewQuotaHandler(quota *service.QuotaManager, logger *slog.Logger) *QuotaHandler {
	return &QuotaHandler{quota: quota, logger: logger}
}

type setFreeResponse struct {
	Tip   models.Tip         `json:"tip"`
	Quota service.QuotaUsage `json:"quota"`
}

// Usage handles GET /api/v1/tips/quota
func (h *QuotaHandler) Usage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.quota.Usage())
}

// Publish handles PUT /api/v1/tips/{id}/free
func (h *QuotaHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setFree(w, r, true)
}

// Unpublish handles DELETE /api/v1/tips/{id}/free
func (h *QuotaHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setFree(w, r, false)
}

func (h *QuotaHandler) setFree(w http.ResponseWriter, r *http.Request, free bool) {
	tip, err := h.quota.SetFree(r.Context(), chi.URLParam(r, "id"), free)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, setFreeResponse{Tip: tip, Quota: h.quota.Usage()})
}
