package handlers

import (
	"log/slog"
	"net/http"

	"github.com/crucial707/blog/internal/middleware"
	"github.com/crucial707/blog/internal/repo"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// AuditHandler serves audit log endpoints.
type AuditHandler struct {
	Repo *repo.AuditRepo
}

// ListAudit returns recent audit log entries. Query: limit (default 50, max 200), offset (default 0).
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50, 1)
	if limit > 200 {
		limit = 200
	}
	offset := queryInt(r, "offset", 0, 0)

	entries, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		internalError(w, r, "list audit", err)
		return
	}
	JSON(w, http.StatusOK, Envelope{Success: true, Data: entries, Count: intPtr(len(entries))})
}

// recordAudit logs a write by the authenticated user. Failures are logged, never returned to the client.
func recordAudit(r *http.Request, ar *repo.AuditRepo, action, resourceType string, resourceID int, details string) {
	if ar == nil {
		return
	}
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return
	}
	if err := ar.Log(r.Context(), userID, action, resourceType, resourceID, details); err != nil {
		slog.Warn("audit log failed",
			"request_id", chimw.GetReqID(r.Context()),
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
			"error", err)
	}
}
