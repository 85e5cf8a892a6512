package handlers

import (
	"errors"
	"net/http"

	"github.com/crucial707/blog/internal/models"
	"github.com/crucial707/blog/internal/repo"
)

// ==========================
// UserHandler
// ==========================
type UserHandler struct {
	Repo *repo.UserRepo
}

// ==========================
// List Users (page, limit)
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r, 20, maxPageSize)

	users, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		internalError(w, r, "list users", err)
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		internalError(w, r, "count users", err)
		return
	}

	meta := models.NewPaginationMeta(page, limit, total)
	JSON(w, http.StatusOK, Envelope{
		Success: true,
		Data:    users,
		Count:   intPtr(len(users)),
		Meta:    &meta,
	})
}

// ==========================
// Get User
// ==========================
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "User not found", http.StatusNotFound)
			return
		}
		internalError(w, r, "get user", err)
		return
	}
	OK(w, user, "")
}
