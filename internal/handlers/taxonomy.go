package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/crucial707/blog/internal/models"
	"github.com/crucial707/blog/internal/repo"
	"github.com/crucial707/blog/internal/slug"
)

// ==========================
// CategoryHandler
// ==========================
type CategoryHandler struct {
	Repo      *repo.CategoryRepo
	AuditRepo *repo.AuditRepo
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Repo.List(r.Context())
	if err != nil {
		internalError(w, r, "list categories", err)
		return
	}
	JSON(w, http.StatusOK, Envelope{Success: true, Data: categories, Count: intPtr(len(categories))})
}

// CreateCategory adds a category; its slug is derived from the name.
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string  `json:"name" validate:"required,max=100"`
		Description *string `json:"description" validate:"omitempty,max=500"`
		Color       *string `json:"color" validate:"omitempty,hexcolor"`
		Icon        *string `json:"icon" validate:"omitempty,max=16"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	input.Name = strings.TrimSpace(input.Name)
	fields := validationFields(input)
	s := slug.Make(input.Name)
	if fields == nil && s == "" {
		fields = map[string]string{"name": "must contain letters or digits"}
	}
	if fields != nil {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	c := &models.Category{
		Name:        input.Name,
		Slug:        s,
		Description: input.Description,
		Color:       input.Color,
		Icon:        input.Icon,
	}
	if err := h.Repo.Create(r.Context(), c); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			JSONError(w, "Category already exists", http.StatusConflict)
			return
		}
		internalError(w, r, "create category", err)
		return
	}

	recordAudit(r, h.AuditRepo, "create", "category", c.ID, c.Slug)
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: c, Message: "Category created successfully"})
}

// ==========================
// TagHandler
// ==========================
type TagHandler struct {
	Repo      *repo.TagRepo
	AuditRepo *repo.AuditRepo
}

func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Repo.List(r.Context())
	if err != nil {
		internalError(w, r, "list tags", err)
		return
	}
	JSON(w, http.StatusOK, Envelope{Success: true, Data: tags, Count: intPtr(len(tags))})
}

func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name  string  `json:"name" validate:"required,max=50"`
		Color *string `json:"color" validate:"omitempty,hexcolor"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	input.Name = strings.TrimSpace(input.Name)
	fields := validationFields(input)
	s := slug.Make(input.Name)
	if fields == nil && s == "" {
		fields = map[string]string{"name": "must contain letters or digits"}
	}
	if fields != nil {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	t := &models.Tag{Name: input.Name, Slug: s, Color: input.Color}
	if err := h.Repo.Create(r.Context(), t); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			JSONError(w, "Tag already exists", http.StatusConflict)
			return
		}
		internalError(w, r, "create tag", err)
		return
	}

	recordAudit(r, h.AuditRepo, "create", "tag", t.ID, t.Slug)
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: t, Message: "Tag created successfully"})
}
