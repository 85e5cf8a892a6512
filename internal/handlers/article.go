package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/crucial707/blog/internal/metrics"
	"github.com/crucial707/blog/internal/middleware"
	"github.com/crucial707/blog/internal/models"
	"github.com/crucial707/blog/internal/repo"
	"github.com/crucial707/blog/internal/slug"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	// maxSlugAttempts bounds the -2, -3, ... suffixes tried on slug conflicts.
	maxSlugAttempts = 20
)

// ==========================
// ArticleHandler
// ==========================
type ArticleHandler struct {
	Repo      *repo.ArticleRepo
	AuditRepo *repo.AuditRepo
}

// ==========================
// List Published Articles
// ==========================
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit, offset := pageParams(r, defaultPageSize, maxPageSize)
	filter := models.ArticleFilter{
		Search:     strings.TrimSpace(q.Get("search")),
		CategoryID: queryInt(r, "categoryId", 0, 1),
		AuthorID:   queryInt(r, "authorId", 0, 1),
		Tag:        q.Get("tag"),
		SortBy:     q.Get("sortBy"),
		SortOrder:  q.Get("sortOrder"),
		Limit:      limit,
		Offset:     offset,
	}

	articles, err := h.Repo.ListPublished(r.Context(), filter)
	if err != nil {
		internalError(w, r, "list articles", err)
		return
	}
	total, err := h.Repo.CountPublished(r.Context(), filter)
	if err != nil {
		internalError(w, r, "count articles", err)
		return
	}

	meta := models.NewPaginationMeta(page, limit, total)
	JSON(w, http.StatusOK, Envelope{
		Success: true,
		Data:    articles,
		Count:   intPtr(len(articles)),
		Meta:    &meta,
	})
}

// ==========================
// Get Article By Slug (counts a view)
// ==========================
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	a, err := h.Repo.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "Article not found", http.StatusNotFound)
			return
		}
		internalError(w, r, "get article", err)
		return
	}

	if err := h.Repo.IncrementViews(r.Context(), a.ID); err != nil {
		slog.Warn("increment views failed", "request_id", chimw.GetReqID(r.Context()), "article_id", a.ID, "error", err)
	} else {
		a.Views++
		metrics.IncArticleViews()
	}
	OK(w, a, "")
}

// articleFields is the JSON body accepted by create and update. Pointer
// fields distinguish "absent" from "empty" on update.
type articleFields struct {
	Title        *string    `json:"title" validate:"omitempty,max=255"`
	Content      *string    `json:"content"`
	Excerpt      *string    `json:"excerpt" validate:"omitempty,max=500"`
	CoverImage   *string    `json:"coverImage" validate:"omitempty,url"`
	Status       *string    `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	CategoryID   *int       `json:"categoryId" validate:"omitempty,gt=0"`
	TagIDs       []int      `json:"tagIds" validate:"omitempty,dive,gt=0"`
	ScheduledFor *time.Time `json:"scheduledFor"`
}

func (f articleFields) input() models.ArticleInput {
	in := models.ArticleInput{
		Title:        f.Title,
		Content:      f.Content,
		Excerpt:      f.Excerpt,
		CoverImage:   f.CoverImage,
		CategoryID:   f.CategoryID,
		TagIDs:       f.TagIDs,
		ScheduledFor: f.ScheduledFor,
	}
	if f.Status != nil {
		s := models.ArticleStatus(*f.Status)
		in.Status = &s
	}
	return in
}

// ==========================
// Create Article (requires auth)
// ==========================
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var body articleFields
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Title == nil || strings.TrimSpace(*body.Title) == "" || body.Content == nil || strings.TrimSpace(*body.Content) == "" {
		JSONError(w, "Missing required fields: title, content", http.StatusBadRequest)
		return
	}
	if fields := validationFields(body); fields != nil {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	in := body.input()
	title := strings.TrimSpace(*body.Title)
	in.Title = &title
	if in.Status == nil {
		draft := models.StatusDraft
		in.Status = &draft
	}
	if in.Excerpt == nil || *in.Excerpt == "" {
		excerpt := slug.Excerpt(*in.Content, slug.DefaultExcerptLength)
		in.Excerpt = &excerpt
	}

	base := slug.Make(title)
	if base == "" {
		base = "article"
	}
	var created *models.Article
	for n := 1; n <= maxSlugAttempts; n++ {
		s := slug.WithSuffix(base, n)
		in.Slug = &s
		a, err := h.Repo.Create(r.Context(), userID, in)
		if errors.Is(err, repo.ErrConflict) {
			continue
		}
		if errors.Is(err, repo.ErrInvalidReference) {
			JSONError(w, "Invalid categoryId or tagIds", http.StatusBadRequest)
			return
		}
		if err != nil {
			internalError(w, r, "create article", err)
			return
		}
		created = a
		break
	}
	if created == nil {
		JSONError(w, "Could not allocate a unique slug", http.StatusConflict)
		return
	}

	recordAudit(r, h.AuditRepo, "create", "article", created.ID, created.Slug)
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: created, Message: "Article created successfully"})
}

// loadOwned fetches the {id} article and checks the caller wrote it. It
// writes the error response and returns nil when the caller may not proceed.
func (h *ArticleHandler) loadOwned(w http.ResponseWriter, r *http.Request) *models.Article {
	id, ok := urlID(r, "id")
	if !ok {
		JSONError(w, "invalid article id", http.StatusBadRequest)
		return nil
	}
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "Authentication required", http.StatusUnauthorized)
		return nil
	}
	a, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "Article not found", http.StatusNotFound)
			return nil
		}
		internalError(w, r, "get article", err)
		return nil
	}
	if a.AuthorID != userID {
		JSONError(w, "You can only modify your own articles", http.StatusForbidden)
		return nil
	}
	return a
}

// ==========================
// Update Article (author only)
// ==========================
func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	existing := h.loadOwned(w, r)
	if existing == nil {
		return
	}

	var body articleFields
	if !decodeJSON(w, r, &body) {
		return
	}
	fields := validationFields(body)
	if body.Title != nil && strings.TrimSpace(*body.Title) == "" {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["title"] = "required"
	}
	if body.Content != nil && strings.TrimSpace(*body.Content) == "" {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["content"] = "required"
	}
	if fields != nil {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	a, err := h.Repo.Update(r.Context(), existing.ID, body.input())
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			JSONError(w, "Article not found", http.StatusNotFound)
		case errors.Is(err, repo.ErrInvalidReference):
			JSONError(w, "Invalid categoryId or tagIds", http.StatusBadRequest)
		default:
			internalError(w, r, "update article", err)
		}
		return
	}

	recordAudit(r, h.AuditRepo, "update", "article", a.ID, "")
	OK(w, a, "Article updated successfully")
}

// ==========================
// Delete Article (author only)
// ==========================
func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	existing := h.loadOwned(w, r)
	if existing == nil {
		return
	}
	if err := h.Repo.Delete(r.Context(), existing.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "Article not found", http.StatusNotFound)
			return
		}
		internalError(w, r, "delete article", err)
		return
	}

	recordAudit(r, h.AuditRepo, "delete", "article", existing.ID, existing.Slug)
	OK(w, nil, "Article deleted successfully")
}

// ==========================
// Publish / Unpublish (author only)
// ==========================
func (h *ArticleHandler) PublishArticle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	status := models.ArticleStatus(strings.ToUpper(strings.TrimSpace(body.Status)))
	if !status.Valid() {
		JSONValidationError(w, "Invalid status", map[string]string{"status": "must be one of DRAFT PUBLISHED ARCHIVED"}, http.StatusBadRequest)
		return
	}

	existing := h.loadOwned(w, r)
	if existing == nil {
		return
	}
	a, err := h.Repo.UpdateStatus(r.Context(), existing.ID, status)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "Article not found", http.StatusNotFound)
			return
		}
		internalError(w, r, "update article status", err)
		return
	}

	recordAudit(r, h.AuditRepo, "publish", "article", a.ID, string(status))
	OK(w, a, fmt.Sprintf("Article %s successfully", strings.ToLower(string(status))))
}

// ==========================
// Like Article
// ==========================
func (h *ArticleHandler) LikeArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		JSONError(w, "invalid article id", http.StatusBadRequest)
		return
	}
	likes, err := h.Repo.Like(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "Article not found", http.StatusNotFound)
			return
		}
		internalError(w, r, "like article", err)
		return
	}
	OK(w, map[string]int{"likes": likes}, "")
}
