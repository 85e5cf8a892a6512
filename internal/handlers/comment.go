package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/crucial707/blog/internal/middleware"
	"github.com/crucial707/blog/internal/models"
	"github.com/crucial707/blog/internal/repo"
	"github.com/go-chi/chi/v5"
)

// CommentHandler serves article comments and replies.
type CommentHandler struct {
	Repo      *repo.CommentRepo
	Articles  *repo.ArticleRepo
	AuditRepo *repo.AuditRepo
}

// ListComments returns the comments of the {slug} article as a reply tree.
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	a, err := h.Articles.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "Article not found", http.StatusNotFound)
			return
		}
		internalError(w, r, "get article", err)
		return
	}
	flat, err := h.Repo.ListByArticle(r.Context(), a.ID)
	if err != nil {
		internalError(w, r, "list comments", err)
		return
	}
	JSON(w, http.StatusOK, Envelope{
		Success: true,
		Data:    models.BuildCommentTree(flat),
		Count:   intPtr(len(flat)),
	})
}

// CreateComment adds a comment, or a reply when parentId is set, to the {id} article.
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	articleID, ok := urlID(r, "id")
	if !ok {
		JSONError(w, "invalid article id", http.StatusBadRequest)
		return
	}

	var input struct {
		Content  string `json:"content" validate:"required,max=5000"`
		ParentID *int   `json:"parentId" validate:"omitempty,gt=0"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	input.Content = strings.TrimSpace(input.Content)
	if fields := validationFields(input); fields != nil {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	if _, err := h.Articles.GetByID(r.Context(), articleID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "Article not found", http.StatusNotFound)
			return
		}
		internalError(w, r, "get article", err)
		return
	}
	if input.ParentID != nil {
		parent, err := h.Repo.GetByID(r.Context(), *input.ParentID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				JSONError(w, "Parent comment not found", http.StatusBadRequest)
				return
			}
			internalError(w, r, "get parent comment", err)
			return
		}
		if parent.ArticleID != articleID {
			JSONError(w, "Parent comment belongs to another article", http.StatusBadRequest)
			return
		}
	}

	c := &models.Comment{
		Content:   input.Content,
		ArticleID: articleID,
		AuthorID:  user.ID,
		ParentID:  input.ParentID,
	}
	if err := h.Repo.Create(r.Context(), c); err != nil {
		if errors.Is(err, repo.ErrInvalidReference) {
			JSONError(w, "Article not found", http.StatusNotFound)
			return
		}
		internalError(w, r, "create comment", err)
		return
	}
	c.Author = user

	recordAudit(r, h.AuditRepo, "create", "comment", c.ID, "")
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: c, Message: "Comment added successfully"})
}

// DeleteComment removes the {id} comment and its replies. Only its author may delete it.
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		JSONError(w, "invalid comment id", http.StatusBadRequest)
		return
	}

	c, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "Comment not found", http.StatusNotFound)
			return
		}
		internalError(w, r, "get comment", err)
		return
	}
	if c.AuthorID != userID {
		JSONError(w, "You can only delete your own comments", http.StatusForbidden)
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "Comment not found", http.StatusNotFound)
			return
		}
		internalError(w, r, "delete comment", err)
		return
	}

	recordAudit(r, h.AuditRepo, "delete", "comment", id, "")
	OK(w, nil, "Comment deleted successfully")
}

func (h *CommentHandler) LikeComment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		JSONError(w, "invalid comment id", http.StatusBadRequest)
		return
	}
	likes, err := h.Repo.Like(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "Comment not found", http.StatusNotFound)
			return
		}
		internalError(w, r, "like comment", err)
		return
	}
	OK(w, map[string]int{"likes": likes}, "")
}
