package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/blog/internal/middleware"
	"github.com/crucial707/blog/internal/models"
	"github.com/go-chi/chi/v5"
)

// requestWithChiURLParams builds a request with chi route params set (for handlers that use chi.URLParam).
func requestWithChiURLParams(method, path string, body []byte, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// asUser attaches an authenticated user to req, as RequireAuth would.
func asUser(req *http.Request, id int) *http.Request {
	u := &models.User{ID: id, Username: "user", Email: "user@example.com", FirstName: "Test", LastName: "User"}
	return req.WithContext(middleware.WithUser(req.Context(), u))
}

type envelope struct {
	Success bool                   `json:"success"`
	Data    json.RawMessage        `json:"data"`
	Message string                 `json:"message"`
	Error   string                 `json:"error"`
	Count   *int                   `json:"count"`
	Meta    *models.PaginationMeta `json:"meta"`
	Fields  map[string]string      `json:"fields"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return env
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

var userCols = []string{"id", "username", "email", "password_hash", "first_name", "last_name", "avatar", "bio", "created_at", "updated_at"}

var articleCols = []string{
	"id", "title", "slug", "content", "excerpt", "cover_image", "status",
	"author_id", "category_id", "views", "likes", "published_at", "scheduled_for",
	"created_at", "updated_at",
	"u_id", "username", "email", "first_name", "last_name", "avatar", "bio", "u_created_at", "u_updated_at",
	"c_id", "c_name", "c_slug", "c_description", "c_color", "c_icon", "c_created_at", "c_updated_at",
}

var tagCols = []string{"article_id", "id", "name", "slug", "color", "created_at", "updated_at"}

// articleRows returns one uncategorized article row written by authorID with 3 views.
func articleRows(id, authorID int, slug, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(articleCols).AddRow(id, "Title "+slug, slug, "content", "excerpt", nil, status,
		authorID, nil, 3, 1, now, nil, now, now,
		authorID, "johndoe", "john@example.com", "John", "Doe", nil, nil, now, now,
		nil, nil, nil, nil, nil, nil, nil, nil)
}

// expectArticle queues the select and tag lookup of a single-article fetch.
func expectArticle(mock sqlmock.Sqlmock, where string, arg any, rows *sqlmock.Rows) {
	mock.ExpectQuery(`FROM articles a .* WHERE ` + where).WithArgs(arg).WillReturnRows(rows)
	mock.ExpectQuery(`FROM article_tags atg`).WithArgs(sqlmock.AnyArg()).WillReturnRows(sqlmock.NewRows(tagCols))
}

func decodeData(t *testing.T, env envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}
