package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/blog/internal/repo"
	"github.com/lib/pq"
)

func TestArticleHandler_ListArticles(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`WHERE a.status = 'PUBLISHED' AND \(a.title ILIKE \$1 .*\) ORDER BY a.published_at DESC NULLS LAST, a.id DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("%css%", 5, 5).
		WillReturnRows(articleRows(2, 1, "modern-css-techniques", "PUBLISHED"))
	mock.ExpectQuery(`FROM article_tags atg`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(tagCols).AddRow(2, 5, "CSS", "css", nil, time.Now(), time.Now()))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM articles a WHERE a.status = 'PUBLISHED'`).
		WithArgs("%css%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	h := &ArticleHandler{Repo: repo.NewArticleRepo(db)}
	rr := httptest.NewRecorder()
	h.ListArticles(rr, requestWithChiURLParams("GET", "/api/articles?search=css&page=2&limit=5", nil, nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("ListArticles status: got %d, want 200", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	if env.Count == nil || *env.Count != 1 {
		t.Errorf("count: got %v, want 1", env.Count)
	}
	if env.Meta == nil || env.Meta.CurrentPage != 2 || env.Meta.TotalPages != 2 || env.Meta.TotalItems != 6 || env.Meta.HasNext || !env.Meta.HasPrevious {
		t.Errorf("unexpected meta: %+v", env.Meta)
	}
	var list []struct {
		Slug string `json:"slug"`
		Tags []struct {
			Slug string `json:"slug"`
		} `json:"tags"`
	}
	decodeData(t, env, &list)
	if len(list) != 1 || list[0].Slug != "modern-css-techniques" || len(list[0].Tags) != 1 {
		t.Errorf("unexpected list: %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestArticleHandler_ListArticles_ClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`LIMIT \$1 OFFSET \$2`).
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows(articleCols))
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	h := &ArticleHandler{Repo: repo.NewArticleRepo(db)}
	rr := httptest.NewRecorder()
	h.ListArticles(rr, requestWithChiURLParams("GET", "/api/articles?limit=1000&page=0", nil, nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	if string(env.Data) != "[]" {
		t.Errorf("expected empty array, got %s", env.Data)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestArticleHandler_GetArticle_IncrementsViews(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectArticle(mock, `a.slug = \$1`, "getting-started-with-sigment", articleRows(1, 1, "getting-started-with-sigment", "PUBLISHED"))
	mock.ExpectExec(`UPDATE articles SET views = views \+ 1 WHERE id = \$1`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	h := &ArticleHandler{Repo: repo.NewArticleRepo(db)}
	req := requestWithChiURLParams("GET", "/api/articles/getting-started-with-sigment", nil, map[string]string{"slug": "getting-started-with-sigment"})
	rr := httptest.NewRecorder()
	h.GetArticle(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GetArticle status: got %d, want 200", rr.Code)
	}
	var a struct {
		ID    int `json:"id"`
		Views int `json:"views"`
	}
	decodeData(t, decodeEnvelope(t, rr), &a)
	if a.ID != 1 || a.Views != 4 {
		t.Errorf("unexpected article: %+v", a)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestArticleHandler_GetArticle_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`WHERE a.slug = \$1`).WithArgs("missing").WillReturnRows(sqlmock.NewRows(articleCols))

	h := &ArticleHandler{Repo: repo.NewArticleRepo(db)}
	rr := httptest.NewRecorder()
	h.GetArticle(rr, requestWithChiURLParams("GET", "/api/articles/missing", nil, map[string]string{"slug": "missing"}))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.Error != "Article not found" {
		t.Errorf("error: %q", env.Error)
	}
}

func TestArticleHandler_CreateArticle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO articles`).
		WithArgs("Hello, World!", "hello-world", "Body text", "Body text", nil, "DRAFT", 3, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()
	expectArticle(mock, `a.id = \$1`, 9, articleRows(9, 3, "hello-world", "DRAFT"))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(3, "create", "article", 9, "hello-world").
		WillReturnResult(sqlmock.NewResult(1, 1))

	h := &ArticleHandler{Repo: repo.NewArticleRepo(db), AuditRepo: repo.NewAuditRepo(db)}
	body := mustJSON(t, map[string]string{"title": "Hello, World!", "content": "Body text"})
	rr := httptest.NewRecorder()
	h.CreateArticle(rr, asUser(requestWithChiURLParams("POST", "/api/articles", body, nil), 3))

	if rr.Code != http.StatusCreated {
		t.Fatalf("CreateArticle status: got %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	if env.Message != "Article created successfully" {
		t.Errorf("message: %q", env.Message)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestArticleHandler_CreateArticle_SlugConflictRetries(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO articles`).
		WithArgs("Hello", "hello", "Body", "Body", nil, "PUBLISHED", 3, nil, sqlmock.AnyArg(), nil).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO articles`).
		WithArgs("Hello", "hello-2", "Body", "Body", nil, "PUBLISHED", 3, nil, sqlmock.AnyArg(), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectCommit()
	expectArticle(mock, `a.id = \$1`, 10, articleRows(10, 3, "hello-2", "PUBLISHED"))

	h := &ArticleHandler{Repo: repo.NewArticleRepo(db)}
	body := mustJSON(t, map[string]string{"title": "Hello", "content": "Body", "status": "PUBLISHED"})
	rr := httptest.NewRecorder()
	h.CreateArticle(rr, asUser(requestWithChiURLParams("POST", "/api/articles", body, nil), 3))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	var a struct {
		Slug string `json:"slug"`
	}
	decodeData(t, decodeEnvelope(t, rr), &a)
	if a.Slug != "hello-2" {
		t.Errorf("slug: got %q, want hello-2", a.Slug)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestArticleHandler_CreateArticle_MissingFields(t *testing.T) {
	h := &ArticleHandler{}
	body := mustJSON(t, map[string]string{"title": "Only a title"})
	rr := httptest.NewRecorder()
	h.CreateArticle(rr, asUser(requestWithChiURLParams("POST", "/api/articles", body, nil), 3))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.Error != "Missing required fields: title, content" {
		t.Errorf("error: %q", env.Error)
	}
}

func TestArticleHandler_CreateArticle_InvalidStatus(t *testing.T) {
	h := &ArticleHandler{}
	body := mustJSON(t, map[string]string{"title": "T", "content": "C", "status": "LIVE"})
	rr := httptest.NewRecorder()
	h.CreateArticle(rr, asUser(requestWithChiURLParams("POST", "/api/articles", body, nil), 3))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.Fields["status"] == "" {
		t.Errorf("expected status field error, got %v", env.Fields)
	}
}

func TestArticleHandler_CreateArticle_Unauthenticated(t *testing.T) {
	h := &ArticleHandler{}
	body := mustJSON(t, map[string]string{"title": "T", "content": "C"})
	rr := httptest.NewRecorder()
	h.CreateArticle(rr, requestWithChiURLParams("POST", "/api/articles", body, nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestArticleHandler_UpdateArticle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectArticle(mock, `a.id = \$1`, 1, articleRows(1, 3, "old", "DRAFT"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE articles SET updated_at = NOW\(\), title = \$1 WHERE id = \$2`).
		WithArgs("New title", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectArticle(mock, `a.id = \$1`, 1, articleRows(1, 3, "old", "DRAFT"))

	h := &ArticleHandler{Repo: repo.NewArticleRepo(db)}
	body := mustJSON(t, map[string]string{"title": "New title"})
	req := asUser(requestWithChiURLParams("PUT", "/api/articles/1", body, map[string]string{"id": "1"}), 3)
	rr := httptest.NewRecorder()
	h.UpdateArticle(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("UpdateArticle status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestArticleHandler_UpdateArticle_NotAuthor(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectArticle(mock, `a.id = \$1`, 1, articleRows(1, 1, "mine", "DRAFT"))

	h := &ArticleHandler{Repo: repo.NewArticleRepo(db)}
	body := mustJSON(t, map[string]string{"title": "Hijacked"})
	req := asUser(requestWithChiURLParams("PUT", "/api/articles/1", body, map[string]string{"id": "1"}), 2)
	rr := httptest.NewRecorder()
	h.UpdateArticle(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want 403", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestArticleHandler_UpdateArticle_InvalidID(t *testing.T) {
	h := &ArticleHandler{}
	req := asUser(requestWithChiURLParams("PUT", "/api/articles/abc", []byte(`{}`), map[string]string{"id": "abc"}), 1)
	rr := httptest.NewRecorder()
	h.UpdateArticle(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestArticleHandler_DeleteArticle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectArticle(mock, `a.id = \$1`, 4, articleRows(4, 3, "gone", "DRAFT"))
	mock.ExpectExec(`DELETE FROM articles WHERE id = \$1`).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(3, "delete", "article", 4, "gone").
		WillReturnResult(sqlmock.NewResult(1, 1))

	h := &ArticleHandler{Repo: repo.NewArticleRepo(db), AuditRepo: repo.NewAuditRepo(db)}
	req := asUser(requestWithChiURLParams("DELETE", "/api/articles/4", nil, map[string]string{"id": "4"}), 3)
	rr := httptest.NewRecorder()
	h.DeleteArticle(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.Message != "Article deleted successfully" {
		t.Errorf("message: %q", env.Message)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestArticleHandler_DeleteArticle_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`WHERE a.id = \$1`).WithArgs(404).WillReturnRows(sqlmock.NewRows(articleCols))

	h := &ArticleHandler{Repo: repo.NewArticleRepo(db)}
	req := asUser(requestWithChiURLParams("DELETE", "/api/articles/404", nil, map[string]string{"id": "404"}), 3)
	rr := httptest.NewRecorder()
	h.DeleteArticle(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestArticleHandler_PublishArticle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectArticle(mock, `a.id = \$1`, 5, articleRows(5, 3, "draft", "DRAFT"))
	mock.ExpectExec(`UPDATE articles SET status = \$1`).
		WithArgs("PUBLISHED", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectArticle(mock, `a.id = \$1`, 5, articleRows(5, 3, "draft", "PUBLISHED"))

	h := &ArticleHandler{Repo: repo.NewArticleRepo(db)}
	req := asUser(requestWithChiURLParams("PATCH", "/api/articles/5/publish", []byte(`{"status":"published"}`), map[string]string{"id": "5"}), 3)
	rr := httptest.NewRecorder()
	h.PublishArticle(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if env := decodeEnvelope(t, rr); env.Message != "Article published successfully" {
		t.Errorf("message: %q", env.Message)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestArticleHandler_PublishArticle_InvalidStatus(t *testing.T) {
	h := &ArticleHandler{}
	req := asUser(requestWithChiURLParams("PATCH", "/api/articles/5/publish", []byte(`{"status":"LIVE"}`), map[string]string{"id": "5"}), 3)
	rr := httptest.NewRecorder()
	h.PublishArticle(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestArticleHandler_LikeArticle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE articles SET likes = likes \+ 1 WHERE id = \$1 RETURNING likes`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(13))

	h := &ArticleHandler{Repo: repo.NewArticleRepo(db)}
	rr := httptest.NewRecorder()
	h.LikeArticle(rr, requestWithChiURLParams("POST", "/api/articles/2/like", nil, map[string]string{"id": "2"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var data map[string]int
	decodeData(t, decodeEnvelope(t, rr), &data)
	if data["likes"] != 13 {
		t.Errorf("likes: got %d, want 13", data["likes"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
