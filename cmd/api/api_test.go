package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/blog/internal/config"
	"golang.org/x/crypto/bcrypt"
)

var testConfig = config.Config{AuthMode: "session", SessionPrefix: "blog-session", JWTSecret: "x"}

var userCols = []string{"id", "username", "email", "password_hash", "first_name", "last_name", "avatar", "bio", "created_at", "updated_at"}

var articleCols = []string{
	"id", "title", "slug", "content", "excerpt", "cover_image", "status",
	"author_id", "category_id", "views", "likes", "published_at", "scheduled_for",
	"created_at", "updated_at",
	"u_id", "username", "email", "first_name", "last_name", "avatar", "bio", "u_created_at", "u_updated_at",
	"c_id", "c_name", "c_slug", "c_description", "c_color", "c_icon", "c_created_at", "c_updated_at",
}

// TestAPI_LoginThenCreateArticle is an integration test: it builds the full router with a
// sqlmock-backed DB, logs in to get a session token, then creates an article with it.
func TestAPI_LoginThenCreateArticle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	now := time.Now()
	userRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(userCols).
			AddRow(1, "johndoe", "john@example.com", string(hash), "John", "Doe", nil, nil, now, now)
	}

	// Login: GetByEmail
	mock.ExpectQuery(`FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("john@example.com").
		WillReturnRows(userRow())

	// POST /api/articles: token user lookup, insert, reload, audit
	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs(1).WillReturnRows(userRow())
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO articles`).
		WithArgs("Integration Post", "integration-post", "Hello from the test", "Hello from the test", nil, "DRAFT", 1, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()
	mock.ExpectQuery(`WHERE a.id = \$1`).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(articleCols).AddRow(42, "Integration Post", "integration-post",
			"Hello from the test", "Hello from the test", nil, "DRAFT",
			1, nil, 0, 0, nil, nil, now, now,
			1, "johndoe", "john@example.com", "John", "Doe", nil, nil, now, now,
			nil, nil, nil, nil, nil, nil, nil, nil))
	mock.ExpectQuery(`FROM article_tags atg`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"article_id", "id", "name", "slug", "color", "created_at", "updated_at"}))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(1, "create", "article", 42, "integration-post").
		WillReturnResult(sqlmock.NewResult(1, 1))

	srv := httptest.NewServer(newRouter(db, testConfig))
	defer srv.Close()

	// 1) Login
	loginBody, _ := json.Marshal(map[string]string{"email": "john@example.com", "password": "password123"})
	loginResp, err := http.Post(srv.URL+"/api/auth/login", "application/json", bytes.NewReader(loginBody))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer loginResp.Body.Close()
	if loginResp.StatusCode != http.StatusOK {
		t.Fatalf("login status: got %d, want 200", loginResp.StatusCode)
	}
	var loginOut struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(loginResp.Body).Decode(&loginOut); err != nil || loginOut.Data.Token == "" {
		t.Fatalf("login response: %v", err)
	}
	if !strings.HasPrefix(loginOut.Data.Token, "blog-session-1-") {
		t.Errorf("unexpected token format: %q", loginOut.Data.Token)
	}

	// 2) POST /api/articles with Bearer token
	body, _ := json.Marshal(map[string]string{"title": "Integration Post", "content": "Hello from the test"})
	req, _ := http.NewRequest("POST", srv.URL+"/api/articles", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+loginOut.Data.Token)
	createResp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	defer createResp.Body.Close()
	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /api/articles status: got %d, want 201", createResp.StatusCode)
	}
	var created struct {
		Success bool `json:"success"`
		Data    struct {
			ID     int    `json:"id"`
			Slug   string `json:"slug"`
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(createResp.Body).Decode(&created); err != nil {
		t.Fatalf("decode article: %v", err)
	}
	if !created.Success || created.Data.ID != 42 || created.Data.Slug != "integration-post" || created.Data.Status != "DRAFT" {
		t.Errorf("unexpected article: %+v", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAPI_WritesRequireAuth(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, testConfig))
	defer srv.Close()

	tests := []struct {
		method, path string
		header       string
		wantError    string
	}{
		{"POST", "/api/articles", "", "Authentication required"},
		{"PUT", "/api/articles/1", "Bearer not-a-token", "Invalid or missing token"},
		{"DELETE", "/api/comments/1", "Basic abc", "Invalid or missing token"},
		{"GET", "/api/auth/me", "", "Authentication required"},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(`{}`))
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		resp, err := srv.Client().Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tt.method, tt.path, err)
		}
		var out struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized || out.Success || out.Error != tt.wantError {
			t.Errorf("%s %s: got %d %+v, want 401 %q", tt.method, tt.path, resp.StatusCode, out, tt.wantError)
		}
	}
}

func TestAPI_ListArticles(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`WHERE a.status = 'PUBLISHED' ORDER BY a.published_at DESC`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(articleCols))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM articles a`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	srv := httptest.NewServer(newRouter(db, testConfig))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/articles")
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/articles status: got %d, want 200", resp.StatusCode)
	}
	var out struct {
		Success bool              `json:"success"`
		Data    []json.RawMessage `json:"data"`
		Count   int               `json:"count"`
		Meta    struct {
			CurrentPage  int `json:"currentPage"`
			ItemsPerPage int `json:"itemsPerPage"`
		} `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Success || out.Data == nil || out.Count != 0 || out.Meta.CurrentPage != 1 || out.Meta.ItemsPerPage != 10 {
		t.Errorf("unexpected body: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// TestAPI_Health is a quick smoke test for the health endpoint.
func TestAPI_Health(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, testConfig))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /api/health status: got %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("security headers missing, X-Content-Type-Options=%q", got)
	}
}

// TestAPI_Ready checks that /ready pings the DB and returns 200 when DB is reachable.
func TestAPI_Ready(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, testConfig))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatalf("ready request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /ready status: got %d, want 200", resp.StatusCode)
	}
}

func TestAPI_NotFoundAndMetrics(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, testConfig))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/nope")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route: got %d, want 404", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /metrics status: got %d, want 200", resp.StatusCode)
	}
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()
	if l := newLogger("json", "debug"); !l.Enabled(ctx, slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
	if l := newLogger("text", "error"); l.Enabled(ctx, slog.LevelInfo) {
		t.Error("info should be disabled at error level")
	}
}

// loginFromRotatingForwardedFor sends n logins from one RemoteAddr, each with a
// different X-Forwarded-For, and counts the 429 responses.
func loginFromRotatingForwardedFor(t *testing.T, cfg config.Config, n int) int {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := newRouter(db, cfg)
	limited := 0
	for i := 0; i < n; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.9:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	return limited
}

func TestAPI_LoginRateLimitIgnoresForwardedFor(t *testing.T) {
	if got := loginFromRotatingForwardedFor(t, testConfig, 20); got != 15 {
		t.Errorf("429 responses = %d, want 15 (burst 5 of 20)", got)
	}
}

func TestAPI_LoginRateLimitTrustedProxy(t *testing.T) {
	cfg := testConfig
	cfg.TrustProxyHeaders = true
	if got := loginFromRotatingForwardedFor(t, cfg, 20); got != 0 {
		t.Errorf("429 responses = %d, want 0 when each forwarded client is distinct", got)
	}
}
