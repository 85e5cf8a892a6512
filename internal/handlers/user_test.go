package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/blog/internal/repo"
)

func TestUserHandler_ListUsers(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM users ORDER BY first_name ASC, id ASC LIMIT \$1 OFFSET \$2`).
		WithArgs(2, 0).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(2, "janesmith", "jane@example.com", "hash", "Jane", "Smith", nil, nil, now, now).
			AddRow(1, "johndoe", "john@example.com", "hash", "John", "Doe", nil, nil, now, now))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	h := &UserHandler{Repo: repo.NewUserRepo(db)}
	rr := httptest.NewRecorder()
	h.ListUsers(rr, requestWithChiURLParams("GET", "/api/users?limit=2", nil, nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("ListUsers status: got %d, want 200", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	if env.Meta == nil || env.Meta.TotalItems != 3 || env.Meta.TotalPages != 2 || !env.Meta.HasNext {
		t.Errorf("unexpected meta: %+v", env.Meta)
	}
	var users []map[string]any
	decodeData(t, env, &users)
	if len(users) != 2 || users[0]["username"] != "janesmith" {
		t.Errorf("unexpected users: %+v", users)
	}
	if _, leaked := users[0]["passwordHash"]; leaked {
		t.Error("password hash must not be serialized")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserHandler_GetUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "johndoe", "john@example.com", "hash", "John", "Doe", nil, "Writer", now, now))

	h := &UserHandler{Repo: repo.NewUserRepo(db)}
	req := requestWithChiURLParams("GET", "/api/users/1", nil, map[string]string{"id": "1"})
	rr := httptest.NewRecorder()
	h.GetUser(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("GetUser status: got %d, want 200", rr.Code)
	}
	var user struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
		Bio      string `json:"bio"`
	}
	decodeData(t, decodeEnvelope(t, rr), &user)
	if user.ID != 1 || user.Username != "johndoe" || user.Bio != "Writer" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserHandler_GetUser_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(999).
		WillReturnRows(sqlmock.NewRows(userCols))

	h := &UserHandler{Repo: repo.NewUserRepo(db)}
	req := requestWithChiURLParams("GET", "/api/users/999", nil, map[string]string{"id": "999"})
	rr := httptest.NewRecorder()
	h.GetUser(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("GetUser status: got %d, want 404", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.Error != "User not found" {
		t.Errorf("error: %q", env.Error)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserHandler_GetUser_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(1).
		WillReturnError(errors.New("connection reset"))

	h := &UserHandler{Repo: repo.NewUserRepo(db)}
	rr := httptest.NewRecorder()
	h.GetUser(rr, requestWithChiURLParams("GET", "/api/users/1", nil, map[string]string{"id": "1"}))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.Error != ErrMessageInternal {
		t.Errorf("500 must not leak details, got %q", env.Error)
	}
}

func TestUserHandler_GetUser_InvalidID(t *testing.T) {
	h := &UserHandler{}
	for _, id := range []string{"abc", "0", "-1"} {
		rr := httptest.NewRecorder()
		h.GetUser(rr, requestWithChiURLParams("GET", "/api/users/"+id, nil, map[string]string{"id": id}))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("id %q: got %d, want 400", id, rr.Code)
		}
	}
}
