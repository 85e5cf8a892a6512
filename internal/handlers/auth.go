package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/crucial707/blog/internal/auth"
	"github.com/crucial707/blog/internal/metrics"
	"github.com/crucial707/blog/internal/middleware"
	"github.com/crucial707/blog/internal/models"
	"github.com/crucial707/blog/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	UserRepo *repo.UserRepo
	Issuer   auth.Issuer
}

// authPayload is the data of a successful login or registration.
type authPayload struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// ==========================
// Login (email + password, bcrypt verified)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		JSONError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.UserRepo.GetByEmail(r.Context(), strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			metrics.RecordLogin(false)
			JSONError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		internalError(w, r, "login: lookup user", err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		metrics.RecordLogin(false)
		JSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.Issuer.Issue(user.ID)
	if err != nil {
		internalError(w, r, "login: issue token", err)
		return
	}
	metrics.RecordLogin(true)
	OK(w, authPayload{User: user, Token: token}, "Login successful")
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username  string  `json:"username" validate:"required,min=3,max=50,alphanum"`
		Email     string  `json:"email" validate:"required,email,max=255"`
		Password  string  `json:"password" validate:"required,min=8,max=72"`
		FirstName string  `json:"firstName" validate:"required,max=100"`
		LastName  string  `json:"lastName" validate:"required,max=100"`
		Avatar    *string `json:"avatar" validate:"omitempty,url"`
		Bio       *string `json:"bio" validate:"omitempty,max=500"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if fields := validationFields(input); fields != nil {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		internalError(w, r, "register: hash password", err)
		return
	}
	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Avatar:       input.Avatar,
		Bio:          input.Bio,
	}
	if err := h.UserRepo.Create(r.Context(), user); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			JSONError(w, "Username or email already registered", http.StatusConflict)
			return
		}
		internalError(w, r, "register: create user", err)
		return
	}

	token, err := h.Issuer.Issue(user.ID)
	if err != nil {
		internalError(w, r, "register: issue token", err)
		return
	}
	JSON(w, http.StatusCreated, Envelope{
		Success: true,
		Data:    authPayload{User: user, Token: token},
		Message: "Registration successful",
	})
}

// ==========================
// Me (requires auth)
// ==========================
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONError(w, "Invalid or missing token", http.StatusUnauthorized)
		return
	}
	OK(w, struct {
		User *models.User `json:"user"`
	}{user}, "")
}

// Logout is stateless: tokens are not stored server side, so the client
// discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	OK(w, nil, "Logout successful")
}
