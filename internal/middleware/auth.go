package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/crucial707/blog/internal/auth"
	"github.com/crucial707/blog/internal/models"
	"github.com/crucial707/blog/internal/repo"
)

type key string

const userKey key = "user"

// UserLookup resolves the user a token belongs to.
type UserLookup interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token's user in the request context.
func RequireAuth(issuer auth.Issuer, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, status, msg := authenticate(r, issuer, users)
			if user == nil {
				writeError(w, msg, status)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// authenticate returns the token's user, or nil with the status and message to send.
func authenticate(r *http.Request, issuer auth.Issuer, users UserLookup) (*models.User, int, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, http.StatusUnauthorized, "Authentication required"
	}
	token := auth.BearerToken(header)
	if token == "" {
		return nil, http.StatusUnauthorized, "Invalid or missing token"
	}
	userID, err := issuer.Parse(token)
	if err != nil {
		return nil, http.StatusUnauthorized, "Invalid or missing token"
	}
	user, err := users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, http.StatusUnauthorized, "User not found"
		}
		return nil, http.StatusInternalServerError, "internal server error"
	}
	return user, 0, ""
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the authenticated user, if any.
func GetUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// GetUserID returns the authenticated user's ID, if any.
func GetUserID(ctx context.Context) (int, bool) {
	u, ok := GetUser(ctx)
	if !ok {
		return 0, false
	}
	return u.ID, true
}
