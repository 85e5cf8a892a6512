// Command web serves a small server-rendered front end for the blog API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/crucial707/blog/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

const (
	cookieName  = "blog_token"
	defaultPort = "3000"
	defaultAPI  = "http://localhost:8080/api"
	envWebPort  = "BLOG_WEB_PORT"
	envAPIURL   = "BLOG_API_URL"
)

func main() {
	_ = godotenv.Load()

	port := getEnv(envWebPort, defaultPort)
	apiBase := strings.TrimRight(getEnv(envAPIURL, defaultAPI), "/")

	s, err := newServer(apiBase)
	if err != nil {
		slog.Error("failed to load templates", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("web UI running", "addr", "http://localhost:"+port, "api", apiBase)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("web server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecurityHeaders(false))
	r.Use(pageHeaders)

	// Health (no auth, no templates)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Public
	r.Get("/", s.home)
	r.Get("/about", s.about)
	r.Get("/login", s.loginForm)
	r.Post("/login", s.loginSubmit)
	r.Get("/logout", s.logout)
	r.Get("/articles/{slug}", s.articleDetail)
	r.Post("/articles/{id}/like", s.likeArticle)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/articles/new", s.newArticleForm)
		r.Post("/articles", s.createArticle)
		r.Post("/articles/{id}/comments", s.createComment)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "Page not found")
	})
	return r
}

// pageHeaders relaxes the API's JSON-only policy so pages can load their
// inline styles and remote cover images.
func pageHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' https:; frame-ancestors 'none'")
		h.Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type ctxKey struct{}

// requireAuth redirects to /login if the cookie is missing or the API rejects the token.
func (s *server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFrom(r)
		if token == "" {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
			return
		}
		res, err := s.api.call(r.Context(), http.MethodGet, "/auth/me", token, nil)
		if err != nil {
			s.renderError(w, r, http.StatusBadGateway, "Cannot reach API: "+err.Error())
			return
		}
		if res.Status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if !res.ok() {
			s.renderAPIError(w, r, res, nil)
			return
		}
		var me struct {
			User author `json:"user"`
		}
		_ = res.decode(&me)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, &me.User)))
	})
}

func currentUser(r *http.Request) *author {
	u, _ := r.Context().Value(ctxKey{}).(*author)
	return u
}

func tokenFrom(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

// clearAuthAndRedirectToLogin clears the token cookie and sends the user back
// to /login with next set to the current page.
func clearAuthAndRedirectToLogin(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w)
	next := r.URL.Path
	if r.Method != http.MethodGet {
		next = safeNext(r.Referer())
	}
	http.Redirect(w, r, "/login?next="+url.QueryEscape(next), http.StatusFound)
}

// safeNext keeps only same-site absolute paths.
func safeNext(next string) string {
	if u, err := url.Parse(next); err == nil && u.IsAbs() {
		next = u.RequestURI()
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
