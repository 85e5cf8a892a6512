package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/crucial707/blog/internal/auth"
	"github.com/crucial707/blog/internal/config"
	"github.com/crucial707/blog/internal/db"
	"github.com/crucial707/blog/internal/handlers"
	"github.com/crucial707/blog/internal/middleware"
	"github.com/crucial707/blog/internal/repo"
	"github.com/crucial707/blog/internal/scheduler"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()
	slog.SetDefault(newLogger(cfg.LogFormat, cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database FIRST
	database, err := db.Connect(ctx, cfg.DSN(), cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	if cfg.MigrateOnStart {
		if err := db.Run(cfg.DSN()); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied")
	}

	cron, err := scheduler.Start(cfg.PublishSchedule, repo.NewArticleRepo(database))
	if err != nil {
		slog.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	if cron != nil {
		defer cron.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(database, cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server LAST
	errc := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr, "tls", cfg.TLSEnabled(), "auth_mode", cfg.AuthMode)
		if cfg.TLSEnabled() {
			errc <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}
}

// newRouter wires repositories, handlers and middleware onto a chi router.
// Public API routes live under /api; /ready and /metrics sit at the root.
func newRouter(database *sql.DB, cfg config.Config) http.Handler {
	userRepo := repo.NewUserRepo(database)
	articleRepo := repo.NewArticleRepo(database)
	commentRepo := repo.NewCommentRepo(database)
	categoryRepo := repo.NewCategoryRepo(database)
	tagRepo := repo.NewTagRepo(database)
	auditRepo := repo.NewAuditRepo(database)

	issuer := auth.NewIssuer(cfg.AuthMode, cfg.SessionPrefix, []byte(cfg.JWTSecret),
		time.Duration(cfg.JWTExpireHours)*time.Hour)

	authHandler := &handlers.AuthHandler{UserRepo: userRepo, Issuer: issuer}
	articleHandler := &handlers.ArticleHandler{Repo: articleRepo, AuditRepo: auditRepo}
	commentHandler := &handlers.CommentHandler{Repo: commentRepo, Articles: articleRepo, AuditRepo: auditRepo}
	categoryHandler := &handlers.CategoryHandler{Repo: categoryRepo, AuditRepo: auditRepo}
	tagHandler := &handlers.TagHandler{Repo: tagRepo, AuditRepo: auditRepo}
	userHandler := &handlers.UserHandler{Repo: userRepo}
	auditHandler := &handlers.AuditHandler{Repo: auditRepo}

	requireAuth := middleware.RequireAuth(issuer, userRepo)
	authLimiter := middleware.AuthRateLimiter()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSEnabled()))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.JSONError(w, "Route not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.JSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	r.Get("/ready", handlers.Ready(database))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		// ==========================
		// Auth
		// ==========================
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/register", authHandler.Register)
		})
		r.Post("/auth/logout", authHandler.Logout)
		r.With(requireAuth).Get("/auth/me", authHandler.Me)

		// ==========================
		// Articles & comments
		// ==========================
		r.Get("/articles", articleHandler.ListArticles)
		r.Get("/articles/{slug}", articleHandler.GetArticle)
		r.Get("/articles/{slug}/comments", commentHandler.ListComments)
		r.Post("/articles/{id}/like", articleHandler.LikeArticle)
		r.Post("/comments/{id}/like", commentHandler.LikeComment)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/articles", articleHandler.CreateArticle)
			r.Put("/articles/{id}", articleHandler.UpdateArticle)
			r.Delete("/articles/{id}", articleHandler.DeleteArticle)
			r.Patch("/articles/{id}/publish", articleHandler.PublishArticle)
			r.Post("/articles/{id}/comments", commentHandler.CreateComment)
			r.Delete("/comments/{id}", commentHandler.DeleteComment)

			r.Post("/categories", categoryHandler.CreateCategory)
			r.Post("/tags", tagHandler.CreateTag)
			r.Get("/audit", auditHandler.ListAudit)
		})

		// ==========================
		// Reference data
		// ==========================
		r.Get("/categories", categoryHandler.ListCategories)
		r.Get("/tags", tagHandler.ListTags)
		r.Get("/users", userHandler.ListUsers)
		r.Get("/users/{id}", userHandler.GetUser)
	})

	return r
}

// newLogger builds the process logger. format is "json" or "text"; level is debug|info|warn|error.
func newLogger(format, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
