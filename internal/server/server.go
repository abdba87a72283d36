// Package server wires the dependency graph and defines the route tree.
// It is the composition root: everything from the database connection to
// the handlers is assembled in New, and main.go only calls Load, New, and
// Start.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mkarpinski/blog-api/internal/auth"
	"github.com/mkarpinski/blog-api/internal/config"
	"github.com/mkarpinski/blog-api/internal/handler"
	"github.com/mkarpinski/blog-api/internal/middleware"
	sqliteRepo "github.com/mkarpinski/blog-api/internal/repository/sqlite"
	"github.com/mkarpinski/blog-api/internal/service"
	"github.com/mkarpinski/blog-api/internal/storage"
)

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed before exit.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the whole dependency chain:
// DB → repositories → services → handlers → routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	files, err := storage.NewDiskStore(s.config.UploadDir)
	if err != nil {
		return fmt.Errorf("creating upload store: %w", err)
	}

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.AccessTokenTTL, s.config.RefreshTokenTTL)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)

	articleService := service.NewArticleService(s.db.Articles, s.db.Tags, s.logger)
	snippetService := service.NewSnippetService(s.db.Snippets, s.db.Tags, s.logger)
	authService := service.NewAuthService(s.db.Users, s.db.Tokens, tokens, passwords, s.logger)
	userService := service.NewUserService(s.db.Users, files, s.logger)

	articles := handler.NewArticleHandler(articleService, files, s.logger)
	snippets := handler.NewSnippetHandler(snippetService, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger)
	users := handler.NewUserHandler(userService, s.logger)

	requireAuth := auth.RequireAuth(tokens, s.db.Tokens)

	s.router.Route("/api/v1", func(r chi.Router) {
		// public surface
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", authHandler.HandleRegister)
			r.Post("/auth/login", authHandler.HandleLogin)
			r.Post("/auth/refresh", authHandler.HandleRefresh)
			r.Post("/auth/logout/refresh", authHandler.HandleLogoutRefresh)

			r.Get("/articles", articles.HandleList)
			r.Get("/articles/{slug}", articles.HandleGet)
			r.Get("/articles/{slug}/image", articles.HandleGetImage)

			r.Get("/snippets", snippets.HandleList)
			r.Post("/snippets", snippets.HandleCreate)
			r.Get("/snippets/{slug}", snippets.HandleGet)

			r.Get("/users/{username}", users.HandleGet)
			r.Get("/users/{username}/avatar", users.HandleGetAvatar)
		})

		// authenticated surface
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/auth/logout", authHandler.HandleLogout)
			r.Get("/auth/me", authHandler.HandleMe)

			r.Get("/articles/drafts", articles.HandleListDrafts)
			r.Get("/articles/drafts/{slug}", articles.HandleGetDraft)
			r.Post("/articles", articles.HandleCreate)
			r.Put("/articles/{slug}", articles.HandleUpdate)
			r.Delete("/articles/{slug}", articles.HandleDelete)
			r.Put("/articles/{slug}/tags", articles.HandleSetTags)
			r.Put("/articles/{slug}/image", articles.HandleUploadImage)
			r.Post("/articles/{slug}/publish", articles.HandlePublish)
			r.Delete("/articles/{slug}/publish", articles.HandleUnpublish)
			r.Post("/articles/{slug}/like", articles.HandleLike)
			r.Delete("/articles/{slug}/like", articles.HandleUnlike)

			r.Get("/snippets/pending", snippets.HandleListPending)
			r.Get("/snippets/pending/{slug}", snippets.HandleGetPending)
			r.Put("/snippets/{slug}", snippets.HandleUpdate)
			r.Delete("/snippets/{slug}", snippets.HandleDelete)
			r.Post("/snippets/{slug}/approve", snippets.HandleApprove)
			r.Delete("/snippets/{slug}/approve", snippets.HandleRevokeApproval)

			r.Put("/users/{username}/avatar", users.HandleSetAvatar)
			r.Delete("/users/{username}/avatar", users.HandleDeleteAvatar)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}
