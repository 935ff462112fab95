// Package server wires the store, services, handlers and routes together and
// runs the HTTP server.
//
// Dependency chain built by New:
//
//	config → store (sqlite or postgres) → Directory/FavoriteService → AuthService → handlers → routes
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/cinefav/internal/auth"
	"github.com/sakif/cinefav/internal/config"
	"github.com/sakif/cinefav/internal/handler"
	"github.com/sakif/cinefav/internal/middleware"
	"github.com/sakif/cinefav/internal/repository"
	"github.com/sakif/cinefav/internal/repository/postgres"
	sqliteRepo "github.com/sakif/cinefav/internal/repository/sqlite"
	"github.com/sakif/cinefav/internal/service"
)

// Server owns the store and the router. The store is closed when Start returns.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  repository.Store
}

// New opens the store selected by cfg and builds the router.
// A non-empty DatabaseURL selects PostgreSQL, otherwise SQLite at DBPath is used.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(); err != nil {
		store.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func openStore(ctx context.Context, cfg config.Config) (repository.Store, error) {
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		return db, nil
	}

	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// setupRoutes registers middleware and routes:
//
//	GET    /healthz
//	POST   /user/register             (rate limited)
//	POST   /user/login                (rate limited)
//	GET    /user/me                   (auth)
//	PATCH  /user/me                   (auth)
//	DELETE /user/me                   (auth)
//	GET    /user/me/movies            (auth)
//	POST   /user/me/movies            (auth)
//	POST   /user/me/movies/annotate   (auth)
//	DELETE /user/me/movies/{imdbID}   (auth)
//	GET    /auth/github/login         (when configured)
//	GET    /auth/github/callback      (when configured)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordServiceWithCost(s.config.BcryptCost)

	favoriteService := service.NewFavoriteService(s.store, s.logger)
	directory := service.NewDirectory(s.store, passwords, favoriteService, s.logger)
	authService := service.NewAuthService(directory, tokens, s.logger)

	userHandler := handler.NewUserHandler(authService, directory, s.logger)
	favoritesHandler := handler.NewFavoritesHandler(directory, s.logger)
	healthHandler := handler.NewHealthHandler(s.store, s.logger)

	limiter := middleware.NewRateLimiter(s.config.RateLimitRequests, s.config.RateLimitWindow, s.config.RateLimitBurst)
	requireAuth := auth.RequireAuth(tokens, handler.WriteError)

	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/user", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(limiter, handler.WriteTooManyRequests))
			r.Post("/register", userHandler.HandleRegister)
			r.Post("/login", userHandler.HandleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", userHandler.HandleMe)
			r.Patch("/me", userHandler.HandleUpdateMe)
			r.Delete("/me", userHandler.HandleDeleteMe)

			r.Get("/me/movies", favoritesHandler.HandleList)
			r.Post("/me/movies", favoritesHandler.HandleAdd)
			r.Post("/me/movies/annotate", favoritesHandler.HandleAnnotate)
			r.Delete("/me/movies/{imdbID}", favoritesHandler.HandleRemove)
		})
	})

	if s.config.GitHubEnabled() {
		github := auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
		githubHandler := handler.NewGitHubHandler(github, authService, s.logger)
		s.router.Get("/auth/github/login", githubHandler.HandleLogin)
		s.router.Get("/auth/github/callback", githubHandler.HandleCallback)
	} else {
		s.logger.Info("GitHub sign-in disabled: GITHUB_CLIENT_ID or GITHUB_CLIENT_SECRET not set")
	}

	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the store. Start does this on return.
func (s *Server) Close() error {
	return s.store.Close()
}

// Start serves until SIGINT/SIGTERM or a listener error, then drains
// in-flight requests for up to 30 seconds and closes the store.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		backend := "sqlite"
		if s.config.DatabaseURL != "" {
			backend = "postgres"
		}
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("store", backend),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
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
