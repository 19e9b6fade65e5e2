// Package server is the composition root: it opens the favorites store,
// builds the upstream client, services and handlers, and mounts them on a
// chi router.
//
// DEPENDENCY FLOW:
//
//	config.Config ─┬─ marvel.Client ── CharacterService ── CharacterHandler
//	               └─ FavoriteRepository (sqlite | redis) ── FavoriteService ── FavoriteHandler
//
// The store handle is opened once in New and closed once when Start returns.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/marvel-catalog/internal/config"
	"github.com/sakif/marvel-catalog/internal/handler"
	"github.com/sakif/marvel-catalog/internal/marvel"
	"github.com/sakif/marvel-catalog/internal/middleware"
	"github.com/sakif/marvel-catalog/internal/repository"
	redisRepo "github.com/sakif/marvel-catalog/internal/repository/redis"
	sqliteRepo "github.com/sakif/marvel-catalog/internal/repository/sqlite"
	"github.com/sakif/marvel-catalog/internal/service"
)

const shutdownTimeout = 30 * time.Second

type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  repository.FavoriteRepository

	characters *service.CharacterService
}

// New opens the store and wires every route. On error nothing is left open.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("opening favorites store: %w", err)
	}

	upstream := marvel.NewClient(marvel.Config{
		BaseURL:    cfg.MarvelBaseURL,
		PublicKey:  cfg.MarvelPublicKey,
		PrivateKey: cfg.MarvelPrivateKey,
	}, logger)

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
		characters: service.NewCharacterService(upstream, service.CacheConfig{
			ListSize:   cfg.ListCacheSize,
			LookupSize: cfg.LookupCacheSize,
		}, logger),
	}
	s.setupRoutes()

	return s, nil
}

// openStore picks the backend from STORE_URL.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.FavoriteRepository, error) {
	kind, err := cfg.StoreKind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case config.StoreRedis:
		store, err := redisRepo.Open(ctx, cfg.StoreURL, cfg.DBName, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		path := cfg.SQLitePath()
		db, err := sqliteRepo.New(path)
		if err != nil {
			return nil, err
		}
		logger.Info("opened sqlite store", slog.String("path", path))
		return db, nil
	}
}

// setupRoutes mounts everything under /api.
//
// GET    /api/                                 greeting
// GET    /api/healthz                          liveness + cache occupancy
// GET    /api/characters                       list (search, limit, offset)
// GET    /api/characters/{id}                  lookup
// POST   /api/favorites                        add
// GET    /api/favorites/{user_id}              list a user's favorites
// DELETE /api/favorites/{user_id}/{character_id}
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	characterHandler := handler.NewCharacterHandler(s.characters, s.logger)
	favoriteHandler := handler.NewFavoriteHandler(service.NewFavoriteService(s.store, s.logger), s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/", handler.HandleRoot)
		r.Get("/healthz", characterHandler.HandleHealth)

		r.Get("/characters", characterHandler.HandleList)
		r.Get("/characters/{id}", characterHandler.HandleGet)

		r.Post("/favorites", favoriteHandler.HandleAdd)
		r.Get("/favorites/{user_id}", favoriteHandler.HandleList)
		r.Delete("/favorites/{user_id}/{character_id}", favoriteHandler.HandleRemove)
	})
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the store. Start calls it on the way out.
func (s *Server) Close() error {
	return s.store.Close()
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests and
// closes the store.
func (s *Server) Start() error {
	defer func() {
		if err := s.Close(); err != nil {
			s.logger.Error("failed to close favorites store", slog.String("error", err.Error()))
		}
	}()

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

	kind, _ := s.config.StoreKind()

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d/api/", s.config.Port)),
			slog.String("store", string(kind)),
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

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
