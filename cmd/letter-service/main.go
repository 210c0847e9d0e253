package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/auth/jwt"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/clients"
	clientrepo "github.com/ledgerdesk/ledgerdesk-backend/internal/clients/repository"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/events"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/handler"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/render"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/repository"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/resolver"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/service"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/storage"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/config"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/database"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/httputil"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/logger"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("letter-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("letter-service", cfg.Server.Environment)
	log.Info().Msg("starting Letter Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := events.NewLetterEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Initialize repositories
	templateRepo := repository.NewTemplateRepository(db)
	letterRepo := repository.NewLetterRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	directory := clients.NewBundleProvider(
		clientrepo.NewClientRepository(db),
		clientrepo.NewServiceRepository(db),
		clientrepo.NewUserRepository(db),
	)

	// Initialize document storage
	store, err := storage.NewStore(&cfg.Storage, documentRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document storage")
	}

	// Initialize services
	res := resolver.New(directory, &cfg.Practice, log)
	renderer := render.New(&cfg.Practice)
	templateService := service.NewTemplateService(templateRepo, store, publisher, log)
	generationService := service.NewGenerationService(
		templateRepo, letterRepo, store, res, renderer, directory, publisher, log,
	)

	// Initialize handlers
	templateHandler := handler.NewTemplateHandler(templateService, log)
	letterHandler := handler.NewLetterHandler(generationService, log)

	// Token validation for the auth middleware
	jwtManager := jwt.NewManager(&cfg.JWT)
	validateToken := func(token string) (*httputil.TokenClaims, error) {
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &httputil.TokenClaims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Name:   claims.Name,
		}, nil
	}

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			if origin == "http://localhost:3000" || origin == "http://localhost:5173" {
				return true
			}
			if strings.HasSuffix(origin, ".ledgerdesk.co.uk") {
				return true
			}
			return origin == "https://ledgerdesk.co.uk"
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "letter-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httputil.Auth(validateToken))

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", templateHandler.List)
			r.Post("/", templateHandler.Create)
			r.Get("/{id}", templateHandler.Get)
			r.Put("/{id}", templateHandler.Update)
			r.Delete("/{id}", templateHandler.Delete)
			r.Get("/{id}/versions", templateHandler.ListVersions)
			r.Post("/{id}/preview", templateHandler.Preview)
		})

		r.Route("/letters", func(r chi.Router) {
			r.Get("/", letterHandler.List)
			r.Post("/", letterHandler.Generate)
			r.Post("/bulk", letterHandler.GenerateBulk)
			r.Get("/bulk/{zipId}/download", letterHandler.DownloadArchive)
			r.Get("/{id}", letterHandler.Get)
			r.Get("/{id}/download", letterHandler.Download)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
