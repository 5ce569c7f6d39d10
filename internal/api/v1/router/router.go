package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"tutorials/internal/api/v1/handler"
	"tutorials/internal/config"
	"tutorials/internal/middleware"
	"tutorials/internal/pubsub"
	"tutorials/internal/repository"
	"tutorials/internal/secrets"
	"tutorials/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// New connects the store and event publisher described by cfg and returns the
// HTTP handler together with a cleanup function releasing both.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, func() error, error) {
	logger.Info().
		Str("environment", cfg.Environment).
		Str("db_driver", cfg.DBDriver).
		Bool("events_enabled", cfg.EventsEnabled()).
		Msg("Router initializing")

	// 1. Resolve the store connection string
	dsn, err := secrets.ResolveDSN(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// 2. Open the store
	repo, closeRepo, err := repository.Open(ctx, repository.Options{
		Driver:      cfg.DBDriver,
		DSN:         dsn,
		SQLitePath:  cfg.SQLitePath,
		Development: cfg.IsDevelopment(),
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	// 3. Initialize Pub/Sub publisher
	var publisher pubsub.Publisher = pubsub.NoopPublisher{}
	closePublisher := func() error { return nil }
	if cfg.EventsEnabled() {
		p, err := pubsub.NewPublisher(ctx, cfg)
		if err != nil {
			closeRepo()
			return nil, nil, err
		}
		publisher, closePublisher = p, p.Close
		logger.Info().Str("topic", cfg.PubSubTutorialTopic).Msg("Publishing tutorial events")
	}

	cleanup := func() error {
		return errors.Join(closePublisher(), closeRepo())
	}
	return NewHandler(cfg, repo, publisher, logger), cleanup, nil
}

// NewHandler wires service, handlers and middleware around an already opened store.
func NewHandler(cfg *config.Config, repo repository.TutorialRepository, publisher pubsub.Publisher, logger zerolog.Logger) http.Handler {
	validate := validator.New(validator.WithRequiredStructEnabled())

	tutorialSvc := service.NewTutorialService(repo, publisher, cfg.PubSubTutorialTopic, logger)
	tutorialHandler := handler.NewTutorialHandler(tutorialSvc, validate, logger)

	// Mount the API routes under /api
	apiMux := http.NewServeMux()
	tutorialHandler.RegisterRoutes(apiMux)

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", apiMux))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})

	return middleware.RequestID(
		middleware.LoggerMiddleware(logger)(
			middleware.Recovery(logger)(c.Handler(mux)),
		),
	)
}
