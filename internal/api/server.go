package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/sheriax/autobackend.ai-backend/internal/config"
	"github.com/sheriax/autobackend.ai-backend/internal/generator"
	"github.com/sheriax/autobackend.ai-backend/internal/middleware"
)

type Server struct {
	Router http.Handler
}

func NewServer(cfg config.Config, gen generator.Generator, logger zerolog.Logger) (*Server, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(logger))
	r.Use(middleware.AccessLog(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
	}))

	r.Get("/", Root())
	r.Get("/health", Health(cfg))
	r.Post("/generate", Generate(gen, logger))
	r.Get("/sample-spec", SampleSpec())
	r.Get("/test-api", TestAPI(gen, cfg, logger))

	// Unmatched paths and mismatched methods both fall through to the same
	// JSON 404, so POST /health behaves like an unknown route.
	r.NotFound(RouteNotFound())
	r.MethodNotAllowed(RouteNotFound())

	return &Server{Router: r}, nil
}
