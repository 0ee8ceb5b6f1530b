package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sheriax/autobackend.ai-backend/internal/api"
	"github.com/sheriax/autobackend.ai-backend/internal/config"
	"github.com/sheriax/autobackend.ai-backend/internal/generator"
	"github.com/sheriax/autobackend.ai-backend/internal/logging"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)
	logger.Info().Str("addr", cfg.Addr()).Str("model", cfg.GeminiModel).Msg("starting autobackend")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen, err := generator.NewGeminiClient(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("gemini client init failed")
	}

	app, err := api.NewServer(cfg, gen, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("server init failed")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
}
