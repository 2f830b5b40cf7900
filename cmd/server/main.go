package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/database"
	"portfolio-backend/internal/handlers"
	"portfolio-backend/internal/logging"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/router"
	"portfolio-backend/internal/services"
	"portfolio-backend/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	logging.Setup(os.Stderr, cfg.LogLevel, cfg.IsProduction())
	log.Info().Msg("🚀 Starting AI Portfolio Backend...")
	log.Info().Str("env", cfg.Env).Msg("✓ Environment variables loaded")

	// ──── Step 2: Initialize Redis (optional) ────
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("✗ Redis unavailable, falling back to in-memory rate limiting")
		} else {
			redisClient = client
			defer redisClient.Close()
			log.Info().Msg("✓ Redis connected")
		}
	}

	// ──── Step 3: Initialize Model Providers ────
	geminiService, err := services.NewGeminiService(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("✗ Gemini client initialization failed")
	}
	defer geminiService.Close()
	if geminiService.Configured() {
		log.Info().Str("model", cfg.GeminiModel).Msg("✓ Gemini client initialized")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, vision analysis disabled")
	}

	var provider services.Provider
	switch cfg.ChatProvider {
	case "gemini":
		provider = geminiService
	default:
		if cfg.ChatProvider != "groq" {
			log.Warn().Str("provider", cfg.ChatProvider).Msg("Unknown CHAT_PROVIDER, using groq")
		}
		provider = services.NewGroqService(cfg.GroqAPIKey, cfg.GroqAPIURL, cfg.GroqModel)
		if cfg.GroqAPIKey == "" {
			log.Warn().Msg("GROQ_API_KEY not set, chat replies will report missing configuration")
		}
	}

	chatService := services.NewChatService(provider, cfg.UpstreamConcurrency, cfg.UpstreamTimeout)
	log.Info().
		Str("provider", chatService.ProviderName()).
		Int("concurrency", cfg.UpstreamConcurrency).
		Dur("timeout", cfg.UpstreamTimeout).
		Msg("✓ Chat service initialized")

	// ──── Step 4: Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(chatService)
	visionHandler := handlers.NewVisionHandler(geminiService, cfg.VisionMaxUploadMB)
	healthLimiter := middleware.NewLimiter(redisClient, "health", cfg.HealthRatePerMin, time.Minute)
	chatLimiter := middleware.NewLimiter(redisClient, "chat", cfg.ChatRatePerMin, time.Minute)

	wsHub := websocket.NewHub(chatService, cfg.AllowedOrigins(), chatLimiter)

	// ──── Step 5: Start HTTP Server ────
	r := router.New(
		chatHandler,
		visionHandler,
		wsHub,
		healthLimiter,
		chatLimiter,
		cfg.AllowedOrigins(),
	)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// streamed replies can take a while
		WriteTimeout: cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Shutting down...")
		wsHub.CloseAll()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().Msgf("✓ AI Portfolio Backend ready on http://localhost:%s", cfg.Port)
	log.Info().Msgf("  Chat: http://localhost:%s/api/chat/", cfg.Port)
	log.Info().Msgf("  WS:   ws://localhost:%s/api/chat/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server error")
	}
}
