package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"scribe-ai/backend/internal/api"
	"scribe-ai/backend/internal/backoff"
	"scribe-ai/backend/internal/circuit"
	"scribe-ai/backend/internal/config"
	"scribe-ai/backend/internal/database"
	"scribe-ai/backend/internal/llm"
	"scribe-ai/backend/internal/ratelimit"
	"scribe-ai/backend/internal/repository"
	"scribe-ai/backend/internal/service"
	"scribe-ai/backend/internal/tool"
)

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this
		// critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)
	logConfigSource()

	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()
	slog.Info("Successfully connected to SQLite database.")

	repo := repository.NewSQLiteRepository(db)
	noteStore := repository.NewSQLiteNoteStore(db)

	registry := tool.NewRegistry()
	if err := tool.RegisterBuiltins(registry, noteStore); err != nil {
		slog.Error("Failed to register builtin tools", "error", err)
		return 1
	}
	slog.Info("Registered builtin tools", "count", len(registry.Definitions()))

	metrics := service.NewMetrics()
	breakers := circuit.NewRegistry(circuit.Config{
		FailureThreshold: cfg.BreakerThreshold,
		ResetTimeout:     cfg.BreakerResetTimeout,
	})
	limiter := ratelimit.New(cfg.RateLimitQuota, cfg.RateLimitWindow)
	gateway := service.NewToolGateway(registry, breakers, limiter, metrics, cfg.ToolTimeout)

	provider := llm.NewOpenAIProvider(cfg.ProviderBaseURL, cfg.ProviderAPIKey)
	orchestrator := service.NewOrchestrator(provider, gateway, repo, metrics, limiter, service.OrchestratorConfig{
		Model:         cfg.MainModel,
		SupportModel:  cfg.SupportModel,
		SystemPrompt:  cfg.SystemPrompt,
		MaxRounds:     cfg.MaxRounds,
		StreamTimeout: cfg.StreamTimeout,
		StreamRetries: cfg.StreamRetries,
		Backoff: backoff.Policy{
			Base:       cfg.RetryBaseDelay,
			Max:        cfg.RetryMaxDelay,
			Multiplier: cfg.RetryMultiplier,
			Jitter:     cfg.RetryJitter,
		},
	})

	conversationService := service.NewConversationService(repo, cfg.MainModel)
	opsService := service.NewOpsService(metrics, breakers, limiter)

	conversationHandler := api.NewConversationHandler(conversationService, orchestrator)
	opsHandler := api.NewOpsHandler(opsService)
	router := api.NewRouter(conversationHandler, opsHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for long-running turn requests
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("Starting server", "port", cfg.AppPort)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		return 1
	}

	return 0
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
