package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tablelens-ai/tablelens-engine/pkg/config"
	"github.com/tablelens-ai/tablelens-engine/pkg/handlers"
	"github.com/tablelens-ai/tablelens-engine/pkg/llm"
	"github.com/tablelens-ai/tablelens-engine/pkg/logging"
	"github.com/tablelens-ai/tablelens-engine/pkg/middleware"
	"github.com/tablelens-ai/tablelens-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

const defaultOpenAIEndpoint = "https://api.openai.com/v1"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Int("max_concurrent_tables", cfg.Analysis.MaxConcurrentTables))

	client, err := buildLLMClient(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create LLM client", zap.Error(err))
	}

	pool := llm.NewWorkerPool(llm.WorkerPoolConfig{
		MaxConcurrent: cfg.Analysis.MaxConcurrentTables,
	}, logger)

	orchestrator := services.NewOrchestrator(
		services.NewTableAnalyzer(client, logger),
		services.NewRuleMapper(client, logger),
		pool,
		logger,
	)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAnalyzeHandler(orchestrator, logger).RegisterRoutes(mux)
	handlers.NewIntrospectHandler(logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting tablelens-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildLLMClient creates the configured provider client wrapped with the
// retry policy.
func buildLLMClient(cfg *config.Config, logger *zap.Logger) (llm.LLMClient, error) {
	var inner llm.LLMClient
	var err error

	switch cfg.LLM.Provider {
	case "anthropic":
		inner, err = llm.NewAnthropicClient(cfg.LLM.APIKey, cfg.LLM.Model, logger)
	default:
		endpoint := cfg.LLM.Endpoint
		if endpoint == "" {
			endpoint = defaultOpenAIEndpoint
		}
		inner, err = llm.NewClient(&llm.Config{
			Endpoint: endpoint,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
		}, logger)
	}
	if err != nil {
		return nil, err
	}

	return llm.NewRetryingClient(inner, cfg.Retry.ToRetryConfig(), cfg.LLM.CallTimeout(), logger), nil
}
