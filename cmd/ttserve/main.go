package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgnsrekt/ttserve/internal/api"
	"github.com/dgnsrekt/ttserve/internal/cache"
	"github.com/dgnsrekt/ttserve/internal/config"
	"github.com/dgnsrekt/ttserve/internal/logging"
	"github.com/dgnsrekt/ttserve/internal/speech"
	"github.com/dgnsrekt/ttserve/internal/tts"
)

func main() {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		// Use stderr before logger is initialized
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize structured logger
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting ttserve", "version", "0.1.0")

	// Warn if bearer token auth is disabled
	if cfg.AuthDisabled() {
		logger.Warn("HTTP bearer authentication is disabled (BEARER_TOKEN is empty)")
	}

	// Log loaded configuration (without sensitive values)
	logger.Info("configuration loaded",
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat,
		"http_port", cfg.HTTPPort,
		"voice", cfg.DefaultVoice,
		"engine", cfg.Engine,
		"cache_dir", cfg.CacheDir,
		"synth_timeout", cfg.SynthTimeout,
		"max_text_length", cfg.MaxTextLength,
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	}()

	// Initialize the audio cache store; without it the service is useless.
	store, err := cache.NewStore(cfg.CacheDir)
	if err != nil {
		logger.Error("failed to initialize cache store", "error", err)
		os.Exit(1)
	}

	// Initialize TTS engine registry
	registry := tts.NewRegistry()

	edgeEngine := tts.NewEdgeEngine(cfg.DefaultVoice, logger)
	if err := registry.Register(edgeEngine); err != nil {
		logger.Error("failed to register edge engine", "error", err)
		os.Exit(1)
	}

	cliEngine, err := tts.NewEdgeCLIEngine(tts.EdgeCLIConfig{
		BinaryPath:   cfg.EdgeTTSPath,
		DefaultVoice: cfg.DefaultVoice,
	}, logger)
	if err != nil {
		// The CLI engine is optional unless it was selected.
		if cfg.Engine == config.EngineEdgeCLI {
			logger.Error("failed to initialize edge-tts CLI engine", "error", err)
			os.Exit(1)
		}
		logger.Warn("edge-tts CLI engine unavailable", "error", err)
	} else {
		if err := registry.Register(cliEngine); err != nil {
			logger.Error("failed to register edge-tts CLI engine", "error", err)
			os.Exit(1)
		}
	}

	if err := registry.SetDefault(cfg.Engine); err != nil {
		logger.Error("failed to select TTS engine", "engine", cfg.Engine, "error", err)
		os.Exit(1)
	}

	engine, err := registry.Default()
	if err != nil {
		logger.Error("no TTS engine available", "error", err)
		os.Exit(1)
	}
	logger.Info("TTS engine ready", "engine", engine.Name())

	// Create the request coordinator
	coordinator := speech.NewCoordinator(store, engine, cfg.SynthTimeout, logger)

	// Create and start HTTP server
	server := api.New(cfg, logger, coordinator)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	stats := store.Stats()
	logger.Info("shutdown complete", "cache_hits", stats.Hits, "cache_misses", stats.Misses)
}
