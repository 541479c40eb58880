package main

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

	"github.com/spf13/pflag"

	"github.com/saaga0h/natlight/internal/light"
	"github.com/saaga0h/natlight/pkg/config"
	"github.com/saaga0h/natlight/pkg/health"
	"github.com/saaga0h/natlight/pkg/mqtt"
	"github.com/saaga0h/natlight/pkg/redis"
)

func main() {
	// Load configuration with hierarchy: defaults → file → env → flags
	cfg, err := loadConfig()
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("Starting natural light agent",
		"service_name", cfg.ServiceName,
		"location", cfg.Location,
		"mqtt_broker", cfg.MQTTAddress(),
		"redis_host", cfg.RedisAddress(),
		"config_file", cfg.ConfigFile,
		"log_level", cfg.LogLevel)

	// Set up context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	hupChan := make(chan os.Signal, 1)
	signal.Notify(hupChan, syscall.SIGHUP)

	mqttClient := mqtt.NewClient(cfg, logger)
	redisClient := redis.NewClient(cfg, logger)

	agent := light.NewAgent(mqttClient, redisClient, cfg, logger)

	healthChecker := health.NewChecker(mqttClient, redisClient, agent, logger)

	mux := http.NewServeMux()
	healthChecker.RegisterRoutes(mux)
	agent.RegisterRoutes(mux)
	httpServer := startHTTPServer(cfg.HealthPort, mux, logger)

	// Start agent in a goroutine
	agentErr := make(chan error, 1)
	go func() {
		if err := agent.Start(ctx); err != nil {
			logger.Error("Agent error", "error", err)
			agentErr <- err
		}
	}()

	reload := func() {
		newCfg, err := loadConfig()
		if err != nil {
			logger.Error("Failed to reload configuration, keeping current", "error", err)
			return
		}
		agent.Reload(ctx, newCfg)
	}

	if cfg.WatchConfig && cfg.ConfigFile != "" {
		go func() {
			if err := config.Watch(ctx, cfg.ConfigFile, logger, reload); err != nil {
				logger.Error("Config watcher stopped", "error", err)
			}
		}()
	}

	// Wait for shutdown signal or agent error, reloading on SIGHUP
	exitCode := 0
wait:
	for {
		select {
		case <-hupChan:
			logger.Info("Reload signal received (SIGHUP)")
			reload()
		case <-sigChan:
			logger.Info("Shutdown signal received (SIGTERM/SIGINT)")
			break wait
		case err := <-agentErr:
			logger.Error("Agent failed", "error", err)
			exitCode = 1
			break wait
		}
	}

	// Graceful shutdown
	logger.Info("Initiating graceful shutdown")
	cancel()

	if err := agent.Stop(); err != nil {
		logger.Error("Error stopping agent", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down HTTP server", "error", err)
	}

	logger.Info("Natural light agent shutdown complete")
	if exitCode != 0 {
		shutdownCancel()
		os.Exit(exitCode)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// startHTTPServer serves the health checks and the light API
func startHTTPServer(port int, handler http.Handler, logger *slog.Logger) *http.Server {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	return server
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
