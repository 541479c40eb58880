package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/saaga0h/natlight/pkg/mqtt"
	"github.com/saaga0h/natlight/pkg/redis"
)

// pingTimeout bounds the Redis check of the detailed endpoint
const pingTimeout = 500 * time.Millisecond

// StatusReporter exposes agent state for the detailed health check
type StatusReporter interface {
	HealthStatus() map[string]interface{}
}

// Checker provides health check functionality for the agent
type Checker struct {
	mqtt   mqtt.Client
	redis  redis.Client
	agent  StatusReporter
	logger *slog.Logger
}

// NewChecker creates a new health checker with the given dependencies.
// agent may be nil.
func NewChecker(mqttClient mqtt.Client, redisClient redis.Client, agent StatusReporter, logger *slog.Logger) *Checker {
	return &Checker{
		mqtt:   mqttClient,
		redis:  redisClient,
		agent:  agent,
		logger: logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Services  *Services              `json:"services,omitempty"`
	Agent     map[string]interface{} `json:"agent,omitempty"`
}

// Services represents the status of external dependencies
type Services struct {
	Redis string `json:"redis"`
	MQTT  string `json:"mqtt"`
}

// HandlerFunc returns a minimal health check that answers 200 while the process is alive
func (h *Checker) HandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		}
		h.write(w, http.StatusOK, response)
	}
}

// DetailedHandlerFunc returns a handler that checks all dependencies and
// includes the agent's last published colour
func (h *Checker) DetailedHandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := &Services{
			Redis: "disconnected",
			MQTT:  "disconnected",
		}

		if h.mqtt != nil && h.mqtt.IsConnected() {
			services.MQTT = "connected"
		}

		if h.redis != nil {
			ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
			if err := h.redis.Ping(ctx); err != nil {
				h.logger.Warn("Redis health check failed", "error", err)
			} else {
				services.Redis = "connected"
			}
			cancel()
		}

		status := "healthy"
		statusCode := http.StatusOK

		if services.Redis == "disconnected" || services.MQTT == "disconnected" {
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Services:  services,
		}
		if h.agent != nil {
			response.Agent = h.agent.HealthStatus()
		}

		h.write(w, statusCode, response)
	}
}

// RegisterRoutes adds /health and /health/detailed to mux
func (h *Checker) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HandlerFunc())
	mux.HandleFunc("/health/detailed", h.DetailedHandlerFunc())
}

func (h *Checker) write(w http.ResponseWriter, statusCode int, response HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode health response", "error", err)
	}
}
