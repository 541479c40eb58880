package health

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaga0h/natlight/pkg/mqtt"
)

type stubMQTT struct {
	connected bool
}

func (s *stubMQTT) Connect(ctx context.Context) error { return nil }

func (s *stubMQTT) Disconnect() {}

func (s *stubMQTT) Subscribe(topic string, qos byte, h mqtt.MessageHandler) error { return nil }

func (s *stubMQTT) Publish(topic string, qos byte, retained bool, payload []byte) error {
	return nil
}

func (s *stubMQTT) IsConnected() bool { return s.connected }

type stubRedis struct {
	pingErr error
}

func (s *stubRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (s *stubRedis) Del(ctx context.Context, keys ...string) error { return nil }
func (s *stubRedis) HSetWithTTL(ctx context.Context, key string, fields map[string]interface{}, ttl time.Duration) error {
	return nil
}
func (s *stubRedis) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return nil, nil
}
func (s *stubRedis) Ping(ctx context.Context) error { return s.pingErr }

func (s *stubRedis) Close() error { return nil }

type stubAgent map[string]interface{}

func (s stubAgent) HealthStatus() map[string]interface{} { return s }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func get(t *testing.T, checker *Checker, path string) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	mux := http.NewServeMux()
	checker.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var response HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	return rec, response
}

func TestHandlerFunc(t *testing.T) {
	checker := NewChecker(&stubMQTT{}, &stubRedis{pingErr: errors.New("down")}, nil, testLogger())

	rec, response := get(t, checker, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", response.Status)
	assert.Nil(t, response.Services)
}

func TestDetailedHandlerFunc(t *testing.T) {
	tests := []struct {
		name       string
		mqtt       *stubMQTT
		redis      *stubRedis
		wantCode   int
		wantStatus string
		wantRedis  string
		wantMQTT   string
	}{
		{"all connected", &stubMQTT{connected: true}, &stubRedis{}, http.StatusOK, "healthy", "connected", "connected"},
		{"mqtt down", &stubMQTT{}, &stubRedis{}, http.StatusServiceUnavailable, "degraded", "connected", "disconnected"},
		{"redis down", &stubMQTT{connected: true}, &stubRedis{pingErr: errors.New("refused")}, http.StatusServiceUnavailable, "degraded", "disconnected", "connected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := stubAgent{"location": "study", "hex": "#fffefa"}
			checker := NewChecker(tt.mqtt, tt.redis, agent, testLogger())

			rec, response := get(t, checker, "/health/detailed")
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, response.Status)
			require.NotNil(t, response.Services)
			assert.Equal(t, tt.wantRedis, response.Services.Redis)
			assert.Equal(t, tt.wantMQTT, response.Services.MQTT)
			assert.Equal(t, "#fffefa", response.Agent["hex"])
		})
	}
}
