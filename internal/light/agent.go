package light

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/saaga0h/natlight/internal/solar"
	"github.com/saaga0h/natlight/pkg/config"
	"github.com/saaga0h/natlight/pkg/mqtt"
	"github.com/saaga0h/natlight/pkg/redis"
)

// ErrManualOverride is returned by ForcePublish while a manual override holds the fixture
var ErrManualOverride = errors.New("manual override active")

// snapshotIntervals is how many decision intervals the Redis snapshot outlives its last refresh
const snapshotIntervals = 3

// Agent represents the natural light agent for one location
type Agent struct {
	mqtt     mqtt.Client
	redis    redis.Client
	cfg      atomic.Pointer[config.Config]
	location string
	logger   *slog.Logger
	now      func() time.Time

	sun             *SunCache
	overrideManager *OverrideManager
	rateLimiter     *RateLimiter

	// Last published colour
	stateMux  sync.RWMutex
	last      *Output
	lastID    string
	republish bool

	// Periodic decision loop
	ticker       *time.Ticker
	intervalChan chan time.Duration
	stopChan     chan struct{}
	stopOnce     sync.Once
}

// NewAgent creates a new natural light agent
func NewAgent(mqttClient mqtt.Client, redisClient redis.Client, cfg *config.Config, logger *slog.Logger) *Agent {
	a := &Agent{
		mqtt:            mqttClient,
		redis:           redisClient,
		location:        cfg.Location,
		logger:          logger,
		now:             time.Now,
		sun:             NewSunCache(),
		overrideManager: NewOverrideManager(),
		rateLimiter:     NewRateLimiter(),
		intervalChan:    make(chan time.Duration, 1),
		stopChan:        make(chan struct{}),
	}
	a.cfg.Store(cfg)
	return a
}

// Start starts the agent, publishes the first colour and blocks until ctx is cancelled
func (a *Agent) Start(ctx context.Context) error {
	cfg := a.cfg.Load()
	a.logger.Info("Starting natural light agent",
		"service_name", cfg.ServiceName,
		"location", a.location,
		"latitude", cfg.Latitude,
		"longitude", cfg.Longitude,
		"decision_interval_sec", cfg.DecisionIntervalSec,
		"manual_override_minutes", cfg.ManualOverrideMinutes,
		"min_publish_interval_ms", cfg.MinPublishIntervalMs)

	// Connect to MQTT broker
	if err := a.mqtt.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	// Verify Redis connection
	if err := a.redis.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	overrideTopic := mqtt.OverrideTopic(a.location)
	if err := a.mqtt.Subscribe(overrideTopic, 1, a.handleOverrideMessage); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", overrideTopic, err)
	}
	a.logger.Info("Subscribed to manual overrides", "topic", overrideTopic)

	a.evaluate(ctx, false)
	a.startPeriodicDecisionLoop(cfg.DecisionIntervalSec)

	a.logger.Info("Natural light agent started and ready")

	// Block until context is cancelled
	<-ctx.Done()
	a.logger.Info("Natural light agent stopping")

	return nil
}

// Stop gracefully stops the agent
func (a *Agent) Stop() error {
	a.logger.Info("Stopping natural light agent")

	a.stopOnce.Do(func() {
		close(a.stopChan)
	})

	a.mqtt.Disconnect()

	if err := a.redis.Close(); err != nil {
		a.logger.Error("Error closing Redis connection", "error", err)
		return err
	}

	a.logger.Info("Natural light agent stopped")
	return nil
}

// Reload swaps in a new configuration and publishes immediately unless a
// manual override is active. The location is fixed for the lifetime of the agent.
func (a *Agent) Reload(ctx context.Context, cfg *config.Config) {
	if cfg.Location != a.location {
		a.logger.Warn("Location change requires a restart, keeping current location",
			"location", a.location,
			"requested", cfg.Location)
	}

	prev := a.cfg.Swap(cfg)
	a.sun.Invalidate()

	if prev.DecisionIntervalSec != cfg.DecisionIntervalSec {
		select {
		case a.intervalChan <- time.Duration(cfg.DecisionIntervalSec) * time.Second:
		default:
		}
	}

	a.logger.Info("Configuration reloaded",
		"latitude", cfg.Latitude,
		"longitude", cfg.Longitude,
		"day_color_k", cfg.DayColorK,
		"night_color_k", cfg.NightColorK,
		"decision_interval_sec", cfg.DecisionIntervalSec)

	a.evaluate(ctx, true)
}

// startPeriodicDecisionLoop starts the periodic colour evaluation
func (a *Agent) startPeriodicDecisionLoop(intervalSec int) {
	a.ticker = time.NewTicker(time.Duration(intervalSec) * time.Second)

	go func() {
		defer a.ticker.Stop()
		a.logger.Info("Starting periodic decision loop", "interval_sec", intervalSec)
		for {
			select {
			case <-a.ticker.C:
				a.performPeriodicDecision()
			case interval := <-a.intervalChan:
				a.ticker.Reset(interval)
				a.logger.Info("Decision interval changed", "interval", interval)
			case <-a.stopChan:
				return
			}
		}
	}()
}

// performPeriodicDecision runs one tick of the loop
func (a *Agent) performPeriodicDecision() {
	a.evaluate(context.Background(), false)

	if cleaned := a.overrideManager.CleanupExpiredOverrides(); cleaned > 0 {
		a.logger.Info("Manual override expired", "location", a.location)
	}
}

// handleOverrideMessage handles manual override requests: {"minutes": N}.
// A missing minutes field uses the configured default, 0 clears the override.
func (a *Agent) handleOverrideMessage(msg mqtt.Message) {
	location, ok := mqtt.LocationFromTopic(mqtt.TopicOverrideBase, msg.Topic())
	if !ok || location != a.location {
		a.logger.Warn("Invalid override topic", "topic", msg.Topic())
		return
	}

	var overrideMsg struct {
		Minutes *int `json:"minutes"`
	}
	if err := json.Unmarshal(msg.Payload(), &overrideMsg); err != nil {
		a.logger.Error("Failed to parse override message",
			"location", location,
			"error", err)
		return
	}

	cfg := a.cfg.Load()
	minutes := cfg.ManualOverrideMinutes
	if overrideMsg.Minutes != nil {
		minutes = *overrideMsg.Minutes
	}
	if minutes < 0 {
		a.logger.Warn("Ignoring negative override duration", "location", location, "minutes", minutes)
		return
	}

	ctx := context.Background()

	if minutes == 0 {
		cleared := a.overrideManager.ClearManualOverride(location)
		a.requestRepublish()
		if err := a.redis.Del(ctx, redis.OverrideKey(location)); err != nil {
			a.logger.Warn("Failed to clear override in Redis", "location", location, "error", err)
		}
		a.logger.Info("Manual override cleared", "location", location, "was_active", cleared)

		minInterval := time.Duration(cfg.MinPublishIntervalMs) * time.Millisecond
		if !a.rateLimiter.ShouldPublish(location, minInterval) {
			a.logger.Debug("Rate limited, colour follows on next tick",
				"location", location,
				"min_interval_ms", cfg.MinPublishIntervalMs)
			return
		}
		a.evaluate(ctx, true)
		return
	}

	duration := time.Duration(minutes) * time.Minute
	expiresAt := a.overrideManager.SetManualOverride(location, duration)
	// the fixture is under manual control, republish once the override ends
	a.requestRepublish()
	if err := a.redis.Set(ctx, redis.OverrideKey(location), expiresAt.UTC().Format(time.RFC3339), duration); err != nil {
		a.logger.Warn("Failed to store override in Redis", "location", location, "error", err)
	}

	a.logger.Info("Manual override set",
		"location", location,
		"minutes", minutes,
		"expires_at", expiresAt.Format(time.RFC3339))
}

// evaluate computes the current colour, refreshes the snapshot and publishes it if the rules say so
func (a *Agent) evaluate(ctx context.Context, forced bool) (*Output, *Decision) {
	cfg := a.cfg.Load()
	now := cfg.Clock(a.now())

	output, err := a.compute(now, cfg)
	if err != nil {
		a.logger.Error("Failed to calculate colour, skipping cycle",
			"location", a.location,
			"error", err)
		return nil, nil
	}

	overrideActive := a.overrideManager.CheckManualOverride(a.location)

	if err := a.storeSnapshot(ctx, output, overrideActive, cfg); err != nil {
		a.logger.Warn("Failed to store colour snapshot", "location", a.location, "error", err)
	}

	a.stateMux.RLock()
	last := a.last
	if a.republish {
		last = nil
	}
	a.stateMux.RUnlock()

	decision := MakePublishDecision(a.location, output, last, overrideActive, forced, a.logger)
	if decision.Action == ActionMaintain {
		a.logger.Debug("Decision is maintain, no command published",
			"location", a.location,
			"reason", decision.Reason)
		return output, decision
	}

	id := uuid.NewString()
	if err := a.publishColorCommand(output, decision, id); err != nil {
		a.logger.Error("Failed to publish colour command",
			"location", a.location,
			"error", err)
		return output, decision
	}

	a.rateLimiter.RecordPublish(a.location)
	a.stateMux.Lock()
	a.last = output
	a.lastID = id
	a.republish = false
	a.stateMux.Unlock()

	a.logger.Info("Colour published",
		"location", a.location,
		"kelvin", output.Kelvin,
		"phase", output.Phase,
		"hex", output.Hex(),
		"reason", decision.Reason)

	return output, decision
}

func (a *Agent) compute(now time.Time, cfg *config.Config) (*Output, error) {
	sun, err := a.sun.Get(now, cfg.Coordinate())
	if err != nil {
		return nil, err
	}
	return Compute(now, sun, cfg)
}

// requestRepublish makes the next evaluation publish even if the colour is unchanged
func (a *Agent) requestRepublish() {
	a.stateMux.Lock()
	a.republish = true
	a.stateMux.Unlock()
}

// publishColorCommand publishes both command and context messages
func (a *Agent) publishColorCommand(output *Output, decision *Decision, id string) error {
	timestamp := output.Time.Format(time.RFC3339)

	commandMsg := map[string]interface{}{
		"id":        id,
		"location":  a.location,
		"kelvin":    output.Kelvin,
		"phase":     output.Phase,
		"rgb":       output.Driver,
		"hsv":       output.HSV,
		"hex":       output.Hex(),
		"sunrise":   output.Sunrise.String(),
		"sunset":    output.Sunset.String(),
		"reason":    decision.Reason,
		"timestamp": timestamp,
	}

	commandTopic := mqtt.CommandTopic(a.location)
	commandPayload, err := json.Marshal(commandMsg)
	if err != nil {
		return fmt.Errorf("failed to marshal command message: %w", err)
	}

	// retained so a fixture that reconnects picks up the current colour
	if err := a.mqtt.Publish(commandTopic, 1, true, commandPayload); err != nil {
		return fmt.Errorf("failed to publish command to %s: %w", commandTopic, err)
	}

	a.logger.Debug("Published colour command", "topic", commandTopic)

	cfg := a.cfg.Load()
	daylight := solar.DaylightAt(output.Time, cfg.Coordinate())

	contextMsg := map[string]interface{}{
		"source":         cfg.ServiceName,
		"type":           "lighting",
		"location":       a.location,
		"state":          "natural_light",
		"color_temp":     int(output.Kelvin + 0.5),
		"phase":          output.Phase,
		"hex":            output.Hex(),
		"sun_altitude":   daylight.SunAltitude,
		"is_daytime":     daylight.IsDaytime,
		"is_golden_hour": daylight.IsGoldenHour,
		"automated":      true,
		"command_id":     id,
		"timestamp":      timestamp,
	}

	contextTopic := mqtt.ContextTopic(a.location)
	contextPayload, err := json.Marshal(contextMsg)
	if err != nil {
		return fmt.Errorf("failed to marshal context message: %w", err)
	}

	if err := a.mqtt.Publish(contextTopic, 0, false, contextPayload); err != nil {
		return fmt.Errorf("failed to publish context to %s: %w", contextTopic, err)
	}

	a.logger.Debug("Published lighting context", "topic", contextTopic)

	return nil
}

// storeSnapshot mirrors the latest computed colour into Redis
func (a *Agent) storeSnapshot(ctx context.Context, output *Output, overrideActive bool, cfg *config.Config) error {
	fields := map[string]interface{}{
		"kelvin":    output.Kelvin,
		"phase":     string(output.Phase),
		"hex":       output.Hex(),
		"r":         output.Driver.R,
		"g":         output.Driver.G,
		"b":         output.Driver.B,
		"h":         output.HSV.H,
		"s":         output.HSV.S,
		"v":         output.HSV.V,
		"sunrise":   output.Sunrise.String(),
		"sunset":    output.Sunset.String(),
		"override":  overrideActive,
		"timestamp": output.Time.Format(time.RFC3339),
	}

	ttl := time.Duration(snapshotIntervals*cfg.DecisionIntervalSec) * time.Second
	return a.redis.HSetWithTTL(ctx, redis.NaturalLightKey(a.location), fields, ttl)
}

// ForcePublish computes and publishes the current colour even if it is unchanged.
// An active manual override still wins.
func (a *Agent) ForcePublish(ctx context.Context) (*Output, error) {
	output, decision := a.evaluate(ctx, true)
	if output == nil {
		return nil, fmt.Errorf("no colour available for location: %s", a.location)
	}
	if decision.Action == ActionMaintain {
		return output, ErrManualOverride
	}

	a.stateMux.RLock()
	published := a.last == output
	a.stateMux.RUnlock()
	if !published {
		return output, fmt.Errorf("failed to publish colour (%s)", decision.Reason)
	}

	return output, nil
}

// LastPublished returns the most recently published colour and its command id
func (a *Agent) LastPublished() (*Output, string, bool) {
	a.stateMux.RLock()
	defer a.stateMux.RUnlock()
	return a.last, a.lastID, a.last != nil
}

// Snapshot reads back the colour mirrored to Redis by the last evaluation
func (a *Agent) Snapshot(ctx context.Context) (map[string]string, error) {
	key := redis.NaturalLightKey(a.location)
	fields, err := a.redis.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return fields, nil
}

// HealthStatus reports the agent state for the detailed health endpoint
func (a *Agent) HealthStatus() map[string]interface{} {
	status := map[string]interface{}{
		"location":        a.location,
		"override_active": a.overrideManager.CheckManualOverride(a.location),
	}

	if expiresAt, ok := a.overrideManager.ExpiresAt(a.location); ok {
		status["override_expires_at"] = expiresAt.UTC().Format(time.RFC3339)
	}

	if lastTime, ok := a.rateLimiter.LastPublishTime(a.location); ok {
		status["last_publish"] = lastTime.UTC().Format(time.RFC3339)
	}

	a.stateMux.RLock()
	if a.last != nil {
		status["kelvin"] = a.last.Kelvin
		status["phase"] = a.last.Phase
		status["hex"] = a.last.Hex()
		status["command_id"] = a.lastID
	}
	a.stateMux.RUnlock()

	return status
}
