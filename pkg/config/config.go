package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/saaga0h/natlight/internal/colortemp"
	"github.com/saaga0h/natlight/internal/schedule"
	"github.com/saaga0h/natlight/internal/solar"
)

// ErrConfigurationMissing is returned when a required key is absent or cannot be parsed
var ErrConfigurationMissing = errors.New("configuration missing")

// Config holds the configuration for the natural light agent and CLI.
// It is built once by Load and treated as immutable afterwards.
type Config struct {
	// MQTT configuration
	MQTTBroker   string
	MQTTPort     int
	MQTTUser     string
	MQTTPassword string
	MQTTClientID string

	// Redis configuration
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// Service configuration
	ServiceName string
	HealthPort  int
	LogLevel    string
	ConfigFile  string
	EnvFile     string
	WatchConfig bool

	// Light agent configuration
	Location              string
	DecisionIntervalSec   int
	ManualOverrideMinutes int
	MinPublishIntervalMs  int
	// Evaluate the curve on the UTC wall clock instead of local time
	UTC bool

	// Location of the fixture (COORDS)
	Longitude float64
	Latitude  float64

	// Day/night curve
	EarliestWakeup    solar.ClockTime
	EarliestSleep     solar.ClockTime
	MorningTransition solar.ClockTime
	EveningTransition solar.ClockTime
	NightColorK       int
	DayColorK         int
	MorningSunEffect  float64
	EveningSunEffect  float64

	// Driver compensation (DRIVERPARAMETERS)
	DriverR float64
	DriverG float64
	DriverB float64

	// ASCII plot resolution (PLOTPARAMETERS)
	PlotRows    int
	PlotColumns int
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		MQTTBroker:    "localhost",
		MQTTPort:      1883,
		RedisHost:     "localhost",
		RedisPort:     6379,
		ServiceName:   "natlight-agent",
		HealthPort:    8080,
		LogLevel:      "info",
		EnvFile:       ".env",
		Location:      "living_room",
		// Light agent defaults
		DecisionIntervalSec:   60,
		ManualOverrideMinutes: 30,
		MinPublishIntervalMs:  5000,
		// Karlsruhe
		Longitude: 8.403653,
		Latitude:  49.006889,
		// Curve defaults
		EarliestWakeup:    solar.ClockTime{Hour: 6, Minute: 30},
		EarliestSleep:     solar.ClockTime{Hour: 22},
		MorningTransition: solar.ClockTime{Hour: 1},
		EveningTransition: solar.ClockTime{Hour: 3},
		NightColorK:       2450,
		DayColorK:         6500,
		MorningSunEffect:  0.1,
		EveningSunEffect:  0.2,
		DriverR:           1,
		DriverG:           1,
		DriverB:           1,
		PlotRows:          20,
		PlotColumns:       96,
	}
}

// Load builds the configuration with hierarchy: defaults → config file → .env/environment → flags.
// Flags in extra are parsed from the same arguments for the caller's own use.
func Load(args []string, extra ...*pflag.FlagSet) (*Config, error) {
	// Parse flags into a scratch config first so the file location is known
	// before anything else is applied
	flagged := NewConfig()
	fs := flagged.FlagSet()
	for _, e := range extra {
		fs.AddFlagSet(e)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := NewConfig()

	envFile := flagged.EnvFile
	if err := godotenv.Load(envFile); err != nil && fs.Changed("env-file") {
		return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	path := os.Getenv("NATLIGHT_CONFIG_FILE")
	if fs.Changed("config") {
		path = flagged.ConfigFile
	}
	if path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	target := cfg.FlagSet()
	var setErr error
	fs.Visit(func(f *pflag.Flag) {
		if target.Lookup(f.Name) == nil {
			return
		}
		if err := target.Set(f.Name, f.Value.String()); err != nil && setErr == nil {
			setErr = fmt.Errorf("invalid flag --%s: %w", f.Name, err)
		}
	})
	if setErr != nil {
		return nil, setErr
	}
	cfg.ConfigFile = path

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables with NATLIGHT_ prefix.
// A value that cannot be parsed fails with ErrConfigurationMissing naming the variable.
func (c *Config) LoadFromEnv() error {
	var r envReader

	// MQTT configuration
	r.readString("NATLIGHT_MQTT_BROKER", &c.MQTTBroker)
	r.readInt("NATLIGHT_MQTT_PORT", &c.MQTTPort)
	r.readString("NATLIGHT_MQTT_USER", &c.MQTTUser)
	r.readString("NATLIGHT_MQTT_PASSWORD", &c.MQTTPassword)
	r.readString("NATLIGHT_MQTT_CLIENT_ID", &c.MQTTClientID)

	// Redis configuration
	r.readString("NATLIGHT_REDIS_HOST", &c.RedisHost)
	r.readInt("NATLIGHT_REDIS_PORT", &c.RedisPort)
	r.readString("NATLIGHT_REDIS_PASSWORD", &c.RedisPassword)
	r.readInt("NATLIGHT_REDIS_DB", &c.RedisDB)

	// Service configuration
	r.readString("NATLIGHT_SERVICE_NAME", &c.ServiceName)
	r.readInt("NATLIGHT_HEALTH_PORT", &c.HealthPort)
	r.readString("NATLIGHT_LOG_LEVEL", &c.LogLevel)

	// Light agent configuration
	r.readString("NATLIGHT_LOCATION", &c.Location)
	r.readInt("NATLIGHT_DECISION_INTERVAL_SEC", &c.DecisionIntervalSec)
	r.readInt("NATLIGHT_MANUAL_OVERRIDE_MINUTES", &c.ManualOverrideMinutes)
	r.readInt("NATLIGHT_MIN_PUBLISH_INTERVAL_MS", &c.MinPublishIntervalMs)
	r.readBool("NATLIGHT_UTC", &c.UTC)

	// Location of the fixture
	r.readFloat("NATLIGHT_LATITUDE", &c.Latitude)
	r.readFloat("NATLIGHT_LONGITUDE", &c.Longitude)

	// Colour limits
	r.readInt("NATLIGHT_DAY_COLOR_K", &c.DayColorK)
	r.readInt("NATLIGHT_NIGHT_COLOR_K", &c.NightColorK)

	return r.err
}

// envReader keeps the first malformed variable; unset variables leave the target alone
type envReader struct {
	err error
}

func (r *envReader) value(name string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	v := strings.TrimSpace(os.Getenv(name))
	return v, v != ""
}

func (r *envReader) malformed(name, value string, err error) {
	r.err = fmt.Errorf("%w: %s: invalid value %q: %v", ErrConfigurationMissing, name, value, err)
}

func (r *envReader) readString(name string, dst *string) {
	if v, ok := r.value(name); ok {
		*dst = v
	}
}

func (r *envReader) readInt(name string, dst *int) {
	v, ok := r.value(name)
	if !ok {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		r.malformed(name, v, err)
		return
	}
	*dst = i
}

func (r *envReader) readFloat(name string, dst *float64) {
	v, ok := r.value(name)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.malformed(name, v, err)
		return
	}
	*dst = f
}

func (r *envReader) readBool(name string, dst *bool) {
	v, ok := r.value(name)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.malformed(name, v, err)
		return
	}
	*dst = b
}

// FlagSet returns a flag set bound to the fields of c
func (c *Config) FlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("natlight", pflag.ContinueOnError)

	// MQTT flags
	fs.StringVar(&c.MQTTBroker, "mqtt-broker", c.MQTTBroker, "MQTT broker hostname")
	fs.IntVar(&c.MQTTPort, "mqtt-port", c.MQTTPort, "MQTT broker port")
	fs.StringVar(&c.MQTTUser, "mqtt-user", c.MQTTUser, "MQTT username")
	fs.StringVar(&c.MQTTPassword, "mqtt-password", c.MQTTPassword, "MQTT password")
	fs.StringVar(&c.MQTTClientID, "mqtt-client-id", c.MQTTClientID, "MQTT client ID")

	// Redis flags
	fs.StringVar(&c.RedisHost, "redis-host", c.RedisHost, "Redis hostname")
	fs.IntVar(&c.RedisPort, "redis-port", c.RedisPort, "Redis port")
	fs.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password")
	fs.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database number")

	// Service flags
	fs.StringVar(&c.ServiceName, "service-name", c.ServiceName, "Service name")
	fs.IntVar(&c.HealthPort, "health-port", c.HealthPort, "Health check HTTP port")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVarP(&c.ConfigFile, "config", "c", c.ConfigFile, "Configuration file (.cfg/.ini or .yaml)")
	fs.StringVar(&c.EnvFile, "env-file", c.EnvFile, "Optional .env file with NATLIGHT_ variables")
	fs.BoolVar(&c.WatchConfig, "watch-config", c.WatchConfig, "Reload when the configuration file changes")

	// Light agent flags
	fs.StringVar(&c.Location, "location", c.Location, "Location name used in MQTT topics and Redis keys")
	fs.IntVar(&c.DecisionIntervalSec, "decision-interval", c.DecisionIntervalSec, "Colour update interval in seconds")
	fs.IntVar(&c.ManualOverrideMinutes, "manual-override-minutes", c.ManualOverrideMinutes, "Default manual override duration in minutes")
	fs.IntVar(&c.MinPublishIntervalMs, "min-publish-interval-ms", c.MinPublishIntervalMs, "Minimum time between forced publishes (ms)")
	fs.BoolVar(&c.UTC, "utc", c.UTC, "Use the UTC wall clock instead of local time")

	// Curve flags
	fs.Float64Var(&c.Latitude, "latitude", c.Latitude, "Geographic latitude, north positive")
	fs.Float64Var(&c.Longitude, "longitude", c.Longitude, "Geographic longitude, east positive")
	fs.Var((*clockValue)(&c.EarliestWakeup), "wakeup", "Earliest wakeup time (HH:MM)")
	fs.Var((*clockValue)(&c.EarliestSleep), "sleep", "Earliest sleep time (HH:MM)")
	fs.Var((*clockValue)(&c.MorningTransition), "morning-transition", "Morning transition width (HH:MM)")
	fs.Var((*clockValue)(&c.EveningTransition), "evening-transition", "Evening transition width (HH:MM)")
	fs.IntVar(&c.DayColorK, "day-color", c.DayColorK, "Daytime colour temperature in Kelvin")
	fs.IntVar(&c.NightColorK, "night-color", c.NightColorK, "Nighttime colour temperature in Kelvin")
	fs.Float64Var(&c.MorningSunEffect, "morning-sun-effect", c.MorningSunEffect, "How strongly sunrise moves the wakeup (0-1)")
	fs.Float64Var(&c.EveningSunEffect, "evening-sun-effect", c.EveningSunEffect, "How strongly sunset moves the sleep time (0-1)")
	fs.Float64Var(&c.DriverR, "driver-r", c.DriverR, "Red driver scale factor")
	fs.Float64Var(&c.DriverG, "driver-g", c.DriverG, "Green driver scale factor")
	fs.Float64Var(&c.DriverB, "driver-b", c.DriverB, "Blue driver scale factor")
	fs.IntVar(&c.PlotRows, "plot-rows", c.PlotRows, "Rows of the ASCII curve")
	fs.IntVar(&c.PlotColumns, "plot-columns", c.PlotColumns, "Columns of the ASCII curve")

	return fs
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT broker is required")
	}
	if c.MQTTPort <= 0 || c.MQTTPort > 65535 {
		return fmt.Errorf("MQTT port must be between 1 and 65535")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("Redis host is required")
	}
	if c.RedisPort <= 0 || c.RedisPort > 65535 {
		return fmt.Errorf("Redis port must be between 1 and 65535")
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("Health port must be between 1 and 65535")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("Service name is required")
	}
	if c.Location == "" {
		return fmt.Errorf("location is required")
	}
	if c.DecisionIntervalSec <= 0 {
		return fmt.Errorf("decision interval must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	if c.NightColorK <= 0 {
		return fmt.Errorf("nighttime colour must be positive, got %dK", c.NightColorK)
	}
	if c.DayColorK <= c.NightColorK {
		return fmt.Errorf("daytime colour (%dK) must be above nighttime colour (%dK)", c.DayColorK, c.NightColorK)
	}
	if c.MorningSunEffect < 0 || c.MorningSunEffect > 1 {
		return fmt.Errorf("morning sun effect must be between 0 and 1")
	}
	if c.EveningSunEffect < 0 || c.EveningSunEffect > 1 {
		return fmt.Errorf("evening sun effect must be between 0 and 1")
	}
	if c.DriverR < 0 || c.DriverG < 0 || c.DriverB < 0 {
		return fmt.Errorf("driver scale factors must not be negative")
	}
	if c.PlotRows <= 0 || c.PlotColumns <= 0 {
		return fmt.Errorf("plot dimensions must be positive")
	}

	return nil
}

// MQTTAddress returns the full MQTT broker address
func (c *Config) MQTTAddress() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTTBroker, c.MQTTPort)
}

// RedisAddress returns the full Redis address
func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// Coordinate returns the configured position of the fixture
func (c *Config) Coordinate() solar.GeoCoordinate {
	return solar.GeoCoordinate{Longitude: c.Longitude, Latitude: c.Latitude}
}

// Schedule returns the parameters of the day/night curve
func (c *Config) Schedule() schedule.Config {
	return schedule.Config{
		EarliestWakeup:    c.EarliestWakeup,
		EarliestSleep:     c.EarliestSleep,
		MorningTransition: c.MorningTransition,
		EveningTransition: c.EveningTransition,
		DayColorK:         c.DayColorK,
		NightColorK:       c.NightColorK,
		MorningSunEffect:  c.MorningSunEffect,
		EveningSunEffect:  c.EveningSunEffect,
	}
}

// Clock converts t to the wall clock the curve is evaluated on
func (c *Config) Clock(t time.Time) time.Time {
	if c.UTC {
		return t.UTC()
	}
	return t
}

// Driver returns the per-channel driver compensation
func (c *Config) Driver() colortemp.DriverAdjustment {
	return colortemp.DriverAdjustment{R: c.DriverR, G: c.DriverG, B: c.DriverB}
}
