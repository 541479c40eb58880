package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaga0h/natlight/internal/solar"
)

const iniConfig = `[COORDS]
longitude = -0.1276
latitude = 51.5072

[EARLIESTWAKEUPTIME]
hr = 7
min = 15

[EARLIESTSLEEPTIME]
hr = 23
min = 0

[MORNINGTRANSTIME]
hr = 0
min = 45

[EVENINGTRANSTIME]
hr = 2
min = 30

[COLORLIMITS]
nighttime = 2200
daytime = 6000

[SUNEFFECT]
morning = 0.3
evening = 0.4

[DRIVERPARAMETERS]
r = 1.0
g = 0.9
b = 0.7

[PLOTPARAMETERS]
y = 12
X = 48
`

const yamlConfig = `coords:
  longitude: -0.1276
  latitude: 51.5072
earliestwakeuptime: {hr: 7, min: 15}
earliestsleeptime: {hr: 23, min: 0}
morningtranstime: {hr: 0, min: 45}
eveningtranstime: {hr: 2, min: 30}
colorlimits:
  nighttime: 2200
  daytime: 6000
suneffect:
  morning: 0.3
  evening: 0.4
driverparameters: {r: 1.0, g: 0.9, b: 0.7}
plotparameters: {y: 12, X: 48}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func assertLondonConfig(t *testing.T, cfg *Config) {
	t.Helper()
	assert.Equal(t, -0.1276, cfg.Longitude)
	assert.Equal(t, 51.5072, cfg.Latitude)
	assert.Equal(t, solar.ClockTime{Hour: 7, Minute: 15}, cfg.EarliestWakeup)
	assert.Equal(t, solar.ClockTime{Hour: 23}, cfg.EarliestSleep)
	assert.Equal(t, solar.ClockTime{Minute: 45}, cfg.MorningTransition)
	assert.Equal(t, solar.ClockTime{Hour: 2, Minute: 30}, cfg.EveningTransition)
	assert.Equal(t, 2200, cfg.NightColorK)
	assert.Equal(t, 6000, cfg.DayColorK)
	assert.Equal(t, 0.3, cfg.MorningSunEffect)
	assert.Equal(t, 0.4, cfg.EveningSunEffect)
	assert.Equal(t, 1.0, cfg.DriverR)
	assert.Equal(t, 0.9, cfg.DriverG)
	assert.Equal(t, 0.7, cfg.DriverB)
	assert.Equal(t, 12, cfg.PlotRows)
	assert.Equal(t, 48, cfg.PlotColumns)
}

func TestNewConfig_DefaultsAreValid(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTAddress())
	assert.Equal(t, "localhost:6379", cfg.RedisAddress())

	sched := cfg.Schedule()
	assert.Equal(t, 6500, sched.DayColorK)
	assert.Equal(t, 2450, sched.NightColorK)
	assert.Equal(t, solar.GeoCoordinate{Longitude: 8.403653, Latitude: 49.006889}, cfg.Coordinate())
}

func TestLoadFromFile_INI(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromFile(writeFile(t, "config.cfg", iniConfig)))
	assertLondonConfig(t, cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile_YAML(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromFile(writeFile(t, "config.yaml", yamlConfig)))
	assertLondonConfig(t, cfg)
}

func TestLoadFromFile_MissingKey(t *testing.T) {
	broken := strings.Replace(iniConfig, "evening = 0.4\n", "", 1)

	cfg := NewConfig()
	err := cfg.LoadFromFile(writeFile(t, "config.cfg", broken))
	require.ErrorIs(t, err, ErrConfigurationMissing)
	assert.Contains(t, err.Error(), "SUNEFFECT.evening")
}

func TestLoadFromFile_MissingSection(t *testing.T) {
	broken := strings.Replace(iniConfig, "[COORDS]", "[LOCATION]", 1)

	cfg := NewConfig()
	err := cfg.LoadFromFile(writeFile(t, "config.cfg", broken))
	require.ErrorIs(t, err, ErrConfigurationMissing)
	assert.Contains(t, err.Error(), "COORDS.longitude")
}

func TestLoadFromFile_MalformedValue(t *testing.T) {
	broken := strings.Replace(iniConfig, "daytime = 6000", "daytime = bright", 1)

	cfg := NewConfig()
	err := cfg.LoadFromFile(writeFile(t, "config.cfg", broken))
	require.ErrorIs(t, err, ErrConfigurationMissing)
	assert.Contains(t, err.Error(), "COLORLIMITS.daytime")
}

func TestLoadFromFile_ClockOutOfRange(t *testing.T) {
	broken := strings.Replace(iniConfig, "hr = 7", "hr = 25", 1)

	cfg := NewConfig()
	err := cfg.LoadFromFile(writeFile(t, "config.cfg", broken))
	require.ErrorIs(t, err, ErrConfigurationMissing)
	assert.Contains(t, err.Error(), "EARLIESTWAKEUPTIME")
}

func TestLoadFromFile_NotFound(t *testing.T) {
	cfg := NewConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.cfg"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Hierarchy(t *testing.T) {
	path := writeFile(t, "config.cfg", iniConfig)

	t.Setenv("NATLIGHT_DAY_COLOR_K", "6200")
	t.Setenv("NATLIGHT_LOCATION", "bedroom")

	cfg, err := Load([]string{"--config", path, "--location", "study", "--sleep", "22:45"})
	require.NoError(t, err)

	// file
	assert.Equal(t, 2200, cfg.NightColorK)
	assert.Equal(t, 51.5072, cfg.Latitude)
	// env over file
	assert.Equal(t, 6200, cfg.DayColorK)
	// flags over env and file
	assert.Equal(t, "study", cfg.Location)
	assert.Equal(t, solar.ClockTime{Hour: 22, Minute: 45}, cfg.EarliestSleep)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoad_ConfigFileFromEnv(t *testing.T) {
	t.Setenv("NATLIGHT_CONFIG_FILE", writeFile(t, "config.yml", yamlConfig))

	cfg, err := Load(nil)
	require.NoError(t, err)
	assertLondonConfig(t, cfg)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load([]string{"--latitude", "60.1695", "--longitude", "24.9354"})
	require.NoError(t, err)
	assert.Equal(t, 60.1695, cfg.Latitude)
	assert.Equal(t, 24.9354, cfg.Longitude)
	assert.Equal(t, 2450, cfg.NightColorK)
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := writeFile(t, "natlight.env", "NATLIGHT_NIGHT_COLOR_K=2000\n")
	t.Cleanup(func() { os.Unsetenv("NATLIGHT_NIGHT_COLOR_K") })

	cfg, err := Load([]string{"--env-file", envFile})
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.NightColorK)

	_, err = Load([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")})
	assert.Error(t, err)
}

func TestLoad_InvalidFlags(t *testing.T) {
	_, err := Load([]string{"--wakeup", "half past six"})
	assert.Error(t, err)

	_, err = Load([]string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestLoad_MalformedEnv(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"int", "NATLIGHT_DAY_COLOR_K", "65OO"},
		{"float", "NATLIGHT_LATITUDE", "north"},
		{"bool", "NATLIGHT_UTC", "sometimes"},
		{"port", "NATLIGHT_MQTT_PORT", "18 83"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load(nil)
			require.ErrorIs(t, err, ErrConfigurationMissing)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoadFromEnv_EmptyKeepsDefault(t *testing.T) {
	t.Setenv("NATLIGHT_DAY_COLOR_K", "")
	t.Setenv("NATLIGHT_LATITUDE", " 60.1695 ")

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, 6500, cfg.DayColorK)
	assert.Equal(t, 60.1695, cfg.Latitude)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty broker", func(c *Config) { c.MQTTBroker = "" }},
		{"bad mqtt port", func(c *Config) { c.MQTTPort = 70000 }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"empty location", func(c *Config) { c.Location = "" }},
		{"zero interval", func(c *Config) { c.DecisionIntervalSec = 0 }},
		{"latitude out of range", func(c *Config) { c.Latitude = 91 }},
		{"longitude out of range", func(c *Config) { c.Longitude = -181 }},
		{"night not positive", func(c *Config) { c.NightColorK = 0 }},
		{"day not above night", func(c *Config) { c.DayColorK = c.NightColorK }},
		{"morning effect", func(c *Config) { c.MorningSunEffect = 1.5 }},
		{"evening effect", func(c *Config) { c.EveningSunEffect = -0.1 }},
		{"negative driver", func(c *Config) { c.DriverG = -1 }},
		{"plot size", func(c *Config) { c.PlotColumns = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestClockValue(t *testing.T) {
	var c solar.ClockTime
	v := (*clockValue)(&c)

	require.NoError(t, v.Set("06:05"))
	assert.Equal(t, solar.ClockTime{Hour: 6, Minute: 5}, c)
	assert.Equal(t, "06:05", v.String())

	assert.Error(t, v.Set("0605"))
	assert.Error(t, v.Set("24:00"))
	assert.Error(t, v.Set("12:60"))
	assert.Error(t, v.Set("ab:00"))
}

func TestLoad_ExtraFlags(t *testing.T) {
	extra := pflag.NewFlagSet("extra", pflag.ContinueOnError)
	hsv := extra.Bool("hsv", false, "")

	cfg, err := Load([]string{"--hsv", "--day-color", "6000"}, extra)
	require.NoError(t, err)
	assert.True(t, *hsv)
	assert.Equal(t, 6000, cfg.DayColorK)
}
