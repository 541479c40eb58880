package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/saaga0h/natlight/internal/solar"
)

// source looks up a single value of a sectioned configuration file
type source interface {
	lookup(section, key string) (string, bool)
}

type iniSource struct {
	file *ini.File
}

func (s iniSource) lookup(section, key string) (string, bool) {
	sec, err := s.file.GetSection(section)
	if err != nil {
		return "", false
	}
	k, err := sec.GetKey(key)
	if err != nil {
		return "", false
	}
	return k.String(), true
}

// yamlSource matches section and key names case-insensitively
type yamlSource map[string]map[string]interface{}

func (s yamlSource) lookup(section, key string) (string, bool) {
	for name, values := range s {
		if !strings.EqualFold(name, section) {
			continue
		}
		for k, v := range values {
			if strings.EqualFold(k, key) && v != nil {
				return fmt.Sprint(v), true
			}
		}
	}
	return "", false
}

// LoadFromFile reads every curve, driver and plot setting from a sectioned
// file. INI is assumed unless the extension is .yaml or .yml. All keys are
// required; the first missing or malformed one is reported.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	src, err := parseSource(path, data)
	if err != nil {
		return err
	}

	r := &fileReader{src: src}

	r.readFloat("COORDS", "longitude", &c.Longitude)
	r.readFloat("COORDS", "latitude", &c.Latitude)

	r.readClock("EARLIESTWAKEUPTIME", &c.EarliestWakeup)
	r.readClock("EARLIESTSLEEPTIME", &c.EarliestSleep)
	r.readClock("MORNINGTRANSTIME", &c.MorningTransition)
	r.readClock("EVENINGTRANSTIME", &c.EveningTransition)

	r.readInt("COLORLIMITS", "nighttime", &c.NightColorK)
	r.readInt("COLORLIMITS", "daytime", &c.DayColorK)

	r.readFloat("SUNEFFECT", "morning", &c.MorningSunEffect)
	r.readFloat("SUNEFFECT", "evening", &c.EveningSunEffect)

	r.readFloat("DRIVERPARAMETERS", "r", &c.DriverR)
	r.readFloat("DRIVERPARAMETERS", "g", &c.DriverG)
	r.readFloat("DRIVERPARAMETERS", "b", &c.DriverB)

	r.readInt("PLOTPARAMETERS", "y", &c.PlotRows)
	r.readInt("PLOTPARAMETERS", "x", &c.PlotColumns)

	if r.err != nil {
		return fmt.Errorf("config file %s: %w", path, r.err)
	}
	return nil
}

func parseSource(path string, data []byte) (source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc yamlSource
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
		return doc, nil
	default:
		// key names are case-insensitive, section names are not
		file, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config INI: %w", err)
		}
		return iniSource{file: file}, nil
	}
}

// fileReader keeps the first error so that callers can read keys unconditionally
type fileReader struct {
	src source
	err error
}

func (r *fileReader) value(section, key string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	v, ok := r.src.lookup(section, key)
	if !ok {
		r.err = fmt.Errorf("%w: %s.%s", ErrConfigurationMissing, section, key)
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (r *fileReader) malformed(section, key, value string, err error) {
	r.err = fmt.Errorf("%w: %s.%s: invalid value %q: %v", ErrConfigurationMissing, section, key, value, err)
}

func (r *fileReader) readFloat(section, key string, dst *float64) {
	v, ok := r.value(section, key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.malformed(section, key, v, err)
		return
	}
	*dst = f
}

func (r *fileReader) readInt(section, key string, dst *int) {
	v, ok := r.value(section, key)
	if !ok {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		r.malformed(section, key, v, err)
		return
	}
	*dst = i
}

func (r *fileReader) readClock(section string, dst *solar.ClockTime) {
	var hour, minute int
	r.readInt(section, "hr", &hour)
	r.readInt(section, "min", &minute)
	if r.err != nil {
		return
	}
	c, err := newClock(hour, minute)
	if err != nil {
		r.malformed(section, "hr", fmt.Sprintf("%d:%d", hour, minute), err)
		return
	}
	*dst = c
}
