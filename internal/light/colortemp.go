package light

import (
	"fmt"
	"time"

	"github.com/saaga0h/natlight/internal/colortemp"
	"github.com/saaga0h/natlight/internal/schedule"
	"github.com/saaga0h/natlight/internal/solar"
	"github.com/saaga0h/natlight/pkg/config"
)

// Output is the colour the fixture should show at one instant
type Output struct {
	Time    time.Time
	Kelvin  float64
	Phase   schedule.Phase
	RGB     colortemp.RGB // 0..255
	Driver  colortemp.RGB // driver-scaled, 0..1
	HSV     colortemp.HSV // of the driver-scaled colour
	Sunrise solar.ClockTime
	Sunset  solar.ClockTime
}

// Hex returns the unscaled colour as #rrggbb
func (o *Output) Hex() string {
	return o.RGB.Hex()
}

// Compute evaluates the day/night curve at now, which is read as a naive wall
// clock, against sun times for the same date
func Compute(now time.Time, sun solar.SunTimes, cfg *config.Config) (*Output, error) {
	result := schedule.Evaluate(solar.ClockTimeOf(now).Linear(), sun, cfg.Schedule())

	rgb, err := colortemp.KelvinToRGB(result.Kelvin)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %v K: %w", result.Kelvin, err)
	}
	driver := rgb.Scale(cfg.Driver())

	return &Output{
		Time:    now,
		Kelvin:  result.Kelvin,
		Phase:   result.Phase,
		RGB:     rgb,
		Driver:  driver,
		HSV:     driver.HSV(),
		Sunrise: sun.Sunrise,
		Sunset:  sun.Sunset,
	}, nil
}
