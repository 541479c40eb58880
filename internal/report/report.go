// Package report formats the sunrise, sunset and current colour as text
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/saaga0h/natlight/internal/light"
	"github.com/saaga0h/natlight/internal/solar"
)

// Result is everything the report prints
type Result struct {
	Output   *light.Output
	Daylight solar.Daylight
	// Now is the real instant the report refers to; relative times are measured from it
	Now time.Time
	// HSV prints hue, saturation and value instead of RGB
	HSV bool
}

const labelWidth = 31

type line struct {
	label string
	value string
}

// Write prints the report to w
func Write(w io.Writer, r Result) error {
	out := r.Output
	sunrise, sunset := SunInstants(out)

	lines := []line{
		{"Sunrise at:", fmt.Sprintf("%s UTC (%s)", out.Sunrise, relative(sunrise, r.Now))},
		{"Sunset at:", fmt.Sprintf("%s UTC (%s)", out.Sunset, relative(sunset, r.Now))},
		{"Current Time:", solar.ClockTimeOf(out.Time).String()},
		{"Calculated Color Temperature:", fmt.Sprintf("%.0f K", out.Kelvin)},
		{"Phase:", string(out.Phase)},
		{"Sun Altitude:", fmt.Sprintf("%.1f°", r.Daylight.SunAltitude)},
	}

	if r.HSV {
		lines = append(lines, line{"HSV:", fmt.Sprintf("h=%.3f s=%.3f v=%.3f", out.HSV.H, out.HSV.S, out.HSV.V)})
	} else {
		lines = append(lines, line{"RGB:", fmt.Sprintf("r=%.3f g=%.3f b=%.3f (%s)", out.Driver.R, out.Driver.G, out.Driver.B, out.Hex())})
	}

	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%-*s %s\n", labelWidth, l.label, l.value); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

// SunInstants places the UTC sunrise and sunset of out on its calendar date.
// A sunset clock earlier than sunrise belongs to the following UTC day.
func SunInstants(out *light.Output) (time.Time, time.Time) {
	y, m, d := out.Time.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	sunrise := out.Sunrise.On(day)
	sunset := out.Sunset.On(day)
	if sunset.Before(sunrise) {
		sunset = sunset.AddDate(0, 0, 1)
	}
	return sunrise, sunset
}

func relative(then, now time.Time) string {
	return humanize.RelTime(then, now, "ago", "from now")
}
