// Package plot draws the day's colour temperature curve as text
package plot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/saaga0h/natlight/internal/schedule"
	"github.com/saaga0h/natlight/internal/solar"
)

// Sample evaluates the curve at columns equally spaced times starting at midnight
func Sample(sun solar.SunTimes, cfg schedule.Config, columns int) []float64 {
	samples := make([]float64, columns)
	for i := range samples {
		samples[i] = schedule.ColorForSunTimes(float64(i)/float64(columns), sun, cfg)
	}
	return samples
}

// Curve renders samples as a bar chart with rows+1 temperature lines from day
// down to night, a time axis and hour captions. The bars stop one column short
// of the last sample and the axis runs one column past the frame.
func Curve(samples []float64, day, night, rows int) string {
	if rows < 1 || len(samples) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Curve:\n\n")

	step := float64(day-night) / float64(rows)
	for row := 0; row <= rows; row++ {
		threshold := int(float64(day) - step*float64(row))
		fmt.Fprintf(&b, "%d\t|", threshold)
		for _, s := range samples[:len(samples)-1] {
			if s >= float64(threshold) {
				b.WriteByte('-')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}

	b.WriteString("\t")
	b.WriteString(strings.Repeat("_", len(samples)+1))
	b.WriteString("\n\t ")
	b.WriteString(hourCaptions(len(samples)))
	b.WriteByte('\n')

	return b.String()
}

// hourCaptions labels each hour at its column, dropping labels that would overlap
func hourCaptions(columns int) string {
	line := []byte(strings.Repeat(" ", columns+2))
	next := 0
	for hour := 0; hour < 24; hour++ {
		col := hour * columns / 24
		label := strconv.Itoa(hour)
		if col < next || col+len(label) > len(line) {
			continue
		}
		copy(line[col:], label)
		next = col + len(label) + 1
	}
	return strings.TrimRight(string(line), " ")
}
