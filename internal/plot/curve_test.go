package plot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaga0h/natlight/internal/schedule"
	"github.com/saaga0h/natlight/internal/solar"
)

func TestCurve_Small(t *testing.T) {
	got := Curve([]float64{2450, 4475, 6500}, 6500, 2450, 2)

	want := "Curve:\n\n" +
		"6500\t|  \n" +
		"4475\t| -\n" +
		"2450\t|--\n" +
		"\t____\n" +
		"\t 0 16\n"
	assert.Equal(t, want, got)
}

func TestCurve_Empty(t *testing.T) {
	assert.Empty(t, Curve(nil, 6500, 2450, 10))
	assert.Empty(t, Curve([]float64{1}, 6500, 2450, 0))
}

func TestSample_FollowsSchedule(t *testing.T) {
	cfg := schedule.Config{
		EarliestWakeup:    solar.ClockTime{Hour: 6, Minute: 30},
		EarliestSleep:     solar.ClockTime{Hour: 22},
		MorningTransition: solar.ClockTime{Hour: 1},
		EveningTransition: solar.ClockTime{Hour: 3},
		DayColorK:         6500,
		NightColorK:       2450,
		MorningSunEffect:  0.1,
		EveningSunEffect:  0.2,
	}
	sun := solar.SunTimes{
		Sunrise: solar.ClockTime{Hour: 3, Minute: 22},
		Sunset:  solar.ClockTime{Hour: 19, Minute: 34},
	}

	samples := Sample(sun, cfg, 96)
	require.Len(t, samples, 96)
	assert.Equal(t, 2450.0, samples[0])
	assert.Equal(t, 6500.0, samples[48])
	assert.Equal(t, 2450.0, samples[95])

	out := Curve(samples, cfg.DayColorK, cfg.NightColorK, 10)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	// title, blank, 11 temperature rows, axis, captions
	require.Len(t, lines, 15)

	top := lines[2]
	bottom := lines[12]
	assert.True(t, strings.HasPrefix(top, "6500\t|"))
	assert.True(t, strings.HasPrefix(bottom, "2450\t|"))
	assert.Equal(t, strings.Repeat("-", 95), strings.TrimPrefix(bottom, "2450\t|"))
	assert.Equal(t, "\t"+strings.Repeat("_", 97), lines[13])
	assert.Less(t, strings.Count(top, "-"), 95)
	assert.Greater(t, strings.Count(top, "-"), 40)

	assert.True(t, strings.HasPrefix(lines[14], "\t 0   1   2"))
}
