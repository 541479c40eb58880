// Package schedule turns a time of day into a colour temperature: flat night
// and day values joined by sine shaped morning and evening transitions whose
// timing is pulled towards the actual sunrise and sunset.
package schedule

import (
	"fmt"
	"math"
	"time"

	"github.com/saaga0h/natlight/internal/solar"
)

// Config holds the tunable parameters of the day/night curve
type Config struct {
	EarliestWakeup    solar.ClockTime
	EarliestSleep     solar.ClockTime
	MorningTransition solar.ClockTime // full width of the morning transition
	EveningTransition solar.ClockTime // full width of the evening transition
	DayColorK         int
	NightColorK       int
	MorningSunEffect  float64 // 0 ignores sunrise, 1 follows it completely
	EveningSunEffect  float64
}

// Phase names the part of the curve a time of day falls into
type Phase string

const (
	PhaseNight             Phase = "night"
	PhaseMorningTransition Phase = "morning_transition"
	PhaseDay               Phase = "day"
	PhaseEveningTransition Phase = "evening_transition"
)

const midday = 0.5

// Result is the outcome of evaluating the curve at one linear time
type Result struct {
	Kelvin float64
	Phase  Phase
	Event  float64 // wakeup or sleep time after adapting to the sun
	Width  float64 // transition width after adapting to the sun
}

// ColorForTime returns the colour temperature in Kelvin at linear time lin on
// the calendar date of date. Polar conditions surface as solar.ErrSolarGeometryUndefined.
func ColorForTime(lin float64, date time.Time, coord solar.GeoCoordinate, cfg Config) (float64, error) {
	sun, err := solar.SunriseSunset(date, coord)
	if err != nil {
		return 0, fmt.Errorf("failed to calculate sun times: %w", err)
	}
	return Evaluate(lin, sun, cfg).Kelvin, nil
}

// ColorForSunTimes is ColorForTime with sunrise and sunset already known
func ColorForSunTimes(lin float64, sun solar.SunTimes, cfg Config) float64 {
	return Evaluate(lin, sun, cfg).Kelvin
}

// Evaluate classifies lin and computes its colour temperature
func Evaluate(lin float64, sun solar.SunTimes, cfg Config) Result {
	day := float64(cfg.DayColorK)
	night := float64(cfg.NightColorK)

	if lin < midday {
		event, width := AdaptToSun(
			cfg.EarliestWakeup.Linear(),
			cfg.MorningTransition.Linear(),
			solar.Linear(sun.Sunrise.Hour, sun.Sunrise.Minute),
			cfg.MorningSunEffect,
		)
		res := Result{Event: event, Width: width}

		switch {
		case math.Abs(event-lin) < width/2:
			res.Kelvin = Transition(lin, event, width, day, night, +1)
			res.Phase = PhaseMorningTransition
		case lin < event:
			res.Kelvin = night
			res.Phase = PhaseNight
		default:
			res.Kelvin = day
			res.Phase = PhaseDay
		}
		return res
	}

	event, width := AdaptToSun(
		cfg.EarliestSleep.Linear(),
		cfg.EveningTransition.Linear(),
		solar.Linear(sun.Sunset.Hour, sun.Sunset.Minute),
		cfg.EveningSunEffect,
	)
	res := Result{Event: event, Width: width}

	switch {
	case math.Abs(event-lin) < width/2:
		res.Kelvin = Transition(lin, event, width, day, night, -1)
		res.Phase = PhaseEveningTransition
	case lin < event:
		res.Kelvin = day
		res.Phase = PhaseDay
	default:
		res.Kelvin = night
		res.Phase = PhaseNight
	}
	return res
}

// AdaptToSun pulls an event time towards the solar event by effect and
// shrinks or widens the transition by the same fraction of the remaining gap.
// The width is measured from the shifted event pulled towards the sun a
// second time, so it narrows by effect·(1−effect)²·(event−solarEvent).
func AdaptToSun(event, width, solarEvent, effect float64) (float64, float64) {
	shifted := pullTowards(event, solarEvent, effect)
	width -= effect * (pullTowards(shifted, solarEvent, effect) - solarEvent)
	return shifted, width
}

func pullTowards(event, solarEvent, effect float64) float64 {
	return event - effect*(event-solarEvent)
}

// Transition evaluates the sine between night and day centred on mid.
// orientation +1 rises from night to day, -1 falls from day to night.
func Transition(lin, mid, width, day, night, orientation float64) float64 {
	average := night + (day-night)/2
	amplitude := (day - night) / 2
	return average + orientation*amplitude*math.Sin((lin-mid)/width*math.Pi)
}
