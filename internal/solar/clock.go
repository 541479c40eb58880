package solar

import (
	"fmt"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// ClockTime is a naive time of day without any timezone attached
type ClockTime struct {
	Hour   int
	Minute int
	Second int
}

// NewClockTime builds a ClockTime from a number of seconds since midnight, wrapping at one day
func NewClockTime(seconds int) ClockTime {
	seconds %= secondsPerDay
	if seconds < 0 {
		seconds += secondsPerDay
	}
	return ClockTime{
		Hour:   seconds / 3600,
		Minute: seconds / 60 % 60,
		Second: seconds % 60,
	}
}

// ClockTimeOf returns the time of day of t in t's own location
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// Linear returns the time of day as a fraction of 24 hours
func (c ClockTime) Linear() float64 {
	return Linear(c.Hour, c.Minute) + float64(c.Second)/secondsPerDay
}

// Duration interprets the clock time as a span (used for transition windows)
func (c ClockTime) Duration() time.Duration {
	return time.Duration(c.Hour)*time.Hour +
		time.Duration(c.Minute)*time.Minute +
		time.Duration(c.Second)*time.Second
}

// On places the clock time on the calendar date of day, in day's location
func (c ClockTime) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, c.Second, 0, day.Location())
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// Linear converts an hour and minute into linear time, 0 being midnight and 0.5 noon
func Linear(hour, minute int) float64 {
	return float64(hour)/24.0 + float64(minute)/60.0/24.0
}
