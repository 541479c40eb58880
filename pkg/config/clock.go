package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/saaga0h/natlight/internal/solar"
)

// clockValue lets a solar.ClockTime be set from an "HH:MM" flag
type clockValue solar.ClockTime

func (v *clockValue) String() string {
	return fmt.Sprintf("%02d:%02d", v.Hour, v.Minute)
}

func (v *clockValue) Set(s string) error {
	c, err := parseClock(s)
	if err != nil {
		return err
	}
	*v = clockValue(c)
	return nil
}

func (v *clockValue) Type() string {
	return "HH:MM"
}

func parseClock(s string) (solar.ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return solar.ClockTime{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return solar.ClockTime{}, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil {
		return solar.ClockTime{}, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	return newClock(hour, minute)
}

func newClock(hour, minute int) (solar.ClockTime, error) {
	if hour < 0 || hour > 23 {
		return solar.ClockTime{}, fmt.Errorf("hour %d out of range 0-23", hour)
	}
	if minute < 0 || minute > 59 {
		return solar.ClockTime{}, fmt.Errorf("minute %d out of range 0-59", minute)
	}
	return solar.ClockTime{Hour: hour, Minute: minute}, nil
}
